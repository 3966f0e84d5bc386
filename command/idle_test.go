package command

import (
	"testing"

	imap "github.com/luhaoyun888/go-imap-async"
)

func TestIdleLifecycle(t *testing.T) {
	req := NewIdle()

	b, err := req.CommandBytes()
	if err != nil {
		t.Fatalf("CommandBytes: %v", err)
	}
	if want := "IDLE\r\n"; string(b) != want {
		t.Errorf("CommandBytes = %q, want %q", b, want)
	}

	next, err := req.NextAfterContinuation("idling", nil)
	if err != nil {
		t.Fatalf("NextAfterContinuation: %v", err)
	}
	if next != nil {
		t.Errorf("expected no client frame after the idling continuation, got %q", next)
	}

	q := req.StreamingQueue()
	if q == nil {
		t.Fatal("IDLE must expose a streaming queue")
	}
	q.Push("* 1 EXISTS")
	q.Push("* 1 RECENT")

	line, err := req.TerminateLine()
	if err != nil {
		t.Fatalf("TerminateLine: %v", err)
	}
	if want := "DONE\r\n"; string(line) != want {
		t.Errorf("TerminateLine = %q, want %q", line, want)
	}

	if req.CommandType() != imap.CommandTypeIdle {
		t.Errorf("CommandType = %v", req.CommandType())
	}

	lines := q.Drain()
	if len(lines) != 2 {
		t.Fatalf("Drain() = %v", lines)
	}
}
