package command

import (
	"testing"

	imap "github.com/luhaoyun888/go-imap-async"
)

func bytesOf(t *testing.T, r Request) string {
	t.Helper()
	b, err := r.CommandBytes()
	if err != nil {
		t.Fatalf("CommandBytes: %v", err)
	}
	return string(b)
}

func TestNewLoginEncodesAndMarksSensitive(t *testing.T) {
	req := NewLogin("user@example.com", "s3cret")
	if got, want := bytesOf(t, req), "LOGIN user@example.com s3cret\r\n"; got != want {
		t.Errorf("CommandBytes = %q, want %q", got, want)
	}
	if !req.IsSensitive() {
		t.Error("LOGIN should be sensitive")
	}
	if req.DebugLabel() == bytesOf(t, req) {
		t.Error("DebugLabel must not leak the raw password")
	}
}

func TestNewSelectEncodesMailboxArg(t *testing.T) {
	req := NewSelect("folder ABC")
	if got, want := bytesOf(t, req), "SELECT \"folder ABC\"\r\n"; got != want {
		t.Errorf("CommandBytes = %q, want %q", got, want)
	}
}

func TestNewSelectAtomSafeMailbox(t *testing.T) {
	req := NewSelect("folderABC")
	if got, want := bytesOf(t, req), "SELECT folderABC\r\n"; got != want {
		t.Errorf("CommandBytes = %q, want %q", got, want)
	}
}

func TestNewSelectEncodesModifiedUTF7(t *testing.T) {
	req := NewSelect("测试")
	if got, want := bytesOf(t, req), "SELECT &bUuL1Q-\r\n"; got != want {
		t.Errorf("CommandBytes = %q, want %q", got, want)
	}
}

func TestNewCompressCommandType(t *testing.T) {
	req := NewCompress()
	if req.CommandType() != imap.CommandTypeCompress {
		t.Errorf("CommandType = %v", req.CommandType())
	}
	if got, want := bytesOf(t, req), "COMPRESS DEFLATE\r\n"; got != want {
		t.Errorf("CommandBytes = %q, want %q", got, want)
	}
}

func TestNewStartTLSCommandType(t *testing.T) {
	req := NewStartTLS()
	if req.CommandType() != imap.CommandTypeStartTLS {
		t.Errorf("CommandType = %v", req.CommandType())
	}
	if got, want := bytesOf(t, req), "STARTTLS\r\n"; got != want {
		t.Errorf("CommandBytes = %q, want %q", got, want)
	}
}

func TestOnlyIdleStreams(t *testing.T) {
	for _, req := range []Request{
		NewList("", "*"),
		NewNamespace(),
		NewSearch("UNSEEN"),
		NewStatus("INBOX", "MESSAGES"),
		NewSelect("INBOX"),
	} {
		if q := req.StreamingQueue(); q != nil {
			t.Errorf("%s: StreamingQueue() = %v, want nil (spec §4.C: only IDLE streams)", req.DebugLabel(), q)
		}
	}
}

func TestSimpleRequestUnsupportedOperations(t *testing.T) {
	req := NewNoop()
	if _, err := req.NextAfterContinuation("", nil); err == nil {
		t.Error("NOOP must not support continuation")
	}
	if _, err := req.TerminateLine(); err == nil {
		t.Error("NOOP must not support mid-stream termination")
	}
}
