package session

import (
	"testing"

	imap "github.com/luhaoyun888/go-imap-async"
)

func TestFutureFirstWriterWins(t *testing.T) {
	f := NewFuture()
	f.complete(Result{Status: StatusResult{Type: "OK"}}, nil)
	f.complete(Result{Status: StatusResult{Type: "NO"}}, nil) // dropped

	result, err := f.Wait()
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if result.Status.Type != "OK" {
		t.Errorf("Status.Type = %q, want OK (second complete must be a no-op)", result.Status.Type)
	}
}

func TestFutureOnDoneAfterResolution(t *testing.T) {
	f := NewFuture()
	f.complete(Result{Status: StatusResult{Type: "OK"}}, nil)

	called := false
	f.OnDone(func(Result, error) { called = true })
	if !called {
		t.Error("OnDone must fire synchronously when already resolved")
	}
}

func TestFutureOnDoneBeforeResolution(t *testing.T) {
	f := NewFuture()
	done := make(chan struct{})
	f.OnDone(func(Result, error) { close(done) })
	f.complete(Result{}, nil)
	<-done
}

func TestFutureCancel(t *testing.T) {
	f := NewFuture()
	f.Cancel()
	_, err := f.Wait()
	imapErr, ok := err.(*imap.Error)
	if !ok || imapErr.Kind != imap.ErrCancelled {
		t.Errorf("err = %v, want ErrCancelled", err)
	}
}
