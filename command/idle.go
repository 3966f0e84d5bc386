package command

import (
	imap "github.com/luhaoyun888/go-imap-async"
	"github.com/luhaoyun888/go-imap-async/imaplog"
)

// IdleRequest is the IDLE/DONE terminable command (RFC 2177, spec §4.D').
// Phase 1 emits "IDLE\r\n" and waits for the "+ idling" continuation, which
// produces no client frame of its own. Phase 2 appends untagged responses
// to the streaming queue until the caller invokes Session.Terminate, which
// sends TerminateLine's "DONE\r\n". Cancelling the Future does not end it.
type IdleRequest struct {
	BaseRequest

	queue *Queue
}

// NewIdle builds an IDLE command with its own streaming queue attached,
// per spec §4.D': "streaming-queue is non-none and must be attached to the
// pending entry".
func NewIdle() *IdleRequest {
	return &IdleRequest{queue: NewQueue()}
}

func (r *IdleRequest) CommandBytes() ([]byte, error) {
	return []byte("IDLE\r\n"), nil
}

// NextAfterContinuation acknowledges the "+ idling" continuation with no
// client frame: IDLE's phase 2 is server-driven until DONE.
func (r *IdleRequest) NextAfterContinuation(string, imaplog.Logger) ([]byte, error) {
	return nil, nil
}

// TerminateLine emits "DONE\r\n", ending phase 2 and asking the server for
// the tagged completion.
func (r *IdleRequest) TerminateLine() ([]byte, error) {
	return []byte("DONE\r\n"), nil
}

func (r *IdleRequest) StreamingQueue() *Queue { return r.queue }

func (r *IdleRequest) CommandType() imap.CommandType { return imap.CommandTypeIdle }
