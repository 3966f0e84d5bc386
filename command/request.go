// Package command implements the IMAP request model: the Request interface
// every command satisfies, the simple one-line command family, the SASL
// AUTHENTICATE family, and IDLE. Mailbox arguments are encoded by
// internal/wire's EncodeMailboxArg.
//
// See spec §4.A–§4.D'.
package command

import (
	imap "github.com/luhaoyun888/go-imap-async"
	"github.com/luhaoyun888/go-imap-async/imaplog"
)

// Request is the contract any IMAP command must satisfy to be submitted to
// a session. Tagging the command is the session's job, not the request's:
// CommandBytes must not include the tag.
type Request interface {
	// CommandBytes returns the framed bytes for the initial command
	// line, CRLF included, tag excluded. Called at most once.
	CommandBytes() ([]byte, error)

	// NextAfterContinuation returns the framed bytes to send in
	// response to a "+ ..." continuation. line is the continuation
	// text with the leading "+ " stripped. Commands with no multi-round
	// protocol return an *imap.Error with Kind
	// ErrOperationNotSupported.
	//
	// A nil, nil return means "nothing to write" — the continuation was
	// acknowledged but no client frame follows yet (used by IDLE's
	// "+ idling" reply).
	NextAfterContinuation(line string, logger imaplog.Logger) ([]byte, error)

	// TerminateLine returns the "finish me" frame for a mid-stream
	// terminable command (e.g. "DONE\r\n" for IDLE). Commands that
	// cannot be terminated mid-stream return an *imap.Error with Kind
	// ErrOperationNotSupported.
	TerminateLine() ([]byte, error)

	// StreamingQueue returns the queue untagged responses for this
	// command should be appended to while it is pending, or nil if the
	// command does not stream.
	StreamingQueue() *Queue

	// CommandType identifies the command variant for dispatch/metrics.
	CommandType() imap.CommandType

	// IsSensitive reports whether the most recently emitted frame
	// carried a secret payload. The session must not log raw bytes
	// while this is true.
	IsSensitive() bool

	// DebugLabel is a redaction-safe string to log instead of raw bytes
	// when IsSensitive is true.
	DebugLabel() string

	// Cleanup zeroes owned secret-bearing fields. Idempotent. Must run
	// on every terminal path (success, failure, cancel).
	Cleanup()
}

// BaseRequest is the default Request adapter (component A): it implements
// the no-op/unsupported defaults so each concrete command only needs to
// override what it actually uses.
type BaseRequest struct{}

func (BaseRequest) NextAfterContinuation(string, imaplog.Logger) ([]byte, error) {
	return nil, notSupported()
}

func (BaseRequest) TerminateLine() ([]byte, error) {
	return nil, notSupported()
}

func (BaseRequest) StreamingQueue() *Queue { return nil }

func (BaseRequest) IsSensitive() bool { return false }

func (BaseRequest) DebugLabel() string { return "" }

func (BaseRequest) Cleanup() {}

func notSupported() error {
	return &imap.Error{Kind: imap.ErrOperationNotSupported}
}
