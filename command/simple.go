package command

import (
	"fmt"
	"strings"

	imap "github.com/luhaoyun888/go-imap-async"
	"github.com/luhaoyun888/go-imap-async/internal/wire"
)

// SimpleRequest is the simple command family (spec §4.C): a single
// client-to-server line with no continuation round-trip and no terminate
// line. Per spec §4.C, every simple command returns none from
// StreamingQueue (BaseRequest's default) — its untagged responses, if any,
// are surfaced through the session's generic Result.Lines accumulation
// instead.
type SimpleRequest struct {
	BaseRequest

	typ  imap.CommandType
	verb string
	args []string

	sensitive bool
	label     string
}

// CommandBytes renders "VERB arg1 arg2\r\n". Arguments are expected to
// already be wire-encoded (quoted/atom-safe/mod-UTF7) by the constructor
// that built this request.
func (r *SimpleRequest) CommandBytes() ([]byte, error) {
	parts := append([]string{r.verb}, r.args...)
	return []byte(strings.Join(parts, " ") + "\r\n"), nil
}

func (r *SimpleRequest) CommandType() imap.CommandType { return r.typ }

func (r *SimpleRequest) IsSensitive() bool { return r.sensitive }

func (r *SimpleRequest) DebugLabel() string {
	if r.label != "" {
		return r.label
	}
	return strings.Join(append([]string{r.verb}, r.args...), " ")
}

// Cleanup drops the reference to the argument list once a sensitive
// command (LOGIN) has completed, so a held *SimpleRequest doesn't keep a
// cleartext password reachable.
func (r *SimpleRequest) Cleanup() {
	if r.sensitive {
		r.args = nil
	}
}

func newSimple(typ imap.CommandType, verb string, args ...string) *SimpleRequest {
	return &SimpleRequest{typ: typ, verb: verb, args: args}
}

// NewCapability builds a CAPABILITY command.
func NewCapability() *SimpleRequest {
	return newSimple(imap.CommandTypeCapability, "CAPABILITY")
}

// NewNoop builds a NOOP command.
func NewNoop() *SimpleRequest {
	return newSimple(imap.CommandTypeNoop, "NOOP")
}

// NewLogout builds a LOGOUT command.
func NewLogout() *SimpleRequest {
	return newSimple(imap.CommandTypeLogout, "LOGOUT")
}

// NewLogin builds a LOGIN command. The password is marked sensitive so the
// session logs DebugLabel instead of the raw frame.
func NewLogin(user, pass string) *SimpleRequest {
	r := newSimple(imap.CommandTypeLogin, "LOGIN", wire.EncodeArg(user), wire.EncodeArg(pass))
	r.sensitive = true
	r.label = fmt.Sprintf("LOGIN %s ****", wire.EncodeArg(user))
	return r
}

// NewSelect builds a SELECT command against the given mailbox.
func NewSelect(mailbox string) *SimpleRequest {
	return newSimple(imap.CommandTypeSelect, "SELECT", wire.EncodeMailboxArg(mailbox))
}

// NewExamine builds an EXAMINE command against the given mailbox.
func NewExamine(mailbox string) *SimpleRequest {
	return newSimple(imap.CommandTypeExamine, "EXAMINE", wire.EncodeMailboxArg(mailbox))
}

// NewSubscribe builds a SUBSCRIBE command.
func NewSubscribe(mailbox string) *SimpleRequest {
	return newSimple(imap.CommandTypeSubscribe, "SUBSCRIBE", wire.EncodeMailboxArg(mailbox))
}

// NewUnsubscribe builds an UNSUBSCRIBE command.
func NewUnsubscribe(mailbox string) *SimpleRequest {
	return newSimple(imap.CommandTypeUnsubscribe, "UNSUBSCRIBE", wire.EncodeMailboxArg(mailbox))
}

// NewNamespace builds a NAMESPACE command (RFC 2342). Its untagged
// response is surfaced through Result.Lines, not StreamingQueue — spec
// §4.C: all simple commands return none from streaming-queue except IDLE.
func NewNamespace() *SimpleRequest {
	return newSimple(imap.CommandTypeNamespace, "NAMESPACE")
}

// NewList builds a LIST command with the given reference name and mailbox
// pattern. Its untagged LIST responses are surfaced through Result.Lines,
// not StreamingQueue — spec §4.C: all simple commands return none from
// streaming-queue except IDLE.
func NewList(reference, pattern string) *SimpleRequest {
	return newSimple(imap.CommandTypeList, "LIST", wire.EncodeMailboxArg(reference), wire.EncodeMailboxArg(pattern))
}

// NewStatus builds a STATUS command requesting the given data items (e.g.
// "MESSAGES", "UIDNEXT").
func NewStatus(mailbox string, items ...string) *SimpleRequest {
	itemList := "(" + strings.Join(items, " ") + ")"
	return newSimple(imap.CommandTypeStatus, "STATUS", wire.EncodeMailboxArg(mailbox), itemList)
}

// NewSearch builds a SEARCH command with a raw, already-encoded search-key
// string (e.g. "UNSEEN", `SUBJECT "foo"`). Its untagged SEARCH response is
// surfaced through Result.Lines, not StreamingQueue — spec §4.C: all simple
// commands return none from streaming-queue except IDLE.
func NewSearch(searchKey string) *SimpleRequest {
	return newSimple(imap.CommandTypeSearch, "SEARCH", searchKey)
}

// NewCompress builds a COMPRESS DEFLATE command (RFC 4978). The session is
// responsible for wrapping its transport in a flate reader/writer once the
// tagged OK for this command arrives (spec §8 DOMAIN STACK).
func NewCompress() *SimpleRequest {
	return newSimple(imap.CommandTypeCompress, "COMPRESS", "DEFLATE")
}

// NewStartTLS builds a STARTTLS command (RFC 3501 §6.2.1). The TLS handshake
// itself is not performed here (spec §0 "Out of scope" — the session only
// knows Transport, not crypto/tls): on this command's tagged OK the session
// calls the caller-supplied session.Config.UpgradeTLS hook and reads and
// writes through the Transport it returns, before the command's future
// resolves.
func NewStartTLS() *SimpleRequest {
	return newSimple(imap.CommandTypeStartTLS, "STARTTLS")
}
