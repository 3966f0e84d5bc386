// Package session implements the per-connection controller (spec §4.F):
// it tags commands, matches responses to the single pending command,
// handles continuation routing and streaming, performs capability
// refresh after LOGIN/AUTHENTICATE/STARTTLS, swaps in DEFLATE compression
// after COMPRESS completes, and tears everything down on LOGOUT,
// transport inactivity, read-idle timeout, or unrecoverable exception.
//
// The read loop, tag bookkeeping, and pending-command classification are
// grounded on the teacher client's Client.read/beginCommand/completeCommand
// trio; the single-pending-command discipline (IDLE included) and the
// Future-based result type are this module's own generalization of that
// design (spec §3, §4.H).
package session

import (
	"bufio"
	"bytes"
	"compress/flate"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	imap "github.com/luhaoyun888/go-imap-async"
	"github.com/luhaoyun888/go-imap-async/command"
	"github.com/luhaoyun888/go-imap-async/imaplog"
	"github.com/luhaoyun888/go-imap-async/internal/wire"
)

// Transport is the full-duplex byte stream this package depends on. TLS
// negotiation, dialing, and any framing below the IMAP line protocol are
// the caller's concern (spec §0 "Out of scope").
type Transport interface {
	io.Reader
	io.Writer
	io.Closer
}

// Config holds the per-session configuration surface (spec §7 ambient
// config, mirroring the teacher's Options): debug mode, read-idle
// timeout, session id for log correlation, a logger, and an optional MIME
// word decoder for resp-text.
type Config struct {
	// Logger receives debug-level tracing. Defaults to imaplog.Discard().
	Logger imaplog.Logger
	// ReadIdleTimeout bounds how long the session waits for any bytes
	// before failing the pending future with
	// ErrConnectionFailedExceedIdleMax. Zero disables the timer.
	ReadIdleTimeout time.Duration
	// SessionID correlates log lines and errors to one connection.
	SessionID int
	// TextDecoder decodes RFC 2047-encoded resp-text, when set. Grounded
	// on go-message/charset (spec §8 DOMAIN STACK); nil means resp-text
	// is surfaced undecoded.
	TextDecoder func(s string) (string, error)
	// UpgradeTLS performs the TLS handshake after a STARTTLS command
	// completes OK (spec §0 names the TLS handshake itself as an external
	// collaborator, so this module never imports crypto/tls). It receives
	// a Transport that first replays any bytes the session had already
	// buffered but not yet consumed, then reads on from the original
	// connection, and must return the upgraded Transport to read/write
	// through from then on. Nil means STARTTLS completes without any
	// upgrade (suitable only for testing against a plaintext fixture).
	UpgradeTLS func(conn Transport) (Transport, error)
}

func (cfg *Config) logger() imaplog.Logger {
	if cfg.Logger == nil {
		return imaplog.Discard()
	}
	return cfg.Logger
}

// pendingEntry is the session-internal bookkeeping tuple for one in-flight
// command (spec §3 "Pending entry").
type pendingEntry struct {
	tag     string
	request command.Request
	future  *Future

	// queue is the request's own StreamingQueue (non-nil only for IDLE):
	// untagged data pushed here is available for live consumption while
	// the command is still pending, per spec §4.D'.
	queue *command.Queue

	// acc accumulates every untagged response seen while this entry is
	// pending, regardless of command type, and is drained into
	// Result.Lines on tagged completion (spec §4.F: "the accumulated
	// untagged responses form the result payload"). Unlike queue, this is
	// not part of the Request contract — every command gets one.
	acc *command.Queue

	sensitive bool
	startedAt time.Time
}

// Session owns the transport, the tag generator, the single pending
// entry, the advertised capability set, and the logger (spec §4.F
// "Session"). It is born by Connect and dies on LOGOUT completion,
// transport inactivity, read-idle timeout, or unrecoverable exception.
type Session struct {
	cfg Config

	connMu sync.Mutex
	conn   Transport
	br     *bufio.Reader
	bw     *bufio.Writer
	dec    *wire.Decoder

	mu       sync.Mutex
	state    imap.ConnState
	caps     imap.CapSet
	tagNum   uint64
	pending  *pendingEntry
	closed   bool

	idleTimer *time.Timer
}

// New wraps conn into a Session in ConnStateNone. It performs no I/O;
// Connect drives the greeting handshake that moves it into
// ConnStateNotAuthenticated.
func New(conn Transport, cfg Config) *Session {
	br := bufio.NewReader(conn)
	bw := bufio.NewWriter(conn)
	s := &Session{
		cfg:   cfg,
		conn:  conn,
		br:    br,
		bw:    bw,
		dec:   wire.NewDecoder(br),
		state: imap.ConnStateNone,
	}
	return s
}

// State reports the session's current connection state.
func (s *Session) State() imap.ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Caps reports the last-known capability set, or nil if none has arrived
// yet.
func (s *Session) Caps() imap.CapSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.caps
}

func (s *Session) setCaps(caps imap.CapSet) {
	s.mu.Lock()
	s.caps = caps
	s.mu.Unlock()
}

// Submit sends request over the wire and returns a Future for its result
// (spec §4.F "Submit contract"). It fails synchronously with
// ErrCommandInProgress if any command is already pending, IDLE included:
// an IDLE holds the slot until Session.Terminate ends it and its tagged
// completion arrives.
func (s *Session) Submit(req command.Request) (*Future, error) {
	entry, err := s.beginCommand(req)
	if err != nil {
		return nil, err
	}
	s.dispatch(entry)
	return entry.future, nil
}

// beginCommand claims the pending slot for req, or reports why it
// couldn't. Split out from Submit so refreshCapabilities can claim the
// slot synchronously from within onCommandOK, before the triggering
// command's future completes and could wake an external caller's own
// Submit into the same race.
func (s *Session) beginCommand(req command.Request) (*pendingEntry, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, &imap.Error{Kind: imap.ErrConnectionInactive, SessionID: s.cfg.SessionID}
	}
	if s.pending != nil {
		s.mu.Unlock()
		return nil, &imap.Error{Kind: imap.ErrCommandInProgress, SessionID: s.cfg.SessionID}
	}
	s.tagNum++
	tag := fmt.Sprintf("A%d", s.tagNum)
	entry := &pendingEntry{
		tag:       tag,
		request:   req,
		future:    NewFuture(),
		queue:     req.StreamingQueue(),
		acc:       command.NewQueue(),
		sensitive: req.IsSensitive(),
		startedAt: time.Now(),
	}
	s.pending = entry
	s.mu.Unlock()
	return entry, nil
}

// dispatch writes entry's command line over the wire, failing the entry's
// future in place if encoding or the write itself fails.
func (s *Session) dispatch(entry *pendingEntry) {
	body, err := entry.request.CommandBytes()
	if err != nil {
		s.failPending(entry, err)
		return
	}
	sensitive := entry.request.IsSensitive()
	s.mu.Lock()
	entry.sensitive = sensitive
	s.mu.Unlock()
	if err := s.writeTagged(entry.tag, body, sensitive, entry.request.DebugLabel()); err != nil {
		s.failPending(entry, &imap.Error{Kind: imap.ErrConnectionFailedException, SessionID: s.cfg.SessionID, Cause: err})
	}
}

// Terminate asks the current pending command to end itself mid-stream
// (e.g. IDLE's DONE). It is the cooperative half of Cancellation (spec §4
// "Cancellation"): the future only resolves once the server sends the
// tagged completion that follows.
func (s *Session) Terminate() error {
	s.mu.Lock()
	entry := s.pending
	s.mu.Unlock()
	if entry == nil {
		return &imap.Error{Kind: imap.ErrOperationNotSupported, SessionID: s.cfg.SessionID}
	}
	line, err := entry.request.TerminateLine()
	if err != nil {
		return err
	}
	return s.writeRaw(line, false, "")
}

func (s *Session) writeTagged(tag string, body []byte, sensitive bool, label string) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if _, err := s.bw.WriteString(tag + " "); err != nil {
		return err
	}
	return s.writeLocked(body, sensitive, label)
}

func (s *Session) writeRaw(body []byte, sensitive bool, label string) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	return s.writeLocked(body, sensitive, label)
}

func (s *Session) writeLocked(body []byte, sensitive bool, label string) error {
	if sensitive {
		if s.cfg.logger().DebugEnabled() {
			s.cfg.logger().Debug(label)
		}
	} else if s.cfg.logger().DebugEnabled() {
		s.cfg.logger().Debug(strings.TrimRight(string(body), "\r\n"))
	}
	if _, err := s.bw.Write(body); err != nil {
		return err
	}
	return s.bw.Flush()
}

// Run drives the read loop until the transport closes or an unrecoverable
// error occurs. Callers run it in its own goroutine, mirroring the
// teacher's Client.read.
func (s *Session) Run() {
	defer s.teardown(nil)
	for {
		if s.cfg.ReadIdleTimeout > 0 {
			s.armIdleTimer()
		}
		resp, err := s.dec.ReadResponse()
		s.disarmIdleTimer()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.teardown(&imap.Error{Kind: imap.ErrConnectionInactive, SessionID: s.cfg.SessionID})
			} else {
				s.teardown(&imap.Error{Kind: imap.ErrConnectionFailedException, SessionID: s.cfg.SessionID, Cause: err})
			}
			return
		}
		if s.handleResponse(resp) {
			return
		}
	}
}

func (s *Session) armIdleTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idleTimer = time.AfterFunc(s.cfg.ReadIdleTimeout, func() {
		s.teardown(&imap.Error{Kind: imap.ErrConnectionFailedExceedIdleMax, SessionID: s.cfg.SessionID})
	})
}

func (s *Session) disarmIdleTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idleTimer != nil {
		s.idleTimer.Stop()
		s.idleTimer = nil
	}
}

// handleResponse classifies one decoded response and routes it; it
// returns true once the session has reached a terminal state and Run
// should stop.
func (s *Session) handleResponse(resp *wire.Response) bool {
	switch {
	case resp.IsContinuation:
		s.routeContinuation(resp.ContinuationText)
		return false
	case resp.Tag != "":
		return s.routeTagged(resp)
	default:
		s.routeUntagged(resp)
		return false
	}
}

func (s *Session) routeContinuation(text string) {
	s.mu.Lock()
	entry := s.pending
	s.mu.Unlock()
	if entry == nil {
		s.teardown(&imap.Error{Kind: imap.ErrProtocolViolation, SessionID: s.cfg.SessionID})
		return
	}

	next, err := entry.request.NextAfterContinuation(text, s.cfg.logger())
	if err != nil {
		s.failPending(entry, err)
		return
	}
	if next == nil {
		return
	}
	sensitive := entry.request.IsSensitive()
	if err := s.writeRaw(next, sensitive, entry.request.DebugLabel()); err != nil {
		s.failPending(entry, &imap.Error{Kind: imap.ErrConnectionFailedException, SessionID: s.cfg.SessionID, Cause: err})
	}
	s.mu.Lock()
	entry.sensitive = sensitive
	s.mu.Unlock()
}

func (s *Session) routeTagged(resp *wire.Response) bool {
	s.mu.Lock()
	entry := s.pending
	if entry == nil || entry.tag != resp.Tag {
		s.mu.Unlock()
		s.teardown(&imap.Error{Kind: imap.ErrProtocolViolation, SessionID: s.cfg.SessionID})
		return true
	}
	s.pending = nil
	s.mu.Unlock()

	status := StatusResult{Type: resp.Keyword, Code: resp.Code, Text: s.decodeText(resp.Text)}
	result := Result{Status: status, Lines: entry.acc.Drain()}

	var completeErr error
	switch resp.Keyword {
	case "OK":
		completeErr = s.onCommandOK(entry)
	case "NO":
		completeErr = &imap.Error{Kind: imap.ErrServerResponseNo, SessionID: s.cfg.SessionID, Response: &imap.StatusResponse{Type: imap.StatusResponseType(resp.Keyword), Code: imap.ResponseCode(resp.Code), Text: status.Text}}
	case "BAD":
		completeErr = &imap.Error{Kind: imap.ErrServerResponseBad, SessionID: s.cfg.SessionID, Response: &imap.StatusResponse{Type: imap.StatusResponseType(resp.Keyword), Code: imap.ResponseCode(resp.Code), Text: status.Text}}
	default:
		completeErr = &imap.Error{Kind: imap.ErrProtocolViolation, SessionID: s.cfg.SessionID}
	}

	entry.request.Cleanup()
	entry.future.complete(result, completeErr)

	if entry.request.CommandType() == imap.CommandTypeLogout && completeErr == nil {
		s.teardown(nil)
		return true
	}

	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	return closed
}

// onCommandOK runs the per-command-type bookkeeping a tagged OK triggers:
// state transitions, capability refresh, and the COMPRESS/STARTTLS
// transport swaps. It returns a non-nil error only when that bookkeeping
// itself failed unrecoverably (e.g. the TLS handshake), in which case the
// caller's future resolves with that error instead of success.
func (s *Session) onCommandOK(entry *pendingEntry) error {
	switch entry.request.CommandType() {
	case imap.CommandTypeLogin, imap.CommandTypeAuthenticatePlain, imap.CommandTypeAuthenticateXOAuth2, imap.CommandTypeAuthenticateOAuthBearer:
		s.mu.Lock()
		s.state = imap.ConnStateAuthenticated
		s.mu.Unlock()
		s.refreshCapabilities()
	case imap.CommandTypeStartTLS:
		// The handshake itself is performed by cfg.UpgradeTLS (spec §0
		// "Out of scope" for crypto/tls, but the swap must happen here,
		// synchronously on the read loop, per design note §9: inbound
		// framing is naturally paused until this call returns, since Run
		// hasn't looped back to dec.ReadResponse yet.
		if err := s.upgradeTLS(); err != nil {
			wrapped := &imap.Error{Kind: imap.ErrConnectionFailedException, SessionID: s.cfg.SessionID, Cause: err}
			// entry was already cleared from s.pending by the caller, so
			// teardown only closes the now-unusable connection here; the
			// caller still completes this command's future with wrapped.
			s.teardown(wrapped)
			return wrapped
		}
		// STARTTLS only advances capability refresh, not connection
		// state: the caller hasn't authenticated yet.
		s.refreshCapabilities()
	case imap.CommandTypeSelect, imap.CommandTypeExamine:
		s.mu.Lock()
		s.state = imap.ConnStateSelected
		s.mu.Unlock()
	case imap.CommandTypeCompress:
		s.enableDeflate()
	}
	return nil
}

// refreshCapabilities discards the current capability set and issues the
// mandatory CAPABILITY command, per spec §4.F: the session must "discard
// its capability set and automatically issue CAPABILITY before accepting
// the next external submission". It is called from onCommandOK, on the
// read loop's own goroutine, and claims the pending slot synchronously
// (beginCommand, not Submit) before returning control to routeTagged —
// routeTagged hasn't completed the triggering command's future yet, so no
// externally-submitted command can observe the slot as free in between.
// The actual wire write (dispatch) is handed to its own goroutine: writing
// is a blocking I/O call (synchronous net.Pipe in tests, a filled TCP send
// buffer in practice), and running it inline here would stall the read
// loop before it ever gets back to routeTagged to complete the triggering
// command's future — the slot claim is what must be synchronous, not the
// write.
func (s *Session) refreshCapabilities() {
	s.setCaps(nil)
	entry, err := s.beginCommand(command.NewCapability())
	if err != nil {
		return
	}
	go s.dispatch(entry)
}

// upgradeTLS hands cfg.UpgradeTLS a Transport that first replays whatever
// bytes the session's bufio.Reader had already buffered past the STARTTLS
// tagged OK, then reads on from the real connection, and rewires br/bw/dec
// onto whatever Transport it returns. Mirrors the teacher's
// Client.upgradeStartTLS buffered-prefix handling (imapclient/starttls.go),
// minus the crypto/tls call itself, which lives in cfg.UpgradeTLS instead.
func (s *Session) upgradeTLS() error {
	if s.cfg.UpgradeTLS == nil {
		return nil
	}

	s.connMu.Lock()
	defer s.connMu.Unlock()

	buffered := make([]byte, s.br.Buffered())
	if _, err := io.ReadFull(s.br, buffered); err != nil {
		return err
	}

	var prefixed Transport = s.conn
	if len(buffered) > 0 {
		prefixed = &prefixedTransport{Transport: s.conn, prefix: bytes.NewReader(buffered)}
	}

	newConn, err := s.cfg.UpgradeTLS(prefixed)
	if err != nil {
		return err
	}

	s.conn = newConn
	s.br = bufio.NewReader(newConn)
	s.bw = bufio.NewWriter(newConn)
	s.dec = wire.NewDecoder(s.br)
	return nil
}

// prefixedTransport replays prefix before reading on from the wrapped
// Transport, so bytes the session had already pulled into its bufio.Reader
// before a STARTTLS upgrade aren't lost.
type prefixedTransport struct {
	Transport
	prefix *bytes.Reader
}

func (t *prefixedTransport) Read(p []byte) (int, error) {
	if t.prefix.Len() > 0 {
		return t.prefix.Read(p)
	}
	return t.Transport.Read(p)
}

// enableDeflate swaps the session's transport to run through a DEFLATE
// codec after a successful COMPRESS DEFLATE completion (RFC 4978,
// spec §8 DOMAIN STACK). compress/flate is the standard library's DEFLATE
// implementation; no third-party alternative in the example pack offers a
// compress.Writer/Reader pair that is a closer fit, so it is used directly
// rather than wrapped.
func (s *Session) enableDeflate() {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	fr := flate.NewReader(s.br)
	s.br = bufio.NewReader(fr)
	s.dec = wire.NewDecoder(s.br)
	s.bw = bufio.NewWriter(flate.NewWriter(s.conn, flate.DefaultCompression))
}

func (s *Session) routeUntagged(resp *wire.Response) {
	s.mu.Lock()
	entry := s.pending
	if resp.Keyword == "CAPABILITY" {
		s.caps = imap.ParseCapabilities(resp.CapabilityTokens())
	}
	s.mu.Unlock()

	if resp.IsStatusKeyword() && resp.Keyword == "BYE" {
		if entry == nil || entry.request.CommandType() != imap.CommandTypeLogout {
			s.teardown(&imap.Error{Kind: imap.ErrServerResponseByeUnexpected, SessionID: s.cfg.SessionID})
			return
		}
	}

	if entry != nil {
		entry.acc.Push(string(resp.Raw))
		if entry.queue != nil {
			entry.queue.Push(string(resp.Raw))
		}
	}
}

func (s *Session) decodeText(text string) string {
	if s.cfg.TextDecoder == nil || text == "" {
		return text
	}
	if decoded, err := s.cfg.TextDecoder(text); err == nil {
		return decoded
	}
	return text
}

func (s *Session) failPending(entry *pendingEntry, err error) {
	s.mu.Lock()
	if s.pending == entry {
		s.pending = nil
	}
	s.mu.Unlock()
	entry.request.Cleanup()
	entry.future.complete(Result{}, err)
}

// teardown releases the transport, cancels the read-idle timer, fails any
// pending future, and moves the session to its terminal state. It is
// idempotent.
func (s *Session) teardown(cause error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.state = imap.ConnStateLogout
	entry := s.pending
	s.pending = nil
	timer := s.idleTimer
	s.idleTimer = nil
	s.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	s.conn.Close()

	if entry != nil {
		if cause == nil {
			cause = &imap.Error{Kind: imap.ErrConnectionInactive, SessionID: s.cfg.SessionID}
		}
		entry.request.Cleanup()
		entry.future.complete(Result{}, cause)
	}
}
