package command

import (
	"encoding/base64"
	"fmt"

	"github.com/emersion/go-sasl"

	imap "github.com/luhaoyun888/go-imap-async"
	"github.com/luhaoyun888/go-imap-async/imaplog"
)

// authPhase tracks where an AuthRequest is in its continuation protocol
// (spec §4.D common state: sasl-ir-enabled, client-response-emitted,
// sensitivity).
type authPhase int

const (
	authPhaseInitial authPhase = iota
	authPhaseResponseSent
	authPhaseAborted
)

// AuthRequest is the SASL authentication command family: AUTHENTICATE
// PLAIN / XOAUTH2 / OAUTHBEARER. It wraps a go-sasl Client for the
// mechanism-specific payload shape and layers the IMAP-side continuation
// protocol (SASL-IR branching, failure-challenge abort) on top, per spec
// §4.D.
type AuthRequest struct {
	BaseRequest

	typ      imap.CommandType
	mechName string
	logName  string
	user     string
	client   sasl.Client
	saslIR   bool

	pendingIR []byte
	phase     authPhase
	sensitive bool
}

func newAuthRequest(typ imap.CommandType, mechName, logName string, client sasl.Client, saslIR bool, user string) *AuthRequest {
	return &AuthRequest{
		typ:      typ,
		mechName: mechName,
		logName:  logName,
		client:   client,
		saslIR:   saslIR,
		user:     user,
	}
}

// NewAuthPlain builds an AUTHENTICATE PLAIN command (RFC 4616). authzid is
// the optional authorization identity; pass "" to authenticate as user.
func NewAuthPlain(authzid, user, pass string, saslIR bool) *AuthRequest {
	return newAuthRequest(
		imap.CommandTypeAuthenticatePlain, "PLAIN", "Plain",
		sasl.NewPlainClient(authzid, user, pass), saslIR, user,
	)
}

// NewAuthXOAuth2 builds an AUTHENTICATE XOAUTH2 command.
func NewAuthXOAuth2(user, token string, saslIR bool) *AuthRequest {
	return newAuthRequest(
		imap.CommandTypeAuthenticateXOAuth2, "XOAUTH2", "Xoauth2",
		sasl.NewXoauth2Client(user, token), saslIR, user,
	)
}

// NewAuthOAuthBearer builds an AUTHENTICATE OAUTHBEARER command (RFC 7628).
func NewAuthOAuthBearer(user, host string, port int, token string, saslIR bool) *AuthRequest {
	client := sasl.NewOAuthBearerClient(&sasl.OAuthBearerOptions{
		Username: user,
		Host:     host,
		Port:     port,
		Token:    token,
	})
	return newAuthRequest(
		imap.CommandTypeAuthenticateOAuthBearer, "OAUTHBEARER", "OauthBearer",
		client, saslIR, user,
	)
}

// CommandBytes emits the initial AUTHENTICATE line. With SASL-IR the
// client's initial response rides on the same line, base64-encoded, and
// the request becomes sensitive immediately; without it, the bare verb is
// sent and the initial response waits for the first "+" continuation.
func (r *AuthRequest) CommandBytes() ([]byte, error) {
	_, ir, err := r.client.Start()
	if err != nil {
		return nil, err
	}
	if r.saslIR {
		r.sensitive = true
		r.phase = authPhaseResponseSent
		payload := base64.StdEncoding.EncodeToString(ir)
		return []byte(fmt.Sprintf("AUTHENTICATE %s %s\r\n", r.mechName, payload)), nil
	}
	r.pendingIR = ir
	return []byte(fmt.Sprintf("AUTHENTICATE %s\r\n", r.mechName)), nil
}

// NextAfterContinuation handles the at-most-two server continuations this
// family sees: the deferred initial response (non-SASL-IR path), and a
// failure challenge arriving after the client's secret has already been
// sent, which this request must abort rather than answer (spec §4.D).
func (r *AuthRequest) NextAfterContinuation(line string, logger imaplog.Logger) ([]byte, error) {
	switch r.phase {
	case authPhaseInitial:
		if r.pendingIR == nil {
			return nil, &imap.Error{Kind: imap.ErrProtocolViolation}
		}
		payload := base64.StdEncoding.EncodeToString(r.pendingIR)
		r.pendingIR = nil
		r.sensitive = true
		r.phase = authPhaseResponseSent
		return []byte(payload + "\r\n"), nil

	case authPhaseResponseSent:
		challenge, decErr := base64.StdEncoding.DecodeString(line)
		if decErr != nil {
			return nil, &imap.Error{Kind: imap.ErrProtocolViolation, Cause: decErr}
		}
		// A second challenge after the client response means the server
		// rejected it. The mechanism's Next is still fed the challenge,
		// but its answer and error are discarded: the log line below uses
		// the decoded challenge itself, and the reply is always the abort.
		_, _ = r.client.Next(challenge)
		if logger != nil && logger.DebugEnabled() {
			logger.Debug(fmt.Sprintf("Auth%sCommand:server challenge:%s", r.logName, string(challenge)))
		}
		r.sensitive = false
		r.phase = authPhaseAborted
		return []byte("*\r\n"), nil

	default:
		return nil, &imap.Error{Kind: imap.ErrProtocolViolation}
	}
}

func (r *AuthRequest) CommandType() imap.CommandType { return r.typ }

func (r *AuthRequest) IsSensitive() bool { return r.sensitive }

func (r *AuthRequest) DebugLabel() string {
	return fmt.Sprintf("AUTHENTICATE %s DATA FOR USER:%s", r.mechName, r.user)
}

// Cleanup drops the request's hold on the SASL client and any buffered
// initial-response bytes. The underlying password/token lives inside the
// go-sasl client's closure and is released with it.
func (r *AuthRequest) Cleanup() {
	for i := range r.pendingIR {
		r.pendingIR[i] = 0
	}
	r.pendingIR = nil
	r.client = nil
}
