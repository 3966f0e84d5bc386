package session

import (
	"bufio"
	"errors"
	"io"
	"time"

	imap "github.com/luhaoyun888/go-imap-async"
	"github.com/luhaoyun888/go-imap-async/internal/wire"
)

// ConnectResult is what a successful Connect produces (spec §4.G): the
// promoted session plus the greeting that authorized the promotion.
type ConnectResult struct {
	Session  *Session
	Greeting *imap.StatusResponse
}

// Connect is the one-shot greeting negotiator (spec §4.G): it reads
// exactly one line off conn, and if it is an untagged OK, promotes conn
// into a running Session. It is not itself a Session — there is no
// pending entry, no tag generator, nothing to release but the one read it
// performed — so it is a plain function rather than a type with a
// lifecycle of its own.
func Connect(conn Transport, cfg Config) (*ConnectResult, error) {
	if cfg.ReadIdleTimeout > 0 {
		resultCh := make(chan *ConnectResult, 1)
		errCh := make(chan error, 1)
		go func() {
			res, err := connect(conn, cfg)
			if err != nil {
				errCh <- err
				return
			}
			resultCh <- res
		}()
		timer := time.NewTimer(cfg.ReadIdleTimeout)
		defer timer.Stop()
		select {
		case res := <-resultCh:
			return res, nil
		case err := <-errCh:
			return nil, err
		case <-timer.C:
			conn.Close()
			return nil, &imap.Error{Kind: imap.ErrConnectionFailedExceedIdleMax, SessionID: cfg.SessionID}
		}
	}
	return connect(conn, cfg)
}

func connect(conn Transport, cfg Config) (*ConnectResult, error) {
	br := bufio.NewReader(conn)
	dec := wire.NewDecoder(br)

	resp, err := dec.ReadResponse()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &imap.Error{Kind: imap.ErrConnectionInactive, SessionID: cfg.SessionID}
		}
		return nil, &imap.Error{Kind: imap.ErrConnectionFailedException, SessionID: cfg.SessionID, Cause: err}
	}

	if resp.Tag != "" || resp.Keyword != "OK" {
		return nil, &imap.Error{Kind: imap.ErrConnectionFailedWithoutOK, SessionID: cfg.SessionID}
	}

	greeting := &imap.StatusResponse{
		Type: imap.StatusResponseTypeOK,
		Code: imap.ResponseCode(resp.Code),
		Text: resp.Text,
	}

	s := New(conn, cfg)
	s.br = br
	s.dec = dec
	s.state = imap.ConnStateNotAuthenticated
	if resp.Code == "CAPABILITY" {
		s.caps = imap.ParseCapabilities(resp.CapabilityTokens())
	}

	return &ConnectResult{Session: s, Greeting: greeting}, nil
}
