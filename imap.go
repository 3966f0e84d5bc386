// Package imap holds the types shared by every other package in this
// module: connection state, capability sets, status responses, and the
// error-kind taxonomy the session surfaces to callers.
//
// IMAP4rev1 is defined in RFC 3501. The optional extensions this client
// speaks (IDLE, SASL-IR, COMPRESS=DEFLATE, AUTH=PLAIN/XOAUTH2/OAUTHBEARER)
// are cited next to the code that implements them.
package imap

import "fmt"

// ConnState describes the lifecycle state of a Session.
type ConnState int

const (
	ConnStateNone             ConnState = iota // before the greeting
	ConnStateNotAuthenticated                  // greeting received, not logged in
	ConnStateAuthenticated                     // logged in, no mailbox selected
	ConnStateSelected                          // a mailbox is open
	ConnStateLogout                            // LOGOUT sent or connection torn down
)

// String implements fmt.Stringer.
func (state ConnState) String() string {
	switch state {
	case ConnStateNone:
		return "none"
	case ConnStateNotAuthenticated:
		return "not authenticated"
	case ConnStateAuthenticated:
		return "authenticated"
	case ConnStateSelected:
		return "selected"
	case ConnStateLogout:
		return "logout"
	default:
		panic(fmt.Errorf("imap: unknown connection state %v", int(state)))
	}
}
