package imap

import "strings"

// Well-known capability names. See
// https://www.iana.org/assignments/imap-capabilities/ for the registry.
//
// These are process-wide read-only constants (design note §9): there is
// nothing session-scoped about a capability name, so they are package-level
// values rather than fields on some registry object.
const (
	CapIMAP4rev1 = "IMAP4REV1" // RFC 3501
	CapIdle      = "IDLE"      // RFC 2177
	CapSASLIR    = "SASL-IR"   // RFC 4959
	CapStartTLS  = "STARTTLS"  // RFC 3501 §6.2.1
	CapCompress  = "COMPRESS"  // RFC 4978; parameter "DEFLATE"
	CapAuth      = "AUTH"      // parameterized by mechanism, e.g. AUTH=PLAIN
)

// CapSet is a capability set: an upper-cased capability name mapped to the
// ordered list of parameters it carries.
//
// Most capability tokens (e.g. "IDLE") carry no parameter; some
// (e.g. "AUTH=PLAIN", "AUTH=XOAUTH2") carry one. Tokens sharing a name
// before the first "=" contribute their parameters to the same entry, so
// CapSet.Params("AUTH") lists every advertised SASL mechanism.
//
// A CapSet is built once from the server's CAPABILITY response and is
// immutable for the rest of its life; the session replaces it wholesale
// on refresh rather than mutating it in place.
type CapSet map[string][]string

// ParseCapabilities builds a CapSet from the raw capability tokens of a
// CAPABILITY response or response code (already split on space).
func ParseCapabilities(tokens []string) CapSet {
	set := make(CapSet, len(tokens))
	for _, tok := range tokens {
		name, param := splitCapToken(tok)
		if _, ok := set[name]; !ok {
			set[name] = nil
		}
		if param != "" {
			set[name] = append(set[name], param)
		}
	}
	return set
}

func splitCapToken(tok string) (name, param string) {
	tok = strings.ToUpper(tok)
	if i := strings.IndexByte(tok, '='); i >= 0 {
		return tok[:i], tok[i+1:]
	}
	return tok, ""
}

// Has reports whether name is present in the set, case-insensitively.
func (set CapSet) Has(name string) bool {
	if set == nil {
		return false
	}
	_, ok := set[strings.ToUpper(name)]
	return ok
}

// Params returns the ordered parameter list advertised for name, or nil if
// name is absent or carries no parameters.
func (set CapSet) Params(name string) []string {
	if set == nil {
		return nil
	}
	return set[strings.ToUpper(name)]
}

// AuthMechanisms returns the SASL mechanism names advertised via AUTH=...
// capability tokens, in the order the server listed them.
func (set CapSet) AuthMechanisms() []string {
	return set.Params(CapAuth)
}
