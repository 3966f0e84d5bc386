package wire

import "strings"

// atomSpecials are the bytes RFC 3501 §9 excludes from a bare atom:
// '(', ')', '{', SP, control characters, list-wildcards ('%', '*'), and
// quoted-specials ('"', '\').
func isAtomSafeByte(b byte) bool {
	switch {
	case b < 0x20 || b == 0x7f:
		return false
	case b == '(' || b == ')' || b == '{' || b == ' ':
		return false
	case b == '%' || b == '*':
		return false
	case b == '"' || b == '\\':
		return false
	case b > 0x7e:
		return false
	default:
		return true
	}
}

// IsAtomSafe reports whether s can be sent as a bare IMAP atom without
// quoting or literal framing.
func IsAtomSafe(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isAtomSafeByte(s[i]) {
			return false
		}
	}
	return true
}

// QuoteString renders s as an IMAP quoted string, backslash-escaping '\'
// and '"'. Callers must not pass strings containing CR or LF; none of the
// arguments this module quotes (mailbox names, after modified UTF-7;
// usernames; passwords) legitimately contain them.
func QuoteString(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' || c == '"' {
			sb.WriteByte('\\')
		}
		sb.WriteByte(c)
	}
	sb.WriteByte('"')
	return sb.String()
}

// EncodeArg encodes a single command argument per spec §4.C: pass through
// verbatim if it's already atom-safe, otherwise quote it.
func EncodeArg(s string) string {
	if IsAtomSafe(s) {
		return s
	}
	return QuoteString(s)
}

// EncodeMailboxArg encodes a mailbox name for use as a command argument:
// modified UTF-7 first (component E), then atom-or-quote encoding, since
// the modified UTF-7 output may still contain SP or other atom-unsafe
// bytes (e.g. a literal space in the original name).
func EncodeMailboxArg(name string) string {
	return EncodeArg(EncodeMailbox(name))
}
