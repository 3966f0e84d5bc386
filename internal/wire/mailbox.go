// Package wire implements the line-level encoding and decoding this module
// needs to talk IMAP4rev1: atom/quoted-string argument encoding, the
// modified UTF-7 mailbox codec (RFC 3501 §5.1.3), and a decoder that turns
// raw response lines into classified records for the session state machine.
//
// This package is the "codec that frames raw bytes into IMAP response
// records" the top-level spec names as an external collaborator — it is
// kept internal because nothing outside this module should depend on its
// shape, not because its job is unimportant.
package wire

import (
	"errors"
	"strings"
	"unicode/utf16"

	"encoding/base64"
)

// modifiedBase64 is the RFC 3501 §5.1.3 base64 alphabet: standard base64
// with '/' replaced by ',' and no padding.
var modifiedBase64 = base64.NewEncoding(
	"ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+,",
).WithPadding(base64.NoPadding)

// EncodeMailbox encodes a mailbox name using modified UTF-7: ASCII
// printable characters other than '&' pass through verbatim, '&' becomes
// "&-", and every other run of characters is UTF-16BE-encoded, base64'd
// with the modified alphabet, and wrapped in "&...-".
func EncodeMailbox(name string) string {
	var out strings.Builder
	var pending []uint16

	flush := func() {
		if len(pending) == 0 {
			return
		}
		buf := make([]byte, 0, len(pending)*2)
		for _, u := range pending {
			buf = append(buf, byte(u>>8), byte(u))
		}
		out.WriteByte('&')
		out.WriteString(modifiedBase64.EncodeToString(buf))
		out.WriteByte('-')
		pending = pending[:0]
	}

	for _, r := range name {
		switch {
		case r == '&':
			flush()
			out.WriteString("&-")
		case r >= 0x20 && r <= 0x7e:
			flush()
			out.WriteRune(r)
		default:
			pending = append(pending, utf16.Encode([]rune{r})...)
		}
	}
	flush()
	return out.String()
}

// ErrInvalidMailboxEncoding is returned by DecodeMailbox when the input is
// not well-formed modified UTF-7.
var ErrInvalidMailboxEncoding = errors.New("wire: invalid modified UTF-7 mailbox encoding")

// DecodeMailbox reverses EncodeMailbox.
func DecodeMailbox(encoded string) (string, error) {
	var out strings.Builder
	i := 0
	for i < len(encoded) {
		c := encoded[i]
		if c != '&' {
			out.WriteByte(c)
			i++
			continue
		}

		// c == '&': either a literal "&-" or a shifted base64 run
		// terminated by '-'.
		if i+1 < len(encoded) && encoded[i+1] == '-' {
			out.WriteByte('&')
			i += 2
			continue
		}

		end := strings.IndexByte(encoded[i+1:], '-')
		if end < 0 {
			return "", ErrInvalidMailboxEncoding
		}
		end += i + 1

		raw, err := modifiedBase64.DecodeString(encoded[i+1 : end])
		if err != nil || len(raw)%2 != 0 {
			return "", ErrInvalidMailboxEncoding
		}
		units := make([]uint16, len(raw)/2)
		for j := range units {
			units[j] = uint16(raw[2*j])<<8 | uint16(raw[2*j+1])
		}
		out.WriteString(string(utf16.Decode(units)))
		i = end + 1
	}
	return out.String(), nil
}
