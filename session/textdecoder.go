package session

import (
	"mime"

	"github.com/emersion/go-message/charset"
)

// NewMIMETextDecoder returns a Config.TextDecoder that decodes RFC 2047
// encoded-words in resp-text, using go-message's charset registry to
// handle non-UTF-8 charsets still sent by older servers. Grounded on the
// teacher's Options.WordDecoder/decodeText pattern (spec §8 DOMAIN STACK).
func NewMIMETextDecoder() func(string) (string, error) {
	wd := &mime.WordDecoder{CharsetReader: charset.Reader}
	return func(s string) (string, error) {
		return wd.DecodeHeader(s)
	}
}
