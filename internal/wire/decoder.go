package wire

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	imap "github.com/luhaoyun888/go-imap-async"
)

// ErrMalformedResponse is wrapped into every error DecodeResponse returns
// for a line that doesn't parse as a response; the session treats any such
// error as a protocol violation (spec §7).
var ErrMalformedResponse = errors.New("wire: malformed response line")

// Response is a single decoded response record: one tagged completion, one
// continuation request, or one untagged data/status response.
type Response struct {
	// IsContinuation is true for a "+ ..." line.
	IsContinuation bool
	// ContinuationText is the text following "+ " (only set when
	// IsContinuation).
	ContinuationText string

	// Tag is the response tag, or "" for an untagged ("*") response.
	// IsContinuation responses never set Tag.
	Tag string

	// HasNum/Num capture a leading numeric response ("4 EXISTS").
	HasNum bool
	Num    uint32

	// Keyword is the upper-cased response type: a status keyword
	// (OK/NO/BAD/BYE/PREAUTH) or a data keyword (CAPABILITY, EXISTS,
	// FLAGS, LIST, STATUS, SEARCH, NAMESPACE, ...).
	Keyword string

	// Code is the upper-cased bracketed response code, if any
	// (e.g. "CAPABILITY" from "[CAPABILITY IMAP4rev1 IDLE]").
	Code string
	// CodeArgs is the raw text inside the response code brackets after
	// the code name, not including the brackets.
	CodeArgs string

	// Text is the trailing human-readable text of a status response, or
	// the remainder of the line for data responses.
	Text string

	// Raw is the original line, without the trailing CRLF.
	Raw []byte
}

// IsStatusKeyword reports whether Keyword is one of the five status
// response types (RFC 3501 §7.1).
func (r *Response) IsStatusKeyword() bool {
	switch r.Keyword {
	case "OK", "NO", "BAD", "BYE", "PREAUTH":
		return true
	default:
		return false
	}
}

// StatusType returns Keyword as an imap.StatusResponseType; callers must
// check IsStatusKeyword first.
func (r *Response) StatusType() imap.StatusResponseType {
	return imap.StatusResponseType(r.Keyword)
}

// CapabilityTokens splits CodeArgs or Text (whichever holds the capability
// list) into individual capability tokens.
func (r *Response) CapabilityTokens() []string {
	text := r.CodeArgs
	if text == "" {
		text = r.Text
	}
	return strings.Fields(text)
}

// Decoder reads framed IMAP response lines off a bufio.Reader and turns
// them into Response records. It deliberately does not understand literal
// bodies ({N} byte blobs): none of the commands this module speaks
// (CAPABILITY, simple folder commands, AUTHENTICATE, IDLE, LOGOUT,
// COMPRESS) return literal-bearing untagged data in practice, and FETCH/
// APPEND (which do) are out of this module's scope.
type Decoder struct {
	r *bufio.Reader
}

// NewDecoder wraps r.
func NewDecoder(r *bufio.Reader) *Decoder {
	return &Decoder{r: r}
}

// ReadResponse reads and classifies exactly one response line.
func (d *Decoder) ReadResponse() (*Response, error) {
	line, err := d.r.ReadString('\n')
	if err != nil {
		return nil, err
	}
	raw := strings.TrimRight(line, "\r\n")
	if raw == "" {
		return nil, fmt.Errorf("%w: empty line", ErrMalformedResponse)
	}

	if raw[0] == '+' {
		text := strings.TrimPrefix(raw, "+")
		text = strings.TrimPrefix(text, " ")
		return &Response{IsContinuation: true, ContinuationText: text, Raw: []byte(raw)}, nil
	}

	fields := strings.SplitN(raw, " ", 2)
	tagTok := fields[0]
	var rest string
	if len(fields) == 2 {
		rest = fields[1]
	}

	resp := &Response{Raw: []byte(raw)}
	if tagTok != "*" {
		resp.Tag = tagTok
	}

	if rest == "" {
		return nil, fmt.Errorf("%w: missing response type in %q", ErrMalformedResponse, raw)
	}

	// Leading numeric response: "<n> EXISTS" / "RECENT" / "EXPUNGE".
	restFields := strings.SplitN(rest, " ", 2)
	if n, convErr := strconv.ParseUint(restFields[0], 10, 32); convErr == nil {
		resp.HasNum = true
		resp.Num = uint32(n)
		if len(restFields) < 2 {
			return nil, fmt.Errorf("%w: numeric response with no keyword in %q", ErrMalformedResponse, raw)
		}
		rest = restFields[1]
		restFields = strings.SplitN(rest, " ", 2)
	}

	resp.Keyword = strings.ToUpper(restFields[0])
	if len(restFields) == 2 {
		rest = restFields[1]
	} else {
		rest = ""
	}

	if resp.IsStatusKeyword() {
		if strings.HasPrefix(rest, "[") {
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated response code in %q", ErrMalformedResponse, raw)
			}
			inner := rest[1:end]
			codeFields := strings.SplitN(inner, " ", 2)
			resp.Code = strings.ToUpper(codeFields[0])
			if len(codeFields) == 2 {
				resp.CodeArgs = codeFields[1]
			}
			rest = strings.TrimPrefix(rest[end+1:], " ")
		}
		resp.Text = rest
	} else {
		resp.Text = rest
	}

	return resp, nil
}
