package command

import "testing"

type captureLogger struct {
	enabled  bool
	messages []string
}

func (l *captureLogger) DebugEnabled() bool { return l.enabled }

func (l *captureLogger) Debug(msg string, args ...any) {
	l.messages = append(l.messages, msg)
}

const oauthBearerPayload = "bixhPXVzZXJAZXhhbXBsZS5jb20sAWhvc3Q9c2VydmVyLmV4YW1wbGUuY29tAXBvcnQ9OTkzAWF1dGg9QmVhcmVyIHNlbGZkcml2aW5nAQE="

func TestAuthOAuthBearerWithSASLIR(t *testing.T) {
	req := NewAuthOAuthBearer("user@example.com", "server.example.com", 993, "selfdriving", true)

	b, err := req.CommandBytes()
	if err != nil {
		t.Fatalf("CommandBytes: %v", err)
	}
	want := "AUTHENTICATE OAUTHBEARER " + oauthBearerPayload + "\r\n"
	if string(b) != want {
		t.Errorf("CommandBytes = %q, want %q", b, want)
	}
	if !req.IsSensitive() {
		t.Error("expected sensitive after emitting the initial response")
	}
	wantLabel := "AUTHENTICATE OAUTHBEARER DATA FOR USER:user@example.com"
	if got := req.DebugLabel(); got != wantLabel {
		t.Errorf("DebugLabel = %q, want %q", got, wantLabel)
	}
}

func TestAuthOAuthBearerWithoutSASLIR(t *testing.T) {
	req := NewAuthOAuthBearer("user@example.com", "server.example.com", 993, "selfdriving", false)

	b, err := req.CommandBytes()
	if err != nil {
		t.Fatalf("CommandBytes: %v", err)
	}
	if want := "AUTHENTICATE OAUTHBEARER\r\n"; string(b) != want {
		t.Errorf("CommandBytes = %q, want %q", b, want)
	}
	if req.IsSensitive() {
		t.Error("must not be sensitive before the initial response is sent")
	}

	next, err := req.NextAfterContinuation("", nil)
	if err != nil {
		t.Fatalf("NextAfterContinuation: %v", err)
	}
	if want := oauthBearerPayload + "\r\n"; string(next) != want {
		t.Errorf("continuation frame = %q, want %q", next, want)
	}
	if !req.IsSensitive() {
		t.Error("expected sensitive after emitting the initial response")
	}
}

func TestAuthOAuthBearerFailureChallengeAborts(t *testing.T) {
	req := NewAuthOAuthBearer("user@example.com", "server.example.com", 993, "selfdriving", true)
	if _, err := req.CommandBytes(); err != nil {
		t.Fatalf("CommandBytes: %v", err)
	}

	challenge := "eyJzdGF0dXMiOiI0MDAiLCJzY2hlbWVzIjoiQmVhcmVyIiwic2NvcGUiOiJodHRwczovL21haWwuZ29vZ2xlLmNvbS8ifQ=="
	logger := &captureLogger{enabled: true}
	next, err := req.NextAfterContinuation(challenge, logger)
	if err != nil {
		t.Fatalf("NextAfterContinuation: %v", err)
	}
	if want := "*\r\n"; string(next) != want {
		t.Errorf("abort frame = %q, want %q", next, want)
	}
	if req.IsSensitive() {
		t.Error("sensitivity must clear once the secret frame is done")
	}

	wantLog := `AuthOauthBearerCommand:server challenge:{"status":"400","schemes":"Bearer","scope":"https://mail.google.com/"}`
	if len(logger.messages) != 1 || logger.messages[0] != wantLog {
		t.Errorf("logged messages = %v, want [%q]", logger.messages, wantLog)
	}

	if _, err := req.NextAfterContinuation("anything", logger); err == nil {
		t.Error("a second post-abort continuation must fail as a protocol violation")
	}
}

func TestAuthPlainPayload(t *testing.T) {
	req := NewAuthPlain("", "user@example.com", "s3cret", true)
	b, err := req.CommandBytes()
	if err != nil {
		t.Fatalf("CommandBytes: %v", err)
	}
	if got, want := string(b), "AUTHENTICATE PLAIN "; len(got) <= len(want) || got[:len(want)] != want {
		t.Errorf("CommandBytes = %q, want prefix %q", got, want)
	}
	if !req.IsSensitive() {
		t.Error("PLAIN with SASL-IR must be sensitive immediately")
	}
}

func TestAuthXOAuth2NonIRWaitsForContinuation(t *testing.T) {
	req := NewAuthXOAuth2("user@example.com", "tok", false)
	b, err := req.CommandBytes()
	if err != nil {
		t.Fatalf("CommandBytes: %v", err)
	}
	if want := "AUTHENTICATE XOAUTH2\r\n"; string(b) != want {
		t.Errorf("CommandBytes = %q, want %q", b, want)
	}
	if req.IsSensitive() {
		t.Error("must not be sensitive before the initial response is sent")
	}
}
