package wire

import "testing"

func TestEncodeMailbox(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"INBOX", "INBOX"},
		{"Drafts", "Drafts"},
		{"A&B", "A&-B"},
		{"测试", "&bUuL1Q-"},
	}
	for _, tc := range tests {
		if got := EncodeMailbox(tc.name); got != tc.want {
			t.Errorf("EncodeMailbox(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestDecodeMailboxRoundTrip(t *testing.T) {
	names := []string{"INBOX", "A&B", "测试", "日本語/Trash"}
	for _, name := range names {
		encoded := EncodeMailbox(name)
		decoded, err := DecodeMailbox(encoded)
		if err != nil {
			t.Fatalf("DecodeMailbox(%q): %v", encoded, err)
		}
		if decoded != name {
			t.Errorf("round trip %q -> %q -> %q", name, encoded, decoded)
		}
	}
}

func TestDecodeMailboxInvalid(t *testing.T) {
	if _, err := DecodeMailbox("&abc"); err == nil {
		t.Error("expected error decoding unterminated shift sequence")
	}
}
