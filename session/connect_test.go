package session

import (
	"net"
	"testing"
	"time"

	imap "github.com/luhaoyun888/go-imap-async"
)

func TestConnectPromotesOnOKGreeting(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer serverConn.Close()

	go func() {
		serverConn.Write([]byte("* OK [CAPABILITY IMAP4rev1 IDLE SASL-IR] ready\r\n"))
	}()

	res, err := Connect(clientConn, Config{})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer res.Session.conn.Close()

	if res.Session.State() != imap.ConnStateNotAuthenticated {
		t.Errorf("State() = %v", res.Session.State())
	}
	if !res.Session.Caps().Has(imap.CapIdle) {
		t.Error("expected IDLE in the greeting's capability code")
	}
}

func TestConnectFailsWithoutOK(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer serverConn.Close()

	go func() {
		serverConn.Write([]byte("* BAD not ready\r\n"))
	}()

	_, err := Connect(clientConn, Config{})
	if err == nil {
		t.Fatal("expected an error")
	}
	imapErr, ok := err.(*imap.Error)
	if !ok || imapErr.Kind != imap.ErrConnectionFailedWithoutOK {
		t.Errorf("err = %v, want ErrConnectionFailedWithoutOK", err)
	}
}

func TestConnectReadIdleTimeout(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer serverConn.Close()
	defer clientConn.Close()

	_, err := Connect(clientConn, Config{ReadIdleTimeout: 20 * time.Millisecond})
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	imapErr, ok := err.(*imap.Error)
	if !ok || imapErr.Kind != imap.ErrConnectionFailedExceedIdleMax {
		t.Errorf("err = %v, want ErrConnectionFailedExceedIdleMax", err)
	}
}
