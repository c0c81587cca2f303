package testutil

import (
	"fmt"
	"net"
	"strings"
	"testing"
	"time"
)

// TelnetClient drives the escape-room prompt loop over a raw TCP connection
// in integration tests: read until the prompt, send a line, repeat.
type TelnetClient struct {
	conn net.Conn
	t    *testing.T
}

// NewTelnetClient dials the given address and returns a test client. The
// connection is closed on test cleanup.
//
// Precondition: addr must be a "host:port" string with a listening server.
func NewTelnetClient(t *testing.T, addr string) *TelnetClient {
	t.Helper()
	start := time.Now()

	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("connecting to %s: %v [%s]", addr, err, time.Since(start))
	}
	t.Cleanup(func() {
		conn.Close()
	})

	t.Logf("telnet client connected to %s [%s]", addr, time.Since(start))
	return &TelnetClient{conn: conn, t: t}
}

// ReadUntil reads server output until substr appears or the timeout expires,
// returning everything read including the match. Color codes are left in
// place; strip them before asserting on text.
//
// Precondition: substr must be non-empty.
func (c *TelnetClient) ReadUntil(substr string, timeout time.Duration) string {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))

	var buf strings.Builder
	tmp := make([]byte, 1024)
	for {
		n, err := c.conn.Read(tmp)
		if n > 0 {
			buf.Write(tmp[:n])
			if strings.Contains(buf.String(), substr) {
				return buf.String()
			}
		}
		if err != nil {
			c.t.Fatalf("reading until %q: got %q, error: %v", substr, buf.String(), err)
		}
	}
}

// Send writes one player line to the server, appending the Telnet \r\n.
//
// Precondition: text should not contain trailing newline characters.
func (c *TelnetClient) Send(text string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := fmt.Fprintf(c.conn, "%s\r\n", text); err != nil {
		c.t.Fatalf("sending %q: %v", text, err)
	}
}
