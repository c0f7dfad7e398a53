package remote

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/DjordjeVuckovic/webbench/internal/harness"
)

// Dialer opens automation sessions against a forwarded marionette port.
// Only the handful of commands the harness needs are spoken; this is not a
// general automation client.
type Dialer struct {
	Addr    string
	Timeout time.Duration
}

func NewDialer(addr string) *Dialer {
	return &Dialer{Addr: addr, Timeout: 30 * time.Second}
}

func (d *Dialer) Dial() (harness.Session, error) {
	conn, err := net.DialTimeout("tcp", d.Addr, d.Timeout)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", d.Addr, err)
	}

	s := &session{conn: conn, r: bufio.NewReader(conn)}

	// The server greets with a handshake frame on connect.
	if _, err := s.readFrame(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("read handshake: %w", err)
	}
	if _, err := s.command("WebDriver:NewSession", map[string]any{}); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("new session: %w", err)
	}
	return s, nil
}

// session speaks the length-prefixed JSON framing: each frame is
// "<byte length>:<json>", commands are [0, id, name, params] and responses
// [1, id, error, result].
type session struct {
	conn   net.Conn
	r      *bufio.Reader
	nextID int
}

func (s *session) Navigate(url string) error {
	if _, err := s.command("WebDriver:Navigate", map[string]any{"url": url}); err != nil {
		return fmt.Errorf("navigate: %w", err)
	}
	return nil
}

func (s *session) Close() error {
	_, cmdErr := s.command("WebDriver:DeleteSession", map[string]any{})
	closeErr := s.conn.Close()
	if cmdErr != nil {
		return fmt.Errorf("delete session: %w", cmdErr)
	}
	return closeErr
}

func (s *session) command(name string, params map[string]any) (json.RawMessage, error) {
	s.nextID++
	frame, err := json.Marshal([]any{0, s.nextID, name, params})
	if err != nil {
		return nil, err
	}
	if _, err := fmt.Fprintf(s.conn, "%d:%s", len(frame), frame); err != nil {
		return nil, fmt.Errorf("write %s: %w", name, err)
	}

	body, err := s.readFrame()
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", name, err)
	}

	var msg []json.RawMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", name, err)
	}
	if len(msg) != 4 {
		return nil, fmt.Errorf("%s response has %d elements", name, len(msg))
	}
	if string(msg[2]) != "null" {
		return nil, fmt.Errorf("%s failed: %s", name, msg[2])
	}
	return msg[3], nil
}

func (s *session) readFrame() ([]byte, error) {
	prefix, err := s.r.ReadString(':')
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(prefix[:len(prefix)-1])
	if err != nil {
		return nil, fmt.Errorf("bad frame length %q", prefix)
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(s.r, body); err != nil {
		return nil, err
	}
	return body, nil
}
