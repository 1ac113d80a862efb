package chat

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"
)

// recordingConn is a net.Conn that keeps everything written to it.
type recordingConn struct {
	mu         sync.Mutex
	buf        bytes.Buffer
	closed     bool
	failWrites bool
}

func (c *recordingConn) Read([]byte) (int, error) { return 0, io.EOF }

func (c *recordingConn) Write(b []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, net.ErrClosed
	}
	if c.failWrites {
		return 0, errors.New("broken pipe")
	}
	return c.buf.Write(b)
}

func (c *recordingConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *recordingConn) LocalAddr() net.Addr  { return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 6000} }
func (c *recordingConn) RemoteAddr() net.Addr { return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 40000} }

func (c *recordingConn) SetDeadline(time.Time) error      { return nil }
func (c *recordingConn) SetReadDeadline(time.Time) error  { return nil }
func (c *recordingConn) SetWriteDeadline(time.Time) error { return nil }

func (c *recordingConn) lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	text := strings.TrimSuffix(c.buf.String(), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func (c *recordingConn) reset() {
	c.mu.Lock()
	c.buf.Reset()
	c.mu.Unlock()
}

func (c *recordingConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func newTestPeer() (*peer, *recordingConn) {
	conn := &recordingConn{}
	return newPeer(conn, 0), conn
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testClient struct {
	peer *peer
	conn *recordingConn
	sess *Session
}

// joinAll registers names in order and clears the join notices.
func joinAll(router *Router, names ...string) []*testClient {
	clients := make([]*testClient, 0, len(names))
	for _, name := range names {
		p, conn := newTestPeer()
		clients = append(clients, &testClient{peer: p, conn: conn, sess: router.Join(p, name)})
	}
	for _, c := range clients {
		c.conn.reset()
	}
	return clients
}
