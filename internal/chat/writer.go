package chat

import (
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// peer owns the outbound side of one connection. Writes from different
// handlers are serialized, the socket is closed exactly once, and any write
// after close fails with ErrPeerClosed instead of touching the socket.
type peer struct {
	conn         net.Conn
	writeTimeout time.Duration

	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
	closed    atomic.Bool
}

func newPeer(conn net.Conn, writeTimeout time.Duration) *peer {
	return &peer{conn: conn, writeTimeout: writeTimeout}
}

// writeLine blocks until the line is written. A failed write closes the peer.
func (p *peer) writeLine(line string) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	if p.closed.Load() {
		return ErrPeerClosed
	}
	if p.writeTimeout > 0 {
		_ = p.conn.SetWriteDeadline(time.Now().Add(p.writeTimeout))
	}
	if _, err := p.conn.Write(frame(line)); err != nil {
		_ = p.Close()
		return err
	}
	return nil
}

// Close does not wait for an in-flight write; closing the socket unblocks it.
func (p *peer) Close() error {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		p.closeErr = p.conn.Close()
	})
	return p.closeErr
}

func (p *peer) isClosed() bool {
	return p.closed.Load()
}

func (p *peer) remoteAddr() string {
	if addr := p.conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}
