package control

import (
	"net"
	"net/netip"
	"sync"
	"time"

	"github.com/dkeye/lanhub/internal/core"
	"github.com/rs/zerolog/log"
)

// TCPConn is the control transport of one client. Frames are queued by
// TrySend and written by a single writePump, so frames never interleave.
type TCPConn struct {
	conn         net.Conn
	send         chan core.Frame
	writeTimeout time.Duration
	remote       netip.AddrPort

	mu     sync.RWMutex
	closed bool
}

func NewTCPConn(conn net.Conn, queue int, writeTimeout time.Duration) *TCPConn {
	if queue <= 0 {
		queue = 256
	}
	c := &TCPConn{
		conn:         conn,
		send:         make(chan core.Frame, queue),
		writeTimeout: writeTimeout,
	}
	if addr, ok := conn.RemoteAddr().(*net.TCPAddr); ok {
		c.remote = addr.AddrPort()
	}
	return c
}

func (c *TCPConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

// Close stops accepting frames and closes the socket, unblocking any reader.
func (c *TCPConn) Close() {
	c.stop()
	_ = c.conn.Close()
}

// Shutdown stops accepting frames; writePump flushes the queue and then
// closes the socket.
func (c *TCPConn) Shutdown() {
	c.stop()
}

func (c *TCPConn) stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *TCPConn) RemoteAddr() netip.AddrPort {
	return c.remote
}

// writeChunk is the unit of write progress; writeTimeout bounds each chunk
// rather than the whole frame.
const writeChunk = 64 << 10

func (c *TCPConn) writePump() {
	defer func() { _ = c.conn.Close() }()
	for data := range c.send {
		if err := c.write(data); err != nil {
			log.Debug().Err(err).Str("module", "control").Str("remote", c.remote.String()).Msg("writePump write error")
			c.Close()
			return
		}
	}
}

func (c *TCPConn) write(data []byte) error {
	for len(data) > 0 {
		n := min(len(data), writeChunk)
		if c.writeTimeout > 0 {
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
				return err
			}
		}
		if _, err := c.conn.Write(data[:n]); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}
