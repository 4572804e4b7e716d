package app

import (
	"net/netip"
	"sync"

	"github.com/dkeye/lanhub/internal/core"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	closed bool
}

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *fakeConn) RemoteAddr() netip.AddrPort {
	return netip.MustParseAddrPort("192.168.1.10:40000")
}
