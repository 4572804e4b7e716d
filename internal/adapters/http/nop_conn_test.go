package http

import (
	"net/netip"

	"github.com/dkeye/lanhub/internal/core"
)

type nopConn struct{}

func (nopConn) TrySend(core.Frame) error { return nil }

func (nopConn) Close() {}

func (nopConn) RemoteAddr() netip.AddrPort { return netip.AddrPort{} }
