package core

import (
	"errors"
	"net/netip"
	"time"

	"github.com/dkeye/lanhub/internal/domain"
)

var (
	ErrBackpressure = errors.New("send queue full")
	ErrConnClosed   = errors.New("connection closed")
)

// Frame is one fully encoded, length-prefixed control frame ready for the wire.
type Frame []byte

// ControlConnection abstracts the per-client control transport.
// Owned by the adapter; the adapter must Close() it.
// TrySend must never block on the network: writes to one socket are
// serialized by the adapter so frames never interleave.
type ControlConnection interface {
	TrySend(Frame) error
	Close()
	RemoteAddr() netip.AddrPort
}

// Recipient is a registry snapshot entry used for control fan-out.
type Recipient struct {
	Identity domain.Identity
	Conn     ControlConnection
}

// MediaTarget is a registry snapshot entry used for media fan-out.
type MediaTarget struct {
	Identity domain.Identity
	Addr     netip.AddrPort
}

// SessionDTO is a read-only view for APIs (no transport fields).
type SessionDTO struct {
	ID       SessionID       `json:"id"`
	Username domain.Identity `json:"username"`
	Remote   string          `json:"remote"`
	Video    string          `json:"video,omitempty"`
	Audio    string          `json:"audio,omitempty"`
	JoinedAt time.Time       `json:"joined_at"`
}
