package core

import (
	"net/netip"
	"time"

	"github.com/dkeye/lanhub/internal/domain"
	"github.com/google/uuid"
)

type SessionID string

func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}

// Session binds an identity to its live control connection and media endpoints.
// Endpoints are invalid (zero) until registered.
type Session struct {
	ID       SessionID
	Identity domain.Identity
	Conn     ControlConnection
	Video    netip.AddrPort
	Audio    netip.AddrPort
	JoinedAt time.Time
}

func (s *Session) Endpoint(kind domain.MediaKind) netip.AddrPort {
	if kind == domain.MediaAudio {
		return s.Audio
	}
	return s.Video
}

func (s *Session) SetEndpoint(kind domain.MediaKind, addr netip.AddrPort) {
	if kind == domain.MediaAudio {
		s.Audio = addr
		return
	}
	s.Video = addr
}

func (s *Session) DTO() SessionDTO {
	dto := SessionDTO{
		ID:       s.ID,
		Username: s.Identity,
		JoinedAt: s.JoinedAt,
	}
	if s.Conn != nil {
		if ra := s.Conn.RemoteAddr(); ra.IsValid() {
			dto.Remote = ra.String()
		}
	}
	if s.Video.IsValid() {
		dto.Video = s.Video.String()
	}
	if s.Audio.IsValid() {
		dto.Audio = s.Audio.String()
	}
	return dto
}
