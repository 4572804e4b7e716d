package orch

import (
	"errors"
	"fmt"

	"github.com/dkeye/lanhub/internal/app"
	"github.com/dkeye/lanhub/internal/core"
	"github.com/dkeye/lanhub/internal/domain"
	"github.com/dkeye/lanhub/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Join registers s, greets it and announces it to everyone else.
// On a duplicate identity the caller receives a system error and nothing
// else changes.
func (o *Orchestrator) Join(s *core.Session) error {
	err := o.Registry.Register(s, func(users []domain.Identity) {
		o.SendConn(s.Conn, protocol.Welcome{
			Type:    protocol.TypeWelcome,
			Message: fmt.Sprintf("Welcome to LAN Communication Server, %s!", s.Identity),
			Users:   users,
		})
	})
	if errors.Is(err, app.ErrDuplicateIdentity) {
		o.SendConn(s.Conn, protocol.NewSystem(protocol.LevelError, "Username '%s' is already taken", s.Identity))
		return err
	}
	if err != nil {
		return err
	}

	o.presMu.Lock()
	if holder, ok := o.Presenter.Holder(); ok {
		o.SendTo(s.Identity, protocol.Presentation{Type: protocol.TypePresentationStarted, Username: holder})
	}
	o.presMu.Unlock()

	joined := protocol.Presence{
		Type:     protocol.TypeUserJoined,
		Username: s.Identity,
		Users:    o.Registry.Snapshot(),
	}
	o.Broadcast(joined, s.Identity)
	o.publish(joined)
	return nil
}

// Leave tears down a registered session. A departing presenter is revoked
// together with the unregister, and presentation_stopped goes out before
// user_left.
func (o *Orchestrator) Leave(s *core.Session) {
	o.presMu.Lock()
	if !o.Registry.Unregister(s.Identity, s.ID) {
		o.presMu.Unlock()
		return
	}
	if o.Presenter.Revoke(s.Identity) {
		stopped := protocol.Presentation{Type: protocol.TypePresentationStopped, Username: s.Identity}
		o.Broadcast(stopped)
		o.publish(stopped)
	}
	o.presMu.Unlock()

	left := protocol.Presence{
		Type:     protocol.TypeUserLeft,
		Username: s.Identity,
		Users:    o.Registry.Snapshot(),
	}
	o.Broadcast(left)
	o.publish(left)
	log.Info().Str("module", "orch").Str("username", string(s.Identity)).Msg("session left")
}
