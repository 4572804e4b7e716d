package orch

import (
	"errors"

	"github.com/dkeye/lanhub/internal/app"
	"github.com/dkeye/lanhub/internal/core"
	"github.com/dkeye/lanhub/internal/domain"
	"github.com/dkeye/lanhub/internal/protocol"
	"github.com/rs/zerolog/log"
)

func encode(v any) (core.Frame, bool) {
	frame, err := protocol.Marshal(v)
	if err != nil {
		log.Error().Str("module", "orch").Err(err).Msg("encode failed")
		return nil, false
	}
	return frame, true
}

// SendConn delivers v to a connection that may not be registered yet.
func (o *Orchestrator) SendConn(conn core.ControlConnection, v any) {
	frame, ok := encode(v)
	if !ok {
		return
	}
	if err := conn.TrySend(frame); err != nil {
		log.Debug().Str("module", "orch").Err(err).Msg("unicast dropped")
	}
}

// SendTo delivers v to one registered identity.
func (o *Orchestrator) SendTo(id domain.Identity, v any) {
	o.BroadcastTo(v, id)
}

// Broadcast delivers v to every registered identity except exclude.
func (o *Orchestrator) Broadcast(v any, exclude ...domain.Identity) {
	frame, ok := encode(v)
	if !ok {
		return
	}
	o.deliver(o.Registry.Recipients(exclude...), frame)
}

// BroadcastTo delivers v to the listed identities only.
func (o *Orchestrator) BroadcastTo(v any, ids ...domain.Identity) {
	frame, ok := encode(v)
	if !ok {
		return
	}
	o.deliver(o.Registry.RecipientsOf(ids...), frame)
}

// deliver runs with no component lock held. A failed send only affects
// its own recipient.
func (o *Orchestrator) deliver(recipients []core.Recipient, frame core.Frame) {
	for _, r := range recipients {
		err := r.Conn.TrySend(frame)
		if err == nil {
			continue
		}
		if !errors.Is(err, core.ErrBackpressure) || o.Policy == nil {
			log.Debug().Str("module", "orch").Str("username", string(r.Identity)).Err(err).Msg("send failed")
			continue
		}
		switch o.Policy.OnBackPressure(r.Identity) {
		case app.KickMember:
			log.Warn().Str("module", "orch").Str("username", string(r.Identity)).Msg("kicking slow client")
			r.Conn.Close()
		case app.DropFrame:
			log.Debug().Str("module", "orch").Str("username", string(r.Identity)).Msg("dropped frame for slow client")
		}
	}
}
