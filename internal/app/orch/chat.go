package orch

import (
	"strings"

	"github.com/dkeye/lanhub/internal/domain"
	"github.com/dkeye/lanhub/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Chat relays a public message to everyone but its author.
func (o *Orchestrator) Chat(from domain.Identity, text string) {
	msg := protocol.Chat{
		Type:      protocol.TypeChat,
		Username:  from,
		Message:   text,
		Timestamp: o.timestamp(),
	}
	o.Broadcast(msg, from)
	o.publish(msg)
}

// PrivateChat routes text to the session whose name matches to ignoring case.
// Everyone except the sender receives the delivery and filters by from/to;
// the sender always gets exactly one echo.
func (o *Orchestrator) PrivateChat(from domain.Identity, to, text string) {
	to = strings.TrimSpace(to)
	if to == "" || to == string(from) {
		return
	}
	msg := protocol.PrivateChat{
		Type:      protocol.TypePrivateChat,
		From:      from,
		To:        to,
		Message:   text,
		Timestamp: o.timestamp(),
	}
	if target, ok := o.Registry.LookupFold(to); ok {
		msg.To = string(target)
		o.Broadcast(msg, from)
	} else {
		log.Debug().Str("module", "orch").Str("from", string(from)).Str("to", to).Msg("private chat recipient offline")
		o.SendTo(from, protocol.NewSystem(protocol.LevelWarning, "User '%s' is not online", to))
	}
	o.SendTo(from, msg)
}
