package control

import (
	"errors"
	"io"
	"net"

	"github.com/dkeye/lanhub/internal/core"
	"github.com/dkeye/lanhub/internal/domain"
	"github.com/dkeye/lanhub/internal/protocol"
	"github.com/rs/zerolog/log"
)

func (ctl *Controller) readPump(sess *core.Session, reader *protocol.Reader) {
	for {
		payload, err := reader.ReadFrame()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				log.Info().Str("module", "control").Str("username", string(sess.Identity)).Msg("client disconnected")
			} else {
				log.Warn().Err(err).Str("module", "control").Str("username", string(sess.Identity)).Msg("readPump read error")
			}
			return
		}
		if err := ctl.handleSignal(sess, payload); err != nil {
			log.Warn().Err(err).Str("module", "control").Str("username", string(sess.Identity)).Msg("protocol error, closing")
			return
		}
	}
}

// handleSignal dispatches one control payload. A returned error ends the session.
func (ctl *Controller) handleSignal(sess *core.Session, payload []byte) error {
	typ, err := protocol.PeekType(payload)
	if err != nil {
		return err
	}
	id := sess.Identity

	switch typ {
	case protocol.TypeChat:
		var req protocol.ChatRequest
		if err := protocol.Decode(payload, &req); err != nil {
			return err
		}
		if ctl.allowChat(id) {
			ctl.Orch.Chat(id, req.Message)
		}
	case protocol.TypePrivateChat:
		var req protocol.PrivateChatRequest
		if err := protocol.Decode(payload, &req); err != nil {
			return err
		}
		if ctl.allowChat(id) {
			ctl.Orch.PrivateChat(id, req.To, req.Message)
		}
	case protocol.TypeVideoRegister:
		return ctl.handleEndpoint(sess, domain.MediaVideo, payload)
	case protocol.TypeAudioRegister:
		return ctl.handleEndpoint(sess, domain.MediaAudio, payload)
	case protocol.TypeStartPresentation:
		ctl.Orch.StartPresentation(id)
	case protocol.TypeStopPresentation:
		ctl.Orch.StopPresentation(id)
	case protocol.TypeScreenFrame:
		var req protocol.ScreenFrameRequest
		if err := protocol.Decode(payload, &req); err != nil {
			return err
		}
		ctl.Orch.ScreenFrame(id, req.FrameData, req.FrameID)
	case protocol.TypeFileUpload:
		var req protocol.FileUpload
		if err := protocol.Decode(payload, &req); err != nil {
			return err
		}
		ctl.Orch.Upload(id, req)
	case protocol.TypeFileDownload:
		var req protocol.FileDownload
		if err := protocol.Decode(payload, &req); err != nil {
			return err
		}
		ctl.Orch.Download(id, req.FileID)
	case protocol.TypeRegister:
		log.Warn().Str("module", "control").Str("username", string(id)).Msg("already registered, ignoring register")
	default:
		log.Warn().Str("module", "control").Str("type", string(typ)).Msg("unknown signal")
	}
	return nil
}

func (ctl *Controller) handleEndpoint(sess *core.Session, kind domain.MediaKind, payload []byte) error {
	var req protocol.EndpointRegister
	if err := protocol.Decode(payload, &req); err != nil {
		return err
	}
	if err := ctl.Orch.RegisterEndpoint(sess.Identity, kind, req.Address, sess.Conn.RemoteAddr().Addr()); err != nil {
		log.Warn().Err(err).Str("module", "control").Str("username", string(sess.Identity)).Msg("endpoint rejected")
		ctl.Orch.SendTo(sess.Identity, protocol.NewSystem(protocol.LevelWarning, "Invalid %s address", kind))
	}
	return nil
}

func (ctl *Controller) allowChat(id domain.Identity) bool {
	if ctl.ChatLimiter == nil || ctl.ChatLimiter.Allow(id) {
		return true
	}
	ctl.Orch.SendTo(id, protocol.NewSystem(protocol.LevelWarning, "You are sending messages too fast"))
	return false
}
