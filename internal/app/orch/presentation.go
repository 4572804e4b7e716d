package orch

import (
	"fmt"

	"github.com/dkeye/lanhub/internal/domain"
	"github.com/dkeye/lanhub/internal/protocol"
	json "github.com/goccy/go-json"
)

// StartPresentation grants the presenter lease to id if it is free.
func (o *Orchestrator) StartPresentation(id domain.Identity) {
	o.presMu.Lock()
	defer o.presMu.Unlock()
	holder, changed := o.Presenter.Acquire(id)
	if holder != id {
		o.SendTo(id, protocol.PresentationControl{
			Type:     protocol.TypePresentationControl,
			Status:   protocol.StatusDenied,
			Username: holder,
			Message:  fmt.Sprintf("%s is currently presenting", holder),
		})
		return
	}
	if changed {
		started := protocol.Presentation{Type: protocol.TypePresentationStarted, Username: id}
		o.Broadcast(started)
		o.publish(started)
	}
	o.SendTo(id, protocol.PresentationControl{
		Type:   protocol.TypePresentationControl,
		Status: protocol.StatusStarted,
	})
}

func (o *Orchestrator) StopPresentation(id domain.Identity) {
	o.presMu.Lock()
	defer o.presMu.Unlock()
	if !o.Presenter.Release(id) {
		return
	}
	stopped := protocol.Presentation{Type: protocol.TypePresentationStopped, Username: id}
	o.Broadcast(stopped)
	o.publish(stopped)
}

// ScreenFrame relays a frame from the current presenter to all clients,
// the presenter included. Frames from anyone else are dropped.
func (o *Orchestrator) ScreenFrame(id domain.Identity, data string, frameID json.RawMessage) {
	o.presMu.Lock()
	defer o.presMu.Unlock()
	if !o.Presenter.IsHolder(id) {
		return
	}
	o.Broadcast(protocol.ScreenFrame{
		Type:      protocol.TypeScreenFrame,
		Username:  id,
		FrameData: data,
		FrameID:   frameID,
	})
}
