package app

import (
	"sync"

	"github.com/dkeye/lanhub/internal/domain"
	"github.com/rs/zerolog/log"
)

type PresenterState int

const (
	PresenterIdle PresenterState = iota
	PresenterActive
)

func (s PresenterState) String() string {
	if s == PresenterActive {
		return "presenting"
	}
	return "idle"
}

// Presenter is a single-holder lease on screen sharing.
// States: Idle, Presenting(holder). The holder is a back-reference into the
// registry; session teardown must call Revoke.
type Presenter struct {
	mu     sync.Mutex
	state  PresenterState
	holder domain.Identity
}

func NewPresenter() *Presenter {
	return &Presenter{}
}

// Acquire moves Idle -> Presenting(id). It returns the holder after the call
// and whether the state changed. id was granted iff holder == id.
func (p *Presenter) Acquire(id domain.Identity) (domain.Identity, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == PresenterActive {
		return p.holder, false
	}
	p.state = PresenterActive
	p.holder = id
	log.Info().Str("module", "app.presenter").Str("username", string(id)).Msg("presentation started")
	return id, true
}

// Release moves Presenting(id) -> Idle. Any other caller is a no-op.
func (p *Presenter) Release(id domain.Identity) bool {
	return p.transitionIdle(id, "presentation stopped")
}

// Revoke forcibly releases the lease of a departed holder.
func (p *Presenter) Revoke(id domain.Identity) bool {
	return p.transitionIdle(id, "presentation revoked")
}

func (p *Presenter) transitionIdle(id domain.Identity, msg string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != PresenterActive || p.holder != id {
		return false
	}
	p.state = PresenterIdle
	p.holder = ""
	log.Info().Str("module", "app.presenter").Str("username", string(id)).Msg(msg)
	return true
}

// Holder returns the current presenter, if any.
func (p *Presenter) Holder() (domain.Identity, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.holder, p.state == PresenterActive
}

func (p *Presenter) IsHolder(id domain.Identity) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == PresenterActive && p.holder == id
}

func (p *Presenter) State() PresenterState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}
