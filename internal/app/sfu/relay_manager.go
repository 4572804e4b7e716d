package sfu

import (
	"context"
	"sync"

	"github.com/dkeye/lanhub/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
)

// RelayManager owns one Relay per media kind.
type RelayManager struct {
	mu     sync.RWMutex
	relays map[domain.MediaKind]*Relay
}

func NewRelayManager() *RelayManager {
	return &RelayManager{
		relays: make(map[domain.MediaKind]*Relay),
	}
}

// Add registers r, replacing any relay of the same kind.
func (m *RelayManager) Add(r *Relay) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.relays[r.Kind]; ok {
		log.Info().Str("module", "sfu").Str("kind", r.Kind.String()).Msg("replacing existing relay")
	}
	m.relays[r.Kind] = r
}

func (m *RelayManager) Relay(kind domain.MediaKind) (*Relay, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.relays[kind]
	return r, ok
}

// Run runs every relay loop and returns once all of them have stopped.
func (m *RelayManager) Run(ctx context.Context) error {
	m.mu.RLock()
	p := pool.New().WithErrors().WithContext(ctx)
	for _, r := range m.relays {
		p.Go(r.Run)
	}
	m.mu.RUnlock()
	return p.Wait()
}

// Stats returns counters keyed by media kind name.
func (m *RelayManager) Stats() map[string]Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]Stats, len(m.relays))
	for kind, r := range m.relays {
		out[kind.String()] = r.Stats()
	}
	return out
}
