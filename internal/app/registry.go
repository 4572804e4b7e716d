package app

import (
	"errors"
	"fmt"
	"net/netip"
	"slices"
	"sync"

	"github.com/dkeye/lanhub/internal/core"
	"github.com/dkeye/lanhub/internal/domain"
	"github.com/rs/zerolog/log"
)

var (
	ErrDuplicateIdentity = errors.New("identity already registered")
	ErrUnknownIdentity   = errors.New("identity not registered")
)

type sessionEntry struct {
	session *core.Session
	seq     uint64
}

// Registry owns every registered session. All access goes through its
// methods; callers only ever receive copies.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.Identity]*sessionEntry
	seq      uint64
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[domain.Identity]*sessionEntry),
	}
}

// Register inserts s unless an identity equal to it under case folding is
// already present. greet, if set, runs under the registry lock with the
// presence list that includes s, so anything it queues on s.Conn precedes
// every broadcast that can observe s.
func (r *Registry) Register(s *core.Session, greet func(users []domain.Identity)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range r.sessions {
		if id.SameAs(string(s.Identity)) {
			return fmt.Errorf("%w: %q", ErrDuplicateIdentity, s.Identity)
		}
	}
	r.seq++
	r.sessions[s.Identity] = &sessionEntry{session: s, seq: r.seq}
	if greet != nil {
		greet(r.usersLocked())
	}
	log.Info().Str("module", "app.registry").Str("sid", string(s.ID)).Str("username", string(s.Identity)).Msg("registered session")
	return nil
}

// Unregister removes id if it is still bound to sid.
func (r *Registry) Unregister(id domain.Identity, sid core.SessionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok || e.session.ID != sid {
		return false
	}
	delete(r.sessions, id)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("username", string(id)).Msg("unregistered session")
	return true
}

func (r *Registry) SetEndpoint(id domain.Identity, kind domain.MediaKind, addr netip.AddrPort) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownIdentity, id)
	}
	e.session.SetEndpoint(kind, addr)
	log.Info().Str("module", "app.registry").Str("username", string(id)).Str("kind", kind.String()).Str("addr", addr.String()).Msg("registered media endpoint")
	return nil
}

// Get returns a copy of the session bound to id.
func (r *Registry) Get(id domain.Identity) (core.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[id]
	if !ok {
		return core.Session{}, false
	}
	return *e.session, true
}

// LookupFold resolves name to a registered identity, preferring an exact match.
func (r *Registry) LookupFold(name string) (domain.Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.sessions[domain.Identity(name)]; ok {
		return domain.Identity(name), true
	}
	for id := range r.sessions {
		if id.SameAs(name) {
			return id, true
		}
	}
	return "", false
}

// Snapshot returns the registered identities in registration order.
func (r *Registry) Snapshot() []domain.Identity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.usersLocked()
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Recipients returns every control connection except those of exclude.
func (r *Registry) Recipients(exclude ...domain.Identity) []core.Recipient {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.Recipient, 0, len(r.sessions))
	for _, e := range r.orderedLocked() {
		if slices.Contains(exclude, e.session.Identity) {
			continue
		}
		out = append(out, core.Recipient{Identity: e.session.Identity, Conn: e.session.Conn})
	}
	return out
}

// RecipientsOf returns the control connections of the registered ids.
func (r *Registry) RecipientsOf(ids ...domain.Identity) []core.Recipient {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.Recipient, 0, len(ids))
	for _, id := range ids {
		if e, ok := r.sessions[id]; ok {
			out = append(out, core.Recipient{Identity: id, Conn: e.session.Conn})
		}
	}
	return out
}

// MediaTargets returns every session with a registered endpoint of kind.
func (r *Registry) MediaTargets(kind domain.MediaKind) []core.MediaTarget {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.MediaTarget, 0, len(r.sessions))
	for _, e := range r.sessions {
		if addr := e.session.Endpoint(kind); addr.IsValid() {
			out = append(out, core.MediaTarget{Identity: e.session.Identity, Addr: addr})
		}
	}
	return out
}

func (r *Registry) Sessions() []core.SessionDTO {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.SessionDTO, 0, len(r.sessions))
	for _, e := range r.orderedLocked() {
		out = append(out, e.session.DTO())
	}
	return out
}

func (r *Registry) orderedLocked() []*sessionEntry {
	entries := make([]*sessionEntry, 0, len(r.sessions))
	for _, e := range r.sessions {
		entries = append(entries, e)
	}
	slices.SortFunc(entries, func(a, b *sessionEntry) int {
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})
	return entries
}

func (r *Registry) usersLocked() []domain.Identity {
	entries := r.orderedLocked()
	out := make([]domain.Identity, len(entries))
	for i, e := range entries {
		out[i] = e.session.Identity
	}
	return out
}
