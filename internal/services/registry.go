package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/markdave123-py/insightcart/internal/logger"
)

// DefaultSessionIdle matches the session token lifetime.
const DefaultSessionIdle = 24 * time.Hour

type registryEntry struct {
	session  *Session
	lastSeen time.Time
}

// Registry hands out sessions by id. A session unknown to this process is
// rebuilt from the persisted user slot, so evicting an idle entry only
// drops its in-memory view state.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*registryEntry

	ws       *Workspace
	repo     Repository
	exporter *Exporter
	log      *logger.Logger

	idle time.Duration
	now  func() time.Time
}

type RegistryOption func(*Registry)

// WithSessionIdle sets how long an unused session is kept; zero keeps
// sessions until logout.
func WithSessionIdle(d time.Duration) RegistryOption {
	return func(r *Registry) { r.idle = d }
}

func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

func NewRegistry(ws *Workspace, repo Repository, exporter *Exporter, log *logger.Logger, opts ...RegistryOption) *Registry {
	if log == nil {
		log = logger.Nop()
	}
	r := &Registry{
		sessions: make(map[string]*registryEntry),
		ws:       ws,
		repo:     repo,
		exporter: exporter,
		log:      log,
		idle:     DefaultSessionIdle,
		now:      time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Registry) Workspace() *Workspace { return r.ws }

func (r *Registry) Exporter() *Exporter { return r.exporter }

// Create starts a fresh session on the auth view.
func (r *Registry) Create() *Session {
	s := NewSession(uuid.NewString(), r.ws, r.repo, r.exporter, r.log)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()
	r.sessions[s.id] = &registryEntry{session: s, lastSeen: r.now()}
	return s
}

// Get returns the session with id, restoring it from storage if needed.
func (r *Registry) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	r.mu.Lock()
	if e, ok := r.sessions[id]; ok {
		e.lastSeen = r.now()
		r.mu.Unlock()
		return e.session, nil
	}
	r.mu.Unlock()

	s := NewSession(id, r.ws, r.repo, r.exporter, r.log)
	if err := s.Restore(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[id]; ok {
		e.lastSeen = r.now()
		return e.session, nil
	}
	r.sweepLocked()
	r.sessions[id] = &registryEntry{session: s, lastSeen: r.now()}
	return s, nil
}

// Drop forgets a session after logout.
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len reports how many sessions are held in memory.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep evicts sessions unused for longer than the idle limit and returns
// how many were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweepLocked()
}

func (r *Registry) sweepLocked() int {
	if r.idle <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.idle)
	evicted := 0
	for id, e := range r.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		r.log.Debug("evicted idle sessions", "count", evicted, "remaining", len(r.sessions))
	}
	return evicted
}
