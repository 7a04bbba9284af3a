// Package session hosts live calculators: each session owns one calculator
// state and serializes the actions dispatched to it.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/observability"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned for unknown or expired session ids.
	ErrNotFound = errors.New("session not found")

	// ErrLimitReached is returned by Create when the store is full.
	ErrLimitReached = errors.New("session limit reached")
)

// Snapshot is a session's state at a point in time.
type Snapshot struct {
	ID        string
	State     calculator.State
	UpdatedAt time.Time
}

type entry struct {
	mu        sync.Mutex
	state     calculator.State
	updatedAt time.Time
}

// Store keeps sessions in memory.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	ttl      time.Duration
	limit    int
	now      func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the store's time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore returns a store that expires sessions idle for longer than ttl
// and holds at most limit sessions. A zero ttl or limit disables the bound.
func NewStore(ttl time.Duration, limit int, opts ...Option) *Store {
	s := &Store{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		limit:    limit,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a session in the empty state.
func (s *Store) Create(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.limit > 0 && len(s.sessions) >= s.limit {
		return Snapshot{}, fmt.Errorf("create session: %w", ErrLimitReached)
	}

	id := uuid.NewString()
	now := s.now()
	s.sessions[id] = &entry{updatedAt: now}
	calculator.TrackSessions(ctx, 1)

	return Snapshot{ID: id, UpdatedAt: now}, nil
}

// Get returns the session's current state.
func (s *Store) Get(id string) (Snapshot, error) {
	e, err := s.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{ID: id, State: e.state, UpdatedAt: e.updatedAt}, nil
}

// Dispatch applies actions to the session in order and returns the final
// state. Concurrent dispatches to one session are serialized.
func (s *Store) Dispatch(ctx context.Context, id string, actions ...calculator.Action) (Snapshot, error) {
	e, err := s.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, action := range actions {
		e.state = calculator.Dispatch(ctx, e.state, action)
	}
	e.updatedAt = s.now()

	return Snapshot{ID: id, State: e.state, UpdatedAt: e.updatedAt}, nil
}

// Delete removes a session.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("delete session %q: %w", id, ErrNotFound)
	}
	delete(s.sessions, id)
	calculator.TrackSessions(ctx, -1)
	return nil
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes sessions idle since before now minus the TTL and returns
// how many were removed.
func (s *Store) Sweep(ctx context.Context) int {
	if s.ttl <= 0 {
		return 0
	}

	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.sessions {
		e.mu.Lock()
		idle := e.updatedAt.Before(cutoff)
		e.mu.Unlock()

		if idle {
			delete(s.sessions, id)
			removed++
		}
	}

	if removed > 0 {
		calculator.TrackSessions(ctx, -int64(removed))
	}
	return removed
}

// Run sweeps expired sessions every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(ctx); n > 0 {
				observability.Logger.Info("expired idle sessions",
					zap.Int("removed", n),
					zap.Int("remaining", s.Len()),
				)
			}
		}
	}
}

func (s *Store) lookup(id string) (*entry, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("session %q: %w", id, ErrNotFound)
	}

	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, ErrNotFound)
	}
	return e, nil
}
