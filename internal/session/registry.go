// Package session keeps one city list per client page load.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/i474232898/cities-weather/internal/citylist"
	"github.com/i474232898/cities-weather/internal/logger"
	"github.com/i474232898/cities-weather/internal/metrics"
	"github.com/i474232898/cities-weather/internal/search"
)

var ErrNotFound = errors.New("session not found")

// Session is one client's city list with its sort and suggestion state.
type Session struct {
	ID         string
	Aggregator *citylist.Aggregator
	Debouncer  *search.Debouncer

	mu       sync.Mutex
	sort     search.SortState
	lastSeen time.Time
}

// Sort returns the current sort state.
func (s *Session) Sort() search.SortState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sort
}

// ToggleSort applies a column pick and returns the new state.
func (s *Session) ToggleSort(col search.Column) search.SortState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sort = s.sort.Toggle(col)
	return s.sort
}

// SetSort replaces the sort state.
func (s *Session) SetSort(st search.SortState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sort = st
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Factory builds the aggregator for a new session.
type Factory func() *citylist.Aggregator

// Registry owns all live sessions.
type Registry struct {
	newAggregator Factory
	debounce      time.Duration
	ttl           time.Duration
	metrics       *metrics.Collector
	now           func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry(factory Factory, debounce, ttl time.Duration, m *metrics.Collector) *Registry {
	return &Registry{
		newAggregator: factory,
		debounce:      debounce,
		ttl:           ttl,
		metrics:       m,
		now:           time.Now,
		sessions:      make(map[string]*Session),
	}
}

// Create registers a new session with an Idle aggregator.
func (r *Registry) Create() *Session {
	s := &Session{
		ID:         uuid.NewString(),
		Aggregator: r.newAggregator(),
		Debouncer:  search.NewDebouncer(r.debounce),
		lastSeen:   r.now(),
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	n := len(r.sessions)
	r.mu.Unlock()

	r.metrics.SetActiveSessions(n)
	return s
}

// Get returns the session and marks it as used.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	s.touch(r.now())
	return s, nil
}

// Delete closes the session's aggregator, discarding any page in flight.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	s.Aggregator.Close()
	r.metrics.SetActiveSessions(n)
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep closes sessions idle for longer than the TTL and returns how many
// were removed.
func (r *Registry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.ttl)

	var expired []*Session
	r.mu.Lock()
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	n := len(r.sessions)
	r.mu.Unlock()

	for _, s := range expired {
		s.Aggregator.Close()
	}
	r.metrics.SetActiveSessions(n)

	if len(expired) > 0 {
		logger.WithFields(logrus.Fields{
			"expired": len(expired),
			"active":  n,
		}).Info("swept idle sessions")
	}
	return len(expired)
}

// CloseAll closes every session; used on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Aggregator.Close()
	}
	r.metrics.SetActiveSessions(0)
}
