// Package session keeps loaded tables and their cleaning history in memory,
// one CleaningEngine per session, addressed by a random UUID.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/crashaudit/internal/core"
)

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("session not found")

// Session owns one table and its transformation log. All access to the
// engine goes through Do so the table and log change together.
type Session struct {
	ID        string
	Dataset   string
	Source    string
	CreatedAt time.Time

	mu       sync.Mutex
	engine   *core.CleaningEngine
	rules    core.AuditConfig
	lastUsed time.Time
	now      func() time.Time
}

// Do runs fn with exclusive access to the session's engine.
func (s *Session) Do(fn func(e *core.CleaningEngine, rules core.AuditConfig) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = s.now()
	return fn(s.engine, s.rules)
}

// LastUsed reports when the session was last touched by Do.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// Info is the listing shape for a session.
type Info struct {
	ID        string    `json:"id"`
	Dataset   string    `json:"dataset"`
	Source    string    `json:"source"`
	Rows      int       `json:"rows"`
	Columns   int       `json:"columns"`
	Steps     int       `json:"steps"`
	CreatedAt time.Time `json:"created_at"`
	LastUsed  time.Time `json:"last_used"`
}

func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.engine.Table()
	return Info{
		ID:        s.ID,
		Dataset:   s.Dataset,
		Source:    s.Source,
		Rows:      t.RowCount(),
		Columns:   t.ColumnCount(),
		Steps:     len(s.engine.History()),
		CreatedAt: s.CreatedAt,
		LastUsed:  s.lastUsed,
	}
}

// Manager is a concurrency-safe set of sessions.
type Manager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	maxSessions int
	now         func() time.Time
	logger      *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithMaxSessions caps the number of live sessions. Zero means no limit.
func WithMaxSessions(n int) Option {
	return func(m *Manager) { m.maxSessions = n }
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create stores a new session over t and returns it.
func (m *Manager) Create(dataset, source string, t *core.Table, rules core.AuditConfig) (*Session, error) {
	if t == nil {
		return nil, core.ErrEmptyTable
	}

	now := m.now()
	s := &Session{
		ID:        uuid.NewString(),
		Dataset:   dataset,
		Source:    source,
		CreatedAt: now,
		rules:     rules,
		lastUsed:  now,
		now:       m.now,
	}
	s.engine = core.NewCleaningEngine(t,
		core.WithClock(m.now),
		core.WithLogger(m.logger.With("session_id", s.ID)),
	)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		return nil, fmt.Errorf("session limit of %d reached: %w", m.maxSessions, ErrTooManyLoads)
	}
	m.sessions[s.ID] = s

	m.logger.Info("session created",
		"session_id", s.ID,
		"dataset", dataset,
		"rows", t.RowCount(),
	)
	return s, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(m.sessions, id)
	return nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// List returns every live session, oldest first.
func (m *Manager) List() []Info {
	m.mu.RLock()
	out := make([]Info, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s.Info())
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Expire removes sessions idle for longer than ttl and returns how many
// were removed.
func (m *Manager) Expire(ttl time.Duration) int {
	cutoff := m.now().Add(-ttl)

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if s.LastUsed().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// RunJanitor expires idle sessions every interval until ctx is cancelled.
func (m *Manager) RunJanitor(ctx context.Context, ttl, interval time.Duration) {
	m.logger.Info("session janitor started",
		"ttl", ttl.String(),
		"interval", interval.String(),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("session janitor stopped")
			return
		case <-ticker.C:
			start := time.Now()
			if n := m.Expire(ttl); n > 0 {
				m.logger.Info("expired idle sessions",
					"removed", n,
					"remaining", m.Len(),
					"duration_ms", time.Since(start).Milliseconds(),
				)
			}
		}
	}
}
