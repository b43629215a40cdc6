// Package session keeps one workspace of stores per browser, identified by
// a cookie, and drops workspaces that have been idle too long.
package session

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"notebook-console/internal/resource"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var ErrTooManySessions = errors.New("too many active sessions")

type Session struct {
	ID        string
	Workspace *resource.Workspace
	CreatedAt time.Time

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// WorkspaceFactory builds the workspace of a new session.
type WorkspaceFactory func(sessionID string) *resource.Workspace

type Config struct {
	CookieName  string
	IdleTimeout time.Duration
	MaxSessions int
	Secure      bool
	Logger      zerolog.Logger
}

type Manager struct {
	cfg          Config
	newWorkspace WorkspaceFactory
	logger       zerolog.Logger
	now          func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(cfg Config, factory WorkspaceFactory) *Manager {
	return &Manager{
		cfg:          cfg,
		newWorkspace: factory,
		logger:       cfg.Logger.With().Str("component", "session").Logger(),
		now:          time.Now,
		sessions:     make(map[string]*Session),
	}
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		s.touch(m.now())
	}
	return s, ok
}

func (m *Manager) Create() (*Session, error) {
	m.mu.Lock()
	if m.cfg.MaxSessions > 0 && len(m.sessions) >= m.cfg.MaxSessions {
		m.mu.Unlock()
		return nil, ErrTooManySessions
	}

	now := m.now()
	s := &Session{
		ID:        uuid.New().String(),
		CreatedAt: now,
		lastSeen:  now,
	}
	m.sessions[s.ID] = s
	m.mu.Unlock()

	s.Workspace = m.newWorkspace(s.ID)
	m.logger.Debug().Str("session", s.ID).Msg("session created")
	return s, nil
}

// Resolve returns the session named by the request cookie, starting a new
// one (and setting the cookie) when there is none.
func (m *Manager) Resolve(w http.ResponseWriter, r *http.Request) (*Session, error) {
	if c, err := r.Cookie(m.cfg.CookieName); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			if s, ok := m.Get(c.Value); ok {
				return s, nil
			}
		}
	}

	s, err := m.Create()
	if err != nil {
		return nil, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    s.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return s, nil
}

func (m *Manager) Remove(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok && s.Workspace != nil {
		s.Workspace.Close()
	}
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep removes sessions idle for longer than the idle timeout and returns
// how many were removed.
func (m *Manager) Sweep() int {
	if m.cfg.IdleTimeout <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.cfg.IdleTimeout)

	m.mu.RLock()
	var expired []string
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			expired = append(expired, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range expired {
		m.Remove(id)
	}
	if len(expired) > 0 {
		m.logger.Info().Int("expired", len(expired)).Int("active", m.Count()).Msg("idle sessions removed")
	}
	return len(expired)
}

// Run sweeps periodically until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	interval := m.cfg.IdleTimeout / 2
	if interval <= 0 {
		return
	}
	if interval > time.Minute {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

type contextKey string

const sessionKey contextKey = "session"

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey).(*Session)
	return s, ok
}
