// Package session keeps the console's browser sessions: one bearer token and
// one view controller per logged-in user. The inventory service issues and
// verifies the tokens; the console only carries them.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ankit-modi39/fi-inventory-management/internal/gateway"
	"github.com/ankit-modi39/fi-inventory-management/internal/view"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found or expired")

// Session binds a browser to an authenticated gateway client and its own view
// controller.
type Session struct {
	ID         string
	Username   string
	ExpiresAt  time.Time
	Controller *view.Controller
}

// Expired reports whether the session has passed its expiry.
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Manager creates and looks up console sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	gateway  *gateway.Client
	ttl      time.Duration
	pageSize int
	logger   *slog.Logger
}

// NewManager creates a session manager on top of an anonymous gateway client.
func NewManager(gw *gateway.Client, ttl time.Duration, pageSize int, logger *slog.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		gateway:  gw,
		ttl:      ttl,
		pageSize: pageSize,
		logger:   logger.With("component", "session"),
	}
}

// Register creates a new user account with the inventory service.
func (m *Manager) Register(ctx context.Context, username, password string) error {
	return m.gateway.Register(ctx, username, password)
}

// Login exchanges credentials for a bearer token and opens a session around
// it. The session expires when the token does, capped by the configured TTL.
func (m *Manager) Login(ctx context.Context, username, password string) (*Session, error) {
	token, err := m.gateway.Login(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	session := &Session{
		ID:         uuid.NewString(),
		Username:   username,
		ExpiresAt:  m.expiry(token),
		Controller: view.NewController(m.gateway.WithToken(token), m.pageSize, m.logger),
	}

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "Session opened", "username", username, "expires_at", session.ExpiresAt)
	return session, nil
}

// Get returns the session with the given id. Expired sessions are dropped.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	session, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.Expired() {
		m.Logout(id)
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Logout drops a session. No-op for unknown ids.
func (m *Manager) Logout(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
}

// expiry derives the session expiry from the token's exp claim. The token is
// parsed without verification; the inventory service is the one that verifies
// it on every call. Tokens without a readable exp fall back to the TTL.
func (m *Manager) expiry(token string) time.Time {
	limit := time.Now().Add(m.ttl)

	parsed, err := jwt.ParseInsecure([]byte(token))
	if err != nil {
		m.logger.Warn("Could not read token expiry, using session TTL", "error", err)
		return limit
	}
	exp, ok := parsed.Expiration()
	if !ok || exp.After(limit) {
		return limit
	}
	return exp
}
