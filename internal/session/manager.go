// Package session maps opaque tokens to login-time identity snapshots.
//
// The role and username stored in a session are captured when the session is
// created and never re-read from the user record. A role change after login
// therefore does not take effect until the next login. Known weakness, kept
// deliberately.
package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"inkwell/internal/models"
)

// DefaultTTL is the session lifetime used when none is configured.
const DefaultTTL = 24 * time.Hour

const tokenBytes = 32

type entry struct {
	identity  models.SessionIdentity
	createdAt time.Time
}

// Manager holds the in-memory session table. All methods are safe for
// concurrent use. Expiry is checked lazily at Resolve time; there is no
// background sweep.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]entry
	ttl      time.Duration
	now      func() time.Time
}

// NewManager creates a Manager with the given session lifetime. A
// non-positive ttl falls back to DefaultTTL.
func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		sessions: make(map[string]entry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// TTL returns the configured session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Create registers a new session for the user and returns its opaque token.
func (m *Manager) Create(user *models.User) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}

	m.mu.Lock()
	m.sessions[token] = entry{
		identity: models.SessionIdentity{
			UserID:   user.ID,
			Username: user.Username,
			Role:     user.Role,
		},
		createdAt: m.now(),
	}
	m.mu.Unlock()

	return token, nil
}

// Resolve returns the identity snapshot for the token. Absent and expired
// tokens both yield false; an expired entry is removed on the way out.
func (m *Manager) Resolve(token string) (*models.SessionIdentity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[token]
	if !ok {
		return nil, false
	}
	if m.now().Sub(e.createdAt) > m.ttl {
		delete(m.sessions, token)
		return nil, false
	}
	identity := e.identity
	return &identity, true
}

// Destroy removes the session. Destroying an absent token is not an error.
func (m *Manager) Destroy(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

// Len returns the number of live entries, including any not yet lazily
// expired.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
