package sessions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/coursehub/coursehub-api/internal/apperrors"
	"github.com/coursehub/coursehub-api/internal/models"
)

type memEntry struct {
	user      *models.User
	expiresAt time.Time
}

// MemoryStore is an in-process Store used when Redis is not configured and in
// unit tests.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memEntry
	revoked  map[string]time.Time
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memEntry),
		revoked:  make(map[string]time.Time),
		now:      time.Now,
	}
}

// SetClock replaces the time source; tests use it to expire entries.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}

func (m *MemoryStore) Save(ctx context.Context, u *models.User, ttl time.Duration) error {
	if u == nil || u.ID == "" {
		return fmt.Errorf("session snapshot needs a user id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[u.ID] = memEntry{user: u.Snapshot(), expiresAt: m.now().Add(minTTL(ttl))}
	return nil
}

func (m *MemoryStore) Load(ctx context.Context, userID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[userID]
	if !ok {
		return nil, nil
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.sessions, userID)
		return nil, nil
	}
	return e.user.Snapshot(), nil
}

func (m *MemoryStore) Rotate(ctx context.Context, oldJTI string, jtiTTL time.Duration, u *models.User, ttl time.Duration) error {
	if u == nil || u.ID == "" {
		return fmt.Errorf("session snapshot needs a user id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if m.revokedLocked(oldJTI, now) {
		return fmt.Errorf("%w: refresh token already used", apperrors.ErrInvalidOrExpiredToken)
	}
	if e, ok := m.sessions[u.ID]; !ok || !now.Before(e.expiresAt) {
		delete(m.sessions, u.ID)
		return errSessionEnded
	}
	m.revoked[oldJTI] = now.Add(minTTL(jtiTTL))
	m.sessions[u.ID] = memEntry{user: u.Snapshot(), expiresAt: now.Add(minTTL(ttl))}
	return nil
}

func (m *MemoryStore) End(ctx context.Context, userID, jti string, jtiTTL time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	if jti != "" {
		m.revoked[jti] = m.now().Add(minTTL(jtiTTL))
	}
	return nil
}

func (m *MemoryStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revokedLocked(jti, m.now()), nil
}

func (m *MemoryStore) revokedLocked(jti string, now time.Time) bool {
	exp, ok := m.revoked[jti]
	if !ok {
		return false
	}
	if !now.Before(exp) {
		delete(m.revoked, jti)
		return false
	}
	return true
}

func (m *MemoryStore) Ping(ctx context.Context) error { return nil }
