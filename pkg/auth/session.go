package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionTTL bounds how long an issued bearer token stays valid.
const SessionTTL = 24 * time.Hour

var ErrSessionNotFound = errors.New("session not found")

type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionStore owns bearer-token session state. It is injected at the
// service boundary rather than held as process-global state so that
// multiple server instances can share one store.
type SessionStore interface {
	Create(ctx context.Context, s *Session) error
	Lookup(ctx context.Context, token string) (*Session, error)
	Invalidate(ctx context.Context, token string) error
}

// NewSession issues a fresh session for a verified identity.
func NewSession(id *Identity, userID string) *Session {
	return &Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		Email:     id.Email,
		Name:      id.Name,
		ExpiresAt: time.Now().Add(SessionTTL),
	}
}

// MemorySessionStore keeps sessions in process memory. Single-instance
// deployments and tests only.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*Session)}
}

func (m *MemorySessionStore) Create(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Token] = s
	return nil
}

func (m *MemorySessionStore) Lookup(_ context.Context, token string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[token]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if time.Now().After(s.ExpiresAt) {
		m.mu.Lock()
		delete(m.sessions, token)
		m.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *MemorySessionStore) Invalidate(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

// RedisSessionStore keeps sessions in Redis with a TTL, so every server
// instance sees the same session state.
type RedisSessionStore struct {
	rdb *redis.Client
}

func NewRedisSessionStore(rdb *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb}
}

func sessionKey(token string) string {
	return "session:" + token
}

func (r *RedisSessionStore) Create(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, sessionKey(s.Token), data, time.Until(s.ExpiresAt)).Err()
}

func (r *RedisSessionStore) Lookup(ctx context.Context, token string) (*Session, error) {
	data, err := r.rdb.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if time.Now().After(s.ExpiresAt) {
		return nil, ErrSessionNotFound
	}
	return &s, nil
}

func (r *RedisSessionStore) Invalidate(ctx context.Context, token string) error {
	return r.rdb.Del(ctx, sessionKey(token)).Err()
}
