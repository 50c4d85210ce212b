package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	SessionCookie = "session_id"
	sessionPrefix = "session:"
	adminSubject  = "admin"
)

// SessionStore records which admin sessions are live.
type SessionStore interface {
	// Create starts a session that expires after ttl and returns its id.
	Create(ctx context.Context, ttl time.Duration) (string, error)
	// Exists reports whether the session is live.
	Exists(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}

var (
	_ SessionStore = (*RedisSessionStore)(nil)
	_ SessionStore = (*MemorySessionStore)(nil)
)

// RedisSessionStore wraps Redis for session management.
type RedisSessionStore struct {
	rdb *redis.Client
}

func NewRedisSessionStore(rdb *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb}
}

func (s *RedisSessionStore) Create(ctx context.Context, ttl time.Duration) (string, error) {
	sid := uuid.NewString()
	err := s.rdb.Set(ctx, sessionPrefix+sid, adminSubject, ttl).Err()
	return sid, err
}

func (s *RedisSessionStore) Exists(ctx context.Context, id string) (bool, error) {
	n, err := s.rdb.Exists(ctx, sessionPrefix+id).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, sessionPrefix+id).Err()
}

// MemorySessionStore keeps sessions in process memory. Expired entries
// are dropped lazily on lookup and on Create.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]time.Time
	now      func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]time.Time),
		now:      time.Now,
	}
}

func (s *MemorySessionStore) Create(_ context.Context, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, exp := range s.sessions {
		if !now.Before(exp) {
			delete(s.sessions, id)
		}
	}
	sid := uuid.NewString()
	s.sessions[sid] = now.Add(ttl)
	return sid, nil
}

func (s *MemorySessionStore) Exists(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.sessions[id]
	if !ok {
		return false, nil
	}
	if !s.now().Before(exp) {
		delete(s.sessions, id)
		return false, nil
	}
	return true, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
