package session

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps sessions in process memory. It is the fallback when
// Redis is not configured: fine for single-instance deployments and tests,
// sessions do not survive restarts.
type MemoryStore struct {
	cache *gocache.Cache
	ttl   time.Duration
}

// NewMemoryStore creates an in-memory session store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		cache: gocache.New(ttl, 10*time.Minute),
		ttl:   ttl,
	}
}

func (s *MemoryStore) Create(_ context.Context, userID string) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}
	s.cache.Set(token, userID, s.ttl)
	return token, nil
}

func (s *MemoryStore) Get(_ context.Context, token string) (string, error) {
	v, ok := s.cache.Get(token)
	if !ok {
		return "", ErrNotFound
	}
	return v.(string), nil
}

func (s *MemoryStore) Destroy(_ context.Context, token string) error {
	s.cache.Delete(token)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}
