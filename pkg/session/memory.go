package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps sessions in process. Idle sessions expire after the TTL.
type MemoryStore struct {
	mu    sync.Mutex
	cache *cache.Cache
	now   func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	cleanup := ttl
	if cleanup <= 0 || cleanup > 10*time.Minute {
		cleanup = 10 * time.Minute
	}
	return &MemoryStore{cache: cache.New(ttl, cleanup), now: time.Now}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	if !ValidID(id) {
		return nil, ErrInvalidID
	}
	v, ok := m.cache.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return v.(*Session).Clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, s *Session, expectedRevision int64) (*Session, error) {
	if s == nil || !ValidID(s.ID) {
		return nil, ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var current int64
	v, exists := m.cache.Get(s.ID)
	if exists {
		current = v.(*Session).Revision
	}
	if err := checkRevision(current, exists, expectedRevision); err != nil {
		return nil, err
	}

	stored := s.Clone()
	stored.Revision = current + 1
	stored.UpdatedAtMS = m.now().UnixMilli()
	m.cache.SetDefault(s.ID, stored)
	return stored.Clone(), nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.cache.Delete(id)
	return nil
}

func (m *MemoryStore) Close() error {
	m.cache.Flush()
	return nil
}
