package repository

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru"

	"github.com/okian/burden/internal/domain/model"
	"github.com/okian/burden/pkg/metrics"
)

// DefaultCapacity bounds the in-memory store.
const DefaultCapacity = 10_000

// MemoryOption applies a configuration option to the MemoryStore.
type MemoryOption func(*MemoryStore)

// WithCapacity sets how many sessions are kept before the least recently used is evicted.
func WithCapacity(n int) MemoryOption {
	return func(s *MemoryStore) {
		s.capacity = n
	}
}

// MemoryStore is an LRU-bounded in-process Store.
type MemoryStore struct {
	capacity int
	cache    *lru.Cache
}

// NewMemoryStore returns a MemoryStore. A non-positive capacity is rejected.
func NewMemoryStore(opts ...MemoryOption) (*MemoryStore, error) {
	s := &MemoryStore{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(s)
	}
	if s.capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, s.capacity)
	}
	cache, err := lru.NewWithEvict(s.capacity, func(_, _ interface{}) {
		metrics.RecordSessionDrop()
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCapacity, err)
	}
	s.cache = cache
	return s, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (model.Session, error) {
	if id == "" {
		return model.Session{}, ErrInvalidID
	}
	v, ok := s.cache.Get(id)
	if !ok {
		return model.Session{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return v.(model.Session), nil
}

func (s *MemoryStore) Put(_ context.Context, sess model.Session) error {
	if sess.ID == "" {
		return ErrInvalidID
	}
	s.cache.Add(sess.ID, sess)
	metrics.UpdateSessionCount(float64(s.cache.Len()))
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.cache.Remove(id)
	metrics.UpdateSessionCount(float64(s.cache.Len()))
	return nil
}

func (s *MemoryStore) Count(_ context.Context) int {
	return s.cache.Len()
}
