package memory

import (
	"context"
	"sync"

	"github.com/hamed0406/sitewatch/internal/domain"
)

// Store keeps records in process memory. Used for dry runs and tests.
type Store struct {
	mu    sync.RWMutex
	recs  domain.Records
	saves int
}

func New() *Store {
	return &Store{recs: make(domain.Records)}
}

// Seed builds a store pre-populated with recs.
func Seed(recs domain.Records) *Store {
	s := New()
	s.recs = recs.Clone()
	return s
}

func (m *Store) Load(ctx context.Context) (domain.Records, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.recs.Clone(), nil
}

func (m *Store) Save(ctx context.Context, recs domain.Records) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = recs.Clone()
	m.saves++
	return nil
}

// Saves reports how many times Save was called.
func (m *Store) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}
