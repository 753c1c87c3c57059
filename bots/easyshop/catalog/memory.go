package catalog

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore serves products from memory. It backs the bot when no database is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[int64]Product
}

// NewMemoryStore copies products into a new store.
func NewMemoryStore(products []Product) *MemoryStore {
	s := &MemoryStore{products: make(map[int64]Product, len(products))}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

// Upsert adds or replaces p.
func (s *MemoryStore) Upsert(p Product) {
	s.mu.Lock()
	s.products[p.ID] = p
	s.mu.Unlock()
}

func (s *MemoryStore) List(_ context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		if p.Active {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id int64) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok || !p.Active {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) Search(ctx context.Context, query string, limit int) ([]Product, error) {
	query, limit = normalizeQuery(query, limit)
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Product, 0, min(limit, len(all)))
	for _, p := range all {
		if len(out) == limit {
			break
		}
		if matches(p, query) {
			out = append(out, p)
		}
	}
	return out, nil
}
