package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/laptopfinder/backend/internal/domain"
)

// MemoryStore is a goroutine-safe in-memory catalog.
type MemoryStore struct {
	mu       sync.RWMutex
	products []domain.Product
	index    map[string]int
}

// NewMemoryStore creates a store holding products. Later duplicates of an ID replace earlier ones.
func NewMemoryStore(products []domain.Product) *MemoryStore {
	s := &MemoryStore{index: make(map[string]int)}
	s.upsert(products)
	return s
}

// Find returns every product satisfying p.
func (s *MemoryStore) Find(ctx context.Context, p domain.Predicate, opts domain.QueryOptions) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]domain.Product, 0)
	for _, prod := range s.products {
		if prod.Satisfies(p) {
			out = append(out, prod)
		}
	}
	s.mu.RUnlock()

	sortProducts(out, opts.Sort)
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

// Count returns the number of products satisfying p.
func (s *MemoryStore) Count(ctx context.Context, p domain.Predicate) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, prod := range s.products {
		if prod.Satisfies(p) {
			n++
		}
	}
	return n, nil
}

// Upsert inserts or replaces products by ID.
func (s *MemoryStore) Upsert(ctx context.Context, products []domain.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.upsert(products)
	return nil
}

// Len returns the number of stored products.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

func (s *MemoryStore) upsert(products []domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range products {
		if i, ok := s.index[p.ID]; ok {
			s.products[i] = p
			continue
		}
		s.index[p.ID] = len(s.products)
		s.products = append(s.products, p)
	}
}

// sortProducts orders by price; unpriced products always go last.
func sortProducts(ps []domain.Product, order domain.SortOrder) {
	if order == domain.SortNone {
		return
	}
	sort.SliceStable(ps, func(i, j int) bool {
		a, b := ps[i].Price, ps[j].Price
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		case order == domain.SortPriceDesc:
			return *a > *b
		default:
			return *a < *b
		}
	})
}
