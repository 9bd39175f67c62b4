package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/laptopfinder/backend/internal/domain"
)

// fakeCatalog is an in-memory CatalogStore that records the predicates it was asked about.
type fakeCatalog struct {
	products     []domain.Product
	findErr      error
	countErr     error
	findCalls    int
	countCalls   int
	lastFind     domain.Predicate
	lastFindOpts domain.QueryOptions
}

func (f *fakeCatalog) Find(ctx context.Context, p domain.Predicate, opts domain.QueryOptions) ([]domain.Product, error) {
	f.findCalls++
	f.lastFind = p
	f.lastFindOpts = opts
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []domain.Product
	for _, prod := range f.products {
		if prod.Satisfies(p) {
			out = append(out, prod)
		}
	}
	switch opts.Sort {
	case domain.SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].PriceOr(0) < out[j].PriceOr(0) })
	case domain.SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].PriceOr(0) > out[j].PriceOr(0) })
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (f *fakeCatalog) Count(ctx context.Context, p domain.Predicate) (int, error) {
	f.countCalls++
	if f.countErr != nil {
		return 0, f.countErr
	}
	n := 0
	for _, prod := range f.products {
		if prod.Satisfies(p) {
			n++
		}
	}
	return n, nil
}

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	mu        sync.Mutex
	data      map[string][]byte
	getError  error
	setError  error
	getCalled bool
	setCalled bool
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{data: make(map[string][]byte)}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalled = true
	if m.getError != nil {
		return nil, m.getError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalled = true
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

// MockExtractor is a mock implementation of domain.SpecificationExtractor
type MockExtractor struct {
	response string
	err      error
	calls    int
}

func (m *MockExtractor) ExtractSpecification(ctx context.Context, message string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

// MockClassifier is a mock implementation of domain.QueryClassifier
type MockClassifier struct {
	analysis *domain.QueryAnalysis
	err      error
}

func (m *MockClassifier) Analyze(ctx context.Context, text string) (*domain.QueryAnalysis, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.analysis, nil
}

// MockRetrievalEngine is a mock implementation of domain.RetrievalEngine
type MockRetrievalEngine struct {
	results     []domain.Product
	messages    []string
	err         error
	lastQuery   string
	lastTopN    int
	lastFilters domain.Filters
}

func (m *MockRetrievalEngine) Search(ctx context.Context, query string, topN int, filters domain.Filters) ([]domain.Product, []string, error) {
	m.lastQuery = query
	m.lastTopN = topN
	m.lastFilters = filters
	if m.err != nil {
		return nil, nil, m.err
	}
	return m.results, m.messages, nil
}

func price(v float64) *float64 { return &v }

// laptop builds an in-stock test record.
func laptop(id, brand, processor, graphics, ram, storage string, p float64) domain.Product {
	return domain.Product{
		ID:                id,
		Name:              fmt.Sprintf("%s %s", brand, id),
		Brand:             brand,
		Model:             id,
		Processor:         processor,
		Graphics:          graphics,
		RAM:               ram,
		Storage:           storage,
		DisplaySize:       "15.6",
		DisplayResolution: "1920 x 1080 Full HD",
		Price:             price(p),
		InStock:           true,
	}
}
