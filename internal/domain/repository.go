package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// SortOrder controls result ordering in catalog queries.
type SortOrder int

const (
	SortNone SortOrder = iota
	SortPriceAsc
	SortPriceDesc
)

// QueryOptions tunes a catalog query. Limit <= 0 means no limit.
type QueryOptions struct {
	Sort  SortOrder
	Limit int
}

// CatalogStore is the filterable laptop collection.
type CatalogStore interface {
	Find(ctx context.Context, p Predicate, opts QueryOptions) ([]Product, error)
	Count(ctx context.Context, p Predicate) (int, error)
}

// SpecificationExtractor turns free text into the raw JSON specification text returned by the language model.
type SpecificationExtractor interface {
	ExtractSpecification(ctx context.Context, message string) (string, error)
}

// QueryClassifier predicts the use-case category of a free-text query.
type QueryClassifier interface {
	Analyze(ctx context.Context, text string) (*QueryAnalysis, error)
}

// RetrievalEngine ranks catalog records for a query under a filter dictionary.
type RetrievalEngine interface {
	Search(ctx context.Context, query string, topN int, filters Filters) ([]Product, []string, error)
}
