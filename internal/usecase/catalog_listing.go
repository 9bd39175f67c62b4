package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/laptopfinder/backend/internal/domain"
)

// List returns catalog laptops matching plain attribute filters, at most domain.ListingLimit of them.
func (s *FinderService) List(ctx context.Context, filters domain.ListingFilters) (*domain.ListingResponse, error) {
	ctx, span := s.tracer.Start(ctx, "FinderService.List")
	defer span.End()

	pred, messages := ListingPredicate(filters)
	products, err := s.store.Find(ctx, pred, domain.QueryOptions{Sort: filters.Sort, Limit: domain.ListingLimit})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "catalog query failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	span.SetAttributes(attribute.Int("finder.matches", len(products)))

	laptops := domain.SanitizeProducts(products)
	if laptops == nil {
		laptops = []domain.Product{}
	}
	s.recorder.RecordResults(pipelineListing, len(laptops), len(messages))
	return &domain.ListingResponse{
		Laptops:        laptops,
		Count:          len(laptops),
		Limit:          domain.ListingLimit,
		FilterMessages: messages,
	}, nil
}

// ListingPredicate compiles listing filters. Values within one filter are alternatives;
// distinct filters are all required. Unreadable storage sizes are skipped and explained.
func ListingPredicate(f domain.ListingFilters) (domain.Predicate, []string) {
	messages := []string{}
	clauses := []domain.Predicate{
		domain.OneOf(domain.FieldBrand, f.Brands...),
		domain.OneOf(domain.FieldCategory, f.Categories...),
	}

	var storageTiers []int
	for _, tok := range f.Storage {
		gb, ok := parseStorageGB(tok)
		if !ok {
			messages = append(messages, fmt.Sprintf("Ignored storage filter: %q is not a storage size.", tok))
			continue
		}
		tiers := ResolveTiers(float64(gb), false, StorageTiers)
		if len(tiers) == 0 {
			tiers = []int{gb}
		}
		storageTiers = append(storageTiers, tiers...)
	}
	clauses = append(clauses, StorageTierMatch(storageTiers))

	sizes := make([]domain.Predicate, 0, len(f.ScreenSizes))
	for _, size := range f.ScreenSizes {
		sizes = append(sizes, domain.Match(domain.FieldDisplaySize, domain.OpPrefix, size))
	}
	clauses = append(clauses, domain.Any(sizes...))

	if f.MinPrice != nil {
		clauses = append(clauses, domain.Compare(domain.FieldPrice, domain.OpGTE, *f.MinPrice))
	}
	if f.MaxPrice != nil {
		clauses = append(clauses, domain.Compare(domain.FieldPrice, domain.OpLTE, *f.MaxPrice))
	}
	if f.Condition != "" {
		clauses = append(clauses, domain.Match(domain.FieldCondition, domain.OpIEquals, f.Condition))
	}
	clauses = append(clauses, performanceLevels(f.Performance))

	return domain.All(clauses...), messages
}

// parseStorageGB reads "512", "512GB" or "1TB" as gigabytes. Terabytes count as 1000GB.
func parseStorageGB(token string) (int, bool) {
	token = strings.TrimSpace(token)
	m := storageAmountPattern.FindStringSubmatch(token)
	if m == nil || m[0] != token {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	if strings.EqualFold(m[2], "tb") {
		v *= 1000
	}
	return int(v), true
}
