package usecase

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/laptopfinder/backend/internal/domain"
)

// Price segmentation parameters. The range is cut into priceBands equal bands;
// band 0 is low, band 1 is mid and the rest is high.
const (
	priceBands     = 5
	lowSegmentMax  = 3
	highSegmentMax = 3
)

// Diversifier selects results across price bands when the user gave no price constraint.
type Diversifier struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewDiversifier creates a diversifier. A nil rng is seeded from the clock.
func NewDiversifier(rng *rand.Rand) *Diversifier {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Diversifier{rng: rng}
}

// Diversify picks at most limit products from matches.
//
// When priceSpecified is true or there are at most limit matches, products are sorted by
// price (descending when descending is set) and truncated. Otherwise up to three products
// are sampled from the low band and the high band each, the rest from the mid band, with
// shortfalls redistributed low, then mid, then high, and the final selection shuffled.
func (d *Diversifier) Diversify(matches []domain.Product, priceSpecified, descending bool, limit int) []domain.Product {
	if limit <= 0 || len(matches) == 0 {
		return []domain.Product{}
	}

	if priceSpecified || len(matches) <= limit {
		return sortedByPrice(matches, descending, limit)
	}

	minPrice, maxPrice, priced := priceRange(matches)
	if !priced || minPrice == maxPrice {
		return copyN(matches, limit)
	}

	segmentSize := (maxPrice - minPrice) / priceBands
	var low, mid, high []domain.Product
	for _, p := range matches {
		switch {
		case p.Price == nil:
			mid = append(mid, p)
		case *p.Price < minPrice+segmentSize:
			low = append(low, p)
		case *p.Price < minPrice+2*segmentSize:
			mid = append(mid, p)
		default:
			high = append(high, p)
		}
	}

	lowCount, midCount, highCount := segmentQuotas(len(low), len(mid), len(high), limit)

	d.mu.Lock()
	defer d.mu.Unlock()

	selected := make([]domain.Product, 0, limit)
	selected = append(selected, d.sample(low, lowCount)...)
	selected = append(selected, d.sample(mid, midCount)...)
	selected = append(selected, d.sample(high, highCount)...)
	d.rng.Shuffle(len(selected), func(i, j int) { selected[i], selected[j] = selected[j], selected[i] })

	if len(selected) > limit {
		selected = selected[:limit]
	}
	return selected
}

// segmentQuotas computes how many products to draw from each segment.
// No quota is negative, no quota exceeds its segment and the total never exceeds limit.
func segmentQuotas(lowN, midN, highN, limit int) (int, int, int) {
	lowCount := min(lowSegmentMax, lowN, limit)
	highCount := min(highSegmentMax, highN, limit-lowCount)
	midCount := max(0, min(limit-lowCount-highCount, midN))

	remaining := limit - lowCount - midCount - highCount
	if remaining > 0 && lowN > lowCount {
		extra := min(remaining, lowN-lowCount)
		lowCount += extra
		remaining -= extra
	}
	if remaining > 0 && midN > midCount {
		extra := min(remaining, midN-midCount)
		midCount += extra
		remaining -= extra
	}
	if remaining > 0 && highN > highCount {
		highCount += min(remaining, highN-highCount)
	}
	return lowCount, midCount, highCount
}

// sample draws n products from segment in random order. Callers hold d.mu.
func (d *Diversifier) sample(segment []domain.Product, n int) []domain.Product {
	if n <= 0 {
		return nil
	}
	idx := d.rng.Perm(len(segment))
	out := make([]domain.Product, 0, n)
	for _, i := range idx[:n] {
		out = append(out, segment[i])
	}
	return out
}

func priceRange(matches []domain.Product) (float64, float64, bool) {
	var lo, hi float64
	found := false
	for _, p := range matches {
		if !p.HasPrice() {
			continue
		}
		if !found {
			lo, hi, found = *p.Price, *p.Price, true
			continue
		}
		lo = min(lo, *p.Price)
		hi = max(hi, *p.Price)
	}
	return lo, hi, found
}

// sortedByPrice orders by price, placing products without a price last.
func sortedByPrice(matches []domain.Product, descending bool, limit int) []domain.Product {
	out := copyN(matches, len(matches))
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case !a.HasPrice():
			return false
		case !b.HasPrice():
			return true
		case descending:
			return *a.Price > *b.Price
		default:
			return *a.Price < *b.Price
		}
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func copyN(matches []domain.Product, n int) []domain.Product {
	n = min(n, len(matches))
	out := make([]domain.Product, n)
	copy(out, matches[:n])
	return out
}
