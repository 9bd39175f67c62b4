package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/laptopfinder/backend/internal/domain"
	"github.com/laptopfinder/backend/internal/platform/logger"
)

// MinGPUCandidates is the number of matches a profile GPU restriction must leave
// in place; below it the restriction is dropped.
const MinGPUCandidates = 3

// Clause rule names, in the order they are added.
const (
	RuleProfileRAM         = "profile_ram"
	RuleProfilePerformance = "profile_performance"
	RuleProfileGPU         = "profile_gpu"
	RuleProfileDisplay     = "profile_display"
	RuleBrand              = "brand"
	RulePrice              = "price"
	RuleProcessor          = "processor"
	RuleGraphics           = "graphics"
	RuleResolution         = "resolution"
	RulePerformance        = "performance"
	RuleRAM                = "ram"
	RuleStorage            = "storage"
	RuleScreenSize         = "screen_size"
	RuleInStock            = "in_stock"
)

// Compound performance-level RAM sets. These are raw catalog values, not resolver tiers.
var (
	highPerformanceRAM     = []int{16, 24, 28, 32, 64}
	moderatePerformanceRAM = []int{12, 16}
	basicPerformanceRAM    = []int{4, 8}
)

// PredicateCounter counts catalog records matching a predicate.
type PredicateCounter interface {
	Count(ctx context.Context, p domain.Predicate) (int, error)
}

// PredicateBuilder compiles an extracted specification into catalog filters.
type PredicateBuilder struct {
	counter PredicateCounter
	logger  *logger.Logger
}

// NewPredicateBuilder creates a builder. counter is used for the soft GPU requirement.
func NewPredicateBuilder(counter PredicateCounter, log *logger.Logger) *PredicateBuilder {
	if log == nil {
		log = logger.Nop()
	}
	return &PredicateBuilder{counter: counter, logger: log}
}

// Build compiles spec (and the detected specialized category, if any) into a FilterSet.
// The returned messages explain constraints that were dropped or relaxed.
func (b *PredicateBuilder) Build(ctx context.Context, spec *domain.Specification, detected string) (*domain.FilterSet, []string, error) {
	fs := &domain.FilterSet{}
	var messages []string
	if spec == nil {
		fs.Add(RuleInStock, domain.Is(domain.FieldInStock, true))
		return fs, nil, nil
	}

	for _, issue := range spec.InvalidNumbers() {
		b.logger.Warn("Ignoring invalid numeric filter", "field", issue.Field, "value", issue.Raw)
		messages = append(messages, issue.Message())
	}

	// 1. Specialized profile
	if profile, ok := ProfileFor(detected); ok {
		msgs, err := b.applyProfile(ctx, fs, profile)
		if err != nil {
			return nil, nil, err
		}
		messages = append(messages, msgs...)
	}

	// 2. Explicit fields
	if len(spec.Brand) > 0 {
		fs.Add(RuleBrand, domain.OneOf(domain.FieldBrand, spec.Brand...))
	}
	var priceBounds []domain.Predicate
	if v, ok := spec.MinPrice.Positive(); ok {
		priceBounds = append(priceBounds, domain.Compare(domain.FieldPrice, domain.OpGTE, v))
	}
	if v, ok := spec.MaxPrice.Positive(); ok {
		priceBounds = append(priceBounds, domain.Compare(domain.FieldPrice, domain.OpLTE, v))
	}
	fs.Add(RulePrice, domain.All(priceBounds...))

	processorGiven := fs.Add(RuleProcessor, tokenDisjunction(spec.Processor, ProcessorTokenMatch))
	fs.Add(RuleGraphics, tokenDisjunction(spec.Graphics, GraphicsTokenMatch))
	fs.Add(RuleResolution, tokenDisjunction(spec.Resolution, func(tok string) domain.Predicate {
		return domain.Match(domain.FieldDisplayResolution, domain.OpIContains, strings.TrimSpace(tok))
	}))

	// 3. Performance, only when the processor is not already constrained
	if !processorGiven {
		fs.Add(RulePerformance, performanceLevels(spec.Performance))
	}

	// 4. RAM and storage tiers
	if v, ok := spec.RAM.Positive(); ok {
		tiers := ResolveTiers(v, spec.RAMMinimum(), RAMTiers)
		if len(tiers) == 0 {
			messages = append(messages, fmt.Sprintf("No RAM tier matches %sGB; RAM filter ignored.", spec.RAM.Raw))
		}
		fs.Add(RuleRAM, RAMTierMatch(tiers))
	}
	if v, ok := spec.StorageGB.Positive(); ok {
		tiers := ResolveTiers(v, spec.StorageMinimum(), StorageTiers)
		if len(tiers) == 0 {
			messages = append(messages, fmt.Sprintf("No storage tier matches %sGB; storage filter ignored.", spec.StorageGB.Raw))
		}
		fs.Add(RuleStorage, StorageTierMatch(tiers))
	}

	// 5. Screen size band
	if v, ok := spec.ScreenSizeValue.Positive(); ok {
		if spec.ScreenSizeMinimum() {
			fs.Add(RuleScreenSize, domain.Compare(domain.FieldDisplaySize, domain.OpGTE, v))
		} else {
			fs.Add(RuleScreenSize, domain.All(
				domain.Compare(domain.FieldDisplaySize, domain.OpGTE, v),
				domain.Compare(domain.FieldDisplaySize, domain.OpLT, v+1.0),
			))
		}
	}

	// 6. In stock
	fs.Add(RuleInStock, domain.Is(domain.FieldInStock, true))

	return fs, messages, nil
}

func (b *PredicateBuilder) applyProfile(ctx context.Context, fs *domain.FilterSet, profile SpecializedProfile) ([]string, error) {
	var messages []string

	fs.Add(RuleProfileRAM, RAMTierMatch(ResolveTiers(float64(profile.MinRAM), true, RAMTiers)))
	fs.Add(RuleProfilePerformance, profilePerformance(profile.MinPerformance))

	if profile.GPURequired && b.counter != nil {
		gpu := FamilyMatch(domain.FieldGraphics, discreteGPUFamilies)
		n, err := b.counter.Count(ctx, fs.With(gpu))
		if err != nil {
			return nil, fmt.Errorf("%w: counting GPU candidates: %v", domain.ErrCatalogUnavailable, err)
		}
		if n >= MinGPUCandidates {
			fs.Add(RuleProfileGPU, gpu)
		} else {
			b.logger.Info("Dropping soft GPU requirement", "category", profile.Name, "candidates", n)
			messages = append(messages, fmt.Sprintf(
				"Only %d laptops with a dedicated GPU match %s requirements; showing laptops without one as well.",
				n, profile.FriendlyName))
		}
	}

	if IsCreativeCategory(profile.Name) {
		fs.Add(RuleProfileDisplay, FamilyMatch(domain.FieldDisplayResolution, creativeDisplayResolutions))
	}
	return messages, nil
}

// profilePerformance maps a profile floor to the processor families that satisfy it.
func profilePerformance(level domain.PerformanceLevel) domain.Predicate {
	switch level {
	case domain.PerformanceHigh:
		return FamilyMatch(domain.FieldProcessor, topTierCPUFamilies)
	case domain.PerformanceModerate:
		return FamilyMatch(domain.FieldProcessor, concat(topTierCPUFamilies, midTierCPUFamilies))
	case domain.PerformanceBasic:
		return FamilyMatch(domain.FieldProcessor, basicProfileCPUFamilies)
	}
	return domain.Any()
}

// basicProfileCPUFamilies accepts every mainstream x86 family.
var basicProfileCPUFamilies = []string{
	"i3", "i5", "i7", "i9", "ryzen 3", "ryzen 5", "ryzen 7", "ryzen 9", "celeron", "pentium", "athlon",
}

// performanceLevels ORs the compound predicate of every recognized level.
func performanceLevels(levels []string) domain.Predicate {
	var alternatives []domain.Predicate
	for _, raw := range levels {
		level, ok := domain.ParsePerformanceLevel(raw)
		if !ok {
			continue
		}
		switch level {
		case domain.PerformanceHigh:
			alternatives = append(alternatives, domain.All(
				FamilyMatch(domain.FieldProcessor, topTierCPUFamilies),
				FamilyMatch(domain.FieldGraphics, highPerformanceGPUFamilies),
				RAMTierMatch(highPerformanceRAM),
			))
		case domain.PerformanceModerate:
			alternatives = append(alternatives, domain.All(
				FamilyMatch(domain.FieldProcessor, midTierCPUFamilies),
				RAMTierMatch(moderatePerformanceRAM),
			))
		case domain.PerformanceBasic:
			alternatives = append(alternatives, domain.All(
				FamilyMatch(domain.FieldProcessor, entryTierCPUFamilies),
				RAMTierMatch(basicPerformanceRAM),
			))
		}
	}
	return domain.Any(alternatives...)
}

func tokenDisjunction(tokens []string, match func(string) domain.Predicate) domain.Predicate {
	alternatives := make([]domain.Predicate, 0, len(tokens))
	for _, tok := range tokens {
		if strings.TrimSpace(tok) == "" {
			continue
		}
		alternatives = append(alternatives, match(tok))
	}
	return domain.Any(alternatives...)
}

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
