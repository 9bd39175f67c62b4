package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/laptopfinder/backend/internal/domain"
	"github.com/laptopfinder/backend/internal/platform/logger"
)

// Package-level compiled regex pattern for performance
var punctuationRegex = regexp.MustCompile(`[^\w\s]`)

// Scoring weights and bonuses
const (
	queryCoverageWeight  = 0.60 // share of query tokens found in the record
	recordCoverageWeight = 0.20 // share of record tokens found in the query
	jaccardWeight        = 0.20
	baseScoreMultiplier  = 100.0
	fuzzyWeightFactor    = 0.8  // fuzzy matches count for 80% of an exact match
	brandMatchBonus      = 15.0 // brand named in the query
	useCaseMatchBonus    = 20.0 // record category matches the requested use case
	defaultFuzzyDistance = 1
	minFuzzyTokenLength  = 4
	defaultRankingTopN   = 20
)

// rankingStopWords are dropped from queries and record text before scoring.
var rankingStopWords = map[string]bool{
	// Basic English stop words
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"of": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "with": true, "by": true, "from": true, "is": true,
	"it": true, "as": true, "be": true, "was": true, "are": true,
	"i": true, "me": true, "my": true, "need": true, "want": true,
	"looking": true, "something": true, "good": true, "best": true,
	// Listing noise
	"laptop": true, "laptops": true, "notebook": true, "computer": true, "pc": true,
	"new": true, "inch": true, "inches": true, "display": true, "screen": true,
	"under": true, "below": true, "around": true, "about": true,
}

// relaxationOrder lists soft filters in the order they are dropped when nothing matches.
var relaxationOrder = []string{
	domain.FilterGPU,
	domain.FilterPerformanceLevel,
	domain.FilterRAMMin,
	domain.FilterStorageMin,
}

// RankingConfig holds configuration for the ranking engine
type RankingConfig struct {
	EnableFuzzyMatching bool
	FuzzyEditDistance   int
	DefaultTopN         int
}

// RankingEngine is the in-process retrieval engine used by the laptop finder.
// It filters the catalog with the filter dictionary, relaxes soft filters when
// nothing matches and ranks by token overlap with the query.
type RankingEngine struct {
	store               domain.CatalogStore
	logger              *logger.Logger
	enableFuzzyMatching bool
	fuzzyEditDistance   int
	defaultTopN         int
}

// NewRankingEngine creates a ranking engine over the given catalog.
func NewRankingEngine(store domain.CatalogStore, config RankingConfig, log *logger.Logger) *RankingEngine {
	if log == nil {
		log = logger.Nop()
	}
	fuzzyDist := config.FuzzyEditDistance
	if fuzzyDist <= 0 {
		fuzzyDist = defaultFuzzyDistance
	}
	topN := config.DefaultTopN
	if topN <= 0 {
		topN = defaultRankingTopN
	}
	return &RankingEngine{
		store:               store,
		logger:              log,
		enableFuzzyMatching: config.EnableFuzzyMatching,
		fuzzyEditDistance:   fuzzyDist,
		defaultTopN:         topN,
	}
}

type scoredProduct struct {
	product domain.Product
	score   float64
}

// Search returns up to topN records ranked for query under filters, plus filter explanations.
func (e *RankingEngine) Search(ctx context.Context, query string, topN int, filters domain.Filters) ([]domain.Product, []string, error) {
	if topN <= 0 {
		topN = e.defaultTopN
	}

	hard, soft, messages := e.compileFilters(filters)

	active := append([]string(nil), relaxationOrder...)
	var candidates []domain.Product
	for {
		pred := domain.All(hard, e.softPredicate(soft, active))
		found, err := e.store.Find(ctx, pred, domain.QueryOptions{})
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
		}
		candidates = found
		if len(candidates) > 0 {
			break
		}

		relaxed := false
		for i, key := range active {
			if _, ok := soft[key]; !ok {
				continue
			}
			active = append(active[:i:i], active[i+1:]...)
			messages = append(messages, relaxationMessage(key, filters[key]))
			e.logger.Info("Relaxing filter", "filter", key)
			relaxed = true
			break
		}
		if !relaxed {
			break
		}
	}

	useCase := strings.ToLower(filterString(filters, domain.FilterUseCase))
	queryTokens := tokenize(query)

	scored := make([]scoredProduct, 0, len(candidates))
	for _, p := range candidates {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}
		scored = append(scored, scoredProduct{product: p, score: e.score(queryTokens, query, p, useCase)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return lessByPrice(scored[i].product, scored[j].product)
	})

	if len(scored) > topN {
		scored = scored[:topN]
	}
	results := make([]domain.Product, len(scored))
	for i, s := range scored {
		results[i] = s.product
	}
	return results, messages, nil
}

// compileFilters splits the filter dictionary into a hard predicate and per-key soft predicates.
func (e *RankingEngine) compileFilters(filters domain.Filters) (domain.Predicate, map[string]domain.Predicate, []string) {
	var messages []string
	hard := []domain.Predicate{domain.Is(domain.FieldInStock, true)}
	soft := make(map[string]domain.Predicate)

	if brands := filterList(filters, domain.FilterBrand); len(brands) > 0 {
		hard = append(hard, domain.OneOf(domain.FieldBrand, brands...))
	}
	if cats := filterList(filters, domain.FilterCategory); len(cats) > 0 {
		hard = append(hard, FamilyMatch(domain.FieldCategory, lowerAll(cats)))
	}
	if cond := filterString(filters, domain.FilterCondition); cond != "" {
		hard = append(hard, domain.Match(domain.FieldCondition, domain.OpIEquals, cond))
	}
	if procs := filterList(filters, domain.FilterProcessor); len(procs) > 0 {
		hard = append(hard, tokenDisjunction(procs, ProcessorTokenMatch))
	}

	numbers := make(map[string]float64)
	for _, key := range domain.NumericFilterKeys {
		if !filters.Has(key) {
			continue
		}
		v, err := filterNumber(filters, key)
		if err != nil {
			e.logger.Warn("Ignoring invalid numeric filter", "filter", key, "error", err)
			var issue domain.FilterIssue
			if errors.As(err, &issue) {
				messages = append(messages, issue.Message())
			}
			continue
		}
		if v > 0 {
			numbers[key] = v
		}
	}

	if v, ok := numbers[domain.FilterPriceMin]; ok {
		hard = append(hard, domain.Compare(domain.FieldPrice, domain.OpGTE, v))
	}
	if v, ok := numbers[domain.FilterPriceMax]; ok {
		hard = append(hard, domain.Compare(domain.FieldPrice, domain.OpLTE, v))
	}
	if v, ok := numbers[domain.FilterRAMMin]; ok {
		if tiers := ResolveTiers(v, true, RAMTiers); len(tiers) > 0 {
			soft[domain.FilterRAMMin] = RAMTierMatch(tiers)
		} else {
			messages = append(messages, fmt.Sprintf("No RAM tier of at least %gGB exists; RAM filter ignored.", v))
		}
	}
	if v, ok := numbers[domain.FilterStorageMin]; ok {
		if tiers := ResolveTiers(v, true, StorageTiers); len(tiers) > 0 {
			soft[domain.FilterStorageMin] = StorageTierMatch(tiers)
		} else {
			messages = append(messages, fmt.Sprintf("No storage tier of at least %gGB exists; storage filter ignored.", v))
		}
	}
	if level, ok := domain.ParsePerformanceLevel(filterString(filters, domain.FilterPerformanceLevel)); ok {
		if p := profilePerformance(level); !p.IsEmpty() {
			soft[domain.FilterPerformanceLevel] = p
		}
	}
	switch strings.ToLower(filterString(filters, domain.FilterGPU)) {
	case "discrete", "dedicated":
		soft[domain.FilterGPU] = FamilyMatch(domain.FieldGraphics, discreteGPUFamilies)
	case "integrated":
		soft[domain.FilterGPU] = FamilyMatch(domain.FieldGraphics, integratedGPUFamilies)
	}

	return domain.All(hard...), soft, messages
}

func (e *RankingEngine) softPredicate(soft map[string]domain.Predicate, active []string) domain.Predicate {
	ps := make([]domain.Predicate, 0, len(active))
	for _, key := range active {
		if p, ok := soft[key]; ok {
			ps = append(ps, p)
		}
	}
	return domain.All(ps...)
}

func relaxationMessage(key string, value interface{}) string {
	switch key {
	case domain.FilterGPU:
		return fmt.Sprintf("No laptops matched the %v GPU requirement; showing laptops with any graphics.", value)
	case domain.FilterPerformanceLevel:
		return fmt.Sprintf("No laptops matched the %v performance level; relaxed the processor requirement.", value)
	case domain.FilterRAMMin:
		return fmt.Sprintf("No laptops matched the minimum RAM of %vGB; relaxed the RAM requirement.", value)
	case domain.FilterStorageMin:
		return fmt.Sprintf("No laptops matched the minimum storage of %vGB; relaxed the storage requirement.", value)
	}
	return fmt.Sprintf("Relaxed the %s filter.", key)
}

// score computes similarity between the query and a catalog record (0-100 plus bonuses).
// Uses a weighted combination of:
//   - Query token coverage: what % of the query tokens appear in the record (most important)
//   - Record token coverage: what % of the record tokens appear in the query
//   - Jaccard similarity of both token sets
//
// Brand and use-case bonuses are added on top.
func (e *RankingEngine) score(queryTokens []string, query string, p domain.Product, useCase string) float64 {
	var s float64
	recordTokens := productTokens(p)

	if len(queryTokens) > 0 && len(recordTokens) > 0 {
		matched := e.matchTokens(queryTokens, recordTokens)
		recordMatched, _ := findIntersection(recordTokens, queryTokens)
		union := findUnion(queryTokens, recordTokens)

		queryCoverage := matched / float64(len(uniqueTokens(queryTokens)))
		recordCoverage := float64(recordMatched) / float64(len(recordTokens))
		jaccard := float64(recordMatched) / float64(union)
		s = (queryCoverage*queryCoverageWeight + recordCoverage*recordCoverageWeight + jaccard*jaccardWeight) * baseScoreMultiplier
	}

	if p.Brand != "" && strings.Contains(strings.ToLower(query), strings.ToLower(p.Brand)) {
		s += brandMatchBonus
	}
	if useCase != "" && strings.Contains(strings.ToLower(p.Category), useCase) {
		s += useCaseMatchBonus
	}
	return s
}

// matchTokens counts query tokens found in the record, giving fuzzy matches partial credit.
func (e *RankingEngine) matchTokens(queryTokens, recordTokens []string) float64 {
	record := make(map[string]bool, len(recordTokens))
	for _, t := range recordTokens {
		record[t] = true
	}
	var matched float64
	for _, q := range uniqueTokens(queryTokens) {
		if record[q] {
			matched++
			continue
		}
		if !e.enableFuzzyMatching {
			continue
		}
		for _, r := range recordTokens {
			if fuzzyTokenMatch(q, r, e.fuzzyEditDistance) {
				matched += fuzzyWeightFactor
				break
			}
		}
	}
	return matched
}

// productTokens returns the searchable tokens of a record, including canonical attribute tokens.
func productTokens(p domain.Product) []string {
	text := strings.Join([]string{p.Name, p.Brand, p.Model, p.Processor, p.Graphics, p.Category}, " ")
	tokens := tokenize(text)
	tokens = append(tokens, NormalizeAttributes(p).Tokens()...)
	return uniqueTokens(tokens)
}

// tokenize splits a string into normalized lowercase tokens.
// Removes punctuation, stop words, listing noise and pure numeric tokens.
func tokenize(s string) []string {
	cleaned := punctuationRegex.ReplaceAllString(strings.ToLower(s), " ")
	words := strings.Fields(cleaned)

	var tokens []string
	for _, word := range words {
		if len(word) <= 1 {
			continue
		}
		if rankingStopWords[word] {
			continue
		}
		if isNumeric(word) {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

// isNumeric checks if a string contains only digits
func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

// fuzzyTokenMatch checks if two tokens are similar within the edit distance threshold
func fuzzyTokenMatch(token1, token2 string, threshold int) bool {
	if token1 == token2 {
		return true
	}

	// Only apply fuzzy matching to longer tokens to avoid false positives ("i5" vs "i7")
	if len(token1) < minFuzzyTokenLength || len(token2) < minFuzzyTokenLength {
		return false
	}

	lenDiff := len(token1) - len(token2)
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	if lenDiff > threshold {
		return false
	}

	return levenshteinDistance(token1, token2) <= threshold
}

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	r1 := []rune(s1)
	r2 := []rune(s2)
	m := len(r1)
	n := len(r2)

	// Two rows instead of the full matrix
	prev := make([]int, n+1)
	curr := make([]int, n+1)
	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}

// findIntersection returns the count of common tokens and the list of matched tokens
func findIntersection(tokens1, tokens2 []string) (int, []string) {
	set := make(map[string]bool)
	for _, t := range tokens1 {
		set[t] = true
	}

	var matched []string
	seen := make(map[string]bool)
	for _, t := range tokens2 {
		if set[t] && !seen[t] {
			matched = append(matched, t)
			seen[t] = true
		}
	}

	return len(matched), matched
}

// findUnion returns the count of unique tokens across both sets
func findUnion(tokens1, tokens2 []string) int {
	set := make(map[string]bool)
	for _, t := range tokens1 {
		set[t] = true
	}
	for _, t := range tokens2 {
		set[t] = true
	}
	return len(set)
}

func uniqueTokens(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

func lessByPrice(a, b domain.Product) bool {
	switch {
	case !a.HasPrice():
		return false
	case !b.HasPrice():
		return true
	}
	return *a.Price < *b.Price
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}
