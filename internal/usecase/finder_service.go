package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/laptopfinder/backend/internal/domain"
	"github.com/laptopfinder/backend/internal/platform/logger"
)

// Package-level compiled regex patterns for performance
var (
	nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9\s]`)
	multipleSpacesRegex  = regexp.MustCompile(`\s+`)
)

const (
	defaultResultLimit = 10
	defaultFinderTopN  = 20
	defaultCacheTTL    = 24 * time.Hour

	pipelineChat    = "chat"
	pipelineFinder  = "finder"
	pipelineListing = "listing"
)

// Extraction outcomes reported to the PipelineRecorder.
const (
	OutcomeExtracted  = "ok"
	OutcomeCached     = "cached"
	OutcomeFailed     = "failure"
	OutcomeParseError = "parse_error"
)

// PipelineRecorder receives pipeline metrics. Implemented by observability.Metrics.
type PipelineRecorder interface {
	RecordExtraction(outcome string, elapsed time.Duration)
	RecordCacheLookup(hit bool)
	RecordResults(pipeline string, results, messages int)
}

type nopRecorder struct{}

func (nopRecorder) RecordExtraction(string, time.Duration) {}
func (nopRecorder) RecordCacheLookup(bool)                 {}
func (nopRecorder) RecordResults(string, int, int)         {}

// FinderServiceConfig holds configuration for the finder service
type FinderServiceConfig struct {
	CacheTTL    time.Duration
	ResultLimit int
	TopN        int
	Recorder    PipelineRecorder
	Rand        *rand.Rand

	// Fuzzy token matching in the default ranking engine
	FuzzyMatching     bool
	FuzzyEditDistance int
}

// FinderService runs both query pipelines: extraction-driven chat and classifier-driven search.
type FinderService struct {
	store       domain.CatalogStore
	extractor   domain.SpecificationExtractor
	classifier  domain.QueryClassifier
	engine      domain.RetrievalEngine
	cache       domain.CacheRepository
	detector    *CategoryDetector
	builder     *PredicateBuilder
	augmenter   *ClassifierAugmenter
	diversifier *Diversifier
	recorder    PipelineRecorder
	logger      *logger.Logger
	tracer      trace.Tracer
	cacheTTL    time.Duration
	resultLimit int
	topN        int
}

// NewFinderService creates a finder service with dependencies.
// extractor, classifier and cache may be nil: chat then reports ErrExtractorNotConfigured,
// search skips classifier augmentation, and extractions are not cached.
// A nil engine falls back to an in-process RankingEngine over store.
func NewFinderService(
	store domain.CatalogStore,
	extractor domain.SpecificationExtractor,
	classifier domain.QueryClassifier,
	engine domain.RetrievalEngine,
	cache domain.CacheRepository,
	config FinderServiceConfig,
	log *logger.Logger,
) *FinderService {
	if log == nil {
		log = logger.Nop()
	}
	if engine == nil {
		engine = NewRankingEngine(store, RankingConfig{
			EnableFuzzyMatching: config.FuzzyMatching,
			FuzzyEditDistance:   config.FuzzyEditDistance,
			DefaultTopN:         config.TopN,
		}, log)
	}

	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = defaultCacheTTL
	}
	resultLimit := config.ResultLimit
	if resultLimit <= 0 {
		resultLimit = defaultResultLimit
	}
	topN := config.TopN
	if topN <= 0 {
		topN = defaultFinderTopN
	}
	var recorder PipelineRecorder = nopRecorder{}
	if config.Recorder != nil {
		recorder = config.Recorder
	}

	return &FinderService{
		store:       store,
		extractor:   extractor,
		classifier:  classifier,
		engine:      engine,
		cache:       cache,
		detector:    NewCategoryDetector(),
		builder:     NewPredicateBuilder(store, log),
		augmenter:   NewClassifierAugmenter(log),
		diversifier: NewDiversifier(config.Rand),
		recorder:    recorder,
		logger:      log,
		tracer:      otel.Tracer("github.com/laptopfinder/backend/internal/usecase"),
		cacheTTL:    cacheTTL,
		resultLimit: resultLimit,
		topN:        topN,
	}
}

// Chat answers a free-text message.
// Flow: extract (cache first) -> parse -> detect category -> compile filters -> query catalog -> diversify
func (s *FinderService) Chat(ctx context.Context, message string) (*domain.ChatResponse, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", domain.ErrInvalidRequest)
	}
	if s.extractor == nil {
		return nil, domain.ErrExtractorNotConfigured
	}

	ctx, span := s.tracer.Start(ctx, "FinderService.Chat")
	defer span.End()

	spec, err := s.extractSpecification(ctx, message)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "extraction failed")
		return nil, err
	}

	resp := &domain.ChatResponse{
		UserMessage:    message,
		ExtractedSpecs: spec,
		Laptops:        []domain.Product{},
		FilterMessages: []string{},
	}

	if !spec.IsSubstantive() {
		s.logger.Info("Extracted specification is empty; not querying catalog")
		resp.Message = stringPtr(NonLaptopQueryMessage)
		s.recorder.RecordResults(pipelineChat, 0, 0)
		return resp, nil
	}

	// Only extracted categories are scanned, never the raw message.
	detected, _ := s.detector.Detect(spec.Category, "")
	resp.DetectedCategory = detected
	span.SetAttributes(attribute.String("finder.detected_category", detected))

	filters, messages, err := s.builder.Build(ctx, spec, detected)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "filter compilation failed")
		return nil, err
	}
	resp.Filters = filters
	resp.FilterMessages = append(resp.FilterMessages, messages...)

	priceSpecified := spec.PriceSpecified()
	_, descending := spec.MaxPrice.Positive()
	opts := domain.QueryOptions{}
	if priceSpecified {
		opts.Sort = domain.SortPriceAsc
		if descending {
			opts.Sort = domain.SortPriceDesc
		}
		opts.Limit = s.resultLimit
	}

	matches, err := s.store.Find(ctx, filters.Predicate(), opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "catalog query failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	span.SetAttributes(attribute.Int("finder.matches", len(matches)))

	resp.Laptops = domain.SanitizeProducts(s.diversifier.Diversify(matches, priceSpecified, descending, s.resultLimit))
	if len(resp.Laptops) == 0 {
		resp.Message = stringPtr(NoMatchesGuidance(detected))
	}

	s.logger.Info("Chat query answered",
		"detected_category", detected,
		"clauses", len(filters.Clauses),
		"matches", len(matches),
		"returned", len(resp.Laptops),
	)
	s.recorder.RecordResults(pipelineChat, len(resp.Laptops), len(resp.FilterMessages))
	return resp, nil
}

// Find answers a classifier-driven search over the ranking engine.
func (s *FinderService) Find(ctx context.Context, query string, filters domain.Filters) (*domain.FinderResponse, error) {
	query = strings.TrimSpace(query)

	ctx, span := s.tracer.Start(ctx, "FinderService.Find")
	defer span.End()

	var analysis *domain.QueryAnalysis
	if s.classifier != nil && query != "" {
		a, err := s.classifier.Analyze(ctx, query)
		if err != nil {
			s.logger.Warn("Query classification failed; continuing without it", "error", err)
		} else {
			analysis = a
		}
	}

	applied := s.augmenter.Augment(filters, analysis, query)

	results, messages, err := s.engine.Search(ctx, query, s.topN, applied)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		return nil, err
	}
	if results == nil {
		results = []domain.Product{}
	}
	if messages == nil {
		messages = []string{}
	}

	resp := &domain.FinderResponse{
		Query:          query,
		Results:        domain.SanitizeProducts(results),
		FilterMessages: messages,
		AppliedFilters: domain.SanitizeFilters(applied),
	}
	if analysis != nil {
		resp.PredictedCategory = analysis.PredictedCategory
		resp.Confidence = domain.FinitePtr(analysis.Confidence())
		span.SetAttributes(attribute.String("finder.predicted_category", analysis.PredictedCategory))
	}

	span.SetAttributes(attribute.Int("finder.results", len(results)))
	s.recorder.RecordResults(pipelineFinder, len(results), len(messages))
	return resp, nil
}

// extractSpecification returns the parsed specification for message, consulting the cache first.
// Only raw extractor output that parses is cached.
func (s *FinderService) extractSpecification(ctx context.Context, message string) (*domain.Specification, error) {
	cacheKey := generateCacheKey(message)

	if raw, ok := s.getFromCache(ctx, cacheKey); ok {
		if spec, err := ParseSpecification(raw); err == nil {
			s.recorder.RecordExtraction(OutcomeCached, 0)
			return spec, nil
		}
		s.logger.Warn("Discarding unparseable cached extraction", "key", cacheKey)
	}

	start := time.Now()
	raw, err := s.extractor.ExtractSpecification(ctx, message)
	elapsed := time.Since(start)
	if err != nil {
		s.recorder.RecordExtraction(OutcomeFailed, elapsed)
		if errors.Is(err, domain.ErrExtractorNotConfigured) || errors.Is(err, domain.ErrExtractorFailure) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractorFailure, err)
	}

	spec, err := ParseSpecification(raw)
	if err != nil {
		s.recorder.RecordExtraction(OutcomeParseError, elapsed)
		s.logger.Warn("Extractor returned unparseable output", "error", err)
		return nil, err
	}
	s.recorder.RecordExtraction(OutcomeExtracted, elapsed)

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, []byte(raw), s.cacheTTL); err != nil {
			s.logger.Warn("Failed to cache extraction", "key", cacheKey, "error", err)
		}
	}
	return spec, nil
}

func (s *FinderService) getFromCache(ctx context.Context, key string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	value, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			s.logger.Warn("Cache lookup failed", "key", key, "error", err)
		}
		s.recorder.RecordCacheLookup(false)
		return "", false
	}
	s.recorder.RecordCacheLookup(true)
	return string(value), true
}

// generateCacheKey creates a normalized cache key for an extraction.
// Format: "extraction:{normalized_message}"
func generateCacheKey(message string) string {
	return "extraction:" + normalizeForCacheKey(message)
}

// normalizeForCacheKey normalizes a string for use as cache key component.
// Converts to lowercase, removes special characters, and trims whitespace.
func normalizeForCacheKey(s string) string {
	if s == "" {
		return ""
	}
	result := strings.ToLower(s)
	result = nonAlphanumericRegex.ReplaceAllString(result, "")
	result = multipleSpacesRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

func stringPtr(s string) *string { return &s }
