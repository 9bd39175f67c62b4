// Package app wires configuration into the running pipeline. Both the HTTP server and finderctl build on it.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/laptopfinder/backend/config"
	"github.com/laptopfinder/backend/internal/domain"
	"github.com/laptopfinder/backend/internal/infrastructure/cache"
	"github.com/laptopfinder/backend/internal/infrastructure/catalog"
	"github.com/laptopfinder/backend/internal/infrastructure/classifier"
	"github.com/laptopfinder/backend/internal/infrastructure/llm"
	"github.com/laptopfinder/backend/internal/observability"
	"github.com/laptopfinder/backend/internal/platform/logger"
	"github.com/laptopfinder/backend/internal/usecase"
)

// Catalog is a store that can also be bulk loaded.
type Catalog interface {
	domain.CatalogStore
	Upsert(ctx context.Context, products []domain.Product) error
}

// App holds the long-lived collaborators built from configuration.
type App struct {
	Config     *config.Config
	Logger     *logger.Logger
	Catalog    Catalog
	Classifier domain.QueryClassifier
	Finder     *usecase.FinderService
	Metrics    *observability.Metrics
	Registry   *prometheus.Registry

	closers []func() error
}

// New builds every collaborator. Missing extractor credentials or classifier model only disable
// the features that need them; catalog and cache failures are fatal.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	if log == nil {
		log = logger.Nop()
	}
	a := &App{Config: cfg, Logger: log, Registry: prometheus.NewRegistry()}
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.Metrics = observability.NewMetrics(a.Registry)

	store, err := a.openCatalog(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Catalog = store

	extractionCache, err := a.openCache(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	var extractor domain.SpecificationExtractor
	client, err := llm.NewClient(llm.Config{
		APIKey:            cfg.LLM.APIKey,
		BaseURL:           cfg.LLM.BaseURL,
		Model:             cfg.LLM.Model,
		Timeout:           cfg.LLM.Timeout,
		RequestsPerSecond: cfg.LLM.RequestsPerSecond,
		Burst:             cfg.LLM.Burst,
		StructuredOutput:  cfg.LLM.StructuredOutput,
	}, log)
	switch {
	case err == nil:
		extractor = client
		log.Info("Specification extractor configured", "model", cfg.LLM.Model, "base_url", cfg.LLM.BaseURL)
	case errors.Is(err, domain.ErrExtractorNotConfigured):
		log.Warn("Specification extractor not configured; chatbot requests will fail", "env", "LAPTOPFINDER_LLM_API_KEY")
	default:
		a.Close()
		return nil, err
	}

	if cfg.Classifier.ModelPath != "" {
		nb, err := classifier.Load(cfg.Classifier.ModelPath)
		if err != nil {
			log.Warn("Query classifier unavailable; finder augmentation limited to query keywords", "path", cfg.Classifier.ModelPath, "error", err)
		} else {
			a.Classifier = nb
			log.Info("Query classifier loaded", "path", cfg.Classifier.ModelPath, "labels", len(nb.Labels()))
		}
	}

	a.Finder = usecase.NewFinderService(store, extractor, a.Classifier, nil, extractionCache, usecase.FinderServiceConfig{
		CacheTTL:          cfg.Cache.TTL,
		ResultLimit:       cfg.Finder.ResultLimit,
		TopN:              cfg.Finder.TopN,
		FuzzyMatching:     cfg.Finder.FuzzyMatching,
		FuzzyEditDistance: cfg.Finder.FuzzyEditDistance,
		Recorder:          a.Metrics,
	}, log)

	return a, nil
}

func (a *App) openCatalog(ctx context.Context) (Catalog, error) {
	cfg := a.Config.Catalog

	var products []domain.Product
	if cfg.Source != "" {
		loaded, err := catalog.LoadFile(cfg.Source)
		if err != nil {
			return nil, err
		}
		products = loaded
	}

	switch cfg.Driver {
	case "", "memory":
		if len(products) == 0 {
			a.Logger.Warn("Catalog is empty; set LAPTOPFINDER_CATALOG_SOURCE to load laptops")
		}
		a.Logger.Info("Catalog loaded", "driver", "memory", "products", len(products))
		return catalog.NewMemoryStore(products), nil
	default:
		store, err := catalog.OpenSQL(cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		if len(products) > 0 {
			if err := store.Upsert(ctx, products); err != nil {
				return nil, err
			}
		}
		a.Logger.Info("Catalog opened", "driver", cfg.Driver, "imported", len(products))
		return store, nil
	}
}

func (a *App) openCache(ctx context.Context) (domain.CacheRepository, error) {
	cfg := a.Config.Cache
	if cfg.Type == "redis" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{URL: cfg.RedisURL})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.closers = append(a.closers, rc.Close)
		a.Logger.Info("Extraction cache ready", "type", "redis", "ttl", cfg.TTL)
		return rc, nil
	}
	mc := cache.NewMemoryCache()
	a.closers = append(a.closers, mc.Close)
	a.Logger.Info("Extraction cache ready", "type", "memory", "ttl", cfg.TTL)
	return mc, nil
}

// Close releases stores and caches in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
