package usecase

import (
	"strings"

	"github.com/laptopfinder/backend/internal/domain"
	"github.com/laptopfinder/backend/internal/platform/logger"
)

// filterDefaults are hardware defaults filled into a filter dictionary when absent.
type filterDefaults struct {
	RAMMin      float64
	Performance string
	GPU         string
}

// useCaseByLabel maps classifier labels to retrieval use cases. An empty value means no use case.
var useCaseByLabel = map[string]string{
	"student":      "study",
	"business":     "business",
	"gaming":       "gaming",
	"multimedia":   "multimedia",
	"engineering":  "engineering",
	"2-in-1":       "study",
	"portable":     "business",
	"data science": "data science",
	"budget":       "",
}

// defaultsByLabel holds the per-label hardware defaults.
var defaultsByLabel = map[string]filterDefaults{
	"gaming":       {RAMMin: 10, Performance: "Moderate", GPU: "discrete"},
	"engineering":  {RAMMin: 16, Performance: "Moderate", GPU: "discrete"},
	"multimedia":   {RAMMin: 16, Performance: "Moderate"},
	"data science": {RAMMin: 16, Performance: "High", GPU: "discrete"},
	"student":      {RAMMin: 4, Performance: "Basic"},
	"business":     {RAMMin: 8, Performance: "Basic"},
}

type queryKeywordRule struct {
	keywords []string
	defaults filterDefaults
}

// queryKeywordRules is scanned in order against the raw query; the first matching rule applies.
var queryKeywordRules = []queryKeywordRule{
	{keywords: []string{"logic circuit", "verilog", "hdl"}, defaults: filterDefaults{RAMMin: 12, Performance: "Moderate"}},
	{keywords: []string{"creator", "content creation", "video editing"}, defaults: filterDefaults{RAMMin: 16, Performance: "High", GPU: "discrete"}},
	{keywords: []string{"workstation", "professional"}, defaults: filterDefaults{RAMMin: 12, Performance: "Moderate", GPU: "discrete"}},
	{keywords: []string{"animation", "3d", "modeling"}, defaults: filterDefaults{RAMMin: 32, Performance: "High", GPU: "discrete"}},
}

// ClassifierAugmenter fills classifier-derived defaults into a retrieval filter dictionary.
type ClassifierAugmenter struct {
	logger *logger.Logger
}

// NewClassifierAugmenter creates an augmenter.
func NewClassifierAugmenter(log *logger.Logger) *ClassifierAugmenter {
	if log == nil {
		log = logger.Nop()
	}
	return &ClassifierAugmenter{logger: log}
}

// Augment returns a copy of filters with defaults derived from analysis and rawQuery.
// Keys already present are never overwritten. analysis may be nil when no classifier is loaded;
// the query keyword pass still runs.
func (a *ClassifierAugmenter) Augment(filters domain.Filters, analysis *domain.QueryAnalysis, rawQuery string) domain.Filters {
	out := filters.Clone()

	if analysis != nil && analysis.PredictedCategory != "" {
		label := strings.ToLower(analysis.PredictedCategory)
		a.logger.Info("Detected use case", "category", label, "confidence", analysis.Confidence())

		if useCase := useCaseByLabel[label]; useCase != "" {
			fillIfAbsent(out, domain.FilterUseCase, useCase)
		}
		if d, ok := defaultsByLabel[label]; ok {
			applyDefaults(out, d)
		}
	}

	query := strings.ToLower(rawQuery)
	for _, rule := range queryKeywordRules {
		if containsAny(query, rule.keywords) {
			applyDefaults(out, rule.defaults)
			break
		}
	}
	return out
}

func applyDefaults(f domain.Filters, d filterDefaults) {
	if d.RAMMin > 0 {
		fillIfAbsent(f, domain.FilterRAMMin, d.RAMMin)
	}
	if d.Performance != "" {
		fillIfAbsent(f, domain.FilterPerformanceLevel, d.Performance)
	}
	if d.GPU != "" {
		fillIfAbsent(f, domain.FilterGPU, d.GPU)
	}
}

func fillIfAbsent(f domain.Filters, key string, value interface{}) {
	if !f.Has(key) {
		f[key] = value
	}
}
