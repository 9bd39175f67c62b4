package domain

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Filter dictionary keys.
const (
	FilterBrand            = "brand"
	FilterCategory         = "category"
	FilterCondition        = "condition"
	FilterProcessor        = "processor"
	FilterUseCase          = "use_case"
	FilterRAMMin           = "ram_min"
	FilterStorageMin       = "storage_min"
	FilterPriceMin         = "price_min"
	FilterPriceMax         = "price_max"
	FilterPerformanceLevel = "performance_level"
	FilterGPU              = "gpu"
)

// NumericFilterKeys are parsed as numbers when they arrive as query parameters.
var NumericFilterKeys = []string{FilterRAMMin, FilterStorageMin, FilterPriceMin, FilterPriceMax}

// ParseFilterParams reads string parameters into a filter dictionary. The query key and blank
// values are skipped. Numeric keys that do not parse to a finite number are dropped and reported.
func ParseFilterParams(params map[string][]string) (Filters, []FilterIssue) {
	filters := Filters{}
	var issues []FilterIssue
	for key, vals := range params {
		if key == "query" || len(vals) == 0 || strings.TrimSpace(vals[0]) == "" {
			continue
		}
		raw := strings.TrimSpace(vals[0])
		if !isNumericFilterKey(key) {
			filters[key] = raw
			continue
		}
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil || FinitePtr(n) == nil {
			issues = append(issues, FilterIssue{Field: key, Raw: raw})
			continue
		}
		filters[key] = n
	}
	sort.Slice(issues, func(i, j int) bool { return issues[i].Field < issues[j].Field })
	return filters, issues
}

func isNumericFilterKey(key string) bool {
	for _, k := range NumericFilterKeys {
		if k == key {
			return true
		}
	}
	return false
}

// ListingLimit caps the plain catalog listing.
const ListingLimit = 100

// ListingFilters narrows the plain catalog listing. Empty fields add no constraint.
type ListingFilters struct {
	Brands      []string
	Categories  []string
	Storage     []string // "512", "512GB", "1TB"; TB sizes match their binary spellings too
	ScreenSizes []string // display size prefixes such as "15" or "15.6"
	Performance []string // "high", "moderate", "basic"
	Condition   string
	MinPrice    *float64
	MaxPrice    *float64
	Sort        SortOrder
}

// ListingResponse is the body of the catalog listing.
type ListingResponse struct {
	Laptops        []Product `json:"laptops"`
	Count          int       `json:"count"`
	Limit          int       `json:"limit"`
	FilterMessages []string  `json:"filter_messages"`
}

// ParseListingParams reads catalog listing parameters. List parameters are comma separated.
// Prices that do not parse to a finite number are dropped and reported.
func ParseListingParams(params map[string][]string) (ListingFilters, []FilterIssue) {
	first := func(key string) string {
		if vals := params[key]; len(vals) > 0 {
			return strings.TrimSpace(vals[0])
		}
		return ""
	}

	f := ListingFilters{
		Brands:      splitList(first("brand")),
		Categories:  splitList(first("category")),
		Storage:     splitList(first("storage")),
		ScreenSizes: splitList(first("screen_size")),
		Performance: splitList(first("performance")),
		Condition:   first("condition"),
	}

	var issues []FilterIssue
	bounds := []struct {
		key string
		dst **float64
	}{
		{"min_price", &f.MinPrice},
		{"max_price", &f.MaxPrice},
	}
	for _, b := range bounds {
		raw := first(b.key)
		if raw == "" {
			continue
		}
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil || FinitePtr(n) == nil {
			issues = append(issues, FilterIssue{Field: b.key, Raw: raw})
			continue
		}
		*b.dst = FinitePtr(n)
	}

	switch first("ordering") {
	case "price":
		f.Sort = SortPriceAsc
	case "-price":
		f.Sort = SortPriceDesc
	}
	return f, issues
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Filters is the loosely typed filter dictionary exchanged with the retrieval engine.
// Known keys: brand, category, condition, processor, use_case, ram_min, storage_min,
// price_min, price_max, performance_level, gpu.
type Filters map[string]interface{}

// Has reports whether key is present.
func (f Filters) Has(key string) bool {
	_, ok := f[key]
	return ok
}

// Clone returns a shallow copy so callers never see their input mutated.
func (f Filters) Clone() Filters {
	out := make(Filters, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Keys returns the keys in sorted order.
func (f Filters) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// QueryAnalysis is the classifier output for a query.
type QueryAnalysis struct {
	PredictedCategory string             `json:"predicted_category"`
	Categories        map[string]float64 `json:"categories"`
}

// Confidence returns the score of the predicted category.
func (a *QueryAnalysis) Confidence() float64 {
	if a == nil {
		return 0
	}
	return a.Categories[a.PredictedCategory]
}

// ChatRequest is the body of a chatbot request.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the result of the extraction-driven pipeline.
type ChatResponse struct {
	UserMessage      string         `json:"user_message"`
	ExtractedSpecs   *Specification `json:"extracted_specs"`
	DetectedCategory string         `json:"detected_category,omitempty"`
	Filters          *FilterSet     `json:"compiled_filters,omitempty"`
	Laptops          []Product      `json:"laptops"`
	Message          *string        `json:"message"`
	FilterMessages   []string       `json:"filter_messages"`
}

// FinderRequest is the body of a classifier-driven search.
type FinderRequest struct {
	Query   string  `json:"query"`
	Filters Filters `json:"filters"`
}

// FinderResponse is the result of the classifier-driven pipeline.
type FinderResponse struct {
	Query             string    `json:"query"`
	Results           []Product `json:"results"`
	FilterMessages    []string  `json:"filter_messages"`
	AppliedFilters    Filters   `json:"applied_filters"`
	PredictedCategory string    `json:"predicted_category,omitempty"`
	Confidence        *float64  `json:"confidence,omitempty"`
}

// FinitePtr returns nil for NaN and infinities so they serialize as null.
func FinitePtr(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// SanitizeProducts replaces non-finite prices with absent values.
func SanitizeProducts(products []Product) []Product {
	for i := range products {
		if products[i].Price != nil {
			products[i].Price = FinitePtr(*products[i].Price)
		}
	}
	return products
}

// SanitizeFilters replaces non-finite float values with nil.
func SanitizeFilters(f Filters) Filters {
	for k, v := range f {
		if n, ok := v.(float64); ok && (math.IsNaN(n) || math.IsInf(n, 0)) {
			f[k] = nil
		}
	}
	return f
}
