package usecase

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/laptopfinder/backend/internal/domain"
)

// filterString returns a string filter value, or "" when absent or not a string.
func filterString(f domain.Filters, key string) string {
	switch v := f[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	}
	return ""
}

// filterList returns a list filter value. Strings are split on commas; arrays keep their scalar items.
func filterList(f domain.Filters, key string) []string {
	var raw []string
	switch v := f[key].(type) {
	case string:
		raw = strings.Split(v, ",")
	case []string:
		raw = v
	case []interface{}:
		for _, item := range v {
			if item != nil {
				raw = append(raw, fmt.Sprint(item))
			}
		}
	}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// filterNumber returns a numeric filter value. Absent and null values are 0.
// Values that cannot be read as a finite number return a domain.FilterIssue.
func filterNumber(f domain.Filters, key string) (float64, error) {
	var (
		v   float64
		raw string
	)
	switch x := f[key].(type) {
	case nil:
		return 0, nil
	case float64:
		v, raw = x, fmt.Sprint(x)
	case float32:
		v, raw = float64(x), fmt.Sprint(x)
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case json.Number:
		n := domain.ParseNumber(x.String())
		if !n.Valid {
			return 0, domain.FilterIssue{Field: key, Raw: x.String()}
		}
		return n.Value, nil
	case string:
		n := domain.ParseNumber(x)
		if !n.Valid {
			return 0, domain.FilterIssue{Field: key, Raw: x}
		}
		return n.Value, nil
	default:
		return 0, domain.FilterIssue{Field: key, Raw: fmt.Sprint(x)}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, domain.FilterIssue{Field: key, Raw: raw}
	}
	return v, nil
}
