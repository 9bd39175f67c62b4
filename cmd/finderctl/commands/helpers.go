package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/laptopfinder/backend/internal/domain"
)

func parseTimeout(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid --timeout %q", s)
	}
	return d, nil
}

// parseFilterFlags turns repeated key=value flags into a filter dictionary.
func parseFilterFlags(pairs []string) (domain.Filters, []domain.FilterIssue, error) {
	params := make(map[string][]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, nil, fmt.Errorf("invalid --filter %q, want key=value", pair)
		}
		params[key] = []string{value}
	}
	filters, issues := domain.ParseFilterParams(params)
	return filters, issues, nil
}
