package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrExtractorNotConfigured is returned when the specification extractor has no credentials or endpoint
	ErrExtractorNotConfigured = errors.New("specification extractor not configured")

	// ErrExtractorFailure is returned when the language model request fails
	ErrExtractorFailure = errors.New("specification extractor request failed")

	// ErrExtractionParse is returned when the extractor output is not a valid specification
	ErrExtractionParse = errors.New("failed to parse specifications from AI response")

	// ErrInvalidFilterValue is returned when a numeric filter cannot be parsed
	ErrInvalidFilterValue = errors.New("invalid filter value")

	// ErrClassifierUnavailable is returned when the query classifier could not be loaded
	ErrClassifierUnavailable = errors.New("query classifier unavailable")

	// ErrCatalogUnavailable is returned when the catalog store cannot be queried
	ErrCatalogUnavailable = errors.New("catalog store unavailable")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)

// ExtractionParseError carries the raw extractor output that failed to parse.
type ExtractionParseError struct {
	Raw string
	Err error
}

func (e *ExtractionParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", ErrExtractionParse.Error(), e.Err)
	}
	return ErrExtractionParse.Error()
}

// Unwrap lets errors.Is match ErrExtractionParse as well as the decode error.
func (e *ExtractionParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrExtractionParse}
	}
	return []error{ErrExtractionParse, e.Err}
}

// FilterIssue describes a single constraint that was dropped instead of failing the request.
type FilterIssue struct {
	Field string
	Raw   string
}

func (i FilterIssue) Error() string {
	return fmt.Sprintf("%s: %q for %s", ErrInvalidFilterValue.Error(), i.Raw, i.Field)
}

func (i FilterIssue) Unwrap() error { return ErrInvalidFilterValue }

// Message renders the issue as a user-facing filter explanation.
func (i FilterIssue) Message() string {
	return fmt.Sprintf("Ignored %s filter: %q is not a valid number.", i.Field, i.Raw)
}
