package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// PerformanceLevel is the coarse performance tier a user asked for.
type PerformanceLevel string

const (
	PerformanceHigh     PerformanceLevel = "high"
	PerformanceModerate PerformanceLevel = "moderate"
	PerformanceBasic    PerformanceLevel = "basic"
)

// ParsePerformanceLevel normalizes free text ("High", " moderate ") to a level.
func ParsePerformanceLevel(s string) (PerformanceLevel, bool) {
	switch PerformanceLevel(strings.ToLower(strings.TrimSpace(s))) {
	case PerformanceHigh:
		return PerformanceHigh, true
	case PerformanceModerate:
		return PerformanceModerate, true
	case PerformanceBasic:
		return PerformanceBasic, true
	}
	return "", false
}

// Specification is the structured request extracted from free text by the language model.
// Absent fields are nil; the *IsMinimum flags default to true when absent.
type Specification struct {
	Category            StringList `json:"category"`
	MinPrice            *Number    `json:"min_price"`
	MaxPrice            *Number    `json:"max_price"`
	Performance         StringList `json:"performance"`
	Brand               StringList `json:"brand"`
	RAM                 *Number    `json:"ram"`
	RAMIsMinimum        *bool      `json:"ram_is_minimum"`
	StorageGB           *Number    `json:"storage_gb"`
	StorageIsMinimum    *bool      `json:"storage_is_minimum"`
	ScreenSizeValue     *Number    `json:"screen_size_value"`
	ScreenSizeIsMinimum *bool      `json:"screen_size_is_minimum"`
	Resolution          StringList `json:"resolution"`
	Processor           StringList `json:"processor"`
	Graphics            StringList `json:"graphics"`
}

// IsSubstantive reports whether any field other than the *IsMinimum flags carries a value.
// A number that failed to parse still counts: the user did mention it.
func (s *Specification) IsSubstantive() bool {
	if s == nil {
		return false
	}
	lists := []StringList{s.Category, s.Performance, s.Brand, s.Resolution, s.Processor, s.Graphics}
	for _, l := range lists {
		if len(l) > 0 {
			return true
		}
	}
	numbers := []*Number{s.MinPrice, s.MaxPrice, s.RAM, s.StorageGB, s.ScreenSizeValue}
	for _, n := range numbers {
		if n != nil {
			return true
		}
	}
	return false
}

// PriceSpecified reports whether the user bounded the price in either direction.
// Unparseable or non-positive bounds do not count since they add no constraint.
func (s *Specification) PriceSpecified() bool {
	_, hasMin := s.MinPrice.Positive()
	_, hasMax := s.MaxPrice.Positive()
	return hasMin || hasMax
}

// RAMMinimum returns the effective ram_is_minimum flag.
func (s *Specification) RAMMinimum() bool { return flagOrTrue(s.RAMIsMinimum) }

// StorageMinimum returns the effective storage_is_minimum flag.
func (s *Specification) StorageMinimum() bool { return flagOrTrue(s.StorageIsMinimum) }

// ScreenSizeMinimum returns the effective screen_size_is_minimum flag.
func (s *Specification) ScreenSizeMinimum() bool { return flagOrTrue(s.ScreenSizeIsMinimum) }

func flagOrTrue(b *bool) bool {
	if b == nil {
		return true
	}
	return *b
}

// StringList decodes either a JSON string or an array of scalars into a list of non-empty strings.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = appendNonEmpty(nil, single)
		return nil
	}

	var items []interface{}
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("expected string or array: %w", err)
	}
	var out StringList
	for _, item := range items {
		if item == nil {
			continue
		}
		out = appendNonEmpty(out, fmt.Sprint(item))
	}
	*l = out
	return nil
}

func appendNonEmpty(l StringList, s string) StringList {
	s = strings.TrimSpace(s)
	if s == "" {
		return l
	}
	return append(l, s)
}

// Number is an optional numeric field that may arrive as a JSON number or a numeric string.
// Values that cannot be parsed keep their raw text and have Valid=false.
type Number struct {
	Value float64
	Raw   string
	Valid bool
}

// NewNumber returns a valid Number.
func NewNumber(v float64) *Number {
	return &Number{Value: v, Raw: strconv.FormatFloat(v, 'f', -1, 64), Valid: true}
}

// ParseNumber parses free text such as "1200", "$1,200" or " 16 ".
func ParseNumber(raw string) *Number {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	v, err := strconv.ParseFloat(strings.TrimSpace(cleaned), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return &Number{Raw: raw}
	}
	return &Number{Value: v, Raw: raw, Valid: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = Number{Value: f, Raw: string(data), Valid: true}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*n = *ParseNumber(s)
		return nil
	}
	*n = Number{Raw: string(data)}
	return nil
}

// MarshalJSON renders valid numbers as numbers and unparsed input as its raw text.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return json.Marshal(n.Raw)
	}
	return json.Marshal(n.Value)
}

// Positive returns the value when it is valid and greater than zero.
// Zero is treated as "no constraint", matching how the extractor reports unknown budgets.
func (n *Number) Positive() (float64, bool) {
	if n == nil || !n.Valid || n.Value <= 0 {
		return 0, false
	}
	return n.Value, true
}

// Invalid reports whether the field was present but unparseable.
func (n *Number) Invalid() bool {
	return n != nil && !n.Valid
}

// Normalize drops numeric fields that arrived as blank strings so they count as absent.
func (s *Specification) Normalize() {
	for _, n := range []**Number{&s.MinPrice, &s.MaxPrice, &s.RAM, &s.StorageGB, &s.ScreenSizeValue} {
		if *n != nil && !(*n).Valid && strings.TrimSpace((*n).Raw) == "" {
			*n = nil
		}
	}
}

// InvalidNumbers lists numeric fields that were present but could not be parsed.
func (s *Specification) InvalidNumbers() []FilterIssue {
	fields := []struct {
		name string
		n    *Number
	}{
		{"min_price", s.MinPrice},
		{"max_price", s.MaxPrice},
		{"ram", s.RAM},
		{"storage_gb", s.StorageGB},
		{"screen_size_value", s.ScreenSizeValue},
	}
	var issues []FilterIssue
	for _, f := range fields {
		if f.n.Invalid() {
			issues = append(issues, FilterIssue{Field: f.name, Raw: f.n.Raw})
		}
	}
	return issues
}
