package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/laptopfinder/backend/internal/domain"
)

// StripCodeFences removes the markdown fences language models like to wrap JSON in.
func StripCodeFences(text string) string {
	s := strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(s, "```json"):
		s = s[len("```json"):]
	case strings.HasPrefix(s, "```JSON"):
		s = s[len("```JSON"):]
	case strings.HasPrefix(s, "```"):
		s = s[len("```"):]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ParseSpecification decodes extractor output into a Specification.
// Leading or trailing prose around a single JSON object is tolerated.
func ParseSpecification(raw string) (*domain.Specification, error) {
	text := StripCodeFences(raw)
	if !strings.HasPrefix(text, "{") {
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start < 0 || end <= start {
			return nil, &domain.ExtractionParseError{Raw: raw, Err: fmt.Errorf("no JSON object found")}
		}
		text = text[start : end+1]
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	var spec domain.Specification
	if err := dec.Decode(&spec); err != nil {
		return nil, &domain.ExtractionParseError{Raw: raw, Err: err}
	}
	spec.Normalize()
	return &spec, nil
}
