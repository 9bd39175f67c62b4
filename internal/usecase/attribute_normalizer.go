package usecase

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/laptopfinder/backend/internal/domain"
)

// Compiled regex patterns for attribute normalization
var (
	// Matches the leading amount of a RAM string: "16GB", "16 GB DDR5", "8"
	ramAmountPattern = regexp.MustCompile(`(?i)^\s*(\d+)\s*(?:gb)?`)

	// Matches a storage amount with optional unit: "512GB SSD", "1 TB", "1024.0"
	storageAmountPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(tb|gb)?`)

	// Matches resolution markers in display strings
	resolution4KPattern  = regexp.MustCompile(`(?i)\b(4k|uhd|3840\s*x\s*2160)\b`)
	resolution2KPattern  = regexp.MustCompile(`(?i)\b(2k|qhd|wqhd|2560\s*x\s*1440)\b`)
	resolutionFHDPattern = regexp.MustCompile(`(?i)(full\s*hd|\bfhd\b|1920\s*x\s*1080)`)
)

// Processor families grouped by performance tier, matched as case-insensitive substrings.
var (
	topTierCPUFamilies   = []string{"i7", "i9", "ryzen 7", "ryzen 9", "m1", "m2", "m3"}
	midTierCPUFamilies   = []string{"i5", "ryzen 5"}
	entryTierCPUFamilies = []string{"i3", "celeron", "pentium", "athlon"}
	budgetCPUFamilies    = []string{"ryzen 3"}
)

// discreteGPUFamilies identify dedicated graphics in free-text graphics strings.
var discreteGPUFamilies = []string{"nvidia", "radeon", "rtx", "gtx"}

// highPerformanceGPUFamilies is the stricter set used by the "high" performance level.
var highPerformanceGPUFamilies = []string{"nvidia rtx", "nvidia gtx"}

// integratedGPUFamilies identify on-chip graphics.
var integratedGPUFamilies = []string{"intel", "iris", "uhd graphics", "integrated"}

// creativeDisplayResolutions are the resolutions accepted for creative work.
var creativeDisplayResolutions = []string{"full hd", "fhd", "2k", "4k", "uhd"}

// storageEquivalenceTokens lists every spelling the catalog uses for the same physical size.
// The set is authoritative; there is no single GB-per-TB constant in the catalog data.
var storageEquivalenceTokens = map[int]struct {
	contains []string
	prefixes []string
}{
	1000: {contains: []string{"1TB", "1 TB"}, prefixes: []string{"1024", "1000"}},
	2000: {contains: []string{"2TB", "2 TB"}, prefixes: []string{"2048", "2000"}},
	4000: {contains: []string{"4TB", "4 TB"}, prefixes: []string{"4096", "4000"}},
	8000: {contains: []string{"8TB", "8 TB"}, prefixes: []string{"8192", "8000"}},
}

// storageClass maps a tier to the key of its equivalence class.
func storageClass(tier int) (int, bool) {
	switch tier {
	case 1000, 1024:
		return 1000, true
	case 2000, 2048:
		return 2000, true
	case 4000, 4096:
		return 4000, true
	case 8000, 8192:
		return 8000, true
	}
	return 0, false
}

// RAMTierMatch builds the disjunction matching any of the given RAM tiers.
// Each tier is matched on a unit boundary so "12" never matches "128GB".
func RAMTierMatch(tiers []int) domain.Predicate {
	alternatives := make([]domain.Predicate, 0, len(tiers)*4)
	for _, t := range tiers {
		s := strconv.Itoa(t)
		alternatives = append(alternatives,
			domain.Match(domain.FieldRAM, domain.OpIPrefix, s+"GB"),
			domain.Match(domain.FieldRAM, domain.OpIPrefix, s+" GB"),
			domain.Match(domain.FieldRAM, domain.OpIEquals, s),
			domain.Match(domain.FieldRAM, domain.OpIPrefix, s+"."),
		)
	}
	return domain.Any(alternatives...)
}

// StorageTierMatch builds the disjunction matching any of the given storage tiers,
// expanding TB-class tiers to all of their catalog spellings.
func StorageTierMatch(tiers []int) domain.Predicate {
	var alternatives []domain.Predicate
	seenClass := make(map[int]bool)
	for _, t := range tiers {
		if class, ok := storageClass(t); ok {
			if seenClass[class] {
				continue
			}
			seenClass[class] = true
			tokens := storageEquivalenceTokens[class]
			for _, c := range tokens.contains {
				alternatives = append(alternatives, domain.Match(domain.FieldStorage, domain.OpIContains, c))
			}
			for _, p := range tokens.prefixes {
				alternatives = append(alternatives, domain.Match(domain.FieldStorage, domain.OpPrefix, p))
			}
			continue
		}
		s := strconv.Itoa(t)
		alternatives = append(alternatives,
			domain.Match(domain.FieldStorage, domain.OpPrefix, s),
			domain.Match(domain.FieldStorage, domain.OpIContains, s+"GB"),
			domain.Match(domain.FieldStorage, domain.OpIContains, s+" GB"),
		)
	}
	return domain.Any(alternatives...)
}

// FamilyMatch matches any of the substrings on a field, case-insensitively.
func FamilyMatch(field domain.Field, families []string) domain.Predicate {
	alternatives := make([]domain.Predicate, len(families))
	for i, f := range families {
		alternatives[i] = domain.Match(field, domain.OpIContains, f)
	}
	return domain.Any(alternatives...)
}

// ProcessorTokenMatch matches one requested processor token.
// A bare vendor name matches the vendor prefix; anything else is a substring match.
func ProcessorTokenMatch(token string) domain.Predicate {
	token = strings.TrimSpace(token)
	switch strings.ToLower(token) {
	case "":
		return domain.Any()
	case "amd":
		return domain.Match(domain.FieldProcessor, domain.OpIPrefix, "AMD")
	case "intel":
		return domain.Match(domain.FieldProcessor, domain.OpIPrefix, "Intel")
	}
	return domain.Match(domain.FieldProcessor, domain.OpIContains, token)
}

// GraphicsTokenMatch matches one requested graphics token.
func GraphicsTokenMatch(token string) domain.Predicate {
	token = strings.TrimSpace(token)
	switch strings.ToLower(token) {
	case "":
		return domain.Any()
	case "nvidia":
		return domain.Match(domain.FieldGraphics, domain.OpIPrefix, "NVIDIA")
	case "amd":
		return domain.Any(
			domain.Match(domain.FieldGraphics, domain.OpIPrefix, "AMD"),
			domain.Match(domain.FieldGraphics, domain.OpIPrefix, "Radeon"),
		)
	case "intel":
		return domain.Any(
			domain.Match(domain.FieldGraphics, domain.OpIPrefix, "Intel"),
			domain.Match(domain.FieldGraphics, domain.OpIPrefix, "Iris"),
		)
	}
	return domain.Match(domain.FieldGraphics, domain.OpIContains, token)
}

// CanonicalAttributes is the normalized view of a record's free-text attributes.
type CanonicalAttributes struct {
	RAMGB       int
	StorageTier string // "512gb", "1tb", ...
	CPUTier     string // "top", "mid", "entry" or ""
	DiscreteGPU bool
	Resolution  string // "4k", "2k", "fhd" or ""
}

// NormalizeAttributes parses the free-text attributes of a record.
func NormalizeAttributes(p domain.Product) CanonicalAttributes {
	return CanonicalAttributes{
		RAMGB:       parseRAMGB(p.RAM),
		StorageTier: storageTierToken(p.Storage),
		CPUTier:     cpuTier(p.Processor),
		DiscreteGPU: containsAny(strings.ToLower(p.Graphics), discreteGPUFamilies),
		Resolution:  resolutionClass(p.DisplayResolution),
	}
}

// Tokens returns the canonical attributes as search tokens ("16gb", "1tb", "discrete", "4k").
func (a CanonicalAttributes) Tokens() []string {
	var tokens []string
	if a.RAMGB > 0 {
		tokens = append(tokens, fmt.Sprintf("%dgb", a.RAMGB))
	}
	if a.StorageTier != "" {
		tokens = append(tokens, a.StorageTier)
	}
	if a.DiscreteGPU {
		tokens = append(tokens, "discrete", "dedicated")
	}
	if a.Resolution != "" {
		tokens = append(tokens, a.Resolution)
	}
	return tokens
}

func parseRAMGB(s string) int {
	m := ramAmountPattern.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return v
}

func storageTierToken(s string) string {
	m := storageAmountPattern.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v <= 0 {
		return ""
	}
	if strings.EqualFold(m[2], "tb") {
		return fmt.Sprintf("%gtb", v)
	}
	if class, ok := storageClass(int(v)); ok {
		return fmt.Sprintf("%dtb", class/1000)
	}
	return fmt.Sprintf("%dgb", int(v))
}

func cpuTier(processor string) string {
	lower := strings.ToLower(processor)
	switch {
	case containsAny(lower, topTierCPUFamilies):
		return "top"
	case containsAny(lower, midTierCPUFamilies):
		return "mid"
	case containsAny(lower, entryTierCPUFamilies), containsAny(lower, budgetCPUFamilies):
		return "entry"
	}
	return ""
}

func resolutionClass(s string) string {
	switch {
	case resolution4KPattern.MatchString(s):
		return "4k"
	case resolution2KPattern.MatchString(s):
		return "2k"
	case resolutionFHDPattern.MatchString(s):
		return "fhd"
	}
	return ""
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
