package usecase

import (
	"fmt"
	"strings"

	"github.com/laptopfinder/backend/internal/domain"
)

// Specialized category names.
const (
	CategoryContentCreation = "content creation"
	CategoryMultimedia      = "multimedia"
	CategoryEngineering     = "engineering"
	CategoryDataScience     = "data science"
	CategoryLogicCircuit    = "logic circuit"
	CategoryCreator         = "creator"
	CategoryAnimation       = "animation"
)

// KeywordRule maps a set of keywords to a category name.
type KeywordRule struct {
	Category string
	Keywords []string
}

// specializedKeywordTable is scanned in order; the first rule with a matching keyword wins.
// Order matters: "multimedia" is also a content creation keyword, so content creation takes precedence.
var specializedKeywordTable = []KeywordRule{
	{Category: CategoryContentCreation, Keywords: []string{
		"content creation", "video editing", "photo editing", "design", "creative", "adobe",
		"photoshop", "illustrator", "premiere", "after effects", "graphic design", "3d modeling",
		"animation", "rendering", "cad", "multimedia", "media production",
	}},
	{Category: CategoryMultimedia, Keywords: []string{
		"multimedia", "media", "streaming", "videos", "movies", "entertainment", "youtube", "netflix",
		"music production", "audio editing", "sound engineering", "visual arts",
	}},
	{Category: CategoryEngineering, Keywords: []string{
		"engineering", "engineer", "circuit", "electrical", "electronics", "simulation", "cad/cam",
		"prototyping", "pcb", "logic circuit", "verilog", "hdl", "fpga", "microcontroller",
		"embedded system", "autocad", "solidworks", "ansys", "matlab", "labview", "plc",
		"robotics", "automation",
	}},
	{Category: CategoryDataScience, Keywords: []string{
		"data science", "machine learning", "ml", "ai", "artificial intelligence", "deep learning",
		"neural networks", "tensorflow", "pytorch", "keras", "data mining", "data analysis",
		"big data", "analytics", "statistical analysis", "data processing", "computer vision",
		"nlp", "natural language processing", "predictive modeling", "jupyter", "pandas",
		"numpy", "scikit-learn", "data visualization", "reinforcement learning",
	}},
	{Category: CategoryLogicCircuit, Keywords: []string{
		"logic circuit", "verilog", "hdl", "fpga", "circuit design", "digital logic", "circuit simulation",
	}},
	{Category: CategoryCreator, Keywords: []string{
		"creator", "content creation", "multimedia", "video editing", "photo editing", "streaming",
	}},
	{Category: CategoryAnimation, Keywords: []string{
		"animation", "3d modeling", "3d animation", "blender", "maya", "3ds max", "rendering",
	}},
}

// SpecializedProfile holds the hardware floor applied when a specialized category is detected.
type SpecializedProfile struct {
	Name                   string
	FriendlyName           string
	MinRAM                 int
	RecommendedRAM         int
	MinPerformance         domain.PerformanceLevel
	RecommendedPerformance domain.PerformanceLevel
	GPURequired            bool
	FallbackMessage        string
}

// specializedProfiles is defined once and never mutated.
var specializedProfiles = map[string]SpecializedProfile{
	CategoryLogicCircuit: {
		Name: CategoryLogicCircuit, FriendlyName: "Logic Circuit Design",
		MinRAM: 12, RecommendedRAM: 32,
		MinPerformance: domain.PerformanceModerate, RecommendedPerformance: domain.PerformanceHigh,
	},
	CategoryCreator: {
		Name: CategoryCreator, FriendlyName: "Content Creation & Multimedia",
		MinRAM: 16, RecommendedRAM: 32,
		MinPerformance: domain.PerformanceModerate, RecommendedPerformance: domain.PerformanceHigh,
	},
	CategoryEngineering: {
		Name: CategoryEngineering, FriendlyName: "Engineering Software",
		MinRAM: 16, RecommendedRAM: 32,
		MinPerformance: domain.PerformanceHigh, RecommendedPerformance: domain.PerformanceHigh,
		GPURequired: true,
		FallbackMessage: "I understand you're looking for an engineering laptop suitable for tasks like circuit design and simulation. " +
			"I recommend a laptop with at least 16GB RAM, a powerful processor (i7/Ryzen 7 or better), and preferably a dedicated graphics card.",
	},
	CategoryDataScience: {
		Name: CategoryDataScience, FriendlyName: "Data Science & Machine Learning",
		MinRAM: 16, RecommendedRAM: 32,
		MinPerformance: domain.PerformanceModerate, RecommendedPerformance: domain.PerformanceHigh,
		GPURequired: true,
		FallbackMessage: "I understand you're looking for a data science laptop suitable for machine learning and data analysis. " +
			"I recommend a laptop with at least 16GB RAM, a powerful processor, and definitely a dedicated NVIDIA GPU for ML workloads.",
	},
	CategoryAnimation: {
		Name: CategoryAnimation, FriendlyName: "3D Animation & Modeling",
		MinRAM: 16, RecommendedRAM: 32,
		MinPerformance: domain.PerformanceModerate, RecommendedPerformance: domain.PerformanceHigh,
	},
	CategoryContentCreation: {
		Name: CategoryContentCreation, FriendlyName: "Content Creation & Multimedia",
		MinRAM: 16, RecommendedRAM: 32,
		MinPerformance: domain.PerformanceModerate, RecommendedPerformance: domain.PerformanceHigh,
		FallbackMessage: "I understand you're looking for a content creation laptop suitable for tasks like photo/video editing. " +
			"I recommend a laptop with at least 16GB RAM, a color-accurate display, and a dedicated graphics card.",
	},
	CategoryMultimedia: {
		Name: CategoryMultimedia, FriendlyName: "Multimedia",
		MinRAM: 16, RecommendedRAM: 32,
		MinPerformance: domain.PerformanceModerate, RecommendedPerformance: domain.PerformanceHigh,
		FallbackMessage: "I understand you're looking for a multimedia laptop suitable for tasks like video editing and media consumption. " +
			"I recommend a laptop with at least 16GB RAM, a good display, and preferably a dedicated graphics card.",
	},
}

// creativeCategories additionally require a good display.
var creativeCategories = map[string]bool{
	CategoryContentCreation: true,
	CategoryCreator:         true,
	CategoryMultimedia:      true,
	CategoryAnimation:       true,
}

const (
	// NonLaptopQueryMessage is returned when the extractor found nothing to filter on.
	NonLaptopQueryMessage = "I'm designed to help with laptop-related queries. " +
		"Could you please ask something about laptops or specify what kind of laptop you're looking for?"

	// NoMatchesMessage is returned when nothing matched and no specialized category was detected.
	NoMatchesMessage = "Sorry, I couldn't find any laptops matching those specifications. Could you try with different requirements?"
)

// ProfileFor returns the static profile of a specialized category.
func ProfileFor(category string) (SpecializedProfile, bool) {
	p, ok := specializedProfiles[category]
	return p, ok
}

// IsCreativeCategory reports whether the category requires a good display.
func IsCreativeCategory(category string) bool {
	return creativeCategories[category]
}

// NoMatchesGuidance returns the guidance shown when the compiled filters matched nothing.
func NoMatchesGuidance(detected string) string {
	if detected == "" {
		return NoMatchesMessage
	}
	if p, ok := specializedProfiles[detected]; ok && p.FallbackMessage != "" {
		return p.FallbackMessage
	}
	return fmt.Sprintf("I understand you need a laptop for %s, but couldn't find exact matches with current filters. "+
		"Try checking for laptops with higher RAM (16GB+) and good processors (i7/Ryzen 7 or better).", detected)
}

// CategoryDetector maps extracted category terms to a specialized profile.
type CategoryDetector struct {
	rules []KeywordRule
}

// NewCategoryDetector creates a detector over the built-in keyword table.
func NewCategoryDetector() *CategoryDetector {
	return &CategoryDetector{rules: specializedKeywordTable}
}

// Detect returns the first specialized category, in table order, whose keywords appear in any term.
// When no term matches and queryText is non-empty, the same table is scanned against queryText.
func (d *CategoryDetector) Detect(terms []string, queryText string) (string, bool) {
	lowered := make([]string, 0, len(terms))
	for _, term := range terms {
		lowered = append(lowered, strings.ToLower(term))
	}
	if name, ok := d.match(lowered); ok {
		return name, true
	}
	if strings.TrimSpace(queryText) != "" {
		return d.match([]string{strings.ToLower(queryText)})
	}
	return "", false
}

func (d *CategoryDetector) match(candidates []string) (string, bool) {
	for _, rule := range d.rules {
		for _, kw := range rule.Keywords {
			for _, c := range candidates {
				if strings.Contains(c, kw) {
					return rule.Category, true
				}
			}
		}
	}
	return "", false
}
