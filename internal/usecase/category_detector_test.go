package usecase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/laptopfinder/backend/internal/domain"
)

func TestCategoryDetectorDetect(t *testing.T) {
	d := NewCategoryDetector()

	testCases := []struct {
		name      string
		terms     []string
		queryText string
		want      string
		wantOK    bool
	}{
		{name: "table order beats term order", terms: []string{"logic circuit", "content creation"}, want: CategoryContentCreation, wantOK: true},
		{name: "engineering term", terms: []string{"Engineering"}, want: CategoryEngineering, wantOK: true},
		{name: "data science term", terms: []string{"Data Science"}, want: CategoryDataScience, wantOK: true},
		{name: "multimedia resolves to content creation first", terms: []string{"multimedia"}, want: CategoryContentCreation, wantOK: true},
		{name: "media resolves to multimedia", terms: []string{"media consumption"}, want: CategoryMultimedia, wantOK: true},
		{name: "gaming is not specialized", terms: []string{"Gaming"}, wantOK: false},
		{name: "no terms no text", terms: nil, wantOK: false},
		{name: "falls back to query text", terms: []string{"Gaming"}, queryText: "laptop for machine learning", want: CategoryDataScience, wantOK: true},
		{name: "query text only", queryText: "I edit videos in Premiere", want: CategoryContentCreation, wantOK: true},
		{name: "terms win over query text", terms: []string{"engineering"}, queryText: "photo editing", want: CategoryEngineering, wantOK: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := d.Detect(tc.terms, tc.queryText)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSpecializedKeywordTableOrder(t *testing.T) {
	want := []string{
		CategoryContentCreation, CategoryMultimedia, CategoryEngineering, CategoryDataScience,
		CategoryLogicCircuit, CategoryCreator, CategoryAnimation,
	}
	got := make([]string, len(specializedKeywordTable))
	for i, r := range specializedKeywordTable {
		got[i] = r.Category
	}
	assert.Equal(t, want, got)

	for _, r := range specializedKeywordTable {
		_, ok := ProfileFor(r.Category)
		assert.True(t, ok, "profile missing for %s", r.Category)
		for _, kw := range r.Keywords {
			assert.Equal(t, strings.ToLower(kw), kw, "keywords are matched lowercase")
		}
	}
}

func TestProfiles(t *testing.T) {
	eng, ok := ProfileFor(CategoryEngineering)
	assert.True(t, ok)
	assert.Equal(t, 16, eng.MinRAM)
	assert.Equal(t, domain.PerformanceHigh, eng.MinPerformance)
	assert.True(t, eng.GPURequired)

	lc, _ := ProfileFor(CategoryLogicCircuit)
	assert.Equal(t, 12, lc.MinRAM)
	assert.False(t, lc.GPURequired)

	assert.True(t, IsCreativeCategory(CategoryAnimation))
	assert.False(t, IsCreativeCategory(CategoryDataScience))
}

func TestNoMatchesGuidance(t *testing.T) {
	assert.Equal(t, NoMatchesMessage, NoMatchesGuidance(""))
	assert.Contains(t, NoMatchesGuidance(CategoryDataScience), "dedicated NVIDIA GPU")
	assert.Contains(t, NoMatchesGuidance(CategoryLogicCircuit), "laptop for logic circuit")
	assert.Contains(t, NoMatchesGuidance(CategoryAnimation), "laptop for animation")
}
