package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laptopfinder/backend/internal/domain"
	"github.com/laptopfinder/backend/internal/platform/logger"
)

func rankingCatalog() *fakeCatalog {
	gaming := laptop("rog", "Asus", "AMD Ryzen 9 7945HX", "NVIDIA GeForce RTX 4070", "32GB", "1TB SSD", 1899)
	gaming.Name = "ROG Strix G16 Gaming Laptop"
	gaming.Category = "Gaming"

	ultrabook := laptop("xps", "Dell", "Intel Core i7-1360P", "Intel Iris Xe", "16GB", "512GB SSD", 1299)
	ultrabook.Name = "XPS 13 Plus"
	ultrabook.Category = "Business"

	budget := laptop("ideapad", "Lenovo", "Intel Core i3-1215U", "Intel UHD Graphics", "8GB", "256GB SSD", 429)
	budget.Name = "IdeaPad 3"
	budget.Category = "Student"

	creator := laptop("zenbook", "Asus", "Intel Core i9-13900H", "NVIDIA GeForce RTX 4060", "32GB", "1TB SSD", 1999)
	creator.Name = "Zenbook Pro 14 OLED"
	creator.Category = "Multimedia"

	soldOut := laptop("legion", "Lenovo", "Intel Core i9-13980HX", "NVIDIA GeForce RTX 4090", "64GB", "2TB SSD", 3299)
	soldOut.Category = "Gaming"
	soldOut.InStock = false

	return &fakeCatalog{products: []domain.Product{gaming, ultrabook, budget, creator, soldOut}}
}

func ids(ps []domain.Product) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func TestNewRankingEngine(t *testing.T) {
	t.Run("uses defaults when zero", func(t *testing.T) {
		e := NewRankingEngine(&fakeCatalog{}, RankingConfig{}, nil)
		if e.fuzzyEditDistance != 1 {
			t.Errorf("fuzzyEditDistance = %v, want 1 (default)", e.fuzzyEditDistance)
		}
		if e.defaultTopN != 20 {
			t.Errorf("defaultTopN = %v, want 20 (default)", e.defaultTopN)
		}
	})

	t.Run("keeps provided values", func(t *testing.T) {
		e := NewRankingEngine(&fakeCatalog{}, RankingConfig{FuzzyEditDistance: 2, DefaultTopN: 5, EnableFuzzyMatching: true}, logger.Nop())
		if e.fuzzyEditDistance != 2 || e.defaultTopN != 5 || !e.enableFuzzyMatching {
			t.Errorf("unexpected config: %+v", e)
		}
	})
}

func TestRankingEngineSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("ranks by query overlap and excludes out of stock", func(t *testing.T) {
		e := NewRankingEngine(rankingCatalog(), RankingConfig{}, logger.Nop())
		results, messages, err := e.Search(ctx, "asus gaming laptop with rtx", 20, domain.Filters{})
		require.NoError(t, err)
		assert.Empty(t, messages)
		require.Len(t, results, 4)
		assert.Equal(t, "rog", results[0].ID)
		assert.NotContains(t, ids(results), "legion")
	})

	t.Run("empty query orders by ascending price", func(t *testing.T) {
		e := NewRankingEngine(rankingCatalog(), RankingConfig{}, logger.Nop())
		results, _, err := e.Search(ctx, "", 20, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"ideapad", "xps", "rog", "zenbook"}, ids(results))
	})

	t.Run("top n truncates", func(t *testing.T) {
		e := NewRankingEngine(rankingCatalog(), RankingConfig{}, logger.Nop())
		results, _, err := e.Search(ctx, "", 2, nil)
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("hard filters", func(t *testing.T) {
		e := NewRankingEngine(rankingCatalog(), RankingConfig{}, logger.Nop())
		results, _, err := e.Search(ctx, "", 20, domain.Filters{
			"brand":     "asus, dell",
			"price_max": 1900.0,
		})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"xps", "rog"}, ids(results))
	})

	t.Run("use case bonus lifts matching category", func(t *testing.T) {
		e := NewRankingEngine(rankingCatalog(), RankingConfig{}, logger.Nop())
		results, _, err := e.Search(ctx, "", 20, domain.Filters{"use_case": "multimedia"})
		require.NoError(t, err)
		assert.Equal(t, "zenbook", results[0].ID)
	})

	t.Run("soft filters applied when satisfiable", func(t *testing.T) {
		e := NewRankingEngine(rankingCatalog(), RankingConfig{}, logger.Nop())
		results, messages, err := e.Search(ctx, "", 20, domain.Filters{
			"gpu":               "discrete",
			"ram_min":           16.0,
			"performance_level": "High",
		})
		require.NoError(t, err)
		assert.Empty(t, messages)
		assert.ElementsMatch(t, []string{"rog", "zenbook"}, ids(results))
	})

	t.Run("relaxes gpu first", func(t *testing.T) {
		e := NewRankingEngine(rankingCatalog(), RankingConfig{}, logger.Nop())
		results, messages, err := e.Search(ctx, "", 20, domain.Filters{
			"brand":   "Dell",
			"gpu":     "discrete",
			"ram_min": 16.0,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"xps"}, ids(results))
		require.Len(t, messages, 1)
		assert.Contains(t, messages[0], "GPU")
	})

	t.Run("relaxes in order until something matches", func(t *testing.T) {
		e := NewRankingEngine(rankingCatalog(), RankingConfig{}, logger.Nop())
		results, messages, err := e.Search(ctx, "", 20, domain.Filters{
			"brand":             "Lenovo",
			"gpu":               "discrete",
			"performance_level": "High",
			"ram_min":           32.0,
			"storage_min":       512.0,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"ideapad"}, ids(results))
		require.Len(t, messages, 4)
		assert.Contains(t, messages[0], "GPU")
		assert.Contains(t, messages[1], "performance")
		assert.Contains(t, messages[2], "RAM")
		assert.Contains(t, messages[3], "storage")
	})

	t.Run("invalid numeric filter is dropped with a message", func(t *testing.T) {
		e := NewRankingEngine(rankingCatalog(), RankingConfig{}, logger.Nop())
		results, messages, err := e.Search(ctx, "", 20, domain.Filters{"price_max": "cheap"})
		require.NoError(t, err)
		assert.Len(t, results, 4)
		require.Len(t, messages, 1)
		assert.Contains(t, messages[0], "price_max")
	})

	t.Run("store failure", func(t *testing.T) {
		catalog := rankingCatalog()
		catalog.findErr = errors.New("db down")
		e := NewRankingEngine(catalog, RankingConfig{}, logger.Nop())
		_, _, err := e.Search(ctx, "", 20, nil)
		assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
	})

	t.Run("cancelled context", func(t *testing.T) {
		e := NewRankingEngine(rankingCatalog(), RankingConfig{}, logger.Nop())
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, _, err := e.Search(cctx, "", 20, nil)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestRankingEngineFuzzyMatching(t *testing.T) {
	ctx := context.Background()
	query := "zenbok oled"

	plain := NewRankingEngine(rankingCatalog(), RankingConfig{}, logger.Nop())
	fuzzy := NewRankingEngine(rankingCatalog(), RankingConfig{EnableFuzzyMatching: true}, logger.Nop())

	_, _, err := plain.Search(ctx, query, 20, nil)
	require.NoError(t, err)
	results, _, err := fuzzy.Search(ctx, query, 20, nil)
	require.NoError(t, err)

	assert.Equal(t, "zenbook", results[0].ID)

	p := rankingCatalog().products[3]
	q := tokenize(query)
	assert.Greater(t, fuzzy.score(q, query, p, ""), plain.score(q, query, p, ""))
}

func TestTokenize(t *testing.T) {
	t.Run("converts to lowercase and removes punctuation", func(t *testing.T) {
		assert.Equal(t, []string{"rog", "strix", "g16"}, tokenize("ROG Strix (G16)"))
	})

	t.Run("filters stop words and listing noise", func(t *testing.T) {
		assert.Equal(t, []string{"gaming", "rtx"}, tokenize("I need a gaming laptop with an RTX"))
	})

	t.Run("filters numeric tokens but keeps units", func(t *testing.T) {
		assert.Equal(t, []string{"16gb"}, tokenize("16GB 1200"))
	})

	t.Run("returns empty slice for empty string", func(t *testing.T) {
		assert.Empty(t, tokenize(""))
	})
}

func TestProductTokensIncludeCanonicalAttributes(t *testing.T) {
	p := laptop("x", "MSI", "Intel Core i7", "NVIDIA RTX 4060", "16 GB", "1024", 1000)
	tokens := productTokens(p)
	assert.Contains(t, tokens, "16gb")
	assert.Contains(t, tokens, "1tb")
	assert.Contains(t, tokens, "discrete")
}

func TestIsNumeric(t *testing.T) {
	testCases := []struct {
		input string
		want  bool
	}{
		{"123", true},
		{"", false},
		{"16gb", false},
		{"i7", false},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			if got := isNumeric(tc.input); got != tc.want {
				t.Errorf("isNumeric(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestLevenshteinDistance(t *testing.T) {
	testCases := []struct {
		s1   string
		s2   string
		want int
	}{
		{"", "", 0},
		{"a", "", 1},
		{"", "a", 1},
		{"abc", "abc", 0},
		{"abc", "abd", 1},        // substitution
		{"abc", "abcd", 1},       // insertion
		{"abcd", "abc", 1},       // deletion
		{"kitten", "sitting", 3}, // classic example
		{"ryzen", "rzyen", 2},    // transposition (2 edits)
		{"thinkpad", "thinkpd", 1},
	}

	for _, tc := range testCases {
		t.Run(tc.s1+"_"+tc.s2, func(t *testing.T) {
			got := levenshteinDistance(tc.s1, tc.s2)
			if got != tc.want {
				t.Errorf("levenshteinDistance(%q, %q) = %v, want %v", tc.s1, tc.s2, got, tc.want)
			}
		})
	}
}

func TestFuzzyTokenMatch(t *testing.T) {
	testCases := []struct {
		token1    string
		token2    string
		threshold int
		want      bool
	}{
		{"ryzen", "ryzen", 1, true},        // identical
		{"i5", "i7", 1, false},             // too short for fuzzy
		{"thinkpad", "thinkpd", 1, true},   // edit distance 1
		{"zenbook", "zenbok", 1, true},     // missing letter
		{"geforce", "gefroce", 1, false},   // edit distance 2
		{"geforce", "gefroce", 2, true},    // within threshold 2
		{"macbook", "chromebook", 1, false}, // length differs too much
	}

	for _, tc := range testCases {
		t.Run(tc.token1+"_"+tc.token2, func(t *testing.T) {
			got := fuzzyTokenMatch(tc.token1, tc.token2, tc.threshold)
			if got != tc.want {
				t.Errorf("fuzzyTokenMatch(%q, %q, %d) = %v, want %v",
					tc.token1, tc.token2, tc.threshold, got, tc.want)
			}
		})
	}
}

func TestFindIntersectionAndUnion(t *testing.T) {
	n, matched := findIntersection([]string{"rtx", "gaming", "asus"}, []string{"asus", "rog", "rtx", "rtx"})
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"asus", "rtx"}, matched)
	assert.Equal(t, 4, findUnion([]string{"rtx", "gaming", "asus"}, []string{"asus", "rog"}))
}
