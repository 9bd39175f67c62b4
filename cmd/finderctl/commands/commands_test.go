package commands

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laptopfinder/backend/internal/domain"
)

func TestParseFilterFlags(t *testing.T) {
	filters, issues, err := parseFilterFlags([]string{"brand=Dell", "price_max=1200", "ram_min=lots", "gpu="})
	require.NoError(t, err)

	assert.Equal(t, domain.Filters{"brand": "Dell", "price_max": 1200.0}, filters)
	require.Len(t, issues, 1)
	assert.Equal(t, "ram_min", issues[0].Field)

	_, _, err = parseFilterFlags([]string{"brand"})
	assert.Error(t, err)
	_, _, err = parseFilterFlags([]string{"=Dell"})
	assert.Error(t, err)
}

func TestParseTimeout(t *testing.T) {
	d, err := parseTimeout("90s")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)

	for _, bad := range []string{"", "soon", "-1s", "0"} {
		_, err := parseTimeout(bad)
		assert.Error(t, err, bad)
	}
}

func TestClassifyCommand(t *testing.T) {
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	model := filepath.Join(filepath.Dir(file), "..", "..", "..", "models", "classifier.yaml")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"classify", "--model", model, "laptop for machine learning with python and pytorch"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		classifyModel = ""
	})

	require.NoError(t, Execute())

	var analysis domain.QueryAnalysis
	require.NoError(t, json.Unmarshal(out.Bytes(), &analysis))
	assert.Equal(t, "data science", analysis.PredictedCategory)
	assert.InDelta(t, 1.0, sum(analysis.Categories), 1e-9)
}

func TestImportRejectsMemoryDriver(t *testing.T) {
	rootCmd.SetArgs([]string{"import", "--driver", "memory", "--dsn", "x", "laptops.csv"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		importDriver, importDSN = "", ""
	})

	err := Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite or postgres")
}

func sum(m map[string]float64) float64 {
	var total float64
	for _, v := range m {
		total += v
	}
	return total
}
