package domain

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilterParams(t *testing.T) {
	filters, issues := ParseFilterParams(map[string][]string{
		"query":       {"gaming laptop"},
		"brand":       {" Dell "},
		"gpu":         {""},
		"price_max":   {"1200"},
		"ram_min":     {"sixteen"},
		"storage_min": {"NaN"},
		"price_min":   {"+Inf"},
	})

	assert.Equal(t, Filters{"brand": "Dell", "price_max": 1200.0}, filters)
	require.Len(t, issues, 3)
	assert.Equal(t, "price_min", issues[0].Field)
	assert.Equal(t, "ram_min", issues[1].Field)
	assert.Equal(t, "storage_min", issues[2].Field)
	assert.True(t, errors.Is(issues[1], ErrInvalidFilterValue))
	assert.Contains(t, issues[1].Message(), `"sixteen"`)
}

func TestParseListingParams(t *testing.T) {
	f, issues := ParseListingParams(map[string][]string{
		"brand":       {"Dell, HP,,"},
		"storage":     {"512,1TB"},
		"screen_size": {" 15.6 "},
		"min_price":   {"300"},
		"max_price":   {"Inf"},
		"condition":   {"New"},
		"performance": {"high,basic"},
		"ordering":    {"price"},
	})

	assert.Equal(t, []string{"Dell", "HP"}, f.Brands)
	assert.Nil(t, f.Categories)
	assert.Equal(t, []string{"512", "1TB"}, f.Storage)
	assert.Equal(t, []string{"15.6"}, f.ScreenSizes)
	assert.Equal(t, []string{"high", "basic"}, f.Performance)
	assert.Equal(t, "New", f.Condition)
	require.NotNil(t, f.MinPrice)
	assert.Equal(t, 300.0, *f.MinPrice)
	assert.Nil(t, f.MaxPrice)
	assert.Equal(t, SortPriceAsc, f.Sort)
	require.Len(t, issues, 1)
	assert.Equal(t, "max_price", issues[0].Field)
}

func TestFiltersClone(t *testing.T) {
	orig := Filters{"brand": "Dell"}
	c := orig.Clone()
	c["brand"] = "HP"
	assert.Equal(t, "Dell", orig["brand"])
	assert.True(t, orig.Has("brand"))
	assert.False(t, orig.Has("gpu"))
}

func TestFinitePtr(t *testing.T) {
	assert.Nil(t, FinitePtr(math.NaN()))
	assert.Nil(t, FinitePtr(math.Inf(1)))
	assert.Nil(t, FinitePtr(math.Inf(-1)))
	require.NotNil(t, FinitePtr(12.5))
	assert.Equal(t, 12.5, *FinitePtr(12.5))
}

func TestNumberDecoding(t *testing.T) {
	var spec struct {
		MaxPrice *Number    `json:"max_price"`
		RAM      *Number    `json:"ram"`
		Storage  *Number    `json:"storage"`
		Brands   StringList `json:"brand"`
		Uses     StringList `json:"use_case"`
	}
	err := json.Unmarshal([]byte(`{"max_price":"$1,200","ram":16,"storage":"lots","brand":"Dell","use_case":["gaming",null," ",3]}`), &spec)
	require.NoError(t, err)

	v, ok := spec.MaxPrice.Positive()
	assert.True(t, ok)
	assert.Equal(t, 1200.0, v)

	v, ok = spec.RAM.Positive()
	assert.True(t, ok)
	assert.Equal(t, 16.0, v)

	assert.True(t, spec.Storage.Invalid())
	out, err := json.Marshal(spec.Storage)
	require.NoError(t, err)
	assert.JSONEq(t, `"lots"`, string(out))

	assert.Equal(t, StringList{"Dell"}, spec.Brands)
	assert.Equal(t, StringList{"gaming", "3"}, spec.Uses)

	_, ok = NewNumber(0).Positive()
	assert.False(t, ok, "zero is no constraint")
}

func TestSpecificationPriceSpecified(t *testing.T) {
	tests := []struct {
		name string
		spec Specification
		want bool
	}{
		{name: "no bounds", spec: Specification{}, want: false},
		{name: "max price", spec: Specification{MaxPrice: NewNumber(1200)}, want: true},
		{name: "min price", spec: Specification{MinPrice: NewNumber(500)}, want: true},
		{name: "unparseable bound", spec: Specification{MaxPrice: ParseNumber("cheap")}, want: false},
		{name: "zero bound", spec: Specification{MinPrice: NewNumber(0)}, want: false},
		{name: "one usable bound", spec: Specification{MinPrice: ParseNumber("lots"), MaxPrice: NewNumber(900)}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.spec.PriceSpecified())
		})
	}
}
