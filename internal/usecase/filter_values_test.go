package usecase

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/laptopfinder/backend/internal/domain"
)

func TestFilterString(t *testing.T) {
	f := domain.Filters{"brand": " Dell ", "ram_min": 16.0}
	assert.Equal(t, "Dell", filterString(f, "brand"))
	assert.Equal(t, "", filterString(f, "ram_min"))
	assert.Equal(t, "", filterString(f, "gpu"))
}

func TestFilterList(t *testing.T) {
	f := domain.Filters{
		"csv":   "Dell, HP,,Lenovo ",
		"slice": []string{"Asus", " "},
		"json":  []interface{}{"Acer", nil, 3.0},
	}
	assert.Equal(t, []string{"Dell", "HP", "Lenovo"}, filterList(f, "csv"))
	assert.Equal(t, []string{"Asus"}, filterList(f, "slice"))
	assert.Equal(t, []string{"Acer", "3"}, filterList(f, "json"))
	assert.Empty(t, filterList(f, "missing"))
}

func TestFilterNumber(t *testing.T) {
	tests := []struct {
		name    string
		value   interface{}
		want    float64
		wantErr bool
	}{
		{name: "absent", value: nil, want: 0},
		{name: "float", value: 16.0, want: 16},
		{name: "int", value: 512, want: 512},
		{name: "json number", value: json.Number("1200"), want: 1200},
		{name: "numeric string", value: "$1,200", want: 1200},
		{name: "word", value: "lots", wantErr: true},
		{name: "nan", value: math.NaN(), wantErr: true},
		{name: "infinity", value: math.Inf(1), wantErr: true},
		{name: "bool", value: true, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := domain.Filters{}
			if tt.value != nil {
				f["ram_min"] = tt.value
			}
			got, err := filterNumber(f, "ram_min")
			if tt.wantErr {
				assert.True(t, errors.Is(err, domain.ErrInvalidFilterValue), "err = %v", err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
