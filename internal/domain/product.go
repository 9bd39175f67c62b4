package domain

import (
	"regexp"
	"strconv"
)

// Product represents a laptop record in the catalog.
// Attribute strings are stored as the catalog received them (e.g. RAM "16GB", storage "1TB" or "512.0").
type Product struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Brand             string   `json:"brand"`
	Model             string   `json:"model"`
	Category          string   `json:"category,omitempty"`
	Processor         string   `json:"processor,omitempty"`
	Graphics          string   `json:"graphics,omitempty"`
	RAM               string   `json:"ram,omitempty"`
	Storage           string   `json:"storage,omitempty"`
	Display           string   `json:"display,omitempty"`
	DisplaySize       string   `json:"display_size,omitempty"`
	DisplayResolution string   `json:"display_resolution,omitempty"`
	Price             *float64 `json:"price"`
	ProductURL        string   `json:"product_url,omitempty"`
	ImageURL          string   `json:"image_url,omitempty"`
	InStock           bool     `json:"in_stock"`
	Seller            string   `json:"seller,omitempty"`
	Condition         string   `json:"condition,omitempty"`
}

// leadingNumberRegex matches the first decimal number in a free-text attribute ("15.6 inches", "14\"").
var leadingNumberRegex = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ScreenInches returns the numeric screen size encoded in DisplaySize.
func (p Product) ScreenInches() (float64, bool) {
	m := leadingNumberRegex.FindString(p.DisplaySize)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// HasPrice reports whether the record carries a usable price.
func (p Product) HasPrice() bool {
	return p.Price != nil
}

// PriceOr returns the price or the given fallback when absent.
func (p Product) PriceOr(fallback float64) float64 {
	if p.Price == nil {
		return fallback
	}
	return *p.Price
}
