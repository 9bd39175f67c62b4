package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/laptopfinder/backend/internal/domain"
)

// ErrUnsupportedFormat is returned for catalog files that are neither CSV nor parquet.
var ErrUnsupportedFormat = errors.New("unsupported catalog file format")

// LoadFile reads a catalog export, choosing the decoder by extension.
func LoadFile(path string) ([]domain.Product, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open catalog: %w", err)
		}
		defer f.Close()
		return ReadCSV(f)
	case ".parquet":
		return ReadParquet(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// columnAliases maps compacted export headers to canonical column names.
var columnAliases = map[string]string{
	"displaysize":       "display_size",
	"displayresolution": "display_resolution",
	"producturl":        "product_url",
	"imageurl":          "image_url",
	"instock":           "in_stock",
}

func canonicalColumn(h string) string {
	h = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
	h = strings.TrimPrefix(h, "\ufeff")
	if alias, ok := columnAliases[h]; ok {
		return alias
	}
	return h
}

// ReadCSV decodes a headed CSV export. Unknown columns are ignored.
func ReadCSV(r io.Reader) ([]domain.Product, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[canonicalColumn(h)] = i
	}

	var products []domain.Product
	for index := 0; ; index++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog row %d: %w", index+1, err)
		}
		get := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		products = append(products, normalizeRecord(domain.Product{
			ID:                get("id"),
			Name:              get("name"),
			Brand:             get("brand"),
			Model:             get("model"),
			Category:          get("category"),
			Processor:         get("processor"),
			Graphics:          get("graphics"),
			RAM:               get("ram"),
			Storage:           get("storage"),
			Display:           get("display"),
			DisplaySize:       get("display_size"),
			DisplayResolution: get("display_resolution"),
			Price:             parsePrice(get("price")),
			ProductURL:        get("product_url"),
			ImageURL:          get("image_url"),
			InStock:           parseInStock(get("in_stock")),
			Seller:            get("seller"),
			Condition:         get("condition"),
		}, index))
	}
	return products, nil
}

// parquetLaptop is the columnar layout of a catalog export.
type parquetLaptop struct {
	ID                string   `parquet:"id,optional"`
	Name              string   `parquet:"name,optional"`
	Brand             string   `parquet:"brand,optional"`
	Model             string   `parquet:"model,optional"`
	Category          string   `parquet:"category,optional"`
	Processor         string   `parquet:"processor,optional"`
	Graphics          string   `parquet:"graphics,optional"`
	RAM               string   `parquet:"ram,optional"`
	Storage           string   `parquet:"storage,optional"`
	Display           string   `parquet:"display,optional"`
	DisplaySize       string   `parquet:"display_size,optional"`
	DisplayResolution string   `parquet:"display_resolution,optional"`
	Price             *float64 `parquet:"price,optional"`
	ProductURL        string   `parquet:"product_url,optional"`
	ImageURL          string   `parquet:"image_url,optional"`
	InStock           bool     `parquet:"in_stock,optional"`
	Seller            string   `parquet:"seller,optional"`
	Condition         string   `parquet:"condition,optional"`
}

// ReadParquet decodes a parquet export.
func ReadParquet(path string) ([]domain.Product, error) {
	rows, err := parquet.ReadFile[parquetLaptop](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet catalog: %w", err)
	}
	products := make([]domain.Product, len(rows))
	for i, r := range rows {
		products[i] = normalizeRecord(domain.Product{
			ID:                r.ID,
			Name:              r.Name,
			Brand:             r.Brand,
			Model:             r.Model,
			Category:          r.Category,
			Processor:         r.Processor,
			Graphics:          r.Graphics,
			RAM:               r.RAM,
			Storage:           r.Storage,
			Display:           r.Display,
			DisplaySize:       r.DisplaySize,
			DisplayResolution: r.DisplayResolution,
			Price:             finitePrice(r.Price),
			ProductURL:        r.ProductURL,
			ImageURL:          r.ImageURL,
			InStock:           r.InStock,
			Seller:            r.Seller,
			Condition:         r.Condition,
		}, i)
	}
	return products, nil
}

// WriteParquet writes products in the layout ReadParquet expects.
func WriteParquet(path string, products []domain.Product) error {
	rows := make([]parquetLaptop, len(products))
	for i, p := range products {
		rows[i] = parquetLaptop{
			ID:                p.ID,
			Name:              p.Name,
			Brand:             p.Brand,
			Model:             p.Model,
			Category:          p.Category,
			Processor:         p.Processor,
			Graphics:          p.Graphics,
			RAM:               p.RAM,
			Storage:           p.Storage,
			Display:           p.Display,
			DisplaySize:       p.DisplaySize,
			DisplayResolution: p.DisplayResolution,
			Price:             p.Price,
			ProductURL:        p.ProductURL,
			ImageURL:          p.ImageURL,
			InStock:           p.InStock,
			Seller:            p.Seller,
			Condition:         p.Condition,
		}
	}
	if err := parquet.WriteFile(path, rows); err != nil {
		return fmt.Errorf("failed to write parquet catalog: %w", err)
	}
	return nil
}

// finitePrice keeps a price only when it is finite and non-negative.
func finitePrice(p *float64) *float64 {
	if p == nil || *p < 0 {
		return nil
	}
	return domain.FinitePtr(*p)
}

// normalizeRecord fills a missing ID and name the way catalog exports expect.
func normalizeRecord(p domain.Product, index int) domain.Product {
	if p.ID == "" {
		p.ID = generateID(p.Brand, p.Model, index)
	}
	if p.Name == "" {
		p.Name = strings.TrimSpace(p.Brand + " " + p.Model)
	}
	return p
}

func generateID(brand, model string, index int) string {
	slug := func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
	}
	return fmt.Sprintf("%s-%s-%d", slug(brand), slug(model), index)
}

var priceCleaner = strings.NewReplacer("$", "", ",", "", "EGY", "")

// parsePrice accepts "$1,299.99" or "45000 EGY". Unparseable or negative prices are absent, not zero.
func parsePrice(raw string) *float64 {
	s := strings.TrimSpace(priceCleaner.Replace(raw))
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return finitePrice(&v)
}

func parseInStock(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "in stock", "yes", "1":
		return true
	}
	return false
}
