package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"

	"github.com/laptopfinder/backend/internal/domain"
)

// Supported SQL drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const upsertBatchSize = 200

// laptopRow is the persisted form of a domain.Product.
// ScreenInches is derived from DisplaySize so numeric screen filters can run in SQL.
type laptopRow struct {
	ID                string `gorm:"primaryKey;size:64"`
	Name              string
	Brand             string `gorm:"index"`
	Model             string
	Category          string
	Processor         string
	Graphics          string
	RAM               string `gorm:"column:ram"`
	Storage           string
	Display           string
	DisplaySize       string
	DisplayResolution string
	ScreenInches      *float64
	Price             *float64 `gorm:"index"`
	ProductURL        string   `gorm:"column:product_url"`
	ImageURL          string   `gorm:"column:image_url"`
	InStock           bool     `gorm:"index"`
	Seller            string
	Condition         string
	UpdatedAt         time.Time
}

func (laptopRow) TableName() string { return "laptops" }

func toRow(p domain.Product) laptopRow {
	row := laptopRow{
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
	if v, ok := p.ScreenInches(); ok {
		row.ScreenInches = &v
	}
	return row
}

func (r laptopRow) toProduct() domain.Product {
	return domain.Product{
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
		Price:             r.Price,
		ProductURL:        r.ProductURL,
		ImageURL:          r.ImageURL,
		InStock:           r.InStock,
		Seller:            r.Seller,
		Condition:         r.Condition,
	}
}

// SQLStore is a CatalogStore backed by a relational database through gorm.
type SQLStore struct {
	db *gorm.DB
}

// OpenSQL connects to the given driver and migrates the laptops table.
func OpenSQL(driver, dsn string) (*SQLStore, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(driver) {
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported catalog driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to catalog database: %w", err)
	}
	return NewSQLStore(db)
}

// NewSQLStore wraps an open connection and migrates the laptops table.
func NewSQLStore(db *gorm.DB) (*SQLStore, error) {
	if err := db.AutoMigrate(&laptopRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate catalog: %w", err)
	}
	return &SQLStore{db: db}, nil
}

// Find returns every product satisfying p.
func (s *SQLStore) Find(ctx context.Context, p domain.Predicate, opts domain.QueryOptions) ([]domain.Product, error) {
	where, args := CompilePredicate(p)
	q := s.db.WithContext(ctx).Model(&laptopRow{}).Where(where, args...)
	switch opts.Sort {
	case domain.SortPriceAsc:
		q = q.Order("price IS NULL").Order("price ASC")
	case domain.SortPriceDesc:
		q = q.Order("price IS NULL").Order("price DESC")
	default:
		q = q.Order("id")
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}

	var rows []laptopRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("catalog query: %w", err)
	}
	out := make([]domain.Product, len(rows))
	for i, r := range rows {
		out[i] = r.toProduct()
	}
	return out, nil
}

// Count returns the number of products satisfying p.
func (s *SQLStore) Count(ctx context.Context, p domain.Predicate) (int, error) {
	where, args := CompilePredicate(p)
	var n int64
	if err := s.db.WithContext(ctx).Model(&laptopRow{}).Where(where, args...).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("catalog count: %w", err)
	}
	return int(n), nil
}

// Upsert inserts or replaces products by ID.
func (s *SQLStore) Upsert(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	rows := make([]laptopRow, len(products))
	for i, p := range products {
		rows[i] = toRow(p)
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		CreateInBatches(rows, upsertBatchSize).Error
	if err != nil {
		return fmt.Errorf("catalog upsert: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var columnByField = map[domain.Field]string{
	domain.FieldName:              "name",
	domain.FieldBrand:             "brand",
	domain.FieldModel:             "model",
	domain.FieldCategory:          "category",
	domain.FieldProcessor:         "processor",
	domain.FieldGraphics:          "graphics",
	domain.FieldRAM:               "ram",
	domain.FieldStorage:           "storage",
	domain.FieldDisplaySize:       "display_size",
	domain.FieldDisplayResolution: "display_resolution",
	domain.FieldPrice:             "price",
	domain.FieldInStock:           "in_stock",
	domain.FieldCondition:         "condition",
}

// CompilePredicate renders p as a portable SQL condition with positional arguments.
// Case-insensitive matches lower both sides; LIKE patterns escape their wildcards.
func CompilePredicate(p domain.Predicate) (string, []interface{}) {
	var args []interface{}
	sql := compile(p, &args)
	return sql, args
}

func compile(p domain.Predicate, args *[]interface{}) string {
	if p.IsLeaf() {
		return compileLeaf(p.Condition(), args)
	}
	children := p.Children()
	if len(children) == 0 {
		return "1 = 1"
	}
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = compile(c, args)
	}
	sep := " AND "
	if p.IsAny() {
		sep = " OR "
	}
	return "(" + strings.Join(parts, sep) + ")"
}

func compileLeaf(c domain.Condition, args *[]interface{}) string {
	col, ok := columnByField[c.Field]
	if !ok {
		return "1 = 0"
	}
	if c.Field == domain.FieldDisplaySize && isNumericOp(c.Op) {
		col = "screen_inches"
	}
	// quoted: "condition" is reserved in some dialects
	quoted := `"` + col + `"`

	switch c.Op {
	case domain.OpEquals:
		*args = append(*args, c.Text)
		return quoted + " = ?"
	case domain.OpIEquals:
		*args = append(*args, strings.ToLower(c.Text))
		return "LOWER(" + quoted + ") = ?"
	case domain.OpIContains:
		*args = append(*args, "%"+escapeLike(strings.ToLower(c.Text))+"%")
		return "LOWER(" + quoted + `) LIKE ? ESCAPE '\'`
	case domain.OpIPrefix:
		*args = append(*args, escapeLike(strings.ToLower(c.Text))+"%")
		return "LOWER(" + quoted + `) LIKE ? ESCAPE '\'`
	case domain.OpPrefix:
		*args = append(*args, len([]rune(c.Text)), c.Text)
		return "SUBSTR(" + quoted + ", 1, ?) = ?"
	case domain.OpIIn:
		lowered := make([]string, len(c.Texts))
		for i, t := range c.Texts {
			lowered[i] = strings.ToLower(t)
		}
		*args = append(*args, lowered)
		return "LOWER(" + quoted + ") IN ?"
	case domain.OpGTE:
		*args = append(*args, c.Number)
		return quoted + " >= ?"
	case domain.OpLTE:
		*args = append(*args, c.Number)
		return quoted + " <= ?"
	case domain.OpLT:
		*args = append(*args, c.Number)
		return quoted + " < ?"
	case domain.OpIs:
		*args = append(*args, c.Flag)
		return quoted + " = ?"
	}
	return "1 = 0"
}

func isNumericOp(op domain.Op) bool {
	return op == domain.OpGTE || op == domain.OpLTE || op == domain.OpLT
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
