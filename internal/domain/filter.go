package domain

import (
	"fmt"
	"strings"
)

// Field names a filterable catalog attribute.
type Field string

const (
	FieldName              Field = "name"
	FieldBrand             Field = "brand"
	FieldModel             Field = "model"
	FieldCategory          Field = "category"
	FieldProcessor         Field = "processor"
	FieldGraphics          Field = "graphics"
	FieldRAM               Field = "ram"
	FieldStorage           Field = "storage"
	FieldDisplaySize       Field = "display_size"
	FieldDisplayResolution Field = "display_resolution"
	FieldPrice             Field = "price"
	FieldInStock           Field = "in_stock"
	FieldCondition         Field = "condition"
)

// Op is a leaf comparison.
type Op string

const (
	OpEquals    Op = "eq"        // exact, case-sensitive
	OpIEquals   Op = "ieq"       // exact, case-insensitive
	OpIContains Op = "icontains" // case-insensitive substring
	OpPrefix    Op = "prefix"    // case-sensitive prefix
	OpIPrefix   Op = "iprefix"   // case-insensitive prefix
	OpIIn       Op = "iin"       // case-insensitive membership
	OpGTE       Op = "gte"
	OpLTE       Op = "lte"
	OpLT        Op = "lt"
	OpIs        Op = "is" // boolean equality
)

// Condition is a single attribute comparison.
type Condition struct {
	Field  Field
	Op     Op
	Text   string
	Texts  []string
	Number float64
	Flag   bool
}

type predicateKind int

const (
	kindAll predicateKind = iota
	kindAny
	kindLeaf
)

// Predicate is a boolean expression over catalog attributes.
// The zero value is an empty conjunction, which matches everything.
type Predicate struct {
	kind     predicateKind
	cond     Condition
	children []Predicate
}

// Match builds a text comparison leaf.
func Match(field Field, op Op, text string) Predicate {
	return Predicate{kind: kindLeaf, cond: Condition{Field: field, Op: op, Text: text}}
}

// OneOf builds a case-insensitive membership leaf.
func OneOf(field Field, values ...string) Predicate {
	return Predicate{kind: kindLeaf, cond: Condition{Field: field, Op: OpIIn, Texts: values}}
}

// Compare builds a numeric comparison leaf.
func Compare(field Field, op Op, n float64) Predicate {
	return Predicate{kind: kindLeaf, cond: Condition{Field: field, Op: op, Number: n}}
}

// Is builds a boolean equality leaf.
func Is(field Field, flag bool) Predicate {
	return Predicate{kind: kindLeaf, cond: Condition{Field: field, Op: OpIs, Flag: flag}}
}

// All is the conjunction of the non-empty predicates.
func All(ps ...Predicate) Predicate {
	return compose(kindAll, ps)
}

// Any is the disjunction of the non-empty predicates.
// An Any with no alternatives is empty, not "match nothing".
func Any(ps ...Predicate) Predicate {
	return compose(kindAny, ps)
}

func compose(kind predicateKind, ps []Predicate) Predicate {
	kept := make([]Predicate, 0, len(ps))
	for _, p := range ps {
		if p.IsEmpty() {
			continue
		}
		kept = append(kept, p)
	}
	if len(kept) == 1 {
		return kept[0]
	}
	return Predicate{kind: kind, children: kept}
}

// IsEmpty reports whether the predicate places no constraint.
func (p Predicate) IsEmpty() bool {
	switch p.kind {
	case kindLeaf:
		if p.cond.Op == OpIIn {
			return len(p.cond.Texts) == 0
		}
		return false
	default:
		return len(p.children) == 0
	}
}

// IsLeaf reports whether p is a single condition.
func (p Predicate) IsLeaf() bool { return p.kind == kindLeaf }

// IsAny reports whether p is a disjunction.
func (p Predicate) IsAny() bool { return p.kind == kindAny }

// Condition returns the leaf condition; only meaningful when IsLeaf.
func (p Predicate) Condition() Condition { return p.cond }

// Children returns the operands of a composite predicate.
func (p Predicate) Children() []Predicate { return p.children }

// Evaluate applies the predicate using the given leaf evaluator.
func (p Predicate) Evaluate(leaf func(Condition) bool) bool {
	switch p.kind {
	case kindLeaf:
		return leaf(p.cond)
	case kindAny:
		if len(p.children) == 0 {
			return true
		}
		for _, c := range p.children {
			if c.Evaluate(leaf) {
				return true
			}
		}
		return false
	default:
		for _, c := range p.children {
			if !c.Evaluate(leaf) {
				return false
			}
		}
		return true
	}
}

// String renders a readable form, used in logs and tests.
func (p Predicate) String() string {
	switch p.kind {
	case kindLeaf:
		c := p.cond
		switch c.Op {
		case OpIIn:
			return fmt.Sprintf("%s %s [%s]", c.Field, c.Op, strings.Join(c.Texts, ","))
		case OpGTE, OpLTE, OpLT:
			return fmt.Sprintf("%s %s %g", c.Field, c.Op, c.Number)
		case OpIs:
			return fmt.Sprintf("%s %s %t", c.Field, c.Op, c.Flag)
		default:
			return fmt.Sprintf("%s %s %q", c.Field, c.Op, c.Text)
		}
	default:
		if len(p.children) == 0 {
			return "true"
		}
		sep := " AND "
		if p.kind == kindAny {
			sep = " OR "
		}
		parts := make([]string, len(p.children))
		for i, c := range p.children {
			parts[i] = c.String()
		}
		return "(" + strings.Join(parts, sep) + ")"
	}
}

// Clause is one named rule group of a FilterSet.
type Clause struct {
	Rule      string    `json:"rule"`
	Predicate Predicate `json:"-"`
	Expr      string    `json:"expr"`
}

// FilterSet is the compiled conjunction of rule clauses for a single request.
type FilterSet struct {
	Clauses []Clause `json:"clauses"`
}

// Add appends a clause; empty predicates are ignored.
func (f *FilterSet) Add(rule string, p Predicate) bool {
	if p.IsEmpty() {
		return false
	}
	f.Clauses = append(f.Clauses, Clause{Rule: rule, Predicate: p, Expr: p.String()})
	return true
}

// Has reports whether a clause with the given rule name exists.
func (f *FilterSet) Has(rule string) bool {
	for _, c := range f.Clauses {
		if c.Rule == rule {
			return true
		}
	}
	return false
}

// Predicate returns the conjunction of every clause.
func (f *FilterSet) Predicate() Predicate {
	ps := make([]Predicate, len(f.Clauses))
	for i, c := range f.Clauses {
		ps[i] = c.Predicate
	}
	return All(ps...)
}

// With returns the conjunction of the current clauses and p without modifying f.
func (f *FilterSet) With(p Predicate) Predicate {
	return All(f.Predicate(), p)
}
