package domain

import "strings"

// Satisfies evaluates p against the record in memory.
func (p Product) Satisfies(pred Predicate) bool {
	return pred.Evaluate(p.matches)
}

func (p Product) matches(c Condition) bool {
	switch c.Field {
	case FieldPrice:
		if p.Price == nil {
			return false
		}
		return compareNumber(*p.Price, c)
	case FieldDisplaySize:
		if c.Op == OpGTE || c.Op == OpLTE || c.Op == OpLT {
			inches, ok := p.ScreenInches()
			if !ok {
				return false
			}
			return compareNumber(inches, c)
		}
	case FieldInStock:
		return c.Op == OpIs && p.InStock == c.Flag
	}
	return compareText(p.Text(c.Field), c)
}

// Text returns the free-text value of a field.
func (p Product) Text(f Field) string {
	switch f {
	case FieldName:
		return p.Name
	case FieldBrand:
		return p.Brand
	case FieldModel:
		return p.Model
	case FieldCategory:
		return p.Category
	case FieldProcessor:
		return p.Processor
	case FieldGraphics:
		return p.Graphics
	case FieldRAM:
		return p.RAM
	case FieldStorage:
		return p.Storage
	case FieldDisplaySize:
		return p.DisplaySize
	case FieldDisplayResolution:
		return p.DisplayResolution
	case FieldCondition:
		return p.Condition
	}
	return ""
}

func compareNumber(v float64, c Condition) bool {
	switch c.Op {
	case OpGTE:
		return v >= c.Number
	case OpLTE:
		return v <= c.Number
	case OpLT:
		return v < c.Number
	}
	return false
}

func compareText(v string, c Condition) bool {
	switch c.Op {
	case OpEquals:
		return v == c.Text
	case OpIEquals:
		return strings.EqualFold(v, c.Text)
	case OpIContains:
		return strings.Contains(strings.ToLower(v), strings.ToLower(c.Text))
	case OpPrefix:
		return strings.HasPrefix(v, c.Text)
	case OpIPrefix:
		return strings.HasPrefix(strings.ToLower(v), strings.ToLower(c.Text))
	case OpIIn:
		for _, t := range c.Texts {
			if strings.EqualFold(v, t) {
				return true
			}
		}
	}
	return false
}
