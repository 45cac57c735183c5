package vat

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RawLine is a line as it comes out of storage or an import: numeric fields
// may be text, the treatment tag may be stale or missing. Description and
// Unit pass through untouched.
type RawLine struct {
	Description  string
	Quantity     string
	Unit         string
	UnitPrice    string
	Treatment    string
	RateOverride *string
}

// Line is a normalized, typed line ready for aggregation.
type Line struct {
	Description  string
	Quantity     decimal.Decimal
	Unit         string
	UnitPrice    decimal.Decimal
	Treatment    Treatment
	RateOverride *decimal.Decimal
}

// NormalizeLine coerces a raw line. The second return is false when the
// line must be skipped: a single malformed historical row is excluded from
// aggregation instead of failing the whole document.
//
// An absent rate override stays absent (nil), never 0; classification only
// sees overrides that were actually stored. An unparseable override is
// likewise dropped rather than failing the line.
func NormalizeLine(raw RawLine) (Line, bool) {
	qty, err := parseDecimal(raw.Quantity)
	if err != nil {
		return Line{}, false
	}
	price, err := parseDecimal(raw.UnitPrice)
	if err != nil {
		return Line{}, false
	}

	line := Line{
		Description: raw.Description,
		Quantity:    qty,
		Unit:        raw.Unit,
		UnitPrice:   price,
		Treatment:   ParseTreatment(raw.Treatment),
	}

	if raw.RateOverride != nil {
		if rate, err := parseDecimal(*raw.RateOverride); err == nil {
			line.RateOverride = &rate
		}
	}

	return line, true
}

// NormalizeLines filters a raw slice down to the usable lines, preserving
// input order.
func NormalizeLines(raw []RawLine) []Line {
	lines := make([]Line, 0, len(raw))
	for _, r := range raw {
		if line, ok := NormalizeLine(r); ok {
			lines = append(lines, line)
		}
	}
	return lines
}

func parseDecimal(value string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(value))
}
