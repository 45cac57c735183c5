package vat

import (
	"sort"

	"github.com/shopspring/decimal"
)

// PricingMode states whether stored unit prices already contain BTW.
type PricingMode string

const (
	PricingModeExclusive PricingMode = "exclusive"
	PricingModeInclusive PricingMode = "inclusive"
)

// ModeFromInclusiveFlag maps the settings boolean to a PricingMode.
func ModeFromInclusiveFlag(pricesIncludeVAT bool) PricingMode {
	if pricesIncludeVAT {
		return PricingModeInclusive
	}
	return PricingModeExclusive
}

// BreakdownRow is one aggregated (rate, base, tax) tuple of a document.
type BreakdownRow struct {
	Rate decimal.Decimal `json:"rate"`
	Base decimal.Decimal `json:"base"`
	VAT  decimal.Decimal `json:"vat"`
}

// Totals is the computed result for one document. It is derived state:
// always recomputed from the current lines, never read back from storage as
// a source of truth. The struct holds no references to its input.
type Totals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	VATAmount decimal.Decimal `json:"vat_amount"`
	Total     decimal.Decimal `json:"total"`
	Breakdown []BreakdownRow  `json:"breakdown"`
	Notices   []string        `json:"notices"`
}

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// round2 rounds half away from zero at 2 decimal places, the rounding used
// for every stored and displayed monetary amount.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Aggregate computes a document's totals and BTW breakdown.
//
// Rounding is applied per line and again after every accumulation step, so
// each displayed per-line and per-rate amount foots to whole cents. This
// cumulative policy is load-bearing: rounding once at the end drifts by up
// to a few cents on documents with many lines or mixed rates, and existing
// documents must keep reproducing their historical totals.
//
// Negative quantities and prices are accepted; correction lines represent
// reversals that way. Aggregate never mutates lines and keeps no state, so
// it is safe to call concurrently for different documents.
func Aggregate(lines []Line, mode PricingMode, fallback decimal.Decimal) Totals {
	fallback = fallbackOrDefault(fallback)

	type bucket struct {
		rate decimal.Decimal
		base decimal.Decimal
		vat  decimal.Decimal
	}

	subtotal := decimal.Zero
	buckets := make(map[string]*bucket)
	order := make([]string, 0, 4)
	var sawReverseCharge, sawIntraCommunity, sawOutsideEU bool

	for _, line := range lines {
		rate := EffectiveRate(line.Treatment, line.RateOverride, fallback)
		raw := line.Quantity.Mul(line.UnitPrice)

		var base, lineVAT decimal.Decimal
		if mode == PricingModeInclusive {
			gross := round2(raw)
			base = round2(gross.Div(one.Add(rate.Div(hundred))))
			lineVAT = round2(gross.Sub(base))
		} else {
			base = round2(raw)
			lineVAT = round2(base.Mul(rate).Div(hundred))
		}

		subtotal = round2(subtotal.Add(base))

		key := rate.String()
		b, ok := buckets[key]
		if !ok {
			b = &bucket{rate: rate, base: decimal.Zero, vat: decimal.Zero}
			buckets[key] = b
			order = append(order, key)
		}
		b.base = round2(b.base.Add(base))
		b.vat = round2(b.vat.Add(lineVAT))

		switch line.Treatment {
		case TreatmentReverseCharge:
			sawReverseCharge = true
		case TreatmentIntraCommunity:
			sawIntraCommunity = true
		case TreatmentOutsideEU:
			sawOutsideEU = true
		}
	}

	rows := make([]BreakdownRow, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		rows = append(rows, BreakdownRow{Rate: b.rate, Base: b.base, VAT: b.vat})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Rate.LessThan(rows[j].Rate)
	})

	vatAmount := decimal.Zero
	for _, row := range rows {
		vatAmount = vatAmount.Add(row.VAT)
	}
	vatAmount = round2(vatAmount)

	notices := make([]string, 0, 3)
	if sawReverseCharge {
		notices = append(notices, NoticeReverseCharge)
	}
	if sawIntraCommunity {
		notices = append(notices, NoticeIntraCommunity)
	}
	if sawOutsideEU {
		notices = append(notices, NoticeOutsideEU)
	}

	return Totals{
		Subtotal:  subtotal,
		VATAmount: vatAmount,
		Total:     round2(subtotal.Add(vatAmount)),
		Breakdown: rows,
		Notices:   notices,
	}
}

// VisibleBreakdown shapes the breakdown for screen and PDF: 0% rows are
// hidden, except when the document has no taxed rows at all — then one
// synthetic row labeled with the document default rate is shown so the
// table is never empty. The synthetic row carries no monetary weight beyond
// what the totals already state.
func VisibleBreakdown(t Totals, fallback decimal.Decimal) []BreakdownRow {
	rows := make([]BreakdownRow, 0, len(t.Breakdown))
	for _, row := range t.Breakdown {
		if !row.Rate.IsZero() {
			rows = append(rows, row)
		}
	}
	if len(rows) > 0 {
		return rows
	}
	return []BreakdownRow{{
		Rate: fallbackOrDefault(fallback),
		Base: t.Subtotal,
		VAT:  t.VATAmount,
	}}
}
