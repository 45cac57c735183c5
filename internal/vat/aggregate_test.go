package vat

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

func decPtr(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	d := dec(t, s)
	return &d
}

func line(t *testing.T, qty, price string, treatment Treatment) Line {
	t.Helper()
	return Line{Quantity: dec(t, qty), UnitPrice: dec(t, price), Treatment: treatment}
}

func assertDec(t *testing.T, want string, got decimal.Decimal, label string) {
	t.Helper()
	if !got.Equal(dec(t, want)) {
		t.Fatalf("%s: expected %s, got %s", label, want, got.String())
	}
}

func TestAggregateInclusiveExclusiveRoundTrip(t *testing.T) {
	lines := []Line{line(t, "1", "121.00", TreatmentStandard)}

	incl := Aggregate(lines, PricingModeInclusive, DefaultStandardRate)
	assertDec(t, "100.00", incl.Subtotal, "inclusive subtotal")
	assertDec(t, "21.00", incl.VATAmount, "inclusive vat")
	assertDec(t, "121.00", incl.Total, "inclusive total")

	excl := Aggregate(lines, PricingModeExclusive, DefaultStandardRate)
	assertDec(t, "121.00", excl.Subtotal, "exclusive subtotal")
	assertDec(t, "25.41", excl.VATAmount, "exclusive vat")
	assertDec(t, "146.41", excl.Total, "exclusive total")
}

func TestAggregateMixedRates(t *testing.T) {
	lines := []Line{
		line(t, "1", "100", TreatmentStandard),
		line(t, "1", "100", TreatmentReduced),
	}

	got := Aggregate(lines, PricingModeExclusive, DefaultStandardRate)

	require.Len(t, got.Breakdown, 2)
	assertDec(t, "9", got.Breakdown[0].Rate, "first row rate")
	assertDec(t, "100.00", got.Breakdown[0].Base, "first row base")
	assertDec(t, "9.00", got.Breakdown[0].VAT, "first row vat")
	assertDec(t, "21", got.Breakdown[1].Rate, "second row rate")
	assertDec(t, "100.00", got.Breakdown[1].Base, "second row base")
	assertDec(t, "21.00", got.Breakdown[1].VAT, "second row vat")
	assertDec(t, "200.00", got.Subtotal, "subtotal")
	assertDec(t, "30.00", got.VATAmount, "vat amount")
	assertDec(t, "230.00", got.Total, "total")
}

func TestAggregateReverseChargeNotice(t *testing.T) {
	lines := []Line{line(t, "1", "500", TreatmentReverseCharge)}

	got := Aggregate(lines, PricingModeExclusive, DefaultStandardRate)

	require.Len(t, got.Breakdown, 1)
	assertDec(t, "0", got.Breakdown[0].Rate, "rate")
	assertDec(t, "500.00", got.Breakdown[0].Base, "base")
	assertDec(t, "0.00", got.Breakdown[0].VAT, "vat")
	assert.Equal(t, []string{NoticeReverseCharge}, got.Notices)
}

func TestAggregateNoticesDeduplicatedAndOrdered(t *testing.T) {
	lines := []Line{
		line(t, "1", "10", TreatmentOutsideEU),
		line(t, "1", "10", TreatmentIntraCommunity),
		line(t, "1", "10", TreatmentReverseCharge),
		line(t, "1", "10", TreatmentReverseCharge),
		line(t, "1", "10", TreatmentIntraCommunity),
	}

	got := Aggregate(lines, PricingModeExclusive, DefaultStandardRate)

	assert.Equal(t, []string{
		NoticeReverseCharge,
		NoticeIntraCommunity,
		NoticeOutsideEU,
	}, got.Notices)
}

func TestAggregateEmptyDocument(t *testing.T) {
	got := Aggregate(nil, PricingModeExclusive, DefaultStandardRate)

	assertDec(t, "0", got.Subtotal, "subtotal")
	assertDec(t, "0", got.VATAmount, "vat amount")
	assertDec(t, "0", got.Total, "total")
	assert.Empty(t, got.Breakdown)
	assert.Empty(t, got.Notices)
}

func TestAggregateZeroRateDominance(t *testing.T) {
	for _, treatment := range []Treatment{
		TreatmentReverseCharge,
		TreatmentIntraCommunity,
		TreatmentOutsideEU,
	} {
		ln := line(t, "2", "150", treatment)
		ln.RateOverride = decPtr(t, "21")

		got := Aggregate([]Line{ln}, PricingModeExclusive, DefaultStandardRate)

		require.Len(t, got.Breakdown, 1, "treatment %s", treatment)
		assertDec(t, "0", got.Breakdown[0].Rate, "rate under "+string(treatment))
		assertDec(t, "0.00", got.VATAmount, "vat under "+string(treatment))
		assertDec(t, "300.00", got.Total, "total under "+string(treatment))
	}
}

func TestAggregateFootingInvariant(t *testing.T) {
	lines := []Line{
		line(t, "3", "19.99", TreatmentStandard),
		line(t, "0.5", "120", TreatmentReduced),
		line(t, "1", "250", TreatmentReverseCharge),
		line(t, "2.25", "33.33", TreatmentForeignLocal),
		line(t, "-1", "19.99", TreatmentStandard), // correction line
	}
	lines[3].RateOverride = decPtr(t, "19")

	for _, mode := range []PricingMode{PricingModeExclusive, PricingModeInclusive} {
		got := Aggregate(lines, mode, DefaultStandardRate)

		sum := decimal.Zero
		for _, row := range got.Breakdown {
			sum = sum.Add(row.VAT)
		}
		assertDec(t, got.VATAmount.String(), sum.Round(2), "breakdown foots to vat amount")
		assertDec(t, got.Total.String(), got.Subtotal.Add(got.VATAmount).Round(2), "subtotal+vat foots to total")
	}
}

func TestAggregateIdempotent(t *testing.T) {
	lines := []Line{
		line(t, "3", "19.99", TreatmentStandard),
		line(t, "1", "80", TreatmentReduced),
		line(t, "1", "40", TreatmentIntraCommunity),
	}

	first := Aggregate(lines, PricingModeInclusive, DefaultStandardRate)
	second := Aggregate(lines, PricingModeInclusive, DefaultStandardRate)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical results, got %+v vs %+v", first, second)
	}
}

func TestAggregateDoesNotMutateInput(t *testing.T) {
	ln := line(t, "2", "10.55", TreatmentStandard)
	ln.RateOverride = decPtr(t, "21")
	lines := []Line{ln}
	before := *lines[0].RateOverride

	_ = Aggregate(lines, PricingModeInclusive, DefaultStandardRate)

	if !lines[0].Quantity.Equal(dec(t, "2")) || !lines[0].RateOverride.Equal(before) {
		t.Fatalf("input lines were mutated: %+v", lines[0])
	}
}

// Per-line rounding is cumulative: ten one-cent lines at 21% carry zero tax
// because each line's tax rounds to 0.00 before accumulation. End-stage
// rounding would report 0.02 here.
func TestAggregateCumulativeRounding(t *testing.T) {
	lines := make([]Line, 10)
	for i := range lines {
		lines[i] = line(t, "1", "0.01", TreatmentStandard)
	}

	got := Aggregate(lines, PricingModeExclusive, DefaultStandardRate)

	assertDec(t, "0.10", got.Subtotal, "subtotal")
	assertDec(t, "0.00", got.VATAmount, "vat amount")
	assertDec(t, "0.10", got.Total, "total")
}

func TestAggregateFallbackDefaultsToStandard(t *testing.T) {
	lines := []Line{line(t, "1", "100", TreatmentStandard)}

	got := Aggregate(lines, PricingModeExclusive, decimal.Zero)

	assertDec(t, "21.00", got.VATAmount, "vat with unset fallback")
}

func TestAggregateForeignLocalUsesFallbackWithoutOverride(t *testing.T) {
	lines := []Line{line(t, "1", "100", TreatmentForeignLocal)}

	got := Aggregate(lines, PricingModeExclusive, dec(t, "19"))

	require.Len(t, got.Breakdown, 1)
	assertDec(t, "19", got.Breakdown[0].Rate, "rate")
	assertDec(t, "19.00", got.VATAmount, "vat")
}

func TestAggregateKeepsNearbyRatesInSeparateRows(t *testing.T) {
	first := line(t, "1", "100", TreatmentForeignLocal)
	first.RateOverride = decPtr(t, "19.00001")
	second := line(t, "1", "100", TreatmentForeignLocal)
	second.RateOverride = decPtr(t, "19.00002")

	got := Aggregate([]Line{first, second}, PricingModeExclusive, DefaultStandardRate)

	require.Len(t, got.Breakdown, 2)
	assertDec(t, "19.00001", got.Breakdown[0].Rate, "first row rate")
	assertDec(t, "19.00002", got.Breakdown[1].Rate, "second row rate")
}

func TestVisibleBreakdownFiltersZeroRows(t *testing.T) {
	lines := []Line{
		line(t, "1", "100", TreatmentStandard),
		line(t, "1", "50", TreatmentReverseCharge),
	}
	totals := Aggregate(lines, PricingModeExclusive, DefaultStandardRate)

	visible := VisibleBreakdown(totals, DefaultStandardRate)

	require.Len(t, visible, 1)
	assertDec(t, "21", visible[0].Rate, "visible rate")
}

func TestVisibleBreakdownSyntheticRowWhenAllZeroRated(t *testing.T) {
	lines := []Line{line(t, "1", "500", TreatmentIntraCommunity)}
	totals := Aggregate(lines, PricingModeExclusive, DefaultStandardRate)

	visible := VisibleBreakdown(totals, DefaultStandardRate)

	require.Len(t, visible, 1)
	assertDec(t, "21", visible[0].Rate, "synthetic row carries the default rate as label")
	assertDec(t, "500.00", visible[0].Base, "synthetic row base")
	assertDec(t, "0.00", visible[0].VAT, "synthetic row vat")
}
