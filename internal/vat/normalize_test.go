package vat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestNormalizeLineCoercesStringNumbers(t *testing.T) {
	got, ok := NormalizeLine(RawLine{
		Description: "Loodgieterswerk",
		Quantity:    "2.5",
		Unit:        "hour",
		UnitPrice:   "85.00",
		Treatment:   "standard",
	})

	require.True(t, ok)
	assert.Equal(t, "Loodgieterswerk", got.Description)
	assert.Equal(t, "hour", got.Unit)
	assertDec(t, "2.5", got.Quantity, "quantity")
	assertDec(t, "85.00", got.UnitPrice, "unit price")
	assert.Equal(t, TreatmentStandard, got.Treatment)
	assert.Nil(t, got.RateOverride)
}

func TestNormalizeLineSkipsMalformedNumbers(t *testing.T) {
	cases := []RawLine{
		{Quantity: "abc", UnitPrice: "10"},
		{Quantity: "1", UnitPrice: ""},
		{Quantity: "", UnitPrice: "10"},
		{Quantity: "1,5", UnitPrice: "10"}, // comma decimals are not accepted raw
	}
	for _, raw := range cases {
		if _, ok := NormalizeLine(raw); ok {
			t.Fatalf("expected line %+v to be skipped", raw)
		}
	}
}

func TestNormalizeLineUnknownTreatmentFailsOpen(t *testing.T) {
	got, ok := NormalizeLine(RawLine{Quantity: "1", UnitPrice: "10", Treatment: "btw_hoog_legacy"})

	require.True(t, ok)
	assert.Equal(t, TreatmentStandard, got.Treatment)
}

func TestNormalizeLinePreservesAbsentOverride(t *testing.T) {
	got, ok := NormalizeLine(RawLine{Quantity: "1", UnitPrice: "10"})
	require.True(t, ok)
	assert.Nil(t, got.RateOverride)

	got, ok = NormalizeLine(RawLine{Quantity: "1", UnitPrice: "10", RateOverride: strPtr("9")})
	require.True(t, ok)
	require.NotNil(t, got.RateOverride)
	assertDec(t, "9", *got.RateOverride, "override")

	// an unparseable override drops the override, not the line
	got, ok = NormalizeLine(RawLine{Quantity: "1", UnitPrice: "10", RateOverride: strPtr("n/a")})
	require.True(t, ok)
	assert.Nil(t, got.RateOverride)
}

func TestNormalizeLinesSkipsOnlyBadRows(t *testing.T) {
	raw := []RawLine{
		{Quantity: "1", UnitPrice: "50", Treatment: "standard"},
		{Quantity: "not-a-number", UnitPrice: "50", Treatment: "standard"},
	}

	lines := NormalizeLines(raw)

	require.Len(t, lines, 1)

	// The surviving line aggregates as if the malformed one never existed.
	got := Aggregate(lines, PricingModeExclusive, DefaultStandardRate)
	assertDec(t, "50.00", got.Subtotal, "subtotal")
	assertDec(t, "10.50", got.VATAmount, "vat")
	assertDec(t, "60.50", got.Total, "total")
}
