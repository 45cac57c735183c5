package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	cases := []struct {
		amount   string
		currency string
		want     string
	}{
		{"0", "EUR", "€ 0,00"},
		{"1234.5", "EUR", "€ 1.234,50"},
		{"1234567.89", "EUR", "€ 1.234.567,89"},
		{"-99.95", "EUR", "-€ 99,95"},
		{"10", "USD", "$ 10,00"},
		{"10", "sek", "SEK 10,00"},
	}
	for _, tc := range cases {
		amount, err := decimal.NewFromString(tc.amount)
		if err != nil {
			t.Fatalf("bad amount %q: %v", tc.amount, err)
		}
		assert.Equal(t, tc.want, Format(amount, tc.currency), "format %s %s", tc.amount, tc.currency)
	}
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "21%", FormatRate(decimal.NewFromInt(21)))
	assert.Equal(t, "13.5%", FormatRate(decimal.RequireFromString("13.5")))
	assert.Equal(t, "0%", FormatRate(decimal.Zero))
}
