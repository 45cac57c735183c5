// Package money formats amounts for screens and PDFs. The engine itself
// returns plain decimals; formatting is presentation-only.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

var symbols = map[string]string{
	"EUR": "€",
	"USD": "$",
	"GBP": "£",
}

// Format renders an amount in Dutch convention: thousands separated by a
// dot, comma as the decimal mark, two decimals. Unknown currencies fall
// back to the ISO code as prefix.
func Format(amount decimal.Decimal, currency string) string {
	symbol, ok := symbols[strings.ToUpper(strings.TrimSpace(currency))]
	if !ok {
		symbol = strings.ToUpper(strings.TrimSpace(currency))
	}

	negative := amount.IsNegative()
	fixed := amount.Abs().StringFixed(2)

	parts := strings.SplitN(fixed, ".", 2)
	whole, frac := parts[0], parts[1]

	var grouped strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(r)
	}

	out := symbol + " " + grouped.String() + "," + frac
	if negative {
		out = "-" + out
	}
	return out
}

// FormatRate renders a VAT percentage without trailing zeros, e.g. "21%"
// or "13.5%".
func FormatRate(rate decimal.Decimal) string {
	s := rate.String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	return s + "%"
}
