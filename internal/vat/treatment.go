// Package vat implements the shared BTW calculation engine: treatment
// classification, line normalization, and multi-rate aggregation. It is a
// pure package with no persistence or transport dependencies; every caller
// that needs document totals (API, PDF, dashboard) goes through Aggregate.
package vat

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Treatment selects how BTW applies to a single line.
// Stored as text on quote/invoice items; immutable once used on documents.
type Treatment string

const (
	// TreatmentStandard is the regular Dutch rate (21% unless overridden).
	TreatmentStandard Treatment = "standard"

	// TreatmentReduced is the reduced rate (9%), e.g. housing-related services.
	TreatmentReduced Treatment = "reduced"

	// TreatmentReverseCharge shifts liability to the customer
	// (construction subcontracting). Rate is forced to 0.
	TreatmentReverseCharge Treatment = "reverse_charge"

	// TreatmentIntraCommunity is an EU B2B supply, reverse-charged at 0.
	TreatmentIntraCommunity Treatment = "intra_community"

	// TreatmentOutsideEU marks a service performed outside the EU, out of
	// scope for Dutch BTW. Rate is forced to 0.
	TreatmentOutsideEU Treatment = "outside_eu"

	// TreatmentForeignLocal applies a manually entered foreign rate.
	TreatmentForeignLocal Treatment = "foreign_local"
)

var (
	// DefaultStandardRate is used when no document default is configured.
	DefaultStandardRate = decimal.NewFromInt(21)

	// DefaultReducedRate is fixed for TreatmentReduced without an override.
	DefaultReducedRate = decimal.NewFromInt(9)
)

// Compliance notice texts, emitted at most once per document.
const (
	NoticeReverseCharge  = "VAT reverse-charged (subcontracting/construction)."
	NoticeIntraCommunity = "VAT reverse-charged – intra-Community supply (EU B2B)."
	NoticeOutsideEU      = "Place of supply outside the home country (outside EU)."
)

// ParseTreatment maps a stored tag to a Treatment. Unknown or empty tags
// fall open to TreatmentStandard; a stale tag on a historical row must not
// block rendering the document.
func ParseTreatment(raw string) Treatment {
	switch Treatment(strings.ToLower(strings.TrimSpace(raw))) {
	case TreatmentReduced:
		return TreatmentReduced
	case TreatmentReverseCharge:
		return TreatmentReverseCharge
	case TreatmentIntraCommunity:
		return TreatmentIntraCommunity
	case TreatmentOutsideEU:
		return TreatmentOutsideEU
	case TreatmentForeignLocal:
		return TreatmentForeignLocal
	default:
		return TreatmentStandard
	}
}

// ZeroRated reports whether the treatment forces a 0% rate regardless of
// any stored override.
func (t Treatment) ZeroRated() bool {
	switch t {
	case TreatmentReverseCharge, TreatmentIntraCommunity, TreatmentOutsideEU:
		return true
	default:
		return false
	}
}

// Notice returns the compliance notice for the treatment, if any.
func (t Treatment) Notice() (string, bool) {
	switch t {
	case TreatmentReverseCharge:
		return NoticeReverseCharge, true
	case TreatmentIntraCommunity:
		return NoticeIntraCommunity, true
	case TreatmentOutsideEU:
		return NoticeOutsideEU, true
	default:
		return "", false
	}
}

// EffectiveRate resolves the rate a line is taxed at, as a percentage.
//
// Classification overrides data: the three zero-rated treatments always
// yield 0, ignoring whatever override the row happens to carry. Otherwise a
// present, non-negative override wins; reduced falls back to 9; everything
// else (standard without override, foreign-local without override) uses the
// document default.
func EffectiveRate(t Treatment, override *decimal.Decimal, fallback decimal.Decimal) decimal.Decimal {
	if t.ZeroRated() {
		return decimal.Zero
	}
	if override != nil && !override.IsNegative() {
		return *override
	}
	if t == TreatmentReduced {
		return DefaultReducedRate
	}
	return fallbackOrDefault(fallback)
}

// fallbackOrDefault substitutes the standard rate when the caller has no
// configured default. A non-positive default rate is treated as unset.
func fallbackOrDefault(fallback decimal.Decimal) decimal.Decimal {
	if fallback.Sign() <= 0 {
		return DefaultStandardRate
	}
	return fallback
}
