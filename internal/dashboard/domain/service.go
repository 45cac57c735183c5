// Package domain contains the read-side reporting contract.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type SummaryRequest struct {
	From *time.Time
	To   *time.Time
}

// DocumentSummary aggregates one document kind over the window. Amounts
// are recomputed from each document's items, never read from snapshots.
type DocumentSummary struct {
	Count      int             `json:"count"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	VATPayable decimal.Decimal `json:"vat_payable"`
	Total      decimal.Decimal `json:"total"`
}

type Summary struct {
	Quotes         DocumentSummary `json:"quotes"`
	OpenQuotes     int             `json:"open_quotes"`
	ConvertedRatio decimal.Decimal `json:"converted_ratio"`
	Invoices       DocumentSummary `json:"invoices"`
}

type Service interface {
	Summary(context.Context, SummaryRequest) (Summary, error)
}

var ErrInvalidAccount = errors.New("invalid_account")
