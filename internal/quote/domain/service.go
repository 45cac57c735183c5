package domain

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/offertehq/offerte/internal/vat"
	"github.com/offertehq/offerte/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

// ItemInput is one line as submitted by a client. Decimal fields accept
// JSON numbers or numeric strings.
type ItemInput struct {
	Description     string           `json:"description"`
	Quantity        decimal.Decimal  `json:"quantity"`
	Unit            string           `json:"unit"`
	UnitPrice       decimal.Decimal  `json:"unit_price"`
	VatTreatment    string           `json:"vat_treatment"`
	VatRateOverride *decimal.Decimal `json:"vat_rate_override"`
}

type CreateQuoteRequest struct {
	CustomerID string
	Reference  string
	Notes      string
	ValidUntil *time.Time
	Items      []ItemInput
}

type UpdateQuoteRequest struct {
	ID         string
	Reference  *string
	Notes      *string
	ValidUntil *time.Time
	// Items, when present, replaces the full line set.
	Items []ItemInput
}

type GetQuoteRequest struct {
	ID string
}

type ListQuoteRequest struct {
	PageToken   string
	PageSize    int32
	CustomerID  string
	Converted   *bool
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListQuoteFilter struct {
	CustomerID  string
	Converted   *bool
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListQuoteResponse struct {
	pagination.PageInfo
	Quotes []Quote `json:"quotes"`
}

// QuoteDetail is a quote with its lines and freshly computed totals.
type QuoteDetail struct {
	Quote  Quote       `json:"quote"`
	Items  []QuoteItem `json:"items"`
	Totals vat.Totals  `json:"totals"`
}

// ConvertResult reports the invoice a quote was converted into.
type ConvertResult struct {
	QuoteID   string `json:"quote_id"`
	InvoiceID string `json:"invoice_id"`
}

type Service interface {
	Create(context.Context, CreateQuoteRequest) (QuoteDetail, error)
	GetByID(context.Context, GetQuoteRequest) (QuoteDetail, error)
	List(context.Context, ListQuoteRequest) (ListQuoteResponse, error)
	Update(context.Context, UpdateQuoteRequest) (QuoteDetail, error)
	Delete(context.Context, GetQuoteRequest) error
	ConvertToInvoice(context.Context, GetQuoteRequest) (ConvertResult, error)
	RenderPDF(context.Context, GetQuoteRequest) (io.Reader, error)
}

var (
	ErrInvalidAccount   = errors.New("invalid_account")
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidCustomer  = errors.New("invalid_customer")
	ErrInvalidQuantity  = errors.New("invalid_quantity")
	ErrNotFound         = errors.New("not_found")
	ErrAlreadyConverted = errors.New("already_converted")
)
