package domain

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/offertehq/offerte/internal/vat"
	"github.com/offertehq/offerte/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
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

type CreateInvoiceRequest struct {
	CustomerID string
	Reference  string
	Notes      string
	DueAt      *time.Time
	Items      []ItemInput
}

// ImportedLine is a line copied verbatim from another document. Values are
// not revalidated: conversion must not reject what storage already holds.
type ImportedLine struct {
	Position        int
	Description     string
	Quantity        string
	Unit            string
	UnitPrice       string
	VatTreatment    string
	VatRateOverride *string
}

// CreateImportedRequest creates an invoice from an existing document's
// lines, carrying that document's frozen pricing mode and default rate.
type CreateImportedRequest struct {
	CustomerID       snowflake.ID
	QuoteID          *snowflake.ID
	Reference        string
	Notes            string
	Currency         string
	PricesIncludeVat bool
	DefaultVatRate   decimal.Decimal
	// DueAt, when nil, is derived from the current payment terms.
	DueAt *time.Time
	Lines []ImportedLine
}

type UpdateInvoiceRequest struct {
	ID        string
	Reference *string
	Notes     *string
	DueAt     *time.Time
	// Items, when present, replaces the full line set.
	Items []ItemInput
}

type GetInvoiceRequest struct {
	ID string
}

type ListInvoiceRequest struct {
	PageToken   string
	PageSize    int32
	CustomerID  string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListInvoiceFilter struct {
	CustomerID  string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []Invoice `json:"invoices"`
}

// InvoiceDetail is an invoice with its lines and freshly computed totals.
type InvoiceDetail struct {
	Invoice Invoice       `json:"invoice"`
	Items   []InvoiceItem `json:"items"`
	Totals  vat.Totals    `json:"totals"`
}

type Service interface {
	Create(context.Context, CreateInvoiceRequest) (InvoiceDetail, error)
	// CreateImported writes within tx when non-nil, so a caller can
	// commit the invoice atomically with its own bookkeeping.
	CreateImported(ctx context.Context, tx *gorm.DB, req CreateImportedRequest) (Invoice, error)
	GetByID(context.Context, GetInvoiceRequest) (InvoiceDetail, error)
	List(context.Context, ListInvoiceRequest) (ListInvoiceResponse, error)
	Update(context.Context, UpdateInvoiceRequest) (InvoiceDetail, error)
	Delete(context.Context, GetInvoiceRequest) error
	RenderPDF(context.Context, GetInvoiceRequest) (io.Reader, error)
}

var (
	ErrInvalidAccount  = errors.New("invalid_account")
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidCustomer = errors.New("invalid_customer")
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrNotFound        = errors.New("not_found")
)
