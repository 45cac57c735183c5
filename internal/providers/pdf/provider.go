// Package pdf renders quotes and invoices with maroto. It consumes a
// finished DocumentData; all computation and formatting happens upstream.
package pdf

import (
	"context"
	"io"

	"go.uber.org/fx"
)

// Party is one side of a document (the issuing company or the customer).
type Party struct {
	Name       string
	Address    string
	PostalCity string
	Country    string
	Email      string
	VATNumber  string
}

// DocumentLine is one formatted line row.
type DocumentLine struct {
	Description string
	Quantity    string
	Unit        string
	UnitPrice   string
	Amount      string
	RateLabel   string
}

// TaxRow is one formatted row of the BTW breakdown table.
type TaxRow struct {
	RateLabel string
	Base      string
	Amount    string
}

// DocumentData is everything a renderer needs. Money fields arrive
// pre-formatted; the renderer does no arithmetic.
type DocumentData struct {
	Title     string
	Reference string

	IssueDate string
	// ExtraDateLabel/ExtraDate carry "Geldig tot" on quotes and
	// "Vervaldatum" on invoices.
	ExtraDateLabel string
	ExtraDate      string

	Company Party
	BillTo  Party

	Lines []DocumentLine

	Subtotal string
	VatTotal string
	Total    string
	TaxRows  []TaxRow
	Notices  []string

	IBAN          string
	ChamberNumber string
	VATNumber     string
	FooterNote    string
	LogoPath      string
}

type Provider interface {
	RenderQuote(ctx context.Context, data DocumentData) (io.Reader, error)
	RenderInvoice(ctx context.Context, data DocumentData) (io.Reader, error)
}

var Module = fx.Module("providers.pdf",
	fx.Provide(New),
)
