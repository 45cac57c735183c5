package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/offertehq/offerte/internal/accountctx"
	"github.com/offertehq/offerte/internal/clock"
	"github.com/offertehq/offerte/internal/config"
	customerdomain "github.com/offertehq/offerte/internal/customer/domain"
	customerrepo "github.com/offertehq/offerte/internal/customer/repository"
	customerservice "github.com/offertehq/offerte/internal/customer/service"
	"github.com/offertehq/offerte/internal/dashboard/domain"
	invoicedomain "github.com/offertehq/offerte/internal/invoice/domain"
	invoicerepo "github.com/offertehq/offerte/internal/invoice/repository"
	invoiceservice "github.com/offertehq/offerte/internal/invoice/service"
	"github.com/offertehq/offerte/internal/migration"
	"github.com/offertehq/offerte/internal/providers/pdf"
	quotedomain "github.com/offertehq/offerte/internal/quote/domain"
	quoterepo "github.com/offertehq/offerte/internal/quote/repository"
	quoteservice "github.com/offertehq/offerte/internal/quote/service"
	settingsrepo "github.com/offertehq/offerte/internal/settings/repository"
	settingsservice "github.com/offertehq/offerte/internal/settings/service"
	"github.com/offertehq/offerte/pkg/db"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type fixture struct {
	dashboard domain.Service
	quotes    quotedomain.Service
	invoices  invoicedomain.Service
	customers customerdomain.Service
	node      *snowflake.Node
	clock     *clock.FakeClock
}

func setup(t *testing.T) *fixture {
	t.Helper()

	conn, err := db.NewTest()
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := migration.AutoMigrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	log := zap.NewNop()
	renderer := pdf.New()

	customers := customerservice.New(customerservice.Params{
		DB: conn, Log: log, GenID: node, Clock: fake, Repo: customerrepo.Provide(),
	})
	settings := settingsservice.New(settingsservice.Params{
		DB: conn, Log: log, GenID: node, Clock: fake, Repo: settingsrepo.Provide(),
		Billing: config.NewStaticBillingConfigHolder(config.DefaultBillingConfig()),
	})
	invoices := invoiceservice.New(invoiceservice.Params{
		DB: conn, Log: log, GenID: node, Clock: fake, Repo: invoicerepo.Provide(),
		Customers: customers, Settings: settings, PDF: renderer,
	})
	quotes := quoteservice.New(quoteservice.Params{
		DB: conn, Log: log, GenID: node, Clock: fake, Repo: quoterepo.Provide(),
		Customers: customers, Settings: settings, Invoices: invoices, PDF: renderer,
	})
	dashboard := New(Params{
		DB: conn, Log: log, Quotes: quoterepo.Provide(), Invoices: invoicerepo.Provide(),
	})

	return &fixture{
		dashboard: dashboard,
		quotes:    quotes,
		invoices:  invoices,
		customers: customers,
		node:      node,
		clock:     fake,
	}
}

func (f *fixture) ctx(t *testing.T) context.Context {
	t.Helper()
	return accountctx.WithAccountID(context.Background(), f.node.Generate())
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return d
}

func TestSummaryCountsAndTotals(t *testing.T) {
	f := setup(t)
	ctx := f.ctx(t)

	customer, err := f.customers.Create(ctx, customerdomain.CreateCustomerRequest{
		Name: "Hoveniersbedrijf Groen", Email: "info@groen.nl",
	})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}

	items := func(price string) []quotedomain.ItemInput {
		return []quotedomain.ItemInput{
			{Description: "Werk", Quantity: dec(t, "1"), UnitPrice: dec(t, price)},
		}
	}

	first, err := f.quotes.Create(ctx, quotedomain.CreateQuoteRequest{
		CustomerID: customer.ID.String(), Items: items("100.00"),
	})
	if err != nil {
		t.Fatalf("create quote: %v", err)
	}
	if _, err := f.quotes.Create(ctx, quotedomain.CreateQuoteRequest{
		CustomerID: customer.ID.String(), Items: items("200.00"),
	}); err != nil {
		t.Fatalf("create quote: %v", err)
	}

	// Converting adds one invoice and closes one quote.
	if _, err := f.quotes.ConvertToInvoice(ctx, quotedomain.GetQuoteRequest{ID: first.Quote.ID.String()}); err != nil {
		t.Fatalf("convert: %v", err)
	}

	// A standalone invoice on top of the converted one.
	if _, err := f.invoices.Create(ctx, invoicedomain.CreateInvoiceRequest{
		CustomerID: customer.ID.String(),
		Items: []invoicedomain.ItemInput{
			{Description: "Los werk", Quantity: dec(t, "1"), UnitPrice: dec(t, "50.00")},
		},
	}); err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	summary, err := f.dashboard.Summary(ctx, domain.SummaryRequest{})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if summary.Quotes.Count != 2 {
		t.Fatalf("expected 2 quotes, got %d", summary.Quotes.Count)
	}
	if summary.OpenQuotes != 1 {
		t.Fatalf("expected 1 open quote, got %d", summary.OpenQuotes)
	}
	if !summary.ConvertedRatio.Equal(dec(t, "0.5")) {
		t.Fatalf("expected ratio 0.5, got %s", summary.ConvertedRatio)
	}
	if !summary.Quotes.Subtotal.Equal(dec(t, "300.00")) {
		t.Fatalf("expected quote subtotal 300.00, got %s", summary.Quotes.Subtotal)
	}
	if !summary.Quotes.VATPayable.Equal(dec(t, "63.00")) {
		t.Fatalf("expected quote VAT 63.00, got %s", summary.Quotes.VATPayable)
	}

	if summary.Invoices.Count != 2 {
		t.Fatalf("expected 2 invoices, got %d", summary.Invoices.Count)
	}
	if !summary.Invoices.Subtotal.Equal(dec(t, "150.00")) {
		t.Fatalf("expected invoice subtotal 150.00, got %s", summary.Invoices.Subtotal)
	}
	if !summary.Invoices.Total.Equal(dec(t, "181.50")) {
		t.Fatalf("expected invoice total 181.50, got %s", summary.Invoices.Total)
	}
}

func TestSummaryWindowFilter(t *testing.T) {
	f := setup(t)
	ctx := f.ctx(t)

	customer, err := f.customers.Create(ctx, customerdomain.CreateCustomerRequest{
		Name: "Schildersbedrijf Wit", Email: "info@wit.nl",
	})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}

	if _, err := f.quotes.Create(ctx, quotedomain.CreateQuoteRequest{
		CustomerID: customer.ID.String(),
		Items: []quotedomain.ItemInput{
			{Description: "Maart", Quantity: dec(t, "1"), UnitPrice: dec(t, "100.00")},
		},
	}); err != nil {
		t.Fatalf("create quote: %v", err)
	}

	f.clock.Advance(48 * time.Hour)
	if _, err := f.quotes.Create(ctx, quotedomain.CreateQuoteRequest{
		CustomerID: customer.ID.String(),
		Items: []quotedomain.ItemInput{
			{Description: "Later", Quantity: dec(t, "1"), UnitPrice: dec(t, "200.00")},
		},
	}); err != nil {
		t.Fatalf("create quote: %v", err)
	}

	cutoff := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	summary, err := f.dashboard.Summary(ctx, domain.SummaryRequest{To: &cutoff})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if summary.Quotes.Count != 1 {
		t.Fatalf("expected 1 quote in window, got %d", summary.Quotes.Count)
	}
	if !summary.Quotes.Subtotal.Equal(dec(t, "100.00")) {
		t.Fatalf("expected windowed subtotal 100.00, got %s", summary.Quotes.Subtotal)
	}
}

func TestSummaryRequiresAccount(t *testing.T) {
	f := setup(t)

	if _, err := f.dashboard.Summary(context.Background(), domain.SummaryRequest{}); err != domain.ErrInvalidAccount {
		t.Fatalf("expected ErrInvalidAccount, got %v", err)
	}
}
