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
	"github.com/offertehq/offerte/internal/invoice/domain"
	"github.com/offertehq/offerte/internal/invoice/repository"
	"github.com/offertehq/offerte/internal/migration"
	"github.com/offertehq/offerte/internal/providers/pdf"
	settingsdomain "github.com/offertehq/offerte/internal/settings/domain"
	settingsrepo "github.com/offertehq/offerte/internal/settings/repository"
	settingsservice "github.com/offertehq/offerte/internal/settings/service"
	"github.com/offertehq/offerte/pkg/db"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	invoices  domain.Service
	customers customerdomain.Service
	settings  settingsdomain.Service
	conn      *gorm.DB
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

	customers := customerservice.New(customerservice.Params{
		DB: conn, Log: log, GenID: node, Clock: fake, Repo: customerrepo.Provide(),
	})
	settings := settingsservice.New(settingsservice.Params{
		DB: conn, Log: log, GenID: node, Clock: fake, Repo: settingsrepo.Provide(),
		Billing: config.NewStaticBillingConfigHolder(config.DefaultBillingConfig()),
	})
	invoices := New(Params{
		DB: conn, Log: log, GenID: node, Clock: fake, Repo: repository.Provide(),
		Customers: customers, Settings: settings, PDF: pdf.New(),
	})

	return &fixture{
		invoices:  invoices,
		customers: customers,
		settings:  settings,
		conn:      conn,
		node:      node,
		clock:     fake,
	}
}

func (f *fixture) ctx(t *testing.T) context.Context {
	t.Helper()
	return accountctx.WithAccountID(context.Background(), f.node.Generate())
}

func (f *fixture) customer(t *testing.T, ctx context.Context) customerdomain.Customer {
	t.Helper()
	created, err := f.customers.Create(ctx, customerdomain.CreateCustomerRequest{
		Name:  "Klusbedrijf De Vries",
		Email: "info@devries.nl",
	})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	return created
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return d
}

func TestCreateInvoiceDueDateFromTerms(t *testing.T) {
	f := setup(t)
	ctx := f.ctx(t)
	customer := f.customer(t, ctx)

	detail, err := f.invoices.Create(ctx, domain.CreateInvoiceRequest{
		CustomerID: customer.ID.String(),
		Items: []domain.ItemInput{
			{Description: "Onderhoud", Quantity: dec(t, "1"), UnitPrice: dec(t, "200.00")},
		},
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	if detail.Invoice.DueAt == nil {
		t.Fatalf("expected due date")
	}
	wantDue := f.clock.Now().AddDate(0, 0, 30)
	if !detail.Invoice.DueAt.Equal(wantDue) {
		t.Fatalf("expected due %s, got %s", wantDue, detail.Invoice.DueAt)
	}
	if !detail.Totals.Total.Equal(dec(t, "242.00")) {
		t.Fatalf("expected total 242.00, got %s", detail.Totals.Total)
	}
}

func TestCreateInvoiceInclusiveMode(t *testing.T) {
	f := setup(t)
	ctx := f.ctx(t)
	customer := f.customer(t, ctx)

	inclusive := true
	if _, err := f.settings.Update(ctx, settingsdomain.UpdateSettingsRequest{PricesIncludeVat: &inclusive}); err != nil {
		t.Fatalf("update settings: %v", err)
	}

	detail, err := f.invoices.Create(ctx, domain.CreateInvoiceRequest{
		CustomerID: customer.ID.String(),
		Items: []domain.ItemInput{
			{Description: "Pakket", Quantity: dec(t, "1"), UnitPrice: dec(t, "121.00")},
		},
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	if !detail.Invoice.PricesIncludeVat {
		t.Fatalf("expected inclusive mode frozen on invoice")
	}
	if !detail.Totals.Subtotal.Equal(dec(t, "100.00")) {
		t.Fatalf("expected subtotal 100.00, got %s", detail.Totals.Subtotal)
	}
	if !detail.Totals.VATAmount.Equal(dec(t, "21.00")) {
		t.Fatalf("expected VAT 21.00, got %s", detail.Totals.VATAmount)
	}
	if !detail.Totals.Total.Equal(dec(t, "121.00")) {
		t.Fatalf("expected total 121.00, got %s", detail.Totals.Total)
	}
}

func TestCreateImportedKeepsLinesVerbatim(t *testing.T) {
	f := setup(t)
	ctx := f.ctx(t)
	customer := f.customer(t, ctx)

	override := "19"
	invoice, err := f.invoices.CreateImported(ctx, nil, domain.CreateImportedRequest{
		CustomerID:       customer.ID,
		Reference:        "OFF-2026-007",
		Currency:         "EUR",
		PricesIncludeVat: false,
		DefaultVatRate:   dec(t, "21"),
		Lines: []domain.ImportedLine{
			{Position: 1, Description: "Geldig", Quantity: "2", UnitPrice: "50", VatTreatment: "standard"},
			{Position: 2, Description: "Kapot", Quantity: "niet-numeriek", UnitPrice: "10", VatTreatment: "standard"},
			{Position: 3, Description: "Duits tarief", Quantity: "1", UnitPrice: "100", VatTreatment: "foreign_local", VatRateOverride: &override},
		},
	})
	if err != nil {
		t.Fatalf("create imported: %v", err)
	}

	detail, err := f.invoices.GetByID(ctx, domain.GetInvoiceRequest{ID: invoice.ID.String()})
	if err != nil {
		t.Fatalf("get invoice: %v", err)
	}

	// The unparseable row is stored but skipped by the engine.
	if len(detail.Items) != 3 {
		t.Fatalf("expected 3 stored lines, got %d", len(detail.Items))
	}
	if !detail.Totals.Subtotal.Equal(dec(t, "200.00")) {
		t.Fatalf("expected subtotal 200.00, got %s", detail.Totals.Subtotal)
	}
	if !detail.Totals.VATAmount.Equal(dec(t, "40.00")) {
		t.Fatalf("expected VAT 40.00 (21 + 19 override), got %s", detail.Totals.VATAmount)
	}
}

func TestUpdateInvoiceRecomputesTotals(t *testing.T) {
	f := setup(t)
	ctx := f.ctx(t)
	customer := f.customer(t, ctx)

	detail, err := f.invoices.Create(ctx, domain.CreateInvoiceRequest{
		CustomerID: customer.ID.String(),
		Items: []domain.ItemInput{
			{Description: "Eerste", Quantity: dec(t, "1"), UnitPrice: dec(t, "10.00")},
		},
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	updated, err := f.invoices.Update(ctx, domain.UpdateInvoiceRequest{
		ID: detail.Invoice.ID.String(),
		Items: []domain.ItemInput{
			{Description: "Vervangen", Quantity: dec(t, "4"), UnitPrice: dec(t, "25.00")},
		},
	})
	if err != nil {
		t.Fatalf("update invoice: %v", err)
	}

	if !updated.Totals.Subtotal.Equal(dec(t, "100.00")) {
		t.Fatalf("expected subtotal 100.00, got %s", updated.Totals.Subtotal)
	}
	if !updated.Invoice.TotalAmount.Equal(dec(t, "121.00")) {
		t.Fatalf("expected snapshot 121.00, got %s", updated.Invoice.TotalAmount)
	}
}

func TestDeleteInvoice(t *testing.T) {
	f := setup(t)
	ctx := f.ctx(t)
	customer := f.customer(t, ctx)

	detail, err := f.invoices.Create(ctx, domain.CreateInvoiceRequest{
		CustomerID: customer.ID.String(),
		Items: []domain.ItemInput{
			{Description: "Weg", Quantity: dec(t, "1"), UnitPrice: dec(t, "10.00")},
		},
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	if err := f.invoices.Delete(ctx, domain.GetInvoiceRequest{ID: detail.Invoice.ID.String()}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.invoices.GetByID(ctx, domain.GetInvoiceRequest{ID: detail.Invoice.ID.String()}); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	var count int64
	if err := f.conn.Model(&domain.InvoiceItem{}).Where("invoice_id = ?", detail.Invoice.ID).Count(&count).Error; err != nil {
		t.Fatalf("count items: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected items removed with invoice, got %d", count)
	}
}
