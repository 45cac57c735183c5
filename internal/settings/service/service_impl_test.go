package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/offertehq/offerte/internal/accountctx"
	"github.com/offertehq/offerte/internal/clock"
	"github.com/offertehq/offerte/internal/config"
	"github.com/offertehq/offerte/internal/migration"
	"github.com/offertehq/offerte/internal/settings/domain"
	"github.com/offertehq/offerte/internal/settings/repository"
	"github.com/offertehq/offerte/pkg/db"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func setupService(t *testing.T) (domain.Service, *snowflake.Node) {
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

	svc := New(Params{
		DB:      conn,
		Log:     zap.NewNop(),
		GenID:   node,
		Clock:   clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)),
		Repo:    repository.Provide(),
		Billing: config.NewStaticBillingConfigHolder(config.DefaultBillingConfig()),
	})

	return svc, node
}

func testCtx(node *snowflake.Node) context.Context {
	return accountctx.WithAccountID(context.Background(), node.Generate())
}

func TestGetCreatesDefaults(t *testing.T) {
	svc, node := setupService(t)
	ctx := testCtx(node)

	settings, err := svc.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if !settings.DefaultVatRate.Equal(decimal.NewFromInt(21)) {
		t.Fatalf("expected default rate 21, got %s", settings.DefaultVatRate)
	}
	if settings.Currency != "EUR" {
		t.Fatalf("expected EUR, got %q", settings.Currency)
	}
	if settings.PaymentTermsDays != 30 {
		t.Fatalf("expected 30 day terms, got %d", settings.PaymentTermsDays)
	}
	if settings.PricesIncludeVat {
		t.Fatalf("expected exclusive pricing by default")
	}

	again, err := svc.Get(ctx)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if again.ID != settings.ID {
		t.Fatalf("expected same row on second read, got %s and %s", settings.ID, again.ID)
	}
}

func TestUpdateSettings(t *testing.T) {
	svc, node := setupService(t)
	ctx := testCtx(node)

	iban := "nl91 abna 0417 1643 00"
	name := "Klusbedrijf De Vries"
	inclusive := true
	rate := decimal.NewFromInt(9)

	updated, err := svc.Update(ctx, domain.UpdateSettingsRequest{
		CompanyName:      &name,
		IBAN:             &iban,
		PricesIncludeVat: &inclusive,
		DefaultVatRate:   &rate,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.IBAN != "NL91ABNA0417164300" {
		t.Fatalf("expected normalized IBAN, got %q", updated.IBAN)
	}
	if updated.CompanyName != "Klusbedrijf De Vries" {
		t.Fatalf("unexpected company name %q", updated.CompanyName)
	}
	if !updated.PricesIncludeVat {
		t.Fatalf("expected inclusive pricing")
	}
	if !updated.DefaultVatRate.Equal(decimal.NewFromInt(9)) {
		t.Fatalf("expected rate 9, got %s", updated.DefaultVatRate)
	}
}

func TestUpdateSettingsValidation(t *testing.T) {
	svc, node := setupService(t)
	ctx := testCtx(node)

	negative := decimal.NewFromInt(-1)
	if _, err := svc.Update(ctx, domain.UpdateSettingsRequest{DefaultVatRate: &negative}); err != domain.ErrInvalidVatRate {
		t.Fatalf("expected ErrInvalidVatRate, got %v", err)
	}

	currency := "EURO"
	if _, err := svc.Update(ctx, domain.UpdateSettingsRequest{Currency: &currency}); err != domain.ErrInvalidCurrency {
		t.Fatalf("expected ErrInvalidCurrency, got %v", err)
	}

	terms := -7
	if _, err := svc.Update(ctx, domain.UpdateSettingsRequest{PaymentTermsDays: &terms}); err != domain.ErrInvalidTerms {
		t.Fatalf("expected ErrInvalidTerms, got %v", err)
	}

	if _, err := svc.Get(context.Background()); err != domain.ErrInvalidAccount {
		t.Fatalf("expected ErrInvalidAccount, got %v", err)
	}
}
