package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type UpdateSettingsRequest struct {
	CompanyName    *string
	CompanyAddress *string
	CompanyEmail   *string
	IBAN           *string
	ChamberNumber  *string
	VATNumber      *string
	LogoURL        *string

	DefaultVatRate   *decimal.Decimal
	PricesIncludeVat *bool
	Currency         *string
	PaymentTermsDays *int
	FooterNote       *string
}

type Service interface {
	// Get returns the account's settings, creating a row from the billing
	// defaults on first access.
	Get(context.Context) (Settings, error)
	Update(context.Context, UpdateSettingsRequest) (Settings, error)
}

var (
	ErrInvalidAccount  = errors.New("invalid_account")
	ErrInvalidVatRate  = errors.New("invalid_vat_rate")
	ErrInvalidCurrency = errors.New("invalid_currency")
	ErrInvalidTerms    = errors.New("invalid_payment_terms")
)
