package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Settings holds one account's billing profile: the company block printed
// on documents and the engine defaults (default VAT rate, pricing mode).
// One row per account, created lazily on first read.
type Settings struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	AccountID snowflake.ID `gorm:"column:account_id;not null;uniqueIndex" json:"account_id"`

	CompanyName    string `gorm:"column:company_name" json:"company_name"`
	CompanyAddress string `gorm:"column:company_address;type:text" json:"company_address"`
	CompanyEmail   string `gorm:"column:company_email" json:"company_email"`
	IBAN           string `gorm:"column:iban" json:"iban"`
	ChamberNumber  string `gorm:"column:chamber_number" json:"chamber_number"`
	VATNumber      string `gorm:"column:vat_number" json:"vat_number"`
	LogoURL        string `gorm:"column:logo_url" json:"logo_url"`

	DefaultVatRate   decimal.Decimal `gorm:"column:default_vat_rate;type:numeric(6,3);not null" json:"default_vat_rate"`
	PricesIncludeVat bool            `gorm:"column:prices_include_vat;not null;default:false" json:"prices_include_vat"`
	Currency         string          `gorm:"type:varchar(3);not null;default:'EUR'" json:"currency"`
	PaymentTermsDays int             `gorm:"column:payment_terms_days;not null;default:30" json:"payment_terms_days"`
	FooterNote       string          `gorm:"column:footer_note;type:text" json:"footer_note"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Settings) TableName() string { return "billing_settings" }
