// Package domain contains persistence models and service contracts for
// quotes (offertes).
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Quote is a priced proposal that can later be converted to an invoice.
//
// The subtotal/vat/total columns are denormalized snapshots for list
// screens; authoritative totals are always recomputed from the items.
// PricesIncludeVat and DefaultVatRate are frozen per document at creation
// so editing account settings never silently reprices old documents.
type Quote struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	AccountID  snowflake.ID `gorm:"column:account_id;not null;index" json:"account_id"`
	CustomerID snowflake.ID `gorm:"column:customer_id;not null;index" json:"customer_id"`

	Reference  string     `json:"reference,omitempty"`
	Notes      string     `gorm:"type:text" json:"notes,omitempty"`
	IssuedAt   time.Time  `gorm:"column:issued_at;not null" json:"issued_at"`
	ValidUntil *time.Time `gorm:"column:valid_until" json:"valid_until,omitempty"`

	Currency         string          `gorm:"type:varchar(3);not null;default:'EUR'" json:"currency"`
	PricesIncludeVat bool            `gorm:"column:prices_include_vat;not null;default:false" json:"prices_include_vat"`
	DefaultVatRate   decimal.Decimal `gorm:"column:default_vat_rate;type:numeric(6,3);not null" json:"default_vat_rate"`

	SubtotalAmount decimal.Decimal `gorm:"column:subtotal_amount;type:numeric(14,2);not null" json:"subtotal_amount"`
	VatAmount      decimal.Decimal `gorm:"column:vat_amount;type:numeric(14,2);not null" json:"vat_amount"`
	TotalAmount    decimal.Decimal `gorm:"column:total_amount;type:numeric(14,2);not null" json:"total_amount"`

	// InvoiceID is set once the quote has been converted; conversion is
	// one-way.
	InvoiceID *snowflake.ID `gorm:"column:invoice_id;index" json:"invoice_id,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Quote) TableName() string { return "quotes" }

// QuoteItem is one line on a quote. Quantity, unit price, and the optional
// rate override are scanned as text: historical rows may carry values the
// current validation would reject, and a single bad row must not block the
// document (the normalizer skips it).
type QuoteItem struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	AccountID snowflake.ID `gorm:"column:account_id;not null;index" json:"account_id"`
	QuoteID   snowflake.ID `gorm:"column:quote_id;not null;index" json:"quote_id"`

	Position        int     `gorm:"not null" json:"position"`
	Description     string  `gorm:"type:text" json:"description"`
	Quantity        string  `gorm:"type:numeric(14,3);not null" json:"quantity"`
	Unit            string  `json:"unit,omitempty"`
	UnitPrice       string  `gorm:"column:unit_price;type:numeric(14,2);not null" json:"unit_price"`
	VatTreatment    string  `gorm:"column:vat_treatment;not null;default:'standard'" json:"vat_treatment"`
	VatRateOverride *string `gorm:"column:vat_rate_override;type:numeric(6,3)" json:"vat_rate_override,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (QuoteItem) TableName() string { return "quote_items" }
