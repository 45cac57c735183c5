// Package domain contains persistence models and service contracts for
// invoices (facturen).
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Invoice mirrors the quote aggregate. The monetary columns are
// denormalized snapshots; totals shown anywhere are recomputed from the
// items through the shared BTW engine.
type Invoice struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	AccountID  snowflake.ID `gorm:"column:account_id;not null;index" json:"account_id"`
	CustomerID snowflake.ID `gorm:"column:customer_id;not null;index" json:"customer_id"`

	// Reference is a free-form label chosen by the user; this system
	// assigns no sequential numbering.
	Reference string     `json:"reference,omitempty"`
	Notes     string     `gorm:"type:text" json:"notes,omitempty"`
	IssuedAt  time.Time  `gorm:"column:issued_at;not null" json:"issued_at"`
	DueAt     *time.Time `gorm:"column:due_at" json:"due_at,omitempty"`

	Currency         string          `gorm:"type:varchar(3);not null;default:'EUR'" json:"currency"`
	PricesIncludeVat bool            `gorm:"column:prices_include_vat;not null;default:false" json:"prices_include_vat"`
	DefaultVatRate   decimal.Decimal `gorm:"column:default_vat_rate;type:numeric(6,3);not null" json:"default_vat_rate"`

	SubtotalAmount decimal.Decimal `gorm:"column:subtotal_amount;type:numeric(14,2);not null" json:"subtotal_amount"`
	VatAmount      decimal.Decimal `gorm:"column:vat_amount;type:numeric(14,2);not null" json:"vat_amount"`
	TotalAmount    decimal.Decimal `gorm:"column:total_amount;type:numeric(14,2);not null" json:"total_amount"`

	// QuoteID links back to the originating quote, if any. The partial
	// unique index rejects a second invoice for the same quote.
	QuoteID *snowflake.ID `gorm:"column:quote_id;uniqueIndex:idx_invoices_quote_id,where:quote_id IS NOT NULL" json:"quote_id,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Invoice) TableName() string { return "invoices" }

// InvoiceItem is one line on an invoice. Numeric fields are scanned as
// text for the same resilience reasons as quote items.
type InvoiceItem struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	AccountID snowflake.ID `gorm:"column:account_id;not null;index" json:"account_id"`
	InvoiceID snowflake.ID `gorm:"column:invoice_id;not null;index" json:"invoice_id"`

	Position        int     `gorm:"not null" json:"position"`
	Description     string  `gorm:"type:text" json:"description"`
	Quantity        string  `gorm:"type:numeric(14,3);not null" json:"quantity"`
	Unit            string  `json:"unit,omitempty"`
	UnitPrice       string  `gorm:"column:unit_price;type:numeric(14,2);not null" json:"unit_price"`
	VatTreatment    string  `gorm:"column:vat_treatment;not null;default:'standard'" json:"vat_treatment"`
	VatRateOverride *string `gorm:"column:vat_rate_override;type:numeric(6,3)" json:"vat_rate_override,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (InvoiceItem) TableName() string { return "invoice_items" }
