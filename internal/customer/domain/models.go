package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Customer is a billing relation. Address fields feed quote and invoice
// headers; VATNumber is required for intra-Community reverse charging.
type Customer struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	AccountID  snowflake.ID      `gorm:"column:account_id;not null;index" json:"account_id"`
	Name       string            `gorm:"not null" json:"name"`
	Email      string            `gorm:"not null" json:"email"`
	Address    string            `gorm:"type:text" json:"address,omitempty"`
	PostalCode string            `gorm:"column:postal_code" json:"postal_code,omitempty"`
	City       string            `json:"city,omitempty"`
	Country    string            `gorm:"type:varchar(2);default:'NL'" json:"country,omitempty"`
	VATNumber  string            `gorm:"column:vat_number" json:"vat_number,omitempty"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Customer) TableName() string { return "customers" }
