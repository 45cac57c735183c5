package migration

import (
	"github.com/offertehq/offerte/internal/config"
	customerdomain "github.com/offertehq/offerte/internal/customer/domain"
	invoicedomain "github.com/offertehq/offerte/internal/invoice/domain"
	quotedomain "github.com/offertehq/offerte/internal/quote/domain"
	settingsdomain "github.com/offertehq/offerte/internal/settings/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// sqlite (dev/test) has no versioned migration history; the
			// schema is derived from the models instead.
			return AutoMigrate(conn)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)

func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&customerdomain.Customer{},
		&settingsdomain.Settings{},
		&quotedomain.Quote{},
		&quotedomain.QuoteItem{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
	)
}
