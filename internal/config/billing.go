package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// BillingConfig carries account-independent billing defaults. New accounts
// start from these values; per-account settings take precedence once saved.
type BillingConfig struct {
	StandardVatRate  float64 `mapstructure:"standardVatRate"`
	ReducedVatRate   float64 `mapstructure:"reducedVatRate"`
	PricesIncludeVat bool    `mapstructure:"pricesIncludeVat"`
	Currency         string  `mapstructure:"currency"`
	PaymentTermsDays int     `mapstructure:"paymentTermsDays"`
}

func DefaultBillingConfig() BillingConfig {
	return BillingConfig{
		StandardVatRate:  21,
		ReducedVatRate:   9,
		PricesIncludeVat: false,
		Currency:         "EUR",
		PaymentTermsDays: 30,
	}
}

// StandardRate returns the configured standard rate as a decimal percentage.
func (c BillingConfig) StandardRate() decimal.Decimal {
	return decimal.NewFromFloat(c.StandardVatRate)
}

// BillingConfigHolder exposes the current billing defaults, hot-reloaded
// from billing.yml without a restart.
type BillingConfigHolder struct {
	current atomic.Value // holds BillingConfig
}

func NewBillingConfigHolder() (*BillingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("billing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/offerte/config") // Volume-mounted config
	v.AddConfigPath("/etc/offerte")            // System config
	v.AddConfigPath(".")                       // Current directory (dev mode)

	v.SetEnvPrefix("OFFERTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// if config file not found, use defaults
		defaults := DefaultBillingConfig()
		v.SetDefault("billing.standardVatRate", defaults.StandardVatRate)
		v.SetDefault("billing.reducedVatRate", defaults.ReducedVatRate)
		v.SetDefault("billing.pricesIncludeVat", defaults.PricesIncludeVat)
		v.SetDefault("billing.currency", defaults.Currency)
		v.SetDefault("billing.paymentTermsDays", defaults.PaymentTermsDays)
	}

	var cfg BillingConfig
	if err := v.UnmarshalKey("billing", &cfg); err != nil {
		return nil, err
	}
	if err := validateBillingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated BillingConfig
		if err := v.UnmarshalKey("billing", &updated); err != nil {
			log.Printf("[billing-config] reload failed: %v", err)
			return
		}
		if err := validateBillingConfig(updated); err != nil {
			log.Printf("[billing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[billing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticBillingConfigHolder wraps a fixed config, for tests.
func NewStaticBillingConfigHolder(cfg BillingConfig) *BillingConfigHolder {
	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *BillingConfigHolder) Get() BillingConfig {
	return h.current.Load().(BillingConfig)
}

func validateBillingConfig(cfg BillingConfig) error {
	if cfg.StandardVatRate < 0 || cfg.ReducedVatRate < 0 {
		return errors.New("billing VAT rates cannot be negative")
	}
	if strings.TrimSpace(cfg.Currency) == "" {
		return errors.New("billing.currency cannot be empty")
	}
	if cfg.PaymentTermsDays < 0 {
		return errors.New("billing.paymentTermsDays cannot be negative")
	}
	return nil
}
