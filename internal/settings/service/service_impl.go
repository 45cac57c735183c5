package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/offertehq/offerte/internal/accountctx"
	"github.com/offertehq/offerte/internal/clock"
	"github.com/offertehq/offerte/internal/config"
	"github.com/offertehq/offerte/internal/settings/domain"
	"github.com/offertehq/offerte/internal/settings/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	pkgdb "github.com/offertehq/offerte/pkg/db"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    repository.Repository
	Billing *config.BillingConfigHolder
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    repository.Repository
	billing *config.BillingConfigHolder
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("settings.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		billing: p.Billing,
	}
}

func (s *Service) Get(ctx context.Context) (domain.Settings, error) {
	accountID, ok := accountctx.AccountIDFromContext(ctx)
	if !ok {
		return domain.Settings{}, domain.ErrInvalidAccount
	}

	existing, err := s.repo.FindByAccount(ctx, s.db, accountID)
	if err != nil {
		return domain.Settings{}, err
	}
	if existing != nil {
		return *existing, nil
	}

	defaults := s.defaultsFor(accountID)
	if err := s.repo.Insert(ctx, s.db, &defaults); err != nil {
		// A concurrent first read may have created the row already.
		if pkgdb.IsDuplicateKeyErr(err) {
			existing, ferr := s.repo.FindByAccount(ctx, s.db, accountID)
			if ferr == nil && existing != nil {
				return *existing, nil
			}
		}
		return domain.Settings{}, err
	}

	return defaults, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateSettingsRequest) (domain.Settings, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return domain.Settings{}, err
	}

	if req.CompanyName != nil {
		settings.CompanyName = strings.TrimSpace(*req.CompanyName)
	}
	if req.CompanyAddress != nil {
		settings.CompanyAddress = strings.TrimSpace(*req.CompanyAddress)
	}
	if req.CompanyEmail != nil {
		settings.CompanyEmail = strings.TrimSpace(*req.CompanyEmail)
	}
	if req.IBAN != nil {
		settings.IBAN = strings.ToUpper(strings.ReplaceAll(*req.IBAN, " ", ""))
	}
	if req.ChamberNumber != nil {
		settings.ChamberNumber = strings.TrimSpace(*req.ChamberNumber)
	}
	if req.VATNumber != nil {
		settings.VATNumber = strings.ToUpper(strings.TrimSpace(*req.VATNumber))
	}
	if req.LogoURL != nil {
		settings.LogoURL = strings.TrimSpace(*req.LogoURL)
	}
	if req.DefaultVatRate != nil {
		if req.DefaultVatRate.IsNegative() {
			return domain.Settings{}, domain.ErrInvalidVatRate
		}
		settings.DefaultVatRate = *req.DefaultVatRate
	}
	if req.PricesIncludeVat != nil {
		settings.PricesIncludeVat = *req.PricesIncludeVat
	}
	if req.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*req.Currency))
		if len(currency) != 3 {
			return domain.Settings{}, domain.ErrInvalidCurrency
		}
		settings.Currency = currency
	}
	if req.PaymentTermsDays != nil {
		if *req.PaymentTermsDays < 0 {
			return domain.Settings{}, domain.ErrInvalidTerms
		}
		settings.PaymentTermsDays = *req.PaymentTermsDays
	}
	if req.FooterNote != nil {
		settings.FooterNote = strings.TrimSpace(*req.FooterNote)
	}
	settings.UpdatedAt = s.clock.Now()

	if err := s.repo.Save(ctx, s.db, &settings); err != nil {
		return domain.Settings{}, err
	}

	return settings, nil
}

func (s *Service) defaultsFor(accountID snowflake.ID) domain.Settings {
	cfg := s.billing.Get()
	now := s.clock.Now()
	return domain.Settings{
		ID:               s.genID.Generate(),
		AccountID:        accountID,
		DefaultVatRate:   decimal.NewFromFloat(cfg.StandardVatRate),
		PricesIncludeVat: cfg.PricesIncludeVat,
		Currency:         cfg.Currency,
		PaymentTermsDays: cfg.PaymentTermsDays,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}
