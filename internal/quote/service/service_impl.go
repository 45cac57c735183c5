package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/offertehq/offerte/internal/accountctx"
	"github.com/offertehq/offerte/internal/clock"
	customerdomain "github.com/offertehq/offerte/internal/customer/domain"
	invoicedomain "github.com/offertehq/offerte/internal/invoice/domain"
	"github.com/offertehq/offerte/internal/providers/pdf"
	"github.com/offertehq/offerte/internal/quote/domain"
	"github.com/offertehq/offerte/internal/quote/repository"
	settingsdomain "github.com/offertehq/offerte/internal/settings/domain"
	"github.com/offertehq/offerte/internal/vat"
	"github.com/offertehq/offerte/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      repository.Repository
	Customers customerdomain.Service
	Settings  settingsdomain.Service
	Invoices  invoicedomain.Service
	PDF       pdf.Provider
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      repository.Repository
	customers customerdomain.Service
	settings  settingsdomain.Service
	invoices  invoicedomain.Service
	pdf       pdf.Provider
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("quote.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		customers: p.Customers,
		settings:  p.Settings,
		invoices:  p.Invoices,
		pdf:       p.PDF,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateQuoteRequest) (domain.QuoteDetail, error) {
	accountID, ok := accountctx.AccountIDFromContext(ctx)
	if !ok {
		return domain.QuoteDetail{}, domain.ErrInvalidAccount
	}

	customer, err := s.customers.GetByID(ctx, customerdomain.GetCustomerRequest{ID: req.CustomerID})
	if err != nil {
		if errors.Is(err, customerdomain.ErrNotFound) || errors.Is(err, customerdomain.ErrInvalidID) {
			return domain.QuoteDetail{}, domain.ErrInvalidCustomer
		}
		return domain.QuoteDetail{}, err
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return domain.QuoteDetail{}, err
	}

	now := s.clock.Now()
	quote := domain.Quote{
		ID:         s.genID.Generate(),
		AccountID:  accountID,
		CustomerID: customer.ID,
		Reference:  strings.TrimSpace(req.Reference),
		Notes:      strings.TrimSpace(req.Notes),
		IssuedAt:   now,
		ValidUntil: req.ValidUntil,

		// Pricing mode and default rate are frozen at creation; later
		// settings changes do not reinterpret this document.
		Currency:         settings.Currency,
		PricesIncludeVat: settings.PricesIncludeVat,
		DefaultVatRate:   settings.DefaultVatRate,

		CreatedAt: now,
		UpdatedAt: now,
	}

	items, err := buildItems(s.genID, accountID, quote.ID, req.Items, now)
	if err != nil {
		return domain.QuoteDetail{}, err
	}

	totals := computeTotals(quote, items)
	quote.SubtotalAmount = totals.Subtotal
	quote.VatAmount = totals.VATAmount
	quote.TotalAmount = totals.Total

	if err := s.repo.Insert(ctx, s.db, &quote, items); err != nil {
		return domain.QuoteDetail{}, err
	}

	return domain.QuoteDetail{Quote: quote, Items: items, Totals: totals}, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetQuoteRequest) (domain.QuoteDetail, error) {
	accountID, ok := accountctx.AccountIDFromContext(ctx)
	if !ok {
		return domain.QuoteDetail{}, domain.ErrInvalidAccount
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.QuoteDetail{}, err
	}

	quote, err := s.repo.FindByID(ctx, s.db, accountID, id)
	if err != nil {
		return domain.QuoteDetail{}, err
	}
	if quote == nil {
		return domain.QuoteDetail{}, domain.ErrNotFound
	}

	items, err := s.repo.ListItems(ctx, s.db, accountID, id)
	if err != nil {
		return domain.QuoteDetail{}, err
	}

	return domain.QuoteDetail{
		Quote:  *quote,
		Items:  items,
		Totals: computeTotals(*quote, items),
	}, nil
}

func (s *Service) List(ctx context.Context, req domain.ListQuoteRequest) (domain.ListQuoteResponse, error) {
	accountID, ok := accountctx.AccountIDFromContext(ctx)
	if !ok {
		return domain.ListQuoteResponse{}, domain.ErrInvalidAccount
	}

	filter := domain.ListQuoteFilter{
		CustomerID:  strings.TrimSpace(req.CustomerID),
		Converted:   req.Converted,
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, accountID, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListQuoteResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(quote *domain.Quote) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        quote.ID.String(),
			CreatedAt: quote.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	quotes := make([]domain.Quote, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		quotes = append(quotes, *item)
	}

	resp := domain.ListQuoteResponse{Quotes: quotes}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateQuoteRequest) (domain.QuoteDetail, error) {
	accountID, ok := accountctx.AccountIDFromContext(ctx)
	if !ok {
		return domain.QuoteDetail{}, domain.ErrInvalidAccount
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.QuoteDetail{}, err
	}

	quote, err := s.repo.FindByID(ctx, s.db, accountID, id)
	if err != nil {
		return domain.QuoteDetail{}, err
	}
	if quote == nil {
		return domain.QuoteDetail{}, domain.ErrNotFound
	}

	if req.Reference != nil {
		quote.Reference = strings.TrimSpace(*req.Reference)
	}
	if req.Notes != nil {
		quote.Notes = strings.TrimSpace(*req.Notes)
	}
	if req.ValidUntil != nil {
		quote.ValidUntil = req.ValidUntil
	}
	quote.UpdatedAt = s.clock.Now()

	var items []domain.QuoteItem
	if req.Items != nil {
		items, err = buildItems(s.genID, accountID, quote.ID, req.Items, s.clock.Now())
	} else {
		items, err = s.repo.ListItems(ctx, s.db, accountID, id)
	}
	if err != nil {
		return domain.QuoteDetail{}, err
	}

	totals := computeTotals(*quote, items)
	quote.SubtotalAmount = totals.Subtotal
	quote.VatAmount = totals.VATAmount
	quote.TotalAmount = totals.Total

	if req.Items != nil {
		err = s.repo.ReplaceItems(ctx, s.db, quote, items)
	} else {
		err = s.repo.Save(ctx, s.db, quote)
	}
	if err != nil {
		return domain.QuoteDetail{}, err
	}

	return domain.QuoteDetail{Quote: *quote, Items: items, Totals: totals}, nil
}

func (s *Service) Delete(ctx context.Context, req domain.GetQuoteRequest) error {
	accountID, ok := accountctx.AccountIDFromContext(ctx)
	if !ok {
		return domain.ErrInvalidAccount
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return err
	}

	quote, err := s.repo.FindByID(ctx, s.db, accountID, id)
	if err != nil {
		return err
	}
	if quote == nil {
		return domain.ErrNotFound
	}

	return s.repo.Delete(ctx, s.db, accountID, id)
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func buildItems(genID *snowflake.Node, accountID, quoteID snowflake.ID, inputs []domain.ItemInput, now time.Time) ([]domain.QuoteItem, error) {
	items := make([]domain.QuoteItem, 0, len(inputs))
	for i, in := range inputs {
		if in.Quantity.IsZero() {
			return nil, domain.ErrInvalidQuantity
		}
		var override *string
		if in.VatRateOverride != nil {
			v := in.VatRateOverride.String()
			override = &v
		}
		items = append(items, domain.QuoteItem{
			ID:              genID.Generate(),
			AccountID:       accountID,
			QuoteID:         quoteID,
			Position:        i + 1,
			Description:     strings.TrimSpace(in.Description),
			Quantity:        in.Quantity.String(),
			Unit:            strings.TrimSpace(in.Unit),
			UnitPrice:       in.UnitPrice.String(),
			VatTreatment:    string(vat.ParseTreatment(in.VatTreatment)),
			VatRateOverride: override,
			CreatedAt:       now,
		})
	}
	return items, nil
}

// computeTotals recomputes quote amounts from stored lines; rows with
// unparseable numerics are skipped rather than failing the document.
func computeTotals(quote domain.Quote, items []domain.QuoteItem) vat.Totals {
	raw := make([]vat.RawLine, 0, len(items))
	for _, item := range items {
		raw = append(raw, vat.RawLine{
			Description:  item.Description,
			Quantity:     item.Quantity,
			Unit:         item.Unit,
			UnitPrice:    item.UnitPrice,
			Treatment:    item.VatTreatment,
			RateOverride: item.VatRateOverride,
		})
	}
	return vat.Aggregate(
		vat.NormalizeLines(raw),
		vat.ModeFromInclusiveFlag(quote.PricesIncludeVat),
		quote.DefaultVatRate,
	)
}
