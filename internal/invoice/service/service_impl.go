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
	"github.com/offertehq/offerte/internal/invoice/domain"
	"github.com/offertehq/offerte/internal/invoice/repository"
	"github.com/offertehq/offerte/internal/providers/pdf"
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
	pdf       pdf.Provider
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("invoice.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		customers: p.Customers,
		settings:  p.Settings,
		pdf:       p.PDF,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (domain.InvoiceDetail, error) {
	accountID, ok := accountctx.AccountIDFromContext(ctx)
	if !ok {
		return domain.InvoiceDetail{}, domain.ErrInvalidAccount
	}

	customer, err := s.customers.GetByID(ctx, customerdomain.GetCustomerRequest{ID: req.CustomerID})
	if err != nil {
		if errors.Is(err, customerdomain.ErrNotFound) || errors.Is(err, customerdomain.ErrInvalidID) {
			return domain.InvoiceDetail{}, domain.ErrInvalidCustomer
		}
		return domain.InvoiceDetail{}, err
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return domain.InvoiceDetail{}, err
	}

	now := s.clock.Now()
	dueAt := req.DueAt
	if dueAt == nil {
		due := now.AddDate(0, 0, settings.PaymentTermsDays)
		dueAt = &due
	}

	invoice := domain.Invoice{
		ID:         s.genID.Generate(),
		AccountID:  accountID,
		CustomerID: customer.ID,
		Reference:  strings.TrimSpace(req.Reference),
		Notes:      strings.TrimSpace(req.Notes),
		IssuedAt:   now,
		DueAt:      dueAt,

		// Pricing mode and default rate are frozen at creation; later
		// settings changes do not reinterpret this document.
		Currency:         settings.Currency,
		PricesIncludeVat: settings.PricesIncludeVat,
		DefaultVatRate:   settings.DefaultVatRate,

		CreatedAt: now,
		UpdatedAt: now,
	}

	items, err := buildItems(s.genID, accountID, invoice.ID, req.Items, now)
	if err != nil {
		return domain.InvoiceDetail{}, err
	}

	totals := computeTotals(invoice, items)
	invoice.SubtotalAmount = totals.Subtotal
	invoice.VatAmount = totals.VATAmount
	invoice.TotalAmount = totals.Total

	if err := s.repo.Insert(ctx, s.db, &invoice, items); err != nil {
		return domain.InvoiceDetail{}, err
	}

	return domain.InvoiceDetail{Invoice: invoice, Items: items, Totals: totals}, nil
}

// CreateImported writes an invoice from another document's lines without
// revalidating them. Rows a stricter write path would reject are kept;
// the totals engine skips what it cannot parse. When tx is non-nil the
// insert joins the caller's transaction.
func (s *Service) CreateImported(ctx context.Context, tx *gorm.DB, req domain.CreateImportedRequest) (domain.Invoice, error) {
	accountID, ok := accountctx.AccountIDFromContext(ctx)
	if !ok {
		return domain.Invoice{}, domain.ErrInvalidAccount
	}

	db := s.db
	if tx != nil {
		db = tx
	}

	now := s.clock.Now()
	due := req.DueAt
	if due == nil {
		settings, err := s.settings.Get(ctx)
		if err != nil {
			return domain.Invoice{}, err
		}
		d := now.AddDate(0, 0, settings.PaymentTermsDays)
		due = &d
	}

	invoice := domain.Invoice{
		ID:         s.genID.Generate(),
		AccountID:  accountID,
		CustomerID: req.CustomerID,
		Reference:  strings.TrimSpace(req.Reference),
		Notes:      strings.TrimSpace(req.Notes),
		IssuedAt:   now,
		DueAt:      due,

		Currency:         req.Currency,
		PricesIncludeVat: req.PricesIncludeVat,
		DefaultVatRate:   req.DefaultVatRate,

		QuoteID: req.QuoteID,

		CreatedAt: now,
		UpdatedAt: now,
	}

	items := make([]domain.InvoiceItem, 0, len(req.Lines))
	for _, ln := range req.Lines {
		items = append(items, domain.InvoiceItem{
			ID:              s.genID.Generate(),
			AccountID:       accountID,
			InvoiceID:       invoice.ID,
			Position:        ln.Position,
			Description:     ln.Description,
			Quantity:        ln.Quantity,
			Unit:            ln.Unit,
			UnitPrice:       ln.UnitPrice,
			VatTreatment:    ln.VatTreatment,
			VatRateOverride: ln.VatRateOverride,
			CreatedAt:       now,
		})
	}

	totals := computeTotals(invoice, items)
	invoice.SubtotalAmount = totals.Subtotal
	invoice.VatAmount = totals.VATAmount
	invoice.TotalAmount = totals.Total

	if err := s.repo.Insert(ctx, db, &invoice, items); err != nil {
		return domain.Invoice{}, err
	}

	return invoice, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetInvoiceRequest) (domain.InvoiceDetail, error) {
	accountID, ok := accountctx.AccountIDFromContext(ctx)
	if !ok {
		return domain.InvoiceDetail{}, domain.ErrInvalidAccount
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.InvoiceDetail{}, err
	}

	invoice, err := s.repo.FindByID(ctx, s.db, accountID, id)
	if err != nil {
		return domain.InvoiceDetail{}, err
	}
	if invoice == nil {
		return domain.InvoiceDetail{}, domain.ErrNotFound
	}

	items, err := s.repo.ListItems(ctx, s.db, accountID, id)
	if err != nil {
		return domain.InvoiceDetail{}, err
	}

	return domain.InvoiceDetail{
		Invoice: *invoice,
		Items:   items,
		Totals:  computeTotals(*invoice, items),
	}, nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	accountID, ok := accountctx.AccountIDFromContext(ctx)
	if !ok {
		return domain.ListInvoiceResponse{}, domain.ErrInvalidAccount
	}

	filter := domain.ListInvoiceFilter{
		CustomerID:  strings.TrimSpace(req.CustomerID),
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
		return domain.ListInvoiceResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(invoice *domain.Invoice) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        invoice.ID.String(),
			CreatedAt: invoice.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	invoices := make([]domain.Invoice, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		invoices = append(invoices, *item)
	}

	resp := domain.ListInvoiceResponse{Invoices: invoices}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateInvoiceRequest) (domain.InvoiceDetail, error) {
	accountID, ok := accountctx.AccountIDFromContext(ctx)
	if !ok {
		return domain.InvoiceDetail{}, domain.ErrInvalidAccount
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.InvoiceDetail{}, err
	}

	invoice, err := s.repo.FindByID(ctx, s.db, accountID, id)
	if err != nil {
		return domain.InvoiceDetail{}, err
	}
	if invoice == nil {
		return domain.InvoiceDetail{}, domain.ErrNotFound
	}

	if req.Reference != nil {
		invoice.Reference = strings.TrimSpace(*req.Reference)
	}
	if req.Notes != nil {
		invoice.Notes = strings.TrimSpace(*req.Notes)
	}
	if req.DueAt != nil {
		invoice.DueAt = req.DueAt
	}
	invoice.UpdatedAt = s.clock.Now()

	var items []domain.InvoiceItem
	if req.Items != nil {
		items, err = buildItems(s.genID, accountID, invoice.ID, req.Items, s.clock.Now())
	} else {
		items, err = s.repo.ListItems(ctx, s.db, accountID, id)
	}
	if err != nil {
		return domain.InvoiceDetail{}, err
	}

	totals := computeTotals(*invoice, items)
	invoice.SubtotalAmount = totals.Subtotal
	invoice.VatAmount = totals.VATAmount
	invoice.TotalAmount = totals.Total

	if req.Items != nil {
		err = s.repo.ReplaceItems(ctx, s.db, invoice, items)
	} else {
		err = s.repo.Save(ctx, s.db, invoice)
	}
	if err != nil {
		return domain.InvoiceDetail{}, err
	}

	return domain.InvoiceDetail{Invoice: *invoice, Items: items, Totals: totals}, nil
}

func (s *Service) Delete(ctx context.Context, req domain.GetInvoiceRequest) error {
	accountID, ok := accountctx.AccountIDFromContext(ctx)
	if !ok {
		return domain.ErrInvalidAccount
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return err
	}

	invoice, err := s.repo.FindByID(ctx, s.db, accountID, id)
	if err != nil {
		return err
	}
	if invoice == nil {
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

func buildItems(genID *snowflake.Node, accountID, invoiceID snowflake.ID, inputs []domain.ItemInput, now time.Time) ([]domain.InvoiceItem, error) {
	items := make([]domain.InvoiceItem, 0, len(inputs))
	for i, in := range inputs {
		if in.Quantity.IsZero() {
			return nil, domain.ErrInvalidQuantity
		}
		var override *string
		if in.VatRateOverride != nil {
			v := in.VatRateOverride.String()
			override = &v
		}
		items = append(items, domain.InvoiceItem{
			ID:              genID.Generate(),
			AccountID:       accountID,
			InvoiceID:       invoiceID,
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

// computeTotals is the single read path for invoice amounts: stored lines
// go through normalization so rows with unparseable numerics are skipped
// instead of failing the whole document.
func computeTotals(invoice domain.Invoice, items []domain.InvoiceItem) vat.Totals {
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
		vat.ModeFromInclusiveFlag(invoice.PricesIncludeVat),
		invoice.DefaultVatRate,
	)
}
