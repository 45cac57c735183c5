package service

import (
	"context"

	"github.com/offertehq/offerte/internal/accountctx"
	"github.com/offertehq/offerte/internal/dashboard/domain"
	invoicedomain "github.com/offertehq/offerte/internal/invoice/domain"
	invoicerepo "github.com/offertehq/offerte/internal/invoice/repository"
	quotedomain "github.com/offertehq/offerte/internal/quote/domain"
	quoterepo "github.com/offertehq/offerte/internal/quote/repository"
	"github.com/offertehq/offerte/internal/vat"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Quotes   quoterepo.Repository
	Invoices invoicerepo.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	quotes   quoterepo.Repository
	invoices invoicerepo.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("dashboard.service"),
		quotes:   p.Quotes,
		invoices: p.Invoices,
	}
}

// Summary recomputes every document in the window from its items. The
// stored snapshot columns are deliberately not trusted here: a single
// engine produces every figure shown.
func (s *Service) Summary(ctx context.Context, req domain.SummaryRequest) (domain.Summary, error) {
	accountID, ok := accountctx.AccountIDFromContext(ctx)
	if !ok {
		return domain.Summary{}, domain.ErrInvalidAccount
	}

	var out domain.Summary

	quotes, err := s.quotes.ListAll(ctx, s.db, accountID, quotedomain.ListQuoteFilter{
		CreatedFrom: req.From,
		CreatedTo:   req.To,
	})
	if err != nil {
		return domain.Summary{}, err
	}

	converted := 0
	for _, quote := range quotes {
		items, err := s.quotes.ListItems(ctx, s.db, accountID, quote.ID)
		if err != nil {
			return domain.Summary{}, err
		}
		totals := vat.Aggregate(
			vat.NormalizeLines(quoteItemsToRaw(items)),
			vat.ModeFromInclusiveFlag(quote.PricesIncludeVat),
			quote.DefaultVatRate,
		)
		out.Quotes.Count++
		out.Quotes.Subtotal = out.Quotes.Subtotal.Add(totals.Subtotal)
		out.Quotes.VATPayable = out.Quotes.VATPayable.Add(totals.VATAmount)
		out.Quotes.Total = out.Quotes.Total.Add(totals.Total)
		if quote.InvoiceID != nil {
			converted++
		}
	}
	out.OpenQuotes = out.Quotes.Count - converted
	if out.Quotes.Count > 0 {
		out.ConvertedRatio = decimal.NewFromInt(int64(converted)).
			DivRound(decimal.NewFromInt(int64(out.Quotes.Count)), 4)
	}

	invoices, err := s.invoices.ListAll(ctx, s.db, accountID, invoicedomain.ListInvoiceFilter{
		CreatedFrom: req.From,
		CreatedTo:   req.To,
	})
	if err != nil {
		return domain.Summary{}, err
	}

	for _, invoice := range invoices {
		items, err := s.invoices.ListItems(ctx, s.db, accountID, invoice.ID)
		if err != nil {
			return domain.Summary{}, err
		}
		totals := vat.Aggregate(
			vat.NormalizeLines(invoiceItemsToRaw(items)),
			vat.ModeFromInclusiveFlag(invoice.PricesIncludeVat),
			invoice.DefaultVatRate,
		)
		out.Invoices.Count++
		out.Invoices.Subtotal = out.Invoices.Subtotal.Add(totals.Subtotal)
		out.Invoices.VATPayable = out.Invoices.VATPayable.Add(totals.VATAmount)
		out.Invoices.Total = out.Invoices.Total.Add(totals.Total)
	}

	return out, nil
}

func quoteItemsToRaw(items []quotedomain.QuoteItem) []vat.RawLine {
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
	return raw
}

func invoiceItemsToRaw(items []invoicedomain.InvoiceItem) []vat.RawLine {
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
	return raw
}
