package service

import (
	"context"

	"github.com/offertehq/offerte/internal/accountctx"
	invoicedomain "github.com/offertehq/offerte/internal/invoice/domain"
	"github.com/offertehq/offerte/internal/quote/domain"
	pkgdb "github.com/offertehq/offerte/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ConvertToInvoice creates an invoice from a quote's lines. Lines are
// copied verbatim, not revalidated: what the quote stored is what the
// invoice gets. Conversion is one-way and at most once per quote: the
// invoice insert and the quote's back-reference commit in one
// transaction, and the unique index on invoices.quote_id rejects a
// second invoice if two conversions race past the in-transaction check.
func (s *Service) ConvertToInvoice(ctx context.Context, req domain.GetQuoteRequest) (domain.ConvertResult, error) {
	accountID, ok := accountctx.AccountIDFromContext(ctx)
	if !ok {
		return domain.ConvertResult{}, domain.ErrInvalidAccount
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.ConvertResult{}, err
	}

	// Payment terms are read up front so the transaction below touches
	// nothing outside its own connection.
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return domain.ConvertResult{}, err
	}
	due := s.clock.Now().AddDate(0, 0, settings.PaymentTermsDays)

	var invoice invoicedomain.Invoice
	err = s.db.Transaction(func(tx *gorm.DB) error {
		quote, err := s.repo.FindByID(ctx, tx, accountID, id)
		if err != nil {
			return err
		}
		if quote == nil {
			return domain.ErrNotFound
		}
		if quote.InvoiceID != nil {
			return domain.ErrAlreadyConverted
		}

		items, err := s.repo.ListItems(ctx, tx, accountID, id)
		if err != nil {
			return err
		}

		lines := make([]invoicedomain.ImportedLine, 0, len(items))
		for _, item := range items {
			lines = append(lines, invoicedomain.ImportedLine{
				Position:        item.Position,
				Description:     item.Description,
				Quantity:        item.Quantity,
				Unit:            item.Unit,
				UnitPrice:       item.UnitPrice,
				VatTreatment:    item.VatTreatment,
				VatRateOverride: item.VatRateOverride,
			})
		}

		invoice, err = s.invoices.CreateImported(ctx, tx, invoicedomain.CreateImportedRequest{
			CustomerID: quote.CustomerID,
			QuoteID:    &quote.ID,
			Reference:  quote.Reference,
			Notes:      quote.Notes,

			// The quote's frozen pricing mode and default rate carry over so
			// the invoice totals match the quote to the cent.
			Currency:         quote.Currency,
			PricesIncludeVat: quote.PricesIncludeVat,
			DefaultVatRate:   quote.DefaultVatRate,
			DueAt:            &due,
			Lines:            lines,
		})
		if err != nil {
			return err
		}

		quote.InvoiceID = &invoice.ID
		quote.UpdatedAt = s.clock.Now()
		return s.repo.Save(ctx, tx, quote)
	})
	if err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return domain.ConvertResult{}, domain.ErrAlreadyConverted
		}
		return domain.ConvertResult{}, err
	}

	s.log.Info("quote converted",
		zap.String("quote_id", id.String()),
		zap.String("invoice_id", invoice.ID.String()),
	)

	return domain.ConvertResult{
		QuoteID:   id.String(),
		InvoiceID: invoice.ID.String(),
	}, nil
}
