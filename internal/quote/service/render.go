package service

import (
	"context"
	"io"
	"strings"

	customerdomain "github.com/offertehq/offerte/internal/customer/domain"
	"github.com/offertehq/offerte/internal/money"
	"github.com/offertehq/offerte/internal/providers/pdf"
	"github.com/offertehq/offerte/internal/quote/domain"
	"github.com/offertehq/offerte/internal/vat"
)

const dateLayout = "02-01-2006"

func (s *Service) RenderPDF(ctx context.Context, req domain.GetQuoteRequest) (io.Reader, error) {
	detail, err := s.GetByID(ctx, req)
	if err != nil {
		return nil, err
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	customer, err := s.customers.GetByID(ctx, customerdomain.GetCustomerRequest{
		ID: detail.Quote.CustomerID.String(),
	})
	if err != nil {
		return nil, err
	}

	quote := detail.Quote
	currency := quote.Currency

	data := pdf.DocumentData{
		Title:     "Offerte",
		Reference: quote.Reference,
		IssueDate: quote.IssuedAt.Format(dateLayout),

		Company: pdf.Party{
			Name:      settings.CompanyName,
			Address:   settings.CompanyAddress,
			Email:     settings.CompanyEmail,
			VATNumber: settings.VATNumber,
		},
		BillTo: pdf.Party{
			Name:       customer.Name,
			Address:    customer.Address,
			PostalCity: strings.TrimSpace(customer.PostalCode + " " + customer.City),
			Country:    customer.Country,
			Email:      customer.Email,
			VATNumber:  customer.VATNumber,
		},

		Subtotal: money.Format(detail.Totals.Subtotal, currency),
		VatTotal: money.Format(detail.Totals.VATAmount, currency),
		Total:    money.Format(detail.Totals.Total, currency),
		Notices:  detail.Totals.Notices,

		IBAN:          settings.IBAN,
		ChamberNumber: settings.ChamberNumber,
		VATNumber:     settings.VATNumber,
		FooterNote:    settings.FooterNote,
		LogoPath:      settings.LogoURL,
	}
	if quote.ValidUntil != nil {
		data.ExtraDateLabel = "Geldig tot"
		data.ExtraDate = quote.ValidUntil.Format(dateLayout)
	}

	for _, ln := range vat.NormalizeLines(itemsToRaw(detail.Items)) {
		rate := vat.EffectiveRate(ln.Treatment, ln.RateOverride, quote.DefaultVatRate)
		data.Lines = append(data.Lines, pdf.DocumentLine{
			Description: ln.Description,
			Quantity:    ln.Quantity.String(),
			Unit:        ln.Unit,
			UnitPrice:   money.Format(ln.UnitPrice, currency),
			Amount:      money.Format(ln.Quantity.Mul(ln.UnitPrice).Round(2), currency),
			RateLabel:   money.FormatRate(rate),
		})
	}

	for _, row := range vat.VisibleBreakdown(detail.Totals, quote.DefaultVatRate) {
		data.TaxRows = append(data.TaxRows, pdf.TaxRow{
			RateLabel: money.FormatRate(row.Rate),
			Base:      money.Format(row.Base, currency),
			Amount:    money.Format(row.VAT, currency),
		})
	}

	return s.pdf.RenderQuote(ctx, data)
}

func itemsToRaw(items []domain.QuoteItem) []vat.RawLine {
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
