package service

import (
	"context"
	"io"
	"strings"

	customerdomain "github.com/offertehq/offerte/internal/customer/domain"
	"github.com/offertehq/offerte/internal/invoice/domain"
	"github.com/offertehq/offerte/internal/money"
	"github.com/offertehq/offerte/internal/providers/pdf"
	settingsdomain "github.com/offertehq/offerte/internal/settings/domain"
	"github.com/offertehq/offerte/internal/vat"
	"github.com/shopspring/decimal"
)

const dateLayout = "02-01-2006"

func (s *Service) RenderPDF(ctx context.Context, req domain.GetInvoiceRequest) (io.Reader, error) {
	detail, err := s.GetByID(ctx, req)
	if err != nil {
		return nil, err
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	customer, err := s.customers.GetByID(ctx, customerdomain.GetCustomerRequest{
		ID: detail.Invoice.CustomerID.String(),
	})
	if err != nil {
		return nil, err
	}

	data := buildDocumentData(detail, settings, customer)
	return s.pdf.RenderInvoice(ctx, data)
}

func buildDocumentData(detail domain.InvoiceDetail, settings settingsdomain.Settings, customer customerdomain.Customer) pdf.DocumentData {
	invoice := detail.Invoice
	currency := invoice.Currency

	data := pdf.DocumentData{
		Title:     "Factuur",
		Reference: invoice.Reference,
		IssueDate: invoice.IssuedAt.Format(dateLayout),

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
	if invoice.DueAt != nil {
		data.ExtraDateLabel = "Vervaldatum"
		data.ExtraDate = invoice.DueAt.Format(dateLayout)
	}

	data.Lines = documentLines(itemsToRaw(detail.Items), invoice.DefaultVatRate, currency)

	for _, row := range vat.VisibleBreakdown(detail.Totals, invoice.DefaultVatRate) {
		data.TaxRows = append(data.TaxRows, pdf.TaxRow{
			RateLabel: money.FormatRate(row.Rate),
			Base:      money.Format(row.Base, currency),
			Amount:    money.Format(row.VAT, currency),
		})
	}

	return data
}

func itemsToRaw(items []domain.InvoiceItem) []vat.RawLine {
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

// documentLines renders the printable line rows. The same normalization
// as the totals engine applies, so a row skipped in the totals is also
// absent from the document body.
func documentLines(raw []vat.RawLine, fallback decimal.Decimal, currency string) []pdf.DocumentLine {
	lines := vat.NormalizeLines(raw)
	out := make([]pdf.DocumentLine, 0, len(lines))
	for _, ln := range lines {
		rate := vat.EffectiveRate(ln.Treatment, ln.RateOverride, fallback)
		out = append(out, pdf.DocumentLine{
			Description: ln.Description,
			Quantity:    ln.Quantity.String(),
			Unit:        ln.Unit,
			UnitPrice:   money.Format(ln.UnitPrice, currency),
			Amount:      money.Format(ln.Quantity.Mul(ln.UnitPrice).Round(2), currency),
			RateLabel:   money.FormatRate(rate),
		})
	}
	return out
}
