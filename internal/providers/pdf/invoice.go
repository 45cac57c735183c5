package pdf

import (
	"bytes"
	"context"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) RenderQuote(ctx context.Context, data DocumentData) (io.Reader, error) {
	return p.render(ctx, data)
}

func (p *PDFProvider) RenderInvoice(ctx context.Context, data DocumentData) (io.Reader, error) {
	return p.render(ctx, data)
}

func (p *PDFProvider) render(_ context.Context, data DocumentData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Pagina {current} van {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	if data.LogoPath != "" {
		m.AddRow(30,
			image.NewFromFileCol(3, data.LogoPath, props.Rect{
				Center:  false,
				Percent: 80,
			}),
			col.New(9), // Spacer
		)
	}

	m.AddRow(12,
		text.NewCol(12, data.Title, props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	// Document meta
	metaRows := []string{"Datum: " + data.IssueDate}
	if data.Reference != "" {
		metaRows = append(metaRows, "Kenmerk: "+data.Reference)
	}
	if data.ExtraDate != "" {
		metaRows = append(metaRows, data.ExtraDateLabel+": "+data.ExtraDate)
	}
	metaCol := col.New(6)
	for i, row := range metaRows {
		metaCol.Add(text.New(row, props.Text{Top: float64(i * 4)}))
	}
	m.AddRow(16, metaCol, col.New(6))

	// Addresses
	m.AddRow(40,
		col.New(6).Add(partyLines(data.Company, "")...),
		col.New(6).Add(partyLines(data.BillTo, "Aan")...),
	)

	// Table header
	m.AddRow(8,
		text.NewCol(5, "Omschrijving", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Aantal", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Prijs", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(1, "BTW", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Bedrag", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	m.AddRow(2, line.NewCol(12))

	for _, item := range data.Lines {
		qty := item.Quantity
		if item.Unit != "" {
			qty += " " + item.Unit
		}
		m.AddRow(8,
			text.NewCol(5, item.Description, props.Text{Size: 9}),
			text.NewCol(2, qty, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.UnitPrice, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(1, item.RateLabel, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(2, line.NewCol(12))

	// Totals
	m.AddRow(7,
		col.New(7),
		text.NewCol(3, "Subtotaal", props.Text{Size: 9}),
		text.NewCol(2, data.Subtotal, props.Text{Size: 9, Align: align.Right}),
	)
	for _, row := range data.TaxRows {
		m.AddRow(7,
			col.New(7),
			text.NewCol(3, "BTW "+row.RateLabel+" over "+row.Base, props.Text{Size: 9}),
			text.NewCol(2, row.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}
	m.AddRow(8,
		col.New(7),
		text.NewCol(3, "Totaal", props.Text{Style: fontstyle.Bold, Size: 10}),
		text.NewCol(2, data.Total, props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
	)

	// Compliance notices
	for _, notice := range data.Notices {
		m.AddRow(6,
			text.NewCol(12, notice, props.Text{Size: 8, Style: fontstyle.Italic}),
		)
	}

	// Footer: bank and registration details
	footer := footerText(data)
	if footer != "" {
		m.AddRow(16,
			text.NewCol(12, footer, props.Text{Size: 8, Top: 6}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}

func partyLines(party Party, heading string) []core.Component {
	var items []core.Component
	top := 0.0
	if heading != "" {
		items = append(items, text.New(heading, props.Text{Style: fontstyle.Bold}))
		top = 5
	}
	items = append(items, text.New(party.Name, props.Text{Top: top, Style: fontstyle.Bold}))
	top += 4
	if party.Address != "" {
		items = append(items, text.New(party.Address, props.Text{Top: top}))
		top += 4
	}
	if party.PostalCity != "" {
		items = append(items, text.New(party.PostalCity, props.Text{Top: top}))
		top += 4
	}
	if party.Country != "" {
		items = append(items, text.New(party.Country, props.Text{Top: top}))
		top += 4
	}
	if party.Email != "" {
		items = append(items, text.New(party.Email, props.Text{Top: top}))
		top += 4
	}
	if party.VATNumber != "" {
		items = append(items, text.New("BTW: "+party.VATNumber, props.Text{Top: top}))
	}
	return items
}

func footerText(data DocumentData) string {
	parts := make([]string, 0, 4)
	if data.IBAN != "" {
		parts = append(parts, "IBAN "+data.IBAN)
	}
	if data.ChamberNumber != "" {
		parts = append(parts, "KvK "+data.ChamberNumber)
	}
	if data.VATNumber != "" {
		parts = append(parts, "BTW "+data.VATNumber)
	}
	if data.FooterNote != "" {
		parts = append(parts, data.FooterNote)
	}
	return joinNonEmpty(parts)
}

func joinNonEmpty(parts []string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += "  ·  "
		}
		out += p
	}
	return out
}
