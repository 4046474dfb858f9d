// Package pdfgen renders stored invoices to PDF.
package pdfgen

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/hmalik/go-invoicing/internal/models"
)

// Filename returns the download name for an invoice PDF, e.g.
// invoice_00000012.pdf.
func Filename(inv *models.Invoice) string {
	return fmt.Sprintf("invoice_%s.pdf", inv.PaddedNumber())
}

// Render lays out the invoice document: padded number, client block, one row
// per line item, and the aggregate totals with the currency label.
func Render(inv *models.Invoice) ([]byte, error) {
	currency := invoiceCurrency(inv)

	cfg := config.NewBuilder().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()
	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(8, "Invoice "+inv.PaddedNumber(), props.Text{Size: 16, Style: fontstyle.Bold}),
		text.NewCol(4, inv.CreatedAt.Format("02 Jan 2006"), props.Text{Size: 10, Top: 4, Align: align.Right}),
	)
	m.AddRows(line.NewRow(4))

	m.AddRow(6, text.NewCol(12, "Billed to", props.Text{Size: 9, Style: fontstyle.Bold}))
	m.AddRow(5, text.NewCol(12, inv.ClientName, props.Text{Size: 10}))
	m.AddRow(5, text.NewCol(12, inv.ClientAddress+", "+inv.ClientCity, props.Text{Size: 9}))
	m.AddRow(5, text.NewCol(12, "TIN: "+inv.ClientTIN, props.Text{Size: 9}))
	m.AddRows(line.NewRow(4))

	header := props.Text{Size: 8, Style: fontstyle.Bold}
	m.AddRow(7,
		text.NewCol(4, "Product", header),
		text.NewCol(1, "Qty", headerRight()),
		text.NewCol(2, "Unit price", headerRight()),
		text.NewCol(2, "Gross", headerRight()),
		text.NewCol(1, "VAT", headerRight()),
		text.NewCol(2, "Net", headerRight()),
	)
	for _, item := range inv.Items {
		m.AddRow(6,
			text.NewCol(4, item.ProductName, props.Text{Size: 8}),
			text.NewCol(1, trimFloat(item.Quantity), cellRight()),
			text.NewCol(2, amount(item.ProductPrice), cellRight()),
			text.NewCol(2, amount(item.GrossAmount), cellRight()),
			text.NewCol(1, amount(item.VATAmount), cellRight()),
			text.NewCol(2, amount(item.NetAmount), cellRight()),
		)
	}
	m.AddRows(line.NewRow(4))

	totalRow := func(label string, value decimal.Decimal, bold bool) {
		style := fontstyle.Normal
		if bold {
			style = fontstyle.Bold
		}
		m.AddRow(6,
			text.NewCol(8, "", props.Text{}),
			text.NewCol(2, label, props.Text{Size: 9, Style: style, Align: align.Right}),
			text.NewCol(2, amount(value)+" "+currency, props.Text{Size: 9, Style: style, Align: align.Right}),
		)
	}
	totalRow("Gross", inv.GrossAmount, false)
	totalRow("Discount", inv.DiscountAmount, false)
	totalRow("Tax", inv.TaxAmount, false)
	totalRow("Total due", inv.NetAmount, true)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRight() props.Text {
	return props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Right}
}

func cellRight() props.Text {
	return props.Text{Size: 8, Align: align.Right}
}

func amount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func trimFloat(f float64) string {
	return decimal.NewFromFloat(f).String()
}

func invoiceCurrency(inv *models.Invoice) string {
	if len(inv.Items) > 0 {
		return inv.Items[0].PriceCurrency
	}
	return ""
}
