// Package pricing computes invoice line items and totals. It is a pure
// calculation: product data comes in through the Catalog collaborator and
// nothing is persisted here.
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrEmptyInvoice is returned when an invoice is requested with no lines.
var ErrEmptyInvoice = errors.New("invoice must contain at least one invoice item")

// ProductNotFoundError identifies which requested product is missing from the
// catalog. The whole pricing run fails; there are no partial results.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product with id %s not found", e.ProductID)
}

// LineRequest is one requested invoice line. Percentages are expressed 0-100.
type LineRequest struct {
	ProductID       string
	Quantity        float64
	DiscountPercent float64
	MarkupPercent   float64
}

// ProductInfo is the catalog view of a product: exactly the fields a line
// snapshots plus what the math needs.
type ProductInfo struct {
	Name       string
	UnitPrice  decimal.Decimal
	Currency   string
	VATPercent float64
}

// Catalog resolves product identifiers. A miss is reported as ok=false, not
// as an error; err is reserved for lookup failures.
type Catalog interface {
	Product(id string) (info ProductInfo, ok bool, err error)
}

// Line is a fully computed invoice line.
type Line struct {
	ProductID       string
	ProductName     string
	UnitPrice       decimal.Decimal
	Currency        string
	VATPercent      float64
	Quantity        float64
	DiscountPercent float64
	MarkupPercent   float64

	TotalPrice          decimal.Decimal
	MarkupAmount        decimal.Decimal
	GrossAmount         decimal.Decimal
	DiscountAmount      decimal.Decimal
	AmountAfterDiscount decimal.Decimal
	VATAmount           decimal.Decimal
	NetAmount           decimal.Decimal
}

// Totals holds the invoice-level aggregates.
type Totals struct {
	Gross    decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Net      decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// PriceInvoice prices every requested line in input order and accumulates the
// invoice totals as left-to-right running sums, so identical inputs always
// produce identical results. VAT is applied only when the client is taxable.
func PriceInvoice(clientTaxable bool, requests []LineRequest, catalog Catalog) ([]Line, Totals, error) {
	if len(requests) == 0 {
		return nil, Totals{}, ErrEmptyInvoice
	}

	totals := Totals{
		Gross:    decimal.Zero,
		Discount: decimal.Zero,
		Tax:      decimal.Zero,
		Net:      decimal.Zero,
	}

	lines := make([]Line, 0, len(requests))
	for _, req := range requests {
		info, ok, err := catalog.Product(req.ProductID)
		if err != nil {
			return nil, Totals{}, fmt.Errorf("catalog lookup %s: %w", req.ProductID, err)
		}
		if !ok {
			return nil, Totals{}, &ProductNotFoundError{ProductID: req.ProductID}
		}

		line := priceLine(clientTaxable, req, info)
		lines = append(lines, line)

		totals.Gross = totals.Gross.Add(line.GrossAmount)
		totals.Discount = totals.Discount.Add(line.DiscountAmount)
		totals.Tax = totals.Tax.Add(line.VATAmount)
		totals.Net = totals.Net.Add(line.NetAmount)
	}

	return lines, totals, nil
}

func priceLine(clientTaxable bool, req LineRequest, info ProductInfo) Line {
	quantity := decimal.NewFromFloat(req.Quantity)
	markupPct := decimal.NewFromFloat(req.MarkupPercent)
	discountPct := decimal.NewFromFloat(req.DiscountPercent)

	totalPrice := info.UnitPrice.Mul(quantity)
	markupAmount := totalPrice.Mul(markupPct).Div(hundred)
	grossAmount := totalPrice.Add(markupAmount)
	discountAmount := grossAmount.Mul(discountPct).Div(hundred)
	amountAfterDiscount := grossAmount.Sub(discountAmount)

	vatAmount := decimal.Zero
	if clientTaxable {
		vatAmount = amountAfterDiscount.Mul(decimal.NewFromFloat(info.VATPercent)).Div(hundred)
	}
	netAmount := amountAfterDiscount.Add(vatAmount)

	return Line{
		ProductID:       req.ProductID,
		ProductName:     info.Name,
		UnitPrice:       info.UnitPrice,
		Currency:        info.Currency,
		VATPercent:      info.VATPercent,
		Quantity:        req.Quantity,
		DiscountPercent: req.DiscountPercent,
		MarkupPercent:   req.MarkupPercent,

		TotalPrice:          totalPrice,
		MarkupAmount:        markupAmount,
		GrossAmount:         grossAmount,
		DiscountAmount:      discountAmount,
		AmountAfterDiscount: amountAfterDiscount,
		VATAmount:           vatAmount,
		NetAmount:           netAmount,
	}
}
