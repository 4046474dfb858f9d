// Package services holds the invoice creation workflow: lookups, pricing,
// and transactional persistence.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hmalik/go-invoicing/internal/models"
	"github.com/hmalik/go-invoicing/internal/pricing"
)

// ErrClientNotFound is returned when the requested client does not exist.
var ErrClientNotFound = errors.New("client not found")

// InvoiceItemRequest is one requested line, as received on the wire.
type InvoiceItemRequest struct {
	ProductID       string  `json:"product_id"`
	Quantity        float64 `json:"product_quantity"`
	DiscountPercent float64 `json:"product_discount_percent"`
	MarkupPercent   float64 `json:"product_markup_percent"`
}

// CreateInvoiceRequest is the invoice creation payload.
type CreateInvoiceRequest struct {
	ClientID string               `json:"client_id"`
	Items    []InvoiceItemRequest `json:"invoice_items"`
}

type InvoiceService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewInvoiceService(db *gorm.DB, log *zap.Logger) *InvoiceService {
	return &InvoiceService{db: db, log: log}
}

// txCatalog resolves products with fresh reads inside the creation
// transaction. A miss is a typed absence so pricing can name the product.
type txCatalog struct {
	tx *gorm.DB
}

func (c txCatalog) Product(id string) (pricing.ProductInfo, bool, error) {
	var p models.Product
	err := c.tx.Where("product_id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pricing.ProductInfo{}, false, nil
	}
	if err != nil {
		return pricing.ProductInfo{}, false, err
	}
	return pricing.ProductInfo{
		Name:       p.Name,
		UnitPrice:  p.Price,
		Currency:   p.PriceCurrency,
		VATPercent: p.VATPercent,
	}, true, nil
}

// Create prices and stores a new invoice. The whole operation runs in one
// transaction: header and items commit together or not at all. With dryRun
// the identical computation is performed and returned, but nothing is
// written — a dry-run invoice therefore carries no sequence number.
func (s *InvoiceService) Create(ctx context.Context, req CreateInvoiceRequest, dryRun bool) (*models.Invoice, error) {
	var inv *models.Invoice

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var client models.Client
		if err := tx.Where("client_id = ?", req.ClientID).First(&client).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrClientNotFound
			}
			return fmt.Errorf("load client: %w", err)
		}

		requests := make([]pricing.LineRequest, len(req.Items))
		for i, item := range req.Items {
			requests[i] = pricing.LineRequest{
				ProductID:       item.ProductID,
				Quantity:        item.Quantity,
				DiscountPercent: item.DiscountPercent,
				MarkupPercent:   item.MarkupPercent,
			}
		}

		lines, totals, err := pricing.PriceInvoice(client.Taxable, requests, txCatalog{tx: tx})
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		inv = &models.Invoice{
			InvoiceID: models.NewID(),
			ClientID:  client.ClientID,

			ClientName:    client.Name,
			ClientTIN:     client.TIN,
			ClientAddress: client.Address,
			ClientCity:    client.City,
			ClientTaxable: client.Taxable,

			CreatedAt: now,

			GrossAmount:    totals.Gross,
			DiscountAmount: totals.Discount,
			TaxAmount:      totals.Tax,
			NetAmount:      totals.Net,
		}
		inv.Items = make([]models.InvoiceItem, len(lines))
		for i, l := range lines {
			inv.Items[i] = models.InvoiceItem{
				InvoiceItemID: models.NewID(),
				ProductID:     l.ProductID,

				ProductName:   l.ProductName,
				ProductPrice:  l.UnitPrice,
				PriceCurrency: l.Currency,
				VATPercent:    l.VATPercent,

				Quantity:        l.Quantity,
				DiscountPercent: l.DiscountPercent,
				MarkupPercent:   l.MarkupPercent,

				TotalPrice:          l.TotalPrice,
				MarkupAmount:        l.MarkupAmount,
				GrossAmount:         l.GrossAmount,
				DiscountAmount:      l.DiscountAmount,
				AmountAfterDiscount: l.AmountAfterDiscount,
				VATAmount:           l.VATAmount,
				NetAmount:           l.NetAmount,
			}
		}

		if dryRun {
			return nil
		}
		if err := tx.Create(inv).Error; err != nil {
			return fmt.Errorf("persist invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("invoice priced",
		zap.String("invoice_id", inv.InvoiceID),
		zap.String("client_id", inv.ClientID),
		zap.Int("items", len(inv.Items)),
		zap.Bool("dryrun", dryRun),
	)
	return inv, nil
}
