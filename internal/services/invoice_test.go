package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hmalik/go-invoicing/internal/models"
	"github.com/hmalik/go-invoicing/internal/pricing"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.Client{}, &models.Invoice{}, &models.InvoiceItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price string, vatPercent float64) models.Product {
	t.Helper()
	now := time.Now().UTC()
	p := models.Product{
		ProductID:     models.NewID(),
		Name:          name,
		PriceCurrency: "SAR",
		Price:         decimal.RequireFromString(price),
		VATPercent:    vatPercent,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func seedClient(t *testing.T, db *gorm.DB, taxable bool) models.Client {
	t.Helper()
	now := time.Now().UTC()
	c := models.Client{
		ClientID:      models.NewID(),
		Name:          "Alpha Tech",
		Address:       "Somewhere on the earth",
		City:          "Jedda",
		TIN:           models.NewID(),
		Taxable:       taxable,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return c
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestCreateInvoicePersistsHeaderAndItems(t *testing.T) {
	db := setupTestDB(t)
	product := seedProduct(t, db, "Printing", "50", 5)
	client := seedClient(t, db, true)
	svc := NewInvoiceService(db, zap.NewNop())

	inv, err := svc.Create(context.Background(), CreateInvoiceRequest{
		ClientID: client.ClientID,
		Items: []InvoiceItemRequest{
			{ProductID: product.ProductID, Quantity: 2, DiscountPercent: 10, MarkupPercent: 20},
		},
	}, false)
	require.NoError(t, err)

	assert.Equal(t, int64(1), inv.Number)
	assert.NotEmpty(t, inv.InvoiceID)
	assert.True(t, decimal.RequireFromString("120").Equal(inv.GrossAmount), "gross %s", inv.GrossAmount)
	assert.True(t, decimal.RequireFromString("12").Equal(inv.DiscountAmount))
	assert.True(t, decimal.RequireFromString("5.4").Equal(inv.TaxAmount))
	assert.True(t, decimal.RequireFromString("113.4").Equal(inv.NetAmount))

	// client snapshot
	assert.Equal(t, client.Name, inv.ClientName)
	assert.Equal(t, client.TIN, inv.ClientTIN)
	assert.True(t, inv.ClientTaxable)

	// product snapshot on the line
	require.Len(t, inv.Items, 1)
	item := inv.Items[0]
	assert.Equal(t, "Printing", item.ProductName)
	assert.Equal(t, "SAR", item.PriceCurrency)
	assert.True(t, decimal.RequireFromString("50").Equal(item.ProductPrice))
	assert.True(t, decimal.RequireFromString("113.4").Equal(item.NetAmount))

	assert.Equal(t, int64(1), countRows(t, db, &models.Invoice{}))
	assert.Equal(t, int64(1), countRows(t, db, &models.InvoiceItem{}))

	// the stored row carries the same totals
	var stored models.Invoice
	require.NoError(t, db.Preload("Items").Where("invoice_id = ?", inv.InvoiceID).First(&stored).Error)
	assert.True(t, stored.NetAmount.Equal(inv.NetAmount))
	require.Len(t, stored.Items, 1)
}

func TestCreateInvoiceSnapshotSurvivesProductEdit(t *testing.T) {
	db := setupTestDB(t)
	product := seedProduct(t, db, "Printing", "50", 5)
	client := seedClient(t, db, true)
	svc := NewInvoiceService(db, zap.NewNop())

	inv, err := svc.Create(context.Background(), CreateInvoiceRequest{
		ClientID: client.ClientID,
		Items:    []InvoiceItemRequest{{ProductID: product.ProductID, Quantity: 1}},
	}, false)
	require.NoError(t, err)

	// mutate the product after invoicing
	require.NoError(t, db.Model(&models.Product{}).
		Where("product_id = ?", product.ProductID).
		Updates(map[string]any{"product_name": "Renamed", "product_price": "999"}).Error)

	var stored models.Invoice
	require.NoError(t, db.Preload("Items").Where("invoice_id = ?", inv.InvoiceID).First(&stored).Error)
	assert.Equal(t, "Printing", stored.Items[0].ProductName)
	assert.True(t, decimal.RequireFromString("50").Equal(stored.Items[0].ProductPrice))
}

func TestCreateInvoiceDryRunLeavesStorageUnchanged(t *testing.T) {
	db := setupTestDB(t)
	product := seedProduct(t, db, "Printing", "50", 5)
	client := seedClient(t, db, true)
	svc := NewInvoiceService(db, zap.NewNop())

	req := CreateInvoiceRequest{
		ClientID: client.ClientID,
		Items: []InvoiceItemRequest{
			{ProductID: product.ProductID, Quantity: 2, DiscountPercent: 10, MarkupPercent: 20},
		},
	}

	dry, err := svc.Create(context.Background(), req, true)
	require.NoError(t, err)
	assert.Equal(t, int64(0), countRows(t, db, &models.Invoice{}))
	assert.Equal(t, int64(0), countRows(t, db, &models.InvoiceItem{}))
	assert.Zero(t, dry.Number)

	committed, err := svc.Create(context.Background(), req, false)
	require.NoError(t, err)

	// identical computation, the only difference is persistence
	assert.True(t, dry.GrossAmount.Equal(committed.GrossAmount))
	assert.True(t, dry.DiscountAmount.Equal(committed.DiscountAmount))
	assert.True(t, dry.TaxAmount.Equal(committed.TaxAmount))
	assert.True(t, dry.NetAmount.Equal(committed.NetAmount))
}

func TestCreateInvoiceNonTaxableClient(t *testing.T) {
	db := setupTestDB(t)
	product := seedProduct(t, db, "Printing", "50", 5)
	client := seedClient(t, db, false)
	svc := NewInvoiceService(db, zap.NewNop())

	inv, err := svc.Create(context.Background(), CreateInvoiceRequest{
		ClientID: client.ClientID,
		Items:    []InvoiceItemRequest{{ProductID: product.ProductID, Quantity: 2, MarkupPercent: 20}},
	}, false)
	require.NoError(t, err)
	assert.True(t, inv.TaxAmount.IsZero())
	assert.True(t, inv.Items[0].VATAmount.IsZero())
	assert.True(t, inv.NetAmount.Equal(inv.Items[0].AmountAfterDiscount))
}

func TestCreateInvoiceClientNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInvoiceService(db, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateInvoiceRequest{
		ClientID: "nope",
		Items:    []InvoiceItemRequest{{ProductID: "whatever", Quantity: 1}},
	}, false)
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestCreateInvoiceEmptyItems(t *testing.T) {
	db := setupTestDB(t)
	client := seedClient(t, db, true)
	svc := NewInvoiceService(db, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateInvoiceRequest{ClientID: client.ClientID}, false)
	assert.ErrorIs(t, err, pricing.ErrEmptyInvoice)
	assert.Equal(t, int64(0), countRows(t, db, &models.Invoice{}))
}

func TestCreateInvoiceUnknownProductPersistsNothing(t *testing.T) {
	db := setupTestDB(t)
	product := seedProduct(t, db, "Printing", "50", 5)
	client := seedClient(t, db, true)
	svc := NewInvoiceService(db, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateInvoiceRequest{
		ClientID: client.ClientID,
		Items: []InvoiceItemRequest{
			{ProductID: product.ProductID, Quantity: 1},
			{ProductID: "missing", Quantity: 2},
		},
	}, false)

	var nf *pricing.ProductNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "missing", nf.ProductID)

	// full rollback: no invoice row, no orphaned line rows
	assert.Equal(t, int64(0), countRows(t, db, &models.Invoice{}))
	assert.Equal(t, int64(0), countRows(t, db, &models.InvoiceItem{}))
}

func TestCreateInvoiceNumbersAreSequential(t *testing.T) {
	db := setupTestDB(t)
	product := seedProduct(t, db, "Printing", "50", 5)
	client := seedClient(t, db, true)
	svc := NewInvoiceService(db, zap.NewNop())

	req := CreateInvoiceRequest{
		ClientID: client.ClientID,
		Items:    []InvoiceItemRequest{{ProductID: product.ProductID, Quantity: 1}},
	}
	first, err := svc.Create(context.Background(), req, false)
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), req, false)
	require.NoError(t, err)

	assert.Equal(t, first.Number+1, second.Number)
	assert.NotEqual(t, first.InvoiceID, second.InvoiceID)
}
