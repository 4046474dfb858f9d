package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hmalik/go-invoicing/internal/models"
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

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v (%s)", err, w.Body.String())
	}
	return body
}

func TestProductCreateAssignsIDAndDefaults(t *testing.T) {
	db := setupTestDB(t)
	h := NewProductHandler(db)

	body := `{"product_name":"Printing","product_description":"Print various sizes","product_price":50,"product_vat_percent":5}`
	req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Create(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}

	resp := decodeBody(t, w)
	if resp["status"] != "SUCCESS" {
		t.Fatalf("unexpected status: %#v", resp)
	}
	added, ok := resp["added_product"].(map[string]any)
	if !ok {
		t.Fatalf("missing added_product: %#v", resp)
	}
	id, _ := added["product_id"].(string)
	if len(id) != 32 {
		t.Fatalf("expected server-assigned 32-char id, got %q", id)
	}
	if added["product_price_currency"] != "SAR" {
		t.Fatalf("expected default currency, got %v", added["product_price_currency"])
	}
	if added["product_markup_percent"] != 20.0 {
		t.Fatalf("expected default markup 20, got %v", added["product_markup_percent"])
	}
}

func TestProductCreateValidation(t *testing.T) {
	db := setupTestDB(t)
	h := NewProductHandler(db)

	req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(`{"product_name":""}`))
	w := httptest.NewRecorder()
	h.Create(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
	resp := decodeBody(t, w)
	if resp["status"] != "ERROR" {
		t.Fatalf("expected ERROR envelope, got %#v", resp)
	}
	if errs, ok := resp["errors"].([]any); !ok || len(errs) == 0 {
		t.Fatalf("expected errors list, got %#v", resp)
	}
}

func TestProductGetNotFound(t *testing.T) {
	db := setupTestDB(t)
	h := NewProductHandler(db)

	req := httptest.NewRequest(http.MethodGet, "/api/products/unknown", nil)
	req.SetPathValue("id", "unknown")
	w := httptest.NewRecorder()
	h.Get(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
	resp := decodeBody(t, w)
	if resp["error_code"] != "PRODUCT_NOT_FOUND" {
		t.Fatalf("unexpected body: %#v", resp)
	}
}

func TestProductUpdateIgnoresIdentifierAndTimestamps(t *testing.T) {
	db := setupTestDB(t)
	h := NewProductHandler(db)

	now := time.Now().UTC().Add(-time.Minute)
	product := models.Product{
		ProductID:     models.NewID(),
		Name:          "Printing",
		PriceCurrency: "SAR",
		Price:         decimal.NewFromInt(50),
		MarkupPercent: 20,
		VATPercent:    5,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	body := `{"product_id":"hijacked","created_at":"1999-01-01T00:00:00Z","product_name":"Large printing","product_price":75}`
	req := httptest.NewRequest(http.MethodPut, "/api/products/"+product.ProductID, strings.NewReader(body))
	req.SetPathValue("id", product.ProductID)
	w := httptest.NewRecorder()
	h.Update(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	var stored models.Product
	if err := db.Where("product_id = ?", product.ProductID).First(&stored).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.ProductID != product.ProductID {
		t.Fatalf("identifier changed: %s", stored.ProductID)
	}
	if stored.Name != "Large printing" {
		t.Fatalf("name not updated: %s", stored.Name)
	}
	if !stored.Price.Equal(decimal.NewFromInt(75)) {
		t.Fatalf("price not updated: %s", stored.Price)
	}
	if !stored.CreatedAt.Equal(product.CreatedAt) {
		t.Fatalf("created_at changed: %s", stored.CreatedAt)
	}
	if !stored.LastUpdatedAt.After(product.LastUpdatedAt) {
		t.Fatalf("last_updated_at not stamped: %s", stored.LastUpdatedAt)
	}

	// nothing new was created under the hijacked id
	var count int64
	db.Model(&models.Product{}).Where("product_id = ?", "hijacked").Count(&count)
	if count != 0 {
		t.Fatalf("hijacked id persisted")
	}
}

func TestProductUpdateNotFound(t *testing.T) {
	db := setupTestDB(t)
	h := NewProductHandler(db)

	req := httptest.NewRequest(http.MethodPut, "/api/products/missing", strings.NewReader(`{"product_name":"x"}`))
	req.SetPathValue("id", "missing")
	w := httptest.NewRecorder()
	h.Update(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}

func TestProductList(t *testing.T) {
	db := setupTestDB(t)
	h := NewProductHandler(db)

	for _, name := range []string{"A", "B"} {
		now := time.Now().UTC()
		p := models.Product{ProductID: models.NewID(), Name: name, PriceCurrency: "SAR", Price: decimal.NewFromInt(10), CreatedAt: now, LastUpdatedAt: now}
		if err := db.Create(&p).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	w := httptest.NewRecorder()
	h.List(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	var list []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 products got %d", len(list))
	}
}
