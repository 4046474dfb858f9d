package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/hmalik/go-invoicing/internal/httpx"
	"github.com/hmalik/go-invoicing/internal/models"
	"github.com/hmalik/go-invoicing/internal/validation"
)

type ProductHandler struct {
	db *gorm.DB
}

func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{db: db}
}

// productCreateRequest carries only caller-supplied business fields; the
// identifier and timestamps are always assigned server-side. Pointer fields
// distinguish "absent" from zero so catalog defaults apply.
type productCreateRequest struct {
	Name            string           `json:"product_name"`
	Description     string           `json:"product_description"`
	PriceCurrency   string           `json:"product_price_currency"`
	Price           *decimal.Decimal `json:"product_price"`
	DiscountPercent *float64         `json:"product_discount_percent"`
	MarkupPercent   *float64         `json:"product_markup_percent"`
	VATPercent      *float64         `json:"product_vat_percent"`
}

// productUpdateRequest is the allow-list for partial updates. Keys outside it
// (including product_id and timestamps) are never mapped onto the record.
type productUpdateRequest struct {
	Name            *string          `json:"product_name"`
	Description     *string          `json:"product_description"`
	PriceCurrency   *string          `json:"product_price_currency"`
	Price           *decimal.Decimal `json:"product_price"`
	DiscountPercent *float64         `json:"product_discount_percent"`
	MarkupPercent   *float64         `json:"product_markup_percent"`
	VATPercent      *float64         `json:"product_vat_percent"`
}

// List: GET /api/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	var products []models.Product
	if err := h.db.Find(&products).Error; err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "failed to list products")
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

// Create: POST /api/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	v := make(validation.Violations)
	validation.Required("product_name", req.Name, v)
	if req.Price == nil {
		v["product_price"] = "required"
	} else if req.Price.IsNegative() {
		v["product_price"] = "must_not_be_negative"
	}
	if req.DiscountPercent != nil {
		validation.RangeFloat("product_discount_percent", *req.DiscountPercent, 0, 100, v)
	}
	if req.MarkupPercent != nil {
		validation.NonNegativeFloat("product_markup_percent", *req.MarkupPercent, v)
	}
	if req.VATPercent != nil {
		validation.NonNegativeFloat("product_vat_percent", *req.VATPercent, v)
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, v.Messages()...)
		return
	}

	now := time.Now().UTC()
	product := models.Product{
		ProductID:     models.NewID(),
		Name:          req.Name,
		Description:   req.Description,
		PriceCurrency: "SAR",
		Price:         *req.Price,
		MarkupPercent: 20,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}
	if req.PriceCurrency != "" {
		product.PriceCurrency = req.PriceCurrency
	}
	if req.DiscountPercent != nil {
		product.DiscountPercent = *req.DiscountPercent
	}
	if req.MarkupPercent != nil {
		product.MarkupPercent = *req.MarkupPercent
	}
	if req.VATPercent != nil {
		product.VATPercent = *req.VATPercent
	}

	if err := h.db.Create(&product).Error; err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"status":        "SUCCESS",
		"message":       "Product added successfully!",
		"added_product": product,
	})
}

// Get: GET /api/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	err := h.db.Where("product_id = ?", r.PathValue("id")).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONNotFound(w, "PRODUCT_NOT_FOUND", "Product not found!")
		return
	}
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

// Update: PUT /api/products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	err := h.db.Where("product_id = ?", r.PathValue("id")).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONNotFound(w, "PRODUCT_NOT_FOUND", "Product not found!")
		return
	}
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req productUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	v := make(validation.Violations)
	if req.Name != nil {
		validation.Required("product_name", *req.Name, v)
	}
	if req.Price != nil && req.Price.IsNegative() {
		v["product_price"] = "must_not_be_negative"
	}
	if req.DiscountPercent != nil {
		validation.RangeFloat("product_discount_percent", *req.DiscountPercent, 0, 100, v)
	}
	if req.MarkupPercent != nil {
		validation.NonNegativeFloat("product_markup_percent", *req.MarkupPercent, v)
	}
	if req.VATPercent != nil {
		validation.NonNegativeFloat("product_vat_percent", *req.VATPercent, v)
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, v.Messages()...)
		return
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.PriceCurrency != nil {
		product.PriceCurrency = *req.PriceCurrency
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.DiscountPercent != nil {
		product.DiscountPercent = *req.DiscountPercent
	}
	if req.MarkupPercent != nil {
		product.MarkupPercent = *req.MarkupPercent
	}
	if req.VATPercent != nil {
		product.VATPercent = *req.VATPercent
	}
	product.LastUpdatedAt = time.Now().UTC()

	if err := h.db.Save(&product).Error; err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"status":          "SUCCESS",
		"message":         "Product updated successfully!",
		"updated_product": product,
	})
}
