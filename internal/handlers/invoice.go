package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/hmalik/go-invoicing/internal/httpx"
	"github.com/hmalik/go-invoicing/internal/models"
	"github.com/hmalik/go-invoicing/internal/pdfgen"
	"github.com/hmalik/go-invoicing/internal/pricing"
	"github.com/hmalik/go-invoicing/internal/services"
	"github.com/hmalik/go-invoicing/internal/validation"
)

type InvoiceHandler struct {
	db  *gorm.DB
	svc *services.InvoiceService
}

func NewInvoiceHandler(db *gorm.DB, svc *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{db: db, svc: svc}
}

// List: GET /api/invoices
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	var invoices []models.Invoice
	if err := h.db.Preload("Items").Order("invoice_number").Find(&invoices).Error; err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "failed to list invoices")
		return
	}
	httpx.JSON(w, http.StatusOK, invoices)
}

// Get: GET /api/invoices/{id}
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.load(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// Create: POST /api/invoices?dryrun={true|false}
//
// With dryrun the full priced invoice is returned but nothing is persisted;
// the computation is identical, so the invoice carries no sequence number.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	dryRun := isDryRun(r.URL.Query().Get("dryrun"))

	var req services.CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	v := make(validation.Violations)
	validation.Required("client_id", req.ClientID, v)
	for i, item := range req.Items {
		prefix := "invoice_items[" + strconv.Itoa(i) + "]."
		validation.Required(prefix+"product_id", item.ProductID, v)
		validation.NonNegativeFloat(prefix+"product_quantity", item.Quantity, v)
		validation.RangeFloat(prefix+"product_discount_percent", item.DiscountPercent, 0, 100, v)
		validation.NonNegativeFloat(prefix+"product_markup_percent", item.MarkupPercent, v)
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, v.Messages()...)
		return
	}

	inv, err := h.svc.Create(r.Context(), req, dryRun)
	if err != nil {
		h.writeCreateError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"status":          "SUCCESS",
		"message":         "Invoice created successfully!",
		"invoice_details": inv,
	})
}

// Download: GET /api/invoices/{id}/download
func (h *InvoiceHandler) Download(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.load(w, r)
	if !ok {
		return
	}
	pdfBytes, err := pdfgen.Render(inv)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pdfgen.Filename(inv)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdfBytes)
}

func (h *InvoiceHandler) load(w http.ResponseWriter, r *http.Request) (*models.Invoice, bool) {
	var inv models.Invoice
	err := h.db.Where("invoice_id = ?", r.PathValue("id")).Preload("Items").First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONNotFound(w, "INVOICE_NOT_FOUND", "Invoice not found!")
		return nil, false
	}
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return &inv, true
}

func (h *InvoiceHandler) writeCreateError(w http.ResponseWriter, err error) {
	var productNotFound *pricing.ProductNotFoundError
	switch {
	case errors.Is(err, services.ErrClientNotFound):
		httpx.JSON(w, http.StatusNotFound, httpx.NotFoundBody{
			Status:    "ERROR",
			ErrorCode: "CLIENT_NOT_FOUND",
			Message:   "Client not found!",
		})
	case errors.Is(err, pricing.ErrEmptyInvoice):
		httpx.JSONError(w, http.StatusBadRequest, "Invoice must contain at least one invoice item")
	case errors.As(err, &productNotFound):
		httpx.JSONNotFound(w, "PRODUCT_NOT_FOUND",
			"Product with id "+productNotFound.ProductID+" not found!")
	default:
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
	}
}

func isDryRun(value string) bool {
	return value == "true" || value == "1"
}
