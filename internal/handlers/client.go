package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/hmalik/go-invoicing/internal/httpx"
	"github.com/hmalik/go-invoicing/internal/models"
	"github.com/hmalik/go-invoicing/internal/validation"
)

type ClientHandler struct {
	db *gorm.DB
}

func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{db: db}
}

type clientCreateRequest struct {
	Name    string `json:"client_name"`
	Address string `json:"client_address"`
	City    string `json:"client_city"`
	TIN     string `json:"client_tin"`
	Taxable *bool  `json:"is_client_taxable"`
}

// clientUpdateRequest is the allow-list for partial updates; client_id and
// timestamps cannot be set through it.
type clientUpdateRequest struct {
	Name    *string `json:"client_name"`
	Address *string `json:"client_address"`
	City    *string `json:"client_city"`
	TIN     *string `json:"client_tin"`
	Taxable *bool   `json:"is_client_taxable"`
}

// List: GET /api/clients
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	var clients []models.Client
	if err := h.db.Find(&clients).Error; err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "failed to list clients")
		return
	}
	httpx.JSON(w, http.StatusOK, clients)
}

// Create: POST /api/clients
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req clientCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	v := make(validation.Violations)
	validation.Required("client_name", req.Name, v)
	validation.Required("client_address", req.Address, v)
	validation.Required("client_city", req.City, v)
	validation.Required("client_tin", req.TIN, v)
	if req.Taxable == nil {
		v["is_client_taxable"] = "required"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, v.Messages()...)
		return
	}

	now := time.Now().UTC()
	client := models.Client{
		ClientID:      models.NewID(),
		Name:          req.Name,
		Address:       req.Address,
		City:          req.City,
		TIN:           req.TIN,
		Taxable:       *req.Taxable,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}
	if err := h.db.Create(&client).Error; err != nil {
		// most likely a duplicate client_tin
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"status":       "SUCCESS",
		"message":      "Client added successfully!",
		"added_client": client,
	})
}

// Get: GET /api/clients/{id}
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	var client models.Client
	err := h.db.Where("client_id = ?", r.PathValue("id")).First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONNotFound(w, "CLIENT_NOT_FOUND", "Client not found!")
		return
	}
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

// Update: PUT /api/clients/{id}
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	var client models.Client
	err := h.db.Where("client_id = ?", r.PathValue("id")).First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONNotFound(w, "CLIENT_NOT_FOUND", "Client not found!")
		return
	}
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req clientUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	v := make(validation.Violations)
	if req.Name != nil {
		validation.Required("client_name", *req.Name, v)
	}
	if req.Address != nil {
		validation.Required("client_address", *req.Address, v)
	}
	if req.City != nil {
		validation.Required("client_city", *req.City, v)
	}
	if req.TIN != nil {
		validation.Required("client_tin", *req.TIN, v)
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, v.Messages()...)
		return
	}

	if req.Name != nil {
		client.Name = *req.Name
	}
	if req.Address != nil {
		client.Address = *req.Address
	}
	if req.City != nil {
		client.City = *req.City
	}
	if req.TIN != nil {
		client.TIN = *req.TIN
	}
	if req.Taxable != nil {
		client.Taxable = *req.Taxable
	}
	client.LastUpdatedAt = time.Now().UTC()

	if err := h.db.Save(&client).Error; err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"status":         "SUCCESS",
		"message":        "Client updated successfully!",
		"updated_client": client,
	})
}
