package main

import (
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hmalik/go-invoicing/internal/handlers"
	"github.com/hmalik/go-invoicing/internal/httpx"
	"github.com/hmalik/go-invoicing/internal/services"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux *http.ServeMux
	db  *gorm.DB
	log *zap.Logger
}

// NewApp creates a new application with all routes configured.
func NewApp(db *gorm.DB, log *zap.Logger) *App {
	app := &App{
		mux: http.NewServeMux(),
		db:  db,
		log: log,
	}
	app.setupRoutes()
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	ph := handlers.NewProductHandler(a.db)
	ch := handlers.NewClientHandler(a.db)
	ih := handlers.NewInvoiceHandler(a.db, services.NewInvoiceService(a.db, a.log))

	a.mux.HandleFunc("GET /{$}", a.rootRoute)

	a.mux.HandleFunc("GET /api/products", ph.List)
	a.mux.HandleFunc("POST /api/products", ph.Create)
	a.mux.HandleFunc("GET /api/products/{id}", ph.Get)
	a.mux.HandleFunc("PUT /api/products/{id}", ph.Update)

	a.mux.HandleFunc("GET /api/clients", ch.List)
	a.mux.HandleFunc("POST /api/clients", ch.Create)
	a.mux.HandleFunc("GET /api/clients/{id}", ch.Get)
	a.mux.HandleFunc("PUT /api/clients/{id}", ch.Update)

	a.mux.HandleFunc("GET /api/invoices", ih.List)
	a.mux.HandleFunc("POST /api/invoices", ih.Create)
	a.mux.HandleFunc("GET /api/invoices/{id}", ih.Get)
	a.mux.HandleFunc("GET /api/invoices/{id}/download", ih.Download)
}

func (a *App) rootRoute(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusNotFound, map[string]any{"message": "There is nothing here"})
}
