package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hmalik/go-invoicing/internal/config"
	"github.com/hmalik/go-invoicing/internal/db"
	"github.com/hmalik/go-invoicing/internal/logging"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	// Load configuration from environment
	cfg := config.Load()

	logger, err := logging.Init(cfg.App.Dev, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	dbConn, err := db.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Handle migrate-only flag
	if *migrateOnlyFlag {
		if err := migrate(cfg, dbConn); err != nil {
			logger.Fatal("Migration failed", zap.Error(err))
		}
		logger.Info("Migrations completed successfully")
		return
	}

	// Handle seed-only flag
	if *seedOnlyFlag {
		if err := db.Seed(dbConn); err != nil {
			logger.Fatal("Seeding failed", zap.Error(err))
		}
		logger.Info("Seeding completed successfully")
		return
	}

	if err := migrate(cfg, dbConn); err != nil {
		logger.Fatal("Migration failed", zap.Error(err))
	}

	if cfg.App.Seed {
		if err := db.Seed(dbConn); err != nil {
			logger.Fatal("Seeding failed", zap.Error(err))
		}
	}

	appHandler := NewApp(dbConn, logger)
	handler := cors.AllowAll().Handler(withLogging(logger, appHandler))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Server.Port), zap.Bool("dev", cfg.App.Dev))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown signal received")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	logger.Info("Server stopped gracefully")
}

// migrate applies versioned SQL migrations when MIGRATIONS=1 on postgres,
// and falls back to AutoMigrate otherwise (the development path, and the
// only path for sqlite).
func migrate(cfg *config.Config, dbConn *gorm.DB) error {
	if cfg.App.Migrations && cfg.Database.Driver == "postgres" {
		return db.MigrateSQL(cfg.Database.URL())
	}
	return db.Migrate(dbConn)
}

// withLogging adds request logging middleware.
func withLogging(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
