package db

import (
	"errors"
	"fmt"

	migrate "github.com/golang-migrate/migrate/v4"
	// Register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/gorm"

	"github.com/hmalik/go-invoicing/internal/models"
)

// Migrate applies GORM auto-migrations for all entities. Used for sqlite and
// as the development path for postgres.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Product{},
		&models.Client{},
		&models.Invoice{},
		&models.InvoiceItem{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

// MigrateSQL runs the versioned SQL migrations in ./migrations against the
// given postgres URL. Preferred over AutoMigrate outside development.
func MigrateSQL(databaseURL string) error {
	m, err := migrate.New("file://migrations", databaseURL)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
