package db

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/hmalik/go-invoicing/internal/models"
)

// Seed inserts a sample product and client for local development. Existing
// rows (matched by name / tax id) are left alone, so seeding is idempotent.
func Seed(db *gorm.DB) error {
	now := time.Now().UTC()

	var product models.Product
	err := db.Where("product_name = ?", "Printing").First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		product = models.Product{
			ProductID:     models.NewID(),
			Name:          "Printing",
			Description:   "Print various sizes",
			PriceCurrency: "SAR",
			Price:         decimal.NewFromInt(50),
			MarkupPercent: 20,
			VATPercent:    5,
			CreatedAt:     now,
			LastUpdatedAt: now,
		}
		if err := db.Create(&product).Error; err != nil {
			return fmt.Errorf("seed product: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("seed product lookup: %w", err)
	}

	var client models.Client
	err = db.Where("client_tin = ?", "82375628377").First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		client = models.Client{
			ClientID:      models.NewID(),
			Name:          "Alpha Tech",
			TIN:           "82375628377",
			Address:       "Somewhere on the earth",
			City:          "Jedda",
			Taxable:       true,
			CreatedAt:     now,
			LastUpdatedAt: now,
		}
		if err := db.Create(&client).Error; err != nil {
			return fmt.Errorf("seed client: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("seed client lookup: %w", err)
	}

	return nil
}
