package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Invoice items snapshot the fields they need at
// invoice time, so editing a product never changes historical invoices.
type Product struct {
	ProductID       string          `gorm:"column:product_id;primaryKey;size:32" json:"product_id"`
	Name            string          `gorm:"column:product_name;size:255;not null" json:"product_name"`
	Description     string          `gorm:"column:product_description;type:text" json:"product_description"`
	PriceCurrency   string          `gorm:"column:product_price_currency;size:8;not null" json:"product_price_currency"`
	Price           decimal.Decimal `gorm:"column:product_price;type:decimal(20,4);not null" json:"product_price"`
	DiscountPercent float64         `gorm:"column:product_discount_percent;not null" json:"product_discount_percent"`
	MarkupPercent   float64         `gorm:"column:product_markup_percent;not null" json:"product_markup_percent"`
	VATPercent      float64         `gorm:"column:product_vat_percent;not null" json:"product_vat_percent"`

	// Timestamps are stamped explicitly by the create/update operations,
	// never by column defaults or GORM tracking.
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime:false;not null" json:"created_at"`
	LastUpdatedAt time.Time `gorm:"column:last_updated_at" json:"last_updated_at"`
}

func (Product) TableName() string { return "products" }
