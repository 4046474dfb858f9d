package models

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Monetary fields go over the wire as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// NewID returns a 32-char hex identifier for new entities. Identifiers are
// always assigned server-side and are immutable after creation.
func NewID() string {
	u, err := uuid.NewRandom()
	if err != nil {
		// uuid only fails when the system entropy source does; fall back to
		// reading it directly rather than panicking mid-request.
		var b [16]byte
		_, _ = rand.Read(b[:])
		return hex.EncodeToString(b[:])
	}
	return hex.EncodeToString(u[:])
}

// Invoice is an immutable billing document. The display number is a
// DB-assigned auto-increment surrogate, separate from the opaque invoice_id;
// the storage sequence is what serialises concurrent number assignment.
type Invoice struct {
	Number    int64  `gorm:"column:invoice_number;primaryKey;autoIncrement" json:"invoice_number"`
	InvoiceID string `gorm:"column:invoice_id;size:32;uniqueIndex;not null" json:"invoice_id"`
	ClientID  string `gorm:"column:client_id;size:32;index;not null" json:"client_id"`

	// Client snapshot, copied at creation time.
	ClientName    string `gorm:"column:client_name;size:255;not null" json:"client_name"`
	ClientTIN     string `gorm:"column:client_tin;size:64;not null" json:"client_tin"`
	ClientAddress string `gorm:"column:client_address;size:500;not null" json:"client_address"`
	ClientCity    string `gorm:"column:client_city;size:100;not null" json:"client_city"`
	ClientTaxable bool   `gorm:"column:is_client_taxable;not null" json:"is_client_taxable"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime:false;not null" json:"created_at"`

	// Aggregate totals, each the left-to-right sum of the matching item field.
	GrossAmount    decimal.Decimal `gorm:"column:invoice_gross_amount;type:decimal(20,4);not null" json:"invoice_gross_amount"`
	DiscountAmount decimal.Decimal `gorm:"column:total_discount_amount;type:decimal(20,4);not null" json:"total_discount_amount"`
	TaxAmount      decimal.Decimal `gorm:"column:total_tax_amount;type:decimal(20,4);not null" json:"total_tax_amount"`
	NetAmount      decimal.Decimal `gorm:"column:invoice_net_amount;type:decimal(20,4);not null" json:"invoice_net_amount"`

	Client *Client       `gorm:"foreignKey:ClientID;references:ClientID" json:"-"`
	Items  []InvoiceItem `gorm:"foreignKey:InvoiceID;references:InvoiceID;constraint:OnDelete:CASCADE" json:"invoice_items"`
}

func (Invoice) TableName() string { return "invoices" }

// PaddedNumber renders the display number zero-padded to 8 digits.
func (i *Invoice) PaddedNumber() string {
	return fmt.Sprintf("%08d", i.Number)
}

// InvoiceItem is one priced line. Product fields are snapshots taken when the
// invoice was created.
type InvoiceItem struct {
	InvoiceItemID string `gorm:"column:invoice_item_id;primaryKey;size:32" json:"invoice_item_id"`
	InvoiceID     string `gorm:"column:invoice_id;size:32;index;not null" json:"-"`
	ProductID     string `gorm:"column:product_id;size:32;index;not null" json:"product_id"`

	// Product snapshot.
	ProductName   string          `gorm:"column:product_name;size:255;not null" json:"product_name"`
	ProductPrice  decimal.Decimal `gorm:"column:product_price;type:decimal(20,4);not null" json:"product_price"`
	PriceCurrency string          `gorm:"column:product_price_currency;size:8;not null" json:"product_price_currency"`
	VATPercent    float64         `gorm:"column:product_vat_percent;not null" json:"product_vat_percent"`

	Quantity        float64 `gorm:"column:product_quantity;not null" json:"product_quantity"`
	DiscountPercent float64 `gorm:"column:product_discount_percent;not null" json:"product_discount_percent"`
	MarkupPercent   float64 `gorm:"column:product_markup_percent;not null" json:"product_markup_percent"`

	// Computed amounts, in calculation order.
	TotalPrice          decimal.Decimal `gorm:"column:total_price;type:decimal(20,4);not null" json:"total_price"`
	MarkupAmount        decimal.Decimal `gorm:"column:markup_amount;type:decimal(20,4);not null" json:"markup_amount"`
	GrossAmount         decimal.Decimal `gorm:"column:gross_amount;type:decimal(20,4);not null" json:"gross_amount"`
	DiscountAmount      decimal.Decimal `gorm:"column:discount_amount;type:decimal(20,4);not null" json:"discount_amount"`
	AmountAfterDiscount decimal.Decimal `gorm:"column:amount_after_discount;type:decimal(20,4);not null" json:"amount_after_discount"`
	VATAmount           decimal.Decimal `gorm:"column:vat_amount;type:decimal(20,4);not null" json:"vat_amount"`
	NetAmount           decimal.Decimal `gorm:"column:net_amount;type:decimal(20,4);not null" json:"net_amount"`

	Product *Product `gorm:"foreignKey:ProductID;references:ProductID" json:"-"`
}

func (InvoiceItem) TableName() string { return "invoice_items" }
