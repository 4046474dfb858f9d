package models

import "time"

// Client is a billed party. Invoices snapshot the client fields at creation
// time, so the client row can change freely afterwards.
type Client struct {
	ClientID string `gorm:"column:client_id;primaryKey;size:32" json:"client_id"`
	Name     string `gorm:"column:client_name;size:255;not null" json:"client_name"`
	Address  string `gorm:"column:client_address;size:500;not null" json:"client_address"`
	City     string `gorm:"column:client_city;size:100;not null" json:"client_city"`
	TIN      string `gorm:"column:client_tin;size:64;not null;uniqueIndex" json:"client_tin"`
	Taxable  bool   `gorm:"column:is_client_taxable;not null" json:"is_client_taxable"`

	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime:false;not null" json:"created_at"`
	LastUpdatedAt time.Time `gorm:"column:last_updated_at" json:"last_updated_at"`

	Invoices []Invoice `gorm:"foreignKey:ClientID;references:ClientID" json:"-"`
}

func (Client) TableName() string { return "clients" }
