package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Transaction struct {
	ID              snowflake.ID    `json:"id" gorm:"primaryKey;autoIncrement:false"`
	ProductID       snowflake.ID    `json:"product_id" gorm:"not null;index:ix_transactions_product_id"`
	CustomerID      *snowflake.ID   `json:"customer_id" gorm:"index:ix_transactions_customer_id"`
	RegionID        *snowflake.ID   `json:"region_id" gorm:"index:ix_transactions_region_id"`
	Sales           decimal.Decimal `json:"sales" gorm:"type:decimal(12,2);not null;default:0"`
	TransactionDate time.Time       `json:"transaction_date" gorm:"not null;index:ix_transactions_transaction_date"`
	CreatedAt       time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt       time.Time       `json:"updated_at" gorm:"not null"`
}

func (Transaction) TableName() string { return "transactions" }

type ProductRef struct {
	ID          snowflake.ID `json:"id"`
	ProductID   string       `json:"product_id"`
	ProductName string       `json:"product_name"`
	Category    string       `json:"category"`
	SubCategory string       `json:"sub_category"`
}

type CustomerRef struct {
	ID           snowflake.ID `json:"id"`
	CustomerID   string       `json:"customer_id"`
	CustomerName string       `json:"customer_name"`
	Segment      string       `json:"segment"`
}

type RegionRef struct {
	ID      snowflake.ID `json:"id"`
	Country string       `json:"country"`
	Region  string       `json:"region"`
	State   string       `json:"state"`
	City    string       `json:"city"`
}

// Detail is a transaction with its dimensions resolved.
type Detail struct {
	Transaction
	Product  *ProductRef  `json:"product"`
	Customer *CustomerRef `json:"customer"`
	Region   *RegionRef   `json:"region"`
}
