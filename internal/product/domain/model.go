package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Product struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey;autoIncrement:false"`
	ProductID   string       `json:"product_id" gorm:"column:product_id;type:varchar(64);not null;uniqueIndex:ux_products_product_id"`
	ProductName string       `json:"product_name" gorm:"type:varchar(255);not null"`
	Category    string       `json:"category" gorm:"type:varchar(128);not null;default:'';index:ix_products_category"`
	SubCategory string       `json:"sub_category" gorm:"type:varchar(128);not null;default:''"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time    `json:"updated_at" gorm:"not null"`
}

func (Product) TableName() string { return "products" }

// Stats are lifetime transaction aggregates for a single product.
type Stats struct {
	TotalSales  float64 `json:"total_sales"`
	TotalOrders int64   `json:"total_orders"`
}
