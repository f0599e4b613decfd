package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Customer struct {
	ID           snowflake.ID `json:"id" gorm:"primaryKey;autoIncrement:false"`
	CustomerID   string       `json:"customer_id" gorm:"column:customer_id;type:varchar(64);not null;uniqueIndex:ux_customers_customer_id"`
	CustomerName string       `json:"customer_name" gorm:"type:varchar(255);not null"`
	Segment      string       `json:"segment" gorm:"type:varchar(64);not null;default:'';index:ix_customers_segment"`
	CreatedAt    time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt    time.Time    `json:"updated_at" gorm:"not null"`
}

func (Customer) TableName() string { return "customers" }
