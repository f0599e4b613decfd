package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Snapshot keys written by the materializer.
const (
	MetricSummary         = "summary"
	MetricSalesByCategory = "sales_by_category"
	MetricBestSelling     = "best_selling"
	MetricSalesTrend      = "sales_trend"
)

type MetricSnapshot struct {
	MetricKey   string         `json:"metric_key" gorm:"primaryKey;type:varchar(64)"`
	MetricValue datatypes.JSON `json:"metric_value" gorm:"not null"`
	LastUpdated time.Time      `json:"last_updated" gorm:"not null"`
}

func (MetricSnapshot) TableName() string { return "dashboard_metrics" }

type Summary struct {
	TotalSales    float64 `json:"total_sales"`
	TotalOrders   int64   `json:"total_orders"`
	AvgOrderValue float64 `json:"avg_order_value"`
}

// NewSummary derives the average order value, which is zero without orders.
func NewSummary(totalSales float64, totalOrders int64) Summary {
	s := Summary{TotalSales: totalSales, TotalOrders: totalOrders}
	if totalOrders > 0 {
		s.AvgOrderValue = totalSales / float64(totalOrders)
	}
	return s
}

type CategorySales struct {
	Category string  `json:"category"`
	Sales    float64 `json:"sales"`
}

type NamedSales struct {
	Name  string  `json:"name"`
	Sales float64 `json:"sales"`
}

type TopProduct struct {
	ID        snowflake.ID `json:"id"`
	ProductID string       `json:"product_id"`
	Name      string       `json:"name"`
	Sales     float64      `json:"sales"`
}

type TrendPoint struct {
	Period string  `json:"period"`
	Sales  float64 `json:"sales"`
}

type Complete struct {
	Summary         Summary         `json:"summary"`
	SalesByCategory []CategorySales `json:"sales_by_category"`
	BestSelling     []TopProduct    `json:"best_selling"`
	SalesTrend      []TrendPoint    `json:"sales_trend"`
}

// BestSellingEntry and DailyTotal are the persisted snapshot shapes.
type BestSellingEntry struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Total       float64 `json:"total"`
}

type DailyTotal struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}
