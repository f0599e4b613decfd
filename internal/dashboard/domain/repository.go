package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Dimension selects the attribute a breakdown groups on.
type Dimension string

const (
	DimensionRegion  Dimension = "region"
	DimensionState   Dimension = "state"
	DimensionCity    Dimension = "city"
	DimensionSegment Dimension = "segment"
)

type Repository interface {
	Summary(ctx context.Context, db *gorm.DB) (Summary, error)
	SalesByCategory(ctx context.Context, db *gorm.DB) ([]CategorySales, error)
	SalesByDimension(ctx context.Context, db *gorm.DB, dim Dimension) ([]NamedSales, error)
	TopProducts(ctx context.Context, db *gorm.DB, limit int) ([]TopProduct, error)
	MonthlyTrend(ctx context.Context, db *gorm.DB) ([]TrendPoint, error)
	// DailyTrend sums sales per calendar date in [from, to).
	DailyTrend(ctx context.Context, db *gorm.DB, from, to time.Time) ([]TrendPoint, error)

	UpsertSnapshots(ctx context.Context, db *gorm.DB, snapshots []MetricSnapshot) error
	ListSnapshots(ctx context.Context, db *gorm.DB) ([]MetricSnapshot, error)
	FindSnapshot(ctx context.Context, db *gorm.DB, key string) (*MetricSnapshot, error)
}
