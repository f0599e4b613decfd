package domain

import (
	"context"
	"errors"
)

type Service interface {
	Summary(ctx context.Context) (Summary, error)
	SalesByCategory(ctx context.Context) ([]CategorySales, error)
	SalesByRegion(ctx context.Context) ([]NamedSales, error)
	SalesByState(ctx context.Context) ([]NamedSales, error)
	SalesByCity(ctx context.Context) ([]NamedSales, error)
	SalesBySegment(ctx context.Context) ([]NamedSales, error)
	TopProducts(ctx context.Context) ([]TopProduct, error)
	MonthlyTrend(ctx context.Context) ([]TrendPoint, error)
	// DailyTrend covers the trailing days ending today; zero selects the
	// configured default.
	DailyTrend(ctx context.Context, days int) ([]TrendPoint, error)
	Complete(ctx context.Context) (Complete, error)

	Snapshots(ctx context.Context) ([]MetricSnapshot, error)
	Snapshot(ctx context.Context, key string) (*MetricSnapshot, error)

	// Invalidate drops memoized aggregates.
	Invalidate()
}

var (
	ErrSnapshotNotFound = errors.New("snapshot_not_found")
	ErrInvalidDays      = errors.New("invalid_days")
)
