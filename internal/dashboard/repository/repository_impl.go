package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/smallbiznis/salesdash/internal/dashboard/domain"
	"github.com/smallbiznis/salesdash/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

type summaryRow struct {
	TotalSales  float64
	TotalOrders int64
}

func (r *repo) Summary(ctx context.Context, conn *gorm.DB) (domain.Summary, error) {
	var row summaryRow
	if err := conn.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(sales), 0) AS total_sales, COUNT(*) AS total_orders FROM transactions`,
	).Scan(&row).Error; err != nil {
		return domain.Summary{}, err
	}
	return domain.NewSummary(row.TotalSales, row.TotalOrders), nil
}

func (r *repo) SalesByCategory(ctx context.Context, conn *gorm.DB) ([]domain.CategorySales, error) {
	var rows []domain.CategorySales
	err := conn.WithContext(ctx).Raw(
		`SELECT p.category AS category, COALESCE(SUM(t.sales), 0) AS sales
		 FROM transactions t
		 JOIN products p ON p.id = t.product_id
		 GROUP BY p.category
		 ORDER BY sales DESC, p.category ASC`,
	).Scan(&rows).Error
	return nonNil(rows), err
}

var dimensionJoins = map[domain.Dimension]struct {
	column string
	join   string
}{
	domain.DimensionRegion:  {column: "r.region", join: "JOIN regions r ON r.id = t.region_id"},
	domain.DimensionState:   {column: "r.state", join: "JOIN regions r ON r.id = t.region_id"},
	domain.DimensionCity:    {column: "r.city", join: "JOIN regions r ON r.id = t.region_id"},
	domain.DimensionSegment: {column: "c.segment", join: "JOIN customers c ON c.id = t.customer_id"},
}

func (r *repo) SalesByDimension(ctx context.Context, conn *gorm.DB, dim domain.Dimension) ([]domain.NamedSales, error) {
	spec, ok := dimensionJoins[dim]
	if !ok {
		return nil, fmt.Errorf("unsupported dimension %q", dim)
	}

	var rows []domain.NamedSales
	err := conn.WithContext(ctx).Raw(fmt.Sprintf(
		`SELECT %[1]s AS name, COALESCE(SUM(t.sales), 0) AS sales
		 FROM transactions t
		 %[2]s
		 GROUP BY %[1]s
		 ORDER BY sales DESC, %[1]s ASC`,
		spec.column, spec.join,
	)).Scan(&rows).Error
	return nonNil(rows), err
}

func (r *repo) TopProducts(ctx context.Context, conn *gorm.DB, limit int) ([]domain.TopProduct, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []domain.TopProduct
	err := conn.WithContext(ctx).Raw(
		`SELECT p.id AS id, p.product_id AS product_id, p.product_name AS name, COALESCE(SUM(t.sales), 0) AS sales
		 FROM transactions t
		 JOIN products p ON p.id = t.product_id
		 GROUP BY p.id, p.product_id, p.product_name
		 ORDER BY sales DESC, p.product_id ASC
		 LIMIT ?`,
		limit,
	).Scan(&rows).Error
	return nonNil(rows), err
}

func (r *repo) MonthlyTrend(ctx context.Context, conn *gorm.DB) ([]domain.TrendPoint, error) {
	bucket := db.DateBucket(conn, "t.transaction_date", db.Month)
	var rows []domain.TrendPoint
	err := conn.WithContext(ctx).Raw(fmt.Sprintf(
		`SELECT %[1]s AS period, COALESCE(SUM(t.sales), 0) AS sales
		 FROM transactions t
		 GROUP BY %[1]s
		 ORDER BY period ASC`,
		bucket,
	)).Scan(&rows).Error
	return nonNil(rows), err
}

func (r *repo) DailyTrend(ctx context.Context, conn *gorm.DB, from, to time.Time) ([]domain.TrendPoint, error) {
	bucket := db.DateBucket(conn, "t.transaction_date", db.Day)
	var rows []domain.TrendPoint
	err := conn.WithContext(ctx).Raw(fmt.Sprintf(
		`SELECT %[1]s AS period, COALESCE(SUM(t.sales), 0) AS sales
		 FROM transactions t
		 WHERE t.transaction_date >= ? AND t.transaction_date < ?
		 GROUP BY %[1]s
		 ORDER BY period ASC`,
		bucket,
	), from.UTC(), to.UTC()).Scan(&rows).Error
	return nonNil(rows), err
}

func (r *repo) UpsertSnapshots(ctx context.Context, conn *gorm.DB, snapshots []domain.MetricSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	return conn.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "metric_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"metric_value", "last_updated"}),
		}).
		Create(&snapshots).Error
}

func (r *repo) ListSnapshots(ctx context.Context, conn *gorm.DB) ([]domain.MetricSnapshot, error) {
	var rows []domain.MetricSnapshot
	err := conn.WithContext(ctx).Order("metric_key ASC").Find(&rows).Error
	return nonNil(rows), err
}

func (r *repo) FindSnapshot(ctx context.Context, conn *gorm.DB, key string) (*domain.MetricSnapshot, error) {
	var rows []domain.MetricSnapshot
	if err := conn.WithContext(ctx).Where("metric_key = ?", key).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
