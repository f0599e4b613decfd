package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/salesdash/internal/transaction/domain"
	"gorm.io/gorm"
)

const detailSelect = `SELECT
	t.id, t.product_id, t.customer_id, t.region_id, t.sales, t.transaction_date, t.created_at, t.updated_at,
	p.product_id AS product_key, p.product_name, p.category, p.sub_category,
	c.customer_id AS customer_key, c.customer_name, c.segment,
	r.country, r.region AS region_name, r.state, r.city
FROM transactions t
JOIN products p ON p.id = t.product_id
LEFT JOIN customers c ON c.id = t.customer_id
LEFT JOIN regions r ON r.id = t.region_id`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) BulkInsert(ctx context.Context, db *gorm.DB, rows []domain.Transaction) error {
	if len(rows) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&rows).Error
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, tx *domain.Transaction) error {
	return db.WithContext(ctx).Create(tx).Error
}

func (r *repo) FindDetailByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Detail, error) {
	var rows []detailRow
	if err := db.WithContext(ctx).Raw(detailSelect+` WHERE t.id = ?`, id).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	d := rows[0].toDetail()
	return &d, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, limit, offset int) ([]domain.Detail, int64, error) {
	total, err := r.Count(ctx, db)
	if err != nil {
		return nil, 0, err
	}

	var rows []detailRow
	if err := db.WithContext(ctx).Raw(
		detailSelect+` ORDER BY t.transaction_date DESC, t.id DESC LIMIT ? OFFSET ?`,
		limit, offset,
	).Scan(&rows).Error; err != nil {
		return nil, 0, err
	}

	items := make([]domain.Detail, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDetail())
	}
	return items, total, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Transaction{}).Count(&n).Error
	return n, err
}

type detailRow struct {
	ID              snowflake.ID
	ProductID       snowflake.ID
	CustomerID      *int64
	RegionID        *int64
	Sales           decimal.Decimal
	TransactionDate time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	ProductKey  string
	ProductName string
	Category    string
	SubCategory string

	CustomerKey  *string
	CustomerName *string
	Segment      *string

	Country    *string
	RegionName *string
	State      *string
	City       *string
}

func (row detailRow) toDetail() domain.Detail {
	d := domain.Detail{
		Transaction: domain.Transaction{
			ID:              row.ID,
			ProductID:       row.ProductID,
			Sales:           row.Sales,
			TransactionDate: row.TransactionDate.UTC(),
			CreatedAt:       row.CreatedAt.UTC(),
			UpdatedAt:       row.UpdatedAt.UTC(),
		},
		Product: &domain.ProductRef{
			ID:          row.ProductID,
			ProductID:   row.ProductKey,
			ProductName: row.ProductName,
			Category:    row.Category,
			SubCategory: row.SubCategory,
		},
	}

	if row.CustomerID != nil {
		id := snowflake.ID(*row.CustomerID)
		d.CustomerID = &id
		if row.CustomerKey != nil {
			d.Customer = &domain.CustomerRef{
				ID:           id,
				CustomerID:   *row.CustomerKey,
				CustomerName: deref(row.CustomerName),
				Segment:      deref(row.Segment),
			}
		}
	}

	if row.RegionID != nil {
		id := snowflake.ID(*row.RegionID)
		d.RegionID = &id
		if row.City != nil {
			d.Region = &domain.RegionRef{
				ID:      id,
				Country: deref(row.Country),
				Region:  deref(row.RegionName),
				State:   deref(row.State),
				City:    *row.City,
			}
		}
	}

	return d
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
