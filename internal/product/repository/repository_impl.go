package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/samber/lo"
	"github.com/smallbiznis/salesdash/internal/product/domain"
	"github.com/smallbiznis/salesdash/pkg/db/option"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const lookupChunkSize = 500

var sortableColumns = map[string]bool{
	"product_name": true,
	"category":     true,
	"created_at":   true,
}

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) UpsertBatch(ctx context.Context, db *gorm.DB, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"product_name", "category", "sub_category", "updated_at"}),
		}).
		Create(&products).Error
}

func (r *repo) LookupIDs(ctx context.Context, db *gorm.DB, productIDs []string) (map[string]snowflake.ID, error) {
	out := make(map[string]snowflake.ID, len(productIDs))
	keys := lo.Uniq(lo.Compact(productIDs))
	for _, chunk := range lo.Chunk(keys, lookupChunkSize) {
		var rows []struct {
			ID        snowflake.ID
			ProductID string
		}
		if err := db.WithContext(ctx).Raw(
			`SELECT id, product_id FROM products WHERE product_id IN ?`,
			chunk,
		).Scan(&rows).Error; err != nil {
			return nil, err
		}
		for _, row := range rows {
			out[row.ProductID] = row.ID
		}
	}
	return out, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT id, product_id, product_name, category, sub_category, created_at, updated_at
		 FROM products WHERE id = ?`,
		id,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Product, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Product{})

	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		stmt = stmt.Where("product_name LIKE ? OR category LIKE ? OR sub_category LIKE ?", like, like, like)
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		stmt = stmt.Where("category = ?", category)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	stmt = option.Apply(stmt,
		option.WithSortBy(
			option.WithQuerySortBy(filter.SortBy, filter.OrderBy, sortableColumns),
			option.Sort{Column: "id"},
		),
	)
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit).Offset(filter.Offset)
	}

	var items []domain.Product
	if err := stmt.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) Categories(ctx context.Context, db *gorm.DB) ([]string, error) {
	var categories []string
	err := db.WithContext(ctx).Raw(
		`SELECT DISTINCT category FROM products WHERE category <> '' ORDER BY category ASC`,
	).Scan(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *repo) Stats(ctx context.Context, db *gorm.DB, id snowflake.ID) (domain.Stats, error) {
	var stats domain.Stats
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(sales), 0) AS total_sales, COUNT(*) AS total_orders
		 FROM transactions WHERE product_id = ?`,
		id,
	).Scan(&stats).Error
	return stats, err
}

func (r *repo) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Product{}).Count(&n).Error
	return n, err
}
