package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/samber/lo"
	"github.com/smallbiznis/salesdash/internal/customer/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const lookupChunkSize = 500

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) UpsertBatch(ctx context.Context, db *gorm.DB, customers []domain.Customer) error {
	if len(customers) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "customer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"customer_name", "segment", "updated_at"}),
		}).
		Create(&customers).Error
}

func (r *repo) LookupIDs(ctx context.Context, db *gorm.DB, customerIDs []string) (map[string]snowflake.ID, error) {
	out := make(map[string]snowflake.ID, len(customerIDs))
	for _, chunk := range lo.Chunk(lo.Uniq(lo.Compact(customerIDs)), lookupChunkSize) {
		var rows []struct {
			ID         snowflake.ID
			CustomerID string
		}
		if err := db.WithContext(ctx).Raw(
			`SELECT id, customer_id FROM customers WHERE customer_id IN ?`,
			chunk,
		).Scan(&rows).Error; err != nil {
			return nil, err
		}
		for _, row := range rows {
			out[row.CustomerID] = row.ID
		}
	}
	return out, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Customer, error) {
	var c domain.Customer
	err := db.WithContext(ctx).Raw(
		`SELECT id, customer_id, customer_name, segment, created_at, updated_at
		 FROM customers WHERE id = ?`,
		id,
	).Scan(&c).Error
	if err != nil {
		return nil, err
	}
	if c.ID == 0 {
		return nil, nil
	}
	return &c, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Customer{}).Count(&n).Error
	return n, err
}
