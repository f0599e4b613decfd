package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// BulkInsert writes rows in a single statement.
	BulkInsert(ctx context.Context, db *gorm.DB, rows []Transaction) error
	Create(ctx context.Context, db *gorm.DB, tx *Transaction) error
	FindDetailByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Detail, error)
	// List returns details ordered by transaction_date, newest first.
	List(ctx context.Context, db *gorm.DB, limit, offset int) ([]Detail, int64, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
}
