package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	Search   string
	Category string
	SortBy   string
	OrderBy  string
	Limit    int
	Offset   int
}

type Repository interface {
	// UpsertBatch inserts new products and refreshes attributes of existing
	// ones, matched on ProductID. IDs of existing rows are never changed.
	UpsertBatch(ctx context.Context, db *gorm.DB, products []Product) error
	// LookupIDs maps business keys to internal ids. Unknown keys are absent.
	LookupIDs(ctx context.Context, db *gorm.DB, productIDs []string) (map[string]snowflake.ID, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Product, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Product, int64, error)
	Categories(ctx context.Context, db *gorm.DB) ([]string, error)
	Stats(ctx context.Context, db *gorm.DB, id snowflake.ID) (Stats, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
}
