package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	UpsertBatch(ctx context.Context, db *gorm.DB, customers []Customer) error
	LookupIDs(ctx context.Context, db *gorm.DB, customerIDs []string) (map[string]snowflake.ID, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Customer, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
}
