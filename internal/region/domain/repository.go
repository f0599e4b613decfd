package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	UpsertBatch(ctx context.Context, db *gorm.DB, regions []Region) error
	// FindByKeys returns the stored regions matching keys, keyed by natural key.
	FindByKeys(ctx context.Context, db *gorm.DB, keys []NaturalKey) (map[NaturalKey]Region, error)
	LookupIDs(ctx context.Context, db *gorm.DB, keys []NaturalKey) (map[NaturalKey]snowflake.ID, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Region, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
}
