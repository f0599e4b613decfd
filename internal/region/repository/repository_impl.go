package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/samber/lo"
	"github.com/smallbiznis/salesdash/internal/region/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const lookupChunkSize = 500

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) UpsertBatch(ctx context.Context, db *gorm.DB, regions []domain.Region) error {
	if len(regions) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "city"}, {Name: "state"}},
			DoUpdates: clause.AssignmentColumns([]string{"country", "region", "updated_at"}),
		}).
		Create(&regions).Error
}

func (r *repo) FindByKeys(ctx context.Context, db *gorm.DB, keys []domain.NaturalKey) (map[domain.NaturalKey]domain.Region, error) {
	out := make(map[domain.NaturalKey]domain.Region, len(keys))
	wanted := lo.SliceToMap(keys, func(k domain.NaturalKey) (domain.NaturalKey, struct{}) {
		return k, struct{}{}
	})

	for _, chunk := range lo.Chunk(lo.Keys(wanted), lookupChunkSize) {
		cities := lo.Uniq(lo.Map(chunk, func(k domain.NaturalKey, _ int) string { return k.City }))
		states := lo.Uniq(lo.Map(chunk, func(k domain.NaturalKey, _ int) string { return k.State }))

		var rows []domain.Region
		if err := db.WithContext(ctx).Raw(
			`SELECT id, country, region, state, city, created_at, updated_at
			 FROM regions WHERE city IN ? AND state IN ?`,
			cities, states,
		).Scan(&rows).Error; err != nil {
			return nil, err
		}
		// The IN/IN filter over-selects; keep exact pairs only.
		for _, row := range rows {
			if _, ok := wanted[row.Key()]; ok {
				out[row.Key()] = row
			}
		}
	}
	return out, nil
}

func (r *repo) LookupIDs(ctx context.Context, db *gorm.DB, keys []domain.NaturalKey) (map[domain.NaturalKey]snowflake.ID, error) {
	found, err := r.FindByKeys(ctx, db, keys)
	if err != nil {
		return nil, err
	}
	return lo.MapValues(found, func(r domain.Region, _ domain.NaturalKey) snowflake.ID {
		return r.ID
	}), nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Region, error) {
	var region domain.Region
	err := db.WithContext(ctx).Raw(
		`SELECT id, country, region, state, city, created_at, updated_at
		 FROM regions WHERE id = ?`,
		id,
	).Scan(&region).Error
	if err != nil {
		return nil, err
	}
	if region.ID == 0 {
		return nil, nil
	}
	return &region, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Region{}).Count(&n).Error
	return n, err
}
