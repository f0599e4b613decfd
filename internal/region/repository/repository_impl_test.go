package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/salesdash/internal/region/domain"
	"github.com/smallbiznis/salesdash/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegionUpsertMergesOnCityState(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Region{}))
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	r := Provide()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, r.UpsertBatch(ctx, conn, []domain.Region{
		{ID: node.Generate(), Country: "United States", RegionName: "East", State: "New York", City: "Albany", CreatedAt: now, UpdatedAt: now},
		{ID: node.Generate(), Country: "United States", RegionName: "West", State: "Oregon", City: "Salem", CreatedAt: now, UpdatedAt: now},
	}))
	require.NoError(t, r.UpsertBatch(ctx, conn, []domain.Region{
		{ID: node.Generate(), Country: "United States", RegionName: "Central", State: "New York", City: "Albany", CreatedAt: now, UpdatedAt: now},
	}))

	n, err := r.Count(ctx, conn)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	albany := domain.NaturalKey{City: "Albany", State: "New York"}
	found, err := r.FindByKeys(ctx, conn, []domain.NaturalKey{albany, {City: "Salem", State: "New York"}})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Central", found[albany].RegionName)

	ids, err := r.LookupIDs(ctx, conn, []domain.NaturalKey{albany})
	require.NoError(t, err)
	stored, err := r.FindByID(ctx, conn, ids[albany])
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Albany", stored.City)
}
