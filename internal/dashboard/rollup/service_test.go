package rollup

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/salesdash/internal/clock"
	"github.com/smallbiznis/salesdash/internal/config"
	"github.com/smallbiznis/salesdash/internal/dashboard/domain"
	"github.com/smallbiznis/salesdash/internal/dashboard/repository"
	productdomain "github.com/smallbiznis/salesdash/internal/product/domain"
	transactiondomain "github.com/smallbiznis/salesdash/internal/transaction/domain"
	"github.com/smallbiznis/salesdash/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var rollupNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func setupRollupDB(t *testing.T) (*gorm.DB, *snowflake.Node) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&productdomain.Product{},
		&transactiondomain.Transaction{},
		&domain.MetricSnapshot{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return conn, node
}

func newRollup(conn *gorm.DB, clk clock.Clock) *Service {
	return NewService(Params{
		DB:     conn,
		Log:    zap.NewNop(),
		Clock:  clk,
		Config: config.NewStaticDashboardConfigHolder(config.DefaultDashboardConfig()),
		Repo:   repository.Provide(),
	})
}

func loadSnapshot(t *testing.T, conn *gorm.DB, key string, into any) domain.MetricSnapshot {
	t.Helper()
	var snap domain.MetricSnapshot
	require.NoError(t, conn.Where("metric_key = ?", key).First(&snap).Error)
	require.NoError(t, json.Unmarshal(snap.MetricValue, into))
	return snap
}

func TestMaterializeEmptyStore(t *testing.T) {
	conn, _ := setupRollupDB(t)

	res, err := newRollup(conn, clock.NewFakeClock(rollupNow)).Materialize(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		domain.MetricSummary, domain.MetricSalesByCategory, domain.MetricBestSelling, domain.MetricSalesTrend,
	}, res.Keys)

	var summary domain.Summary
	snap := loadSnapshot(t, conn, domain.MetricSummary, &summary)
	assert.Equal(t, domain.Summary{}, summary)
	assert.True(t, rollupNow.Equal(snap.LastUpdated))

	var best []domain.BestSellingEntry
	loadSnapshot(t, conn, domain.MetricBestSelling, &best)
	assert.Empty(t, best)
}

func TestMaterializeViews(t *testing.T) {
	conn, node := setupRollupDB(t)

	var products []productdomain.Product
	for i := 0; i < 12; i++ {
		category := "Furniture"
		if i%2 == 1 {
			category = "Technology"
		}
		products = append(products, productdomain.Product{
			ID:          node.Generate(),
			ProductID:   "P" + string(rune('A'+i)),
			ProductName: "Product " + string(rune('A'+i)),
			Category:    category,
			CreatedAt:   rollupNow,
			UpdatedAt:   rollupNow,
		})
	}
	products = append(products, productdomain.Product{
		ID: node.Generate(), ProductID: "UNSOLD", ProductName: "Unsold", Category: "Office Supplies",
		CreatedAt: rollupNow, UpdatedAt: rollupNow,
	})
	require.NoError(t, conn.Create(&products).Error)

	var txs []transactiondomain.Transaction
	for i, p := range products[:12] {
		txs = append(txs, transactiondomain.Transaction{
			ID:              node.Generate(),
			ProductID:       p.ID,
			Sales:           decimal.NewFromInt(int64(10 * (i + 1))),
			TransactionDate: rollupNow.AddDate(0, 0, -(i % 10)),
			CreatedAt:       rollupNow,
			UpdatedAt:       rollupNow,
		})
	}
	require.NoError(t, conn.Create(&txs).Error)

	clk := clock.NewFakeClock(rollupNow)
	svc := newRollup(conn, clk)
	_, err := svc.Materialize(context.Background())
	require.NoError(t, err)

	var summary domain.Summary
	loadSnapshot(t, conn, domain.MetricSummary, &summary)
	assert.InDelta(t, 780.0, summary.TotalSales, 0.001)
	assert.Equal(t, int64(12), summary.TotalOrders)
	assert.InDelta(t, 65.0, summary.AvgOrderValue, 0.001)

	var byCategory map[string]float64
	loadSnapshot(t, conn, domain.MetricSalesByCategory, &byCategory)
	assert.Len(t, byCategory, 2)
	assert.NotContains(t, byCategory, "Office Supplies")
	assert.InDelta(t, 360.0, byCategory["Furniture"], 0.001)

	var best []domain.BestSellingEntry
	loadSnapshot(t, conn, domain.MetricBestSelling, &best)
	require.Len(t, best, 10)
	for i := 1; i < len(best); i++ {
		assert.GreaterOrEqual(t, best[i-1].Total, best[i].Total)
	}
	assert.Equal(t, "Product L", best[0].ProductName)

	var trend []domain.DailyTotal
	loadSnapshot(t, conn, domain.MetricSalesTrend, &trend)
	require.Len(t, trend, 7)
	assert.Equal(t, "2025-03-04", trend[0].Date)
	assert.Equal(t, "2025-03-10", trend[6].Date)

	clk.Advance(time.Hour)
	_, err = svc.Materialize(context.Background())
	require.NoError(t, err)

	var count int64
	require.NoError(t, conn.Model(&domain.MetricSnapshot{}).Count(&count).Error)
	assert.Equal(t, int64(4), count)
	snap := loadSnapshot(t, conn, domain.MetricSummary, &summary)
	assert.True(t, rollupNow.Add(time.Hour).Equal(snap.LastUpdated))
}
