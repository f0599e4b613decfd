package rollup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/smallbiznis/salesdash/internal/clock"
	"github.com/smallbiznis/salesdash/internal/config"
	"github.com/smallbiznis/salesdash/internal/dashboard/domain"
	"github.com/smallbiznis/salesdash/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const bestSellingLimit = 10

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	Config  *config.DashboardConfigHolder `optional:"true"`
	Repo    domain.Repository
	Metrics *metrics.Metrics `optional:"true"`
}

// Service materializes dashboard snapshots into dashboard_metrics.
type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	config  *config.DashboardConfigHolder
	repo    domain.Repository
	metrics *metrics.Metrics
}

func NewService(p Params) *Service {
	clk := p.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("dashboard.rollup"),
		clock:   clk,
		config:  p.Config,
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

// Result lists the snapshot keys written by a materialization.
type Result struct {
	Keys        []string  `json:"keys"`
	LastUpdated time.Time `json:"last_updated"`
}

// Materialize recomputes every snapshot and overwrites them in a single
// database transaction.
func (s *Service) Materialize(ctx context.Context) (Result, error) {
	now := s.clock.Now().UTC()
	trendDays := s.config.Get().SnapshotTrendDays

	var snapshots []domain.MetricSnapshot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		views, err := s.compute(ctx, tx, now, trendDays)
		if err != nil {
			return err
		}

		snapshots = make([]domain.MetricSnapshot, 0, len(views))
		for _, v := range views {
			raw, err := json.Marshal(v.value)
			if err != nil {
				return fmt.Errorf("encode snapshot %s: %w", v.key, err)
			}
			snapshots = append(snapshots, domain.MetricSnapshot{
				MetricKey:   v.key,
				MetricValue: datatypes.JSON(raw),
				LastUpdated: now,
			})
		}
		return s.repo.UpsertSnapshots(ctx, tx, snapshots)
	})
	if err != nil {
		return Result{}, fmt.Errorf("materialize snapshots: %w", err)
	}

	keys := lo.Map(snapshots, func(m domain.MetricSnapshot, _ int) string { return m.MetricKey })
	for _, key := range keys {
		s.metrics.RecordSnapshot(ctx, key)
	}
	s.log.Info("snapshots materialized", zap.Strings("keys", keys), zap.Time("last_updated", now))
	return Result{Keys: keys, LastUpdated: now}, nil
}

type view struct {
	key   string
	value any
}

func (s *Service) compute(ctx context.Context, tx *gorm.DB, now time.Time, trendDays int) ([]view, error) {
	summary, err := s.repo.Summary(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}

	categories, err := s.repo.SalesByCategory(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("sales by category: %w", err)
	}
	byCategory := lo.SliceToMap(categories, func(c domain.CategorySales) (string, float64) {
		return c.Category, c.Sales
	})

	top, err := s.repo.TopProducts(ctx, tx, bestSellingLimit)
	if err != nil {
		return nil, fmt.Errorf("best selling: %w", err)
	}
	bestSelling := lo.Map(top, func(p domain.TopProduct, _ int) domain.BestSellingEntry {
		return domain.BestSellingEntry{ProductID: p.ProductID, ProductName: p.Name, Total: p.Sales}
	})

	from, to := domain.TrailingDays(now, trendDays)
	daily, err := s.repo.DailyTrend(ctx, tx, from, to)
	if err != nil {
		return nil, fmt.Errorf("sales trend: %w", err)
	}
	trend := lo.Map(daily, func(p domain.TrendPoint, _ int) domain.DailyTotal {
		return domain.DailyTotal{Date: p.Period, Total: p.Sales}
	})

	return []view{
		{key: domain.MetricSummary, value: summary},
		{key: domain.MetricSalesByCategory, value: byCategory},
		{key: domain.MetricBestSelling, value: bestSelling},
		{key: domain.MetricSalesTrend, value: trend},
	}, nil
}
