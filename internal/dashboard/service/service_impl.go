package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/smallbiznis/salesdash/internal/cache"
	"github.com/smallbiznis/salesdash/internal/clock"
	"github.com/smallbiznis/salesdash/internal/config"
	"github.com/smallbiznis/salesdash/internal/dashboard/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	viewSummary   = "summary"
	viewCategory  = "sales-by-category"
	viewDimension = "sales-by"
	viewTop       = "top-products"
	viewMonthly   = "monthly-trend"
	viewDaily     = "daily-trend"
	viewComplete  = "complete"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Clock  clock.Clock
	Config *config.DashboardConfigHolder
	Repo   domain.Repository
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	clock  clock.Clock
	config *config.DashboardConfigHolder
	repo   domain.Repository
	views  cache.ViewCache
}

func New(p Params) domain.Service {
	clk := p.Clock
	if clk == nil {
		clk = clock.New()
	}
	s := &Service{
		db:     p.DB,
		log:    p.Log.Named("dashboard.service"),
		clock:  clk,
		config: p.Config,
		repo:   p.Repo,
	}
	s.views = cache.NewViewCache(
		func() time.Duration { return s.config.Get().CacheTTL },
		cache.WithNow(clk.Now),
	)
	return s
}

// cached serves view from memory when present, loading and storing it
// otherwise. Errors are never cached.
func cached[T any](s *Service, view, variant string, load func() (T, error)) (T, error) {
	if v, ok := s.views.Get(view, variant); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}
	value, err := load()
	if err != nil {
		var zero T
		return zero, err
	}
	s.views.Set(view, variant, value)
	return value, nil
}

func (s *Service) Summary(ctx context.Context) (domain.Summary, error) {
	return cached(s, viewSummary, "", func() (domain.Summary, error) {
		return s.repo.Summary(ctx, s.db)
	})
}

func (s *Service) SalesByCategory(ctx context.Context) ([]domain.CategorySales, error) {
	return cached(s, viewCategory, "", func() ([]domain.CategorySales, error) {
		return s.repo.SalesByCategory(ctx, s.db)
	})
}

func (s *Service) SalesByRegion(ctx context.Context) ([]domain.NamedSales, error) {
	return s.salesBy(ctx, domain.DimensionRegion)
}

func (s *Service) SalesByState(ctx context.Context) ([]domain.NamedSales, error) {
	return s.salesBy(ctx, domain.DimensionState)
}

func (s *Service) SalesByCity(ctx context.Context) ([]domain.NamedSales, error) {
	return s.salesBy(ctx, domain.DimensionCity)
}

func (s *Service) SalesBySegment(ctx context.Context) ([]domain.NamedSales, error) {
	return s.salesBy(ctx, domain.DimensionSegment)
}

func (s *Service) salesBy(ctx context.Context, dim domain.Dimension) ([]domain.NamedSales, error) {
	return cached(s, viewDimension, string(dim), func() ([]domain.NamedSales, error) {
		return s.repo.SalesByDimension(ctx, s.db, dim)
	})
}

func (s *Service) TopProducts(ctx context.Context) ([]domain.TopProduct, error) {
	limit := s.config.Get().TopProductsLimit
	return cached(s, viewTop, strconv.Itoa(limit), func() ([]domain.TopProduct, error) {
		return s.repo.TopProducts(ctx, s.db, limit)
	})
}

func (s *Service) MonthlyTrend(ctx context.Context) ([]domain.TrendPoint, error) {
	return cached(s, viewMonthly, "", func() ([]domain.TrendPoint, error) {
		return s.repo.MonthlyTrend(ctx, s.db)
	})
}

func (s *Service) DailyTrend(ctx context.Context, days int) ([]domain.TrendPoint, error) {
	cfg := s.config.Get()
	if days == 0 {
		days = cfg.DailyTrendDays
	}
	if days < 1 || days > cfg.MaxTrendDays {
		return nil, domain.ErrInvalidDays
	}

	from, to := domain.TrailingDays(s.clock.Now(), days)
	variant := strings.Join([]string{strconv.Itoa(days), from.Format(time.DateOnly)}, ":")
	return cached(s, viewDaily, variant, func() ([]domain.TrendPoint, error) {
		return s.repo.DailyTrend(ctx, s.db, from, to)
	})
}

func (s *Service) Complete(ctx context.Context) (domain.Complete, error) {
	return cached(s, viewComplete, "", func() (domain.Complete, error) {
		var out domain.Complete
		var err error
		if out.Summary, err = s.Summary(ctx); err != nil {
			return domain.Complete{}, err
		}
		if out.SalesByCategory, err = s.SalesByCategory(ctx); err != nil {
			return domain.Complete{}, err
		}
		if out.BestSelling, err = s.TopProducts(ctx); err != nil {
			return domain.Complete{}, err
		}
		if out.SalesTrend, err = s.MonthlyTrend(ctx); err != nil {
			return domain.Complete{}, err
		}
		return out, nil
	})
}

func (s *Service) Snapshots(ctx context.Context) ([]domain.MetricSnapshot, error) {
	return s.repo.ListSnapshots(ctx, s.db)
}

func (s *Service) Snapshot(ctx context.Context, key string) (*domain.MetricSnapshot, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, domain.ErrSnapshotNotFound
	}
	snap, err := s.repo.FindSnapshot(ctx, s.db, key)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, domain.ErrSnapshotNotFound
	}
	return snap, nil
}

func (s *Service) Invalidate() {
	s.views.Invalidate()
	s.log.Debug("dashboard cache invalidated")
}
