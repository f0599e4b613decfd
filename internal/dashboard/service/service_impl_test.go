package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smallbiznis/salesdash/internal/clock"
	"github.com/smallbiznis/salesdash/internal/config"
	"github.com/smallbiznis/salesdash/internal/dashboard/domain"
	transactiondomain "github.com/smallbiznis/salesdash/internal/transaction/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type repoMock struct {
	mock.Mock
}

func (m *repoMock) Summary(ctx context.Context, db *gorm.DB) (domain.Summary, error) {
	args := m.Called()
	return args.Get(0).(domain.Summary), args.Error(1)
}

func (m *repoMock) SalesByCategory(ctx context.Context, db *gorm.DB) ([]domain.CategorySales, error) {
	args := m.Called()
	return args.Get(0).([]domain.CategorySales), args.Error(1)
}

func (m *repoMock) SalesByDimension(ctx context.Context, db *gorm.DB, dim domain.Dimension) ([]domain.NamedSales, error) {
	args := m.Called(dim)
	return args.Get(0).([]domain.NamedSales), args.Error(1)
}

func (m *repoMock) TopProducts(ctx context.Context, db *gorm.DB, limit int) ([]domain.TopProduct, error) {
	args := m.Called(limit)
	return args.Get(0).([]domain.TopProduct), args.Error(1)
}

func (m *repoMock) MonthlyTrend(ctx context.Context, db *gorm.DB) ([]domain.TrendPoint, error) {
	args := m.Called()
	return args.Get(0).([]domain.TrendPoint), args.Error(1)
}

func (m *repoMock) DailyTrend(ctx context.Context, db *gorm.DB, from, to time.Time) ([]domain.TrendPoint, error) {
	args := m.Called(from, to)
	return args.Get(0).([]domain.TrendPoint), args.Error(1)
}

func (m *repoMock) UpsertSnapshots(ctx context.Context, db *gorm.DB, snapshots []domain.MetricSnapshot) error {
	return m.Called(snapshots).Error(0)
}

func (m *repoMock) ListSnapshots(ctx context.Context, db *gorm.DB) ([]domain.MetricSnapshot, error) {
	args := m.Called()
	return args.Get(0).([]domain.MetricSnapshot), args.Error(1)
}

func (m *repoMock) FindSnapshot(ctx context.Context, db *gorm.DB, key string) (*domain.MetricSnapshot, error) {
	args := m.Called(key)
	snap, _ := args.Get(0).(*domain.MetricSnapshot)
	return snap, args.Error(1)
}

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestService(repo domain.Repository, clk clock.Clock) domain.Service {
	cfg := config.DefaultDashboardConfig()
	cfg.CacheTTL = 30 * time.Second
	return New(Params{
		Log:    zap.NewNop(),
		Clock:  clk,
		Config: config.NewStaticDashboardConfigHolder(cfg),
		Repo:   repo,
	})
}

func TestSummaryIsCachedUntilInvalidated(t *testing.T) {
	repo := &repoMock{}
	repo.On("Summary").Return(domain.NewSummary(100, 4), nil).Twice()
	svc := newTestService(repo, clock.NewFakeClock(testNow))
	ctx := context.Background()

	first, err := svc.Summary(ctx)
	require.NoError(t, err)
	second, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	repo.AssertNumberOfCalls(t, "Summary", 1)

	NewInvalidationHook(svc).TransactionCreated(ctx, transactiondomain.Transaction{})
	_, err = svc.Summary(ctx)
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "Summary", 2)
}

func TestCacheEntriesExpire(t *testing.T) {
	repo := &repoMock{}
	repo.On("MonthlyTrend").Return([]domain.TrendPoint{{Period: "2025-03", Sales: 1}}, nil)
	clk := clock.NewFakeClock(testNow)
	svc := newTestService(repo, clk)
	ctx := context.Background()

	_, err := svc.MonthlyTrend(ctx)
	require.NoError(t, err)
	clk.Advance(31 * time.Second)
	_, err = svc.MonthlyTrend(ctx)
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "MonthlyTrend", 2)
}

func TestErrorsAreNotCached(t *testing.T) {
	repo := &repoMock{}
	repo.On("SalesByCategory").Return([]domain.CategorySales(nil), errors.New("boom")).Once()
	repo.On("SalesByCategory").Return([]domain.CategorySales{{Category: "Furniture", Sales: 5}}, nil).Once()
	svc := newTestService(repo, clock.NewFakeClock(testNow))

	_, err := svc.SalesByCategory(context.Background())
	require.Error(t, err)
	rows, err := svc.SalesByCategory(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestDailyTrendWindow(t *testing.T) {
	repo := &repoMock{}
	from, to := domain.TrailingDays(testNow, 3)
	repo.On("DailyTrend", from, to).Return([]domain.TrendPoint{{Period: "2025-03-09", Sales: 3}}, nil)
	defaultFrom, defaultTo := domain.TrailingDays(testNow, 7)
	repo.On("DailyTrend", defaultFrom, defaultTo).Return([]domain.TrendPoint{}, nil)
	svc := newTestService(repo, clock.NewFakeClock(testNow))
	ctx := context.Background()

	points, err := svc.DailyTrend(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, points, 1)

	_, err = svc.DailyTrend(ctx, 0)
	require.NoError(t, err)

	_, err = svc.DailyTrend(ctx, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidDays)
	_, err = svc.DailyTrend(ctx, 366)
	assert.ErrorIs(t, err, domain.ErrInvalidDays)
	repo.AssertExpectations(t)
}

func TestCompleteCombinesViews(t *testing.T) {
	repo := &repoMock{}
	repo.On("Summary").Return(domain.NewSummary(10, 1), nil)
	repo.On("SalesByCategory").Return([]domain.CategorySales{{Category: "Furniture", Sales: 10}}, nil)
	repo.On("TopProducts", 10).Return([]domain.TopProduct{{ProductID: "P1", Name: "Chair", Sales: 10}}, nil)
	repo.On("MonthlyTrend").Return([]domain.TrendPoint{{Period: "2025-03", Sales: 10}}, nil)
	svc := newTestService(repo, clock.NewFakeClock(testNow))

	out, err := svc.Complete(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10.0, out.Summary.AvgOrderValue)
	assert.Len(t, out.SalesByCategory, 1)
	assert.Len(t, out.BestSelling, 1)
	assert.Len(t, out.SalesTrend, 1)
}

func TestSnapshotNotFound(t *testing.T) {
	repo := &repoMock{}
	repo.On("FindSnapshot", "missing").Return(nil, nil)
	svc := newTestService(repo, clock.NewFakeClock(testNow))

	_, err := svc.Snapshot(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	_, err = svc.Snapshot(context.Background(), " ")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
}
