// Package scheduler refreshes the materialized dashboard snapshots on an
// interval while the API is running.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smallbiznis/salesdash/internal/clock"
	"github.com/smallbiznis/salesdash/internal/config"
	"github.com/smallbiznis/salesdash/internal/dashboard/rollup"
	"github.com/smallbiznis/salesdash/internal/importer"
	obsmetrics "github.com/smallbiznis/salesdash/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const defaultJobTimeout = 5 * time.Minute

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

type Materializer interface {
	Materialize(ctx context.Context) (rollup.Result, error)
}

// Locker is satisfied by *importer.ImportLock; a refresh is skipped while an
// import holds the lock.
type Locker interface {
	Acquire(ctx context.Context) (func(), error)
}

type Params struct {
	fx.In

	Log     *zap.Logger
	Clock   clock.Clock
	Config  config.Config
	Rollup  *rollup.Service
	Lock    *importer.ImportLock `optional:"true"`
	Metrics *obsmetrics.Metrics  `optional:"true"`
}

type Scheduler struct {
	log          *zap.Logger
	clock        clock.Clock
	cfg          config.SchedulerConfig
	materializer Materializer
	lock         Locker
	metrics      *obsmetrics.Metrics
}

func New(p Params) (*Scheduler, error) {
	if p.Rollup == nil {
		return nil, ErrInvalidConfig
	}
	var lock Locker
	if p.Lock != nil {
		lock = p.Lock
	}
	return newScheduler(p.Log, p.Clock, p.Config.Scheduler, p.Rollup, lock, p.Metrics), nil
}

func newScheduler(log *zap.Logger, clk clock.Clock, cfg config.SchedulerConfig, m Materializer, lock Locker, metrics *obsmetrics.Metrics) *Scheduler {
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = defaultJobTimeout
	}
	return &Scheduler{
		log:          log.Named("scheduler").With(zap.String("component", "scheduler")),
		clock:        clk,
		cfg:          cfg,
		materializer: m,
		lock:         lock,
		metrics:      metrics,
	}
}

func (s *Scheduler) Enabled() bool {
	return s.cfg.MaterializeInterval > 0
}

func (s *Scheduler) runJob(parent context.Context, name string, timeout time.Duration, fn func(ctx context.Context) error) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	err := fn(ctx)
	s.metrics.ObserveStage(ctx, name, s.clock.Now().Sub(start))
	if err == nil {
		return nil
	}

	// deadline is a soft failure; the next tick retries
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.log.Warn("job timed out",
			zap.String("job", name),
			zap.Duration("timeout", timeout),
			zap.Error(err),
		)
		return nil
	}
	return fmt.Errorf("%s: %w", name, err)
}

// RunOnce refreshes every snapshot unless an import is in progress.
func (s *Scheduler) RunOnce(parent context.Context) error {
	return s.runJob(parent, "scheduled_materialize", s.cfg.JobTimeout, func(ctx context.Context) error {
		if s.lock != nil {
			release, err := s.lock.Acquire(ctx)
			if errors.Is(err, importer.ErrImportInProgress) {
				s.log.Info("import in progress, skipping snapshot refresh")
				return nil
			}
			if err != nil {
				return err
			}
			defer release()
		}

		res, err := s.materializer.Materialize(ctx)
		if err != nil {
			return err
		}
		s.log.Info("snapshots refreshed",
			zap.Strings("keys", res.Keys),
			zap.Time("last_updated", res.LastUpdated),
		)
		return nil
	})
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.MaterializeInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
