package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smallbiznis/salesdash/internal/clock"
	"github.com/smallbiznis/salesdash/internal/config"
	"github.com/smallbiznis/salesdash/internal/dashboard/rollup"
	"github.com/smallbiznis/salesdash/internal/importer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubMaterializer struct {
	calls atomic.Int32
	err   error
	block bool
}

func (m *stubMaterializer) Materialize(ctx context.Context) (rollup.Result, error) {
	m.calls.Add(1)
	if m.block {
		<-ctx.Done()
		return rollup.Result{}, ctx.Err()
	}
	return rollup.Result{Keys: []string{"summary"}}, m.err
}

type stubLock struct {
	err      error
	released int
}

func (l *stubLock) Acquire(context.Context) (func(), error) {
	if l.err != nil {
		return nil, l.err
	}
	return func() { l.released++ }, nil
}

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestRunOnceMaterializesUnderLock(t *testing.T) {
	m := &stubMaterializer{}
	lock := &stubLock{}
	s := newScheduler(zap.NewNop(), clock.NewFakeClock(testNow), config.SchedulerConfig{}, m, lock, nil)

	require.NoError(t, s.RunOnce(context.Background()))
	assert.EqualValues(t, 1, m.calls.Load())
	assert.Equal(t, 1, lock.released)
}

func TestRunOnceSkipsWhileImportRuns(t *testing.T) {
	m := &stubMaterializer{}
	s := newScheduler(zap.NewNop(), clock.NewFakeClock(testNow), config.SchedulerConfig{}, m,
		&stubLock{err: importer.ErrImportInProgress}, nil)

	require.NoError(t, s.RunOnce(context.Background()))
	assert.Zero(t, m.calls.Load())
}

func TestRunOnceWrapsFailures(t *testing.T) {
	boom := errors.New("boom")
	s := newScheduler(zap.NewNop(), clock.NewFakeClock(testNow), config.SchedulerConfig{}, &stubMaterializer{err: boom}, nil, nil)

	err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "scheduled_materialize")
}

func TestRunOnceTreatsTimeoutAsSoft(t *testing.T) {
	m := &stubMaterializer{block: true}
	s := newScheduler(zap.NewNop(), clock.NewFakeClock(testNow),
		config.SchedulerConfig{JobTimeout: 10 * time.Millisecond}, m, nil, nil)

	assert.NoError(t, s.RunOnce(context.Background()))
	assert.EqualValues(t, 1, m.calls.Load())
}

func TestEnabledFollowsInterval(t *testing.T) {
	s := newScheduler(zap.NewNop(), clock.NewFakeClock(testNow), config.SchedulerConfig{}, &stubMaterializer{}, nil, nil)
	assert.False(t, s.Enabled())

	s = newScheduler(zap.NewNop(), clock.NewFakeClock(testNow), config.SchedulerConfig{MaterializeInterval: time.Minute}, &stubMaterializer{}, nil, nil)
	assert.True(t, s.Enabled())
}

func TestRunForeverStopsOnCancel(t *testing.T) {
	m := &stubMaterializer{}
	s := newScheduler(zap.NewNop(), clock.NewFakeClock(testNow), config.SchedulerConfig{MaterializeInterval: time.Hour}, m, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.RunForever(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return m.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunForever did not return after cancel")
	}
}
