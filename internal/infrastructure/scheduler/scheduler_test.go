package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestScheduler(checkInterval time.Duration) *Scheduler {
	return NewScheduler(Config{
		CheckInterval: checkInterval,
		JobTimeout:    time.Second,
		HistorySize:   5,
	}, zap.NewNop())
}

func TestScheduler_RegisterJob(t *testing.T) {
	s := newTestScheduler(time.Hour)
	noop := func(ctx context.Context) error { return nil }

	require.NoError(t, s.RegisterJob("sync-tickets", time.Minute, noop))

	t.Run("duplicate name is rejected", func(t *testing.T) {
		err := s.RegisterJob("sync-tickets", time.Minute, noop)
		assert.ErrorIs(t, err, ErrDuplicateJob)
	})

	t.Run("empty name is rejected", func(t *testing.T) {
		assert.ErrorIs(t, s.RegisterJob("", time.Minute, noop), ErrJobNameRequired)
	})

	t.Run("non-positive interval is rejected", func(t *testing.T) {
		assert.ErrorIs(t, s.RegisterJob("bad", 0, noop), ErrInvalidInterval)
	})

	t.Run("nil handler is rejected", func(t *testing.T) {
		assert.ErrorIs(t, s.RegisterJob("nil-handler", time.Minute, nil), ErrNilHandler)
	})
}

func TestScheduler_RunsDueJobs(t *testing.T) {
	s := newTestScheduler(10 * time.Millisecond)

	var runs atomic.Int32
	require.NoError(t, s.RegisterJob("tick", 20*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}))

	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop(context.Background()) }()

	assert.Eventually(t, func() bool {
		return runs.Load() >= 2
	}, time.Second, 10*time.Millisecond)
}

func TestScheduler_JobsDoNotOverlap(t *testing.T) {
	s := newTestScheduler(5 * time.Millisecond)

	var concurrent, peak atomic.Int32
	require.NoError(t, s.RegisterJob("slow", time.Millisecond, func(ctx context.Context) error {
		now := concurrent.Add(1)
		defer concurrent.Add(-1)
		if now > peak.Load() {
			peak.Store(now)
		}
		time.Sleep(30 * time.Millisecond)
		return nil
	}))

	require.NoError(t, s.Start(context.Background()))
	time.Sleep(120 * time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))

	assert.EqualValues(t, 1, peak.Load())
}

func TestScheduler_TriggerNow(t *testing.T) {
	s := newTestScheduler(time.Hour)

	var runs atomic.Int32
	require.NoError(t, s.RegisterJob("manual", time.Hour, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}))

	require.NoError(t, s.TriggerNow(context.Background(), "manual"))
	assert.EqualValues(t, 1, runs.Load())

	t.Run("unknown job", func(t *testing.T) {
		assert.ErrorIs(t, s.TriggerNow(context.Background(), "missing"), ErrJobNotFound)
	})
}

func TestScheduler_HistoryIsBoundedAndNewestFirst(t *testing.T) {
	s := newTestScheduler(time.Hour)

	fail := errors.New("boom")
	require.NoError(t, s.RegisterJob("flaky", time.Hour, func(ctx context.Context) error {
		if s.History() != nil && len(s.History())%2 == 0 {
			return fail
		}
		return nil
	}))

	for i := 0; i < 8; i++ {
		require.NoError(t, s.TriggerNow(context.Background(), "flaky"))
	}

	history := s.History()
	require.Len(t, history, 5)
	for _, run := range history {
		assert.Equal(t, "flaky", run.JobName)
		assert.NotNil(t, run.CompletedAt)
	}
	assert.False(t, history[0].StartedAt.Before(history[len(history)-1].StartedAt))
}

func TestScheduler_StopWaitsForInflightRuns(t *testing.T) {
	s := newTestScheduler(5 * time.Millisecond)

	started := make(chan struct{})
	var finished atomic.Bool
	require.NoError(t, s.RegisterJob("inflight", time.Millisecond, func(ctx context.Context) error {
		close(started)
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
		return nil
	}))

	require.NoError(t, s.Start(context.Background()))
	<-started

	require.NoError(t, s.Stop(context.Background()))
	assert.True(t, finished.Load())
}
