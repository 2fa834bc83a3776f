package scheduler

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(timeout time.Duration) *Scheduler {
	l := logrus.New()
	l.SetOutput(&bytes.Buffer{})
	return NewScheduler(timeout, l)
}

func noop(ctx context.Context) error { return nil }

func TestScheduleValidation(t *testing.T) {
	s := newTestScheduler(time.Minute)

	require.NoError(t, s.Schedule("learning", "0 9 * * *", noop))
	assert.Error(t, s.Schedule("learning", "0 10 * * *", noop), "duplicate name")
	assert.Error(t, s.Schedule("recommendation", "every evening", noop), "invalid cron")

	assert.Equal(t, map[string]string{"learning": "0 9 * * *"}, s.Jobs())
}

func TestStartStop(t *testing.T) {
	s := newTestScheduler(time.Minute)
	assert.Error(t, s.Start(), "no jobs")

	require.NoError(t, s.Schedule("learning", "0 9 * * *", noop))
	assert.True(t, s.NextRun("learning").IsZero())

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start())
	assert.Error(t, s.Schedule("recommendation", "0 17 * * *", noop))

	next := s.NextRun("learning")
	assert.False(t, next.IsZero())
	assert.Equal(t, 9, next.UTC().Hour())

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.NoError(t, s.Stop())
}

func TestRunNow(t *testing.T) {
	s := newTestScheduler(time.Minute)

	calls := 0
	require.NoError(t, s.Schedule("learning", "0 9 * * *", func(ctx context.Context) error {
		calls++
		return nil
	}))
	failure := errors.New("store down")
	require.NoError(t, s.Schedule("recommendation", "0 17 * * *", func(ctx context.Context) error {
		return failure
	}))

	require.NoError(t, s.RunNow(context.Background(), "learning"))
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, s.RunNow(context.Background(), "recommendation"), failure)
	assert.Error(t, s.RunNow(context.Background(), "unknown"))
}

func TestRunNowAppliesJobTimeout(t *testing.T) {
	s := newTestScheduler(20 * time.Millisecond)

	require.NoError(t, s.Schedule("slow", "0 9 * * *", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))

	err := s.RunNow(context.Background(), "slow")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
