package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s, err := New(zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })
	return s
}

func TestRegisterTask_Validation(t *testing.T) {
	s := newScheduler(t)
	noop := func(context.Context) error { return nil }

	assert.Error(t, s.RegisterTask(TaskConfig{ID: "a", Func: noop}), "no schedule")
	assert.Error(t, s.RegisterTask(TaskConfig{ID: "b", Interval: time.Minute}), "no func")
	assert.Error(t, s.RegisterTask(TaskConfig{ID: "c", Interval: time.Minute, Cron: "* * * * *", Func: noop}), "both")

	require.NoError(t, s.RegisterTask(TaskConfig{ID: "d", Interval: time.Minute, Func: noop}))
	assert.Error(t, s.RegisterTask(TaskConfig{ID: "d", Interval: time.Minute, Func: noop}), "duplicate")
}

func TestRunNow_RecordsOutcome(t *testing.T) {
	s := newScheduler(t)
	var calls atomic.Int32
	fail := errors.New("unreachable")

	require.NoError(t, s.RegisterTask(TaskConfig{
		ID:       "check",
		Name:     "Check",
		Interval: time.Hour,
		Func: func(context.Context) error {
			if calls.Add(1) == 1 {
				return fail
			}
			return nil
		},
	}))

	require.NoError(t, s.RunNow("check"))
	info, err := s.GetTask("check")
	require.NoError(t, err)
	assert.Equal(t, "unreachable", info.LastError)
	assert.NotNil(t, info.LastRun)
	assert.Equal(t, "@every 1h0m0s", info.Schedule)

	require.NoError(t, s.RunNow("check"))
	info, err = s.GetTask("check")
	require.NoError(t, err)
	assert.Empty(t, info.LastError)
	assert.Equal(t, int32(2), calls.Load())

	assert.Error(t, s.RunNow("missing"))
}

func TestStart_RunsStartupTasks(t *testing.T) {
	s := newScheduler(t)
	done := make(chan struct{})

	require.NoError(t, s.RegisterTask(TaskConfig{
		ID:         "startup",
		Interval:   time.Hour,
		RunOnStart: true,
		Func: func(context.Context) error {
			close(done)
			return nil
		},
	}))

	s.Start()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("startup task did not run")
	}

	tasks := s.ListTasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "startup", tasks[0].ID)
}

func TestStop_CancelsRunningTask(t *testing.T) {
	s, err := New(zerolog.Nop())
	require.NoError(t, err)
	started := make(chan struct{})

	require.NoError(t, s.RegisterTask(TaskConfig{
		ID:         "slow",
		Interval:   time.Hour,
		RunOnStart: true,
		Func: func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		},
	}))

	s.Start()
	<-started
	require.NoError(t, s.Stop())

	info, err := s.GetTask("slow")
	require.NoError(t, err)
	assert.False(t, info.Running)
	assert.Equal(t, context.Canceled.Error(), info.LastError)
}
