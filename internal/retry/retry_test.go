package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

var errFlaky = errors.New("connection refused")

func fastConfig(attempts int) Config {
	return Config{MaxAttempts: attempts, Delay: time.Millisecond, Multiplier: 1}
}

func isFlaky(err error) bool { return errors.Is(err, errFlaky) }

func TestDo_SucceedsAfterRetry(t *testing.T) {
	logger := zerolog.Nop()
	calls := 0

	err := Do(context.Background(), "search", fastConfig(3), isFlaky, func(context.Context) error {
		calls++
		if calls < 3 {
			return errFlaky
		}
		return nil
	}, &logger)

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_GivesUp(t *testing.T) {
	logger := zerolog.Nop()
	calls := 0

	err := Do(context.Background(), "search", fastConfig(2), isFlaky, func(context.Context) error {
		calls++
		return errFlaky
	}, &logger)

	assert.ErrorIs(t, err, errFlaky)
	assert.Equal(t, 2, calls)
}

func TestDo_DoesNotRetryOtherErrors(t *testing.T) {
	logger := zerolog.Nop()
	permanent := errors.New("bad request")
	calls := 0

	err := Do(context.Background(), "submit", fastConfig(3), isFlaky, func(context.Context) error {
		calls++
		return permanent
	}, &logger)

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelledWhileWaiting(t *testing.T) {
	logger := zerolog.Nop()
	ctx, cancel := context.WithCancel(context.Background())
	cfg := Config{MaxAttempts: 3, Delay: time.Hour, Multiplier: 1}

	err := Do(ctx, "search", cfg, isFlaky, func(context.Context) error {
		cancel()
		return errFlaky
	}, &logger)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestNext(t *testing.T) {
	fixed := Config{Multiplier: 1}
	assert.Equal(t, time.Second, next(time.Second, fixed))

	growing := Config{Multiplier: 2, MaxDelay: 3 * time.Second}
	assert.Equal(t, 2*time.Second, next(time.Second, growing))
	assert.Equal(t, 3*time.Second, next(2*time.Second, growing))
}
