package retry

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Config configures a bounded retry loop.
type Config struct {
	MaxAttempts int
	Delay       time.Duration
	// Multiplier grows the delay after each failed attempt; 1 keeps it fixed.
	Multiplier float64
	MaxDelay   time.Duration
}

// DefaultConfig returns three attempts one second apart.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		Delay:       time.Second,
		Multiplier:  1,
		MaxDelay:    time.Second,
	}
}

// Do runs fn until it succeeds, fails with an error retryable rejects, or
// MaxAttempts is reached. It returns the last error from fn, or the context
// error if ctx ends while waiting.
func Do(ctx context.Context, name string, cfg Config, retryable func(error) bool, fn func(context.Context) error, logger *zerolog.Logger) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	var lastErr error
	delay := cfg.Delay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			if attempt > 1 {
				logger.Info().Str("operation", name).Int("attempt", attempt).Msg("operation succeeded after retry")
			}
			return nil
		}

		lastErr = err

		if !retryable(err) {
			return err
		}

		if attempt == cfg.MaxAttempts {
			break
		}

		logger.Warn().
			Err(err).
			Str("operation", name).
			Int("attempt", attempt).
			Int("maxAttempts", cfg.MaxAttempts).
			Dur("nextRetryIn", delay).
			Msg("transport error, will retry")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay = next(delay, cfg)
	}

	logger.Error().Err(lastErr).Str("operation", name).Int("attempts", cfg.MaxAttempts).
		Msg("operation failed after all retries")
	return lastErr
}

func next(delay time.Duration, cfg Config) time.Duration {
	if cfg.Multiplier <= 1 {
		return delay
	}
	grown := time.Duration(float64(delay) * cfg.Multiplier)
	if cfg.MaxDelay > 0 && grown > cfg.MaxDelay {
		return cfg.MaxDelay
	}
	return grown
}
