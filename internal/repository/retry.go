package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/legal-translator/internal/common"
)

// WithRetry runs op up to attempts times, doubling the wait after each database
// failure. Not-found, validation and context errors are returned immediately.
func WithRetry(ctx context.Context, attempts int, base time.Duration, logger *slog.Logger, op func(context.Context) error) error {
	if logger == nil {
		logger = slog.Default()
	}
	attempts = max(attempts, 1)
	var err error
	for i := 1; i <= attempts; i++ {
		if err = op(ctx); err == nil || !transient(err) || i == attempts {
			return err
		}
		wait := base << (i - 1)
		logger.Warn("store operation failed, retrying", "attempt", i, "wait", wait, "error", err)
		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(wait):
		}
	}
	return err
}

func transient(err error) bool {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, common.ErrNotFound), errors.Is(err, common.ErrInvalidInput), errors.Is(err, common.ErrValidation):
		return false
	}
	return errors.Is(err, common.ErrDatabase) || errors.Is(err, common.ErrStorage)
}
