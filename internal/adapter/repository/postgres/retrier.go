package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/iho/goclosing/internal/domain"
	"github.com/iho/goclosing/internal/infrastructure/logger"
)

// PostgreSQL error codes for retryable errors.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
)

// Retrier implements usecase.Retrier for the closure persist transaction.
// Only transient contention errors are retried. A lost tenant-day race or an
// idempotency conflict is returned at once so the engine can resolve it.
type Retrier struct {
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsedTime  time.Duration
	logger          zerolog.Logger
}

// NewRetrier creates a new PostgreSQL retrier with default settings.
func NewRetrier(logger zerolog.Logger) *Retrier {
	return &Retrier{
		maxRetries:      3,
		initialInterval: 50 * time.Millisecond,
		maxInterval:     1 * time.Second,
		maxElapsedTime:  10 * time.Second,
		logger:          logger.With().Str("component", "closure_persist_retrier").Logger(),
	}
}

// Retry runs operation, retrying deadlocks and serialization failures with
// exponential backoff. When retries are exhausted the last error is returned
// wrapped with the attempt count.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval
	b.MaxElapsedTime = r.maxElapsedTime

	log := r.loggerFor(ctx)
	attempts := 0
	exhausted := false

	err := backoff.Retry(func() error {
		attempts++
		err := operation()
		if err == nil {
			return nil
		}

		if !isRetryableError(err) {
			return backoff.Permanent(err)
		}

		if attempts > r.maxRetries {
			exhausted = true
			return backoff.Permanent(err)
		}

		log.Warn().
			Err(err).
			Str("sqlstate", sqlState(err)).
			Int("attempt", attempts).
			Msg("closure persist hit transient contention, retrying")

		return err
	}, backoff.WithContext(b, ctx))

	if err != nil && exhausted {
		log.Error().
			Err(err).
			Int("attempts", attempts).
			Msg("closure persist retries exhausted")
		return fmt.Errorf("closure persist failed after %d attempts: %w", attempts, err)
	}

	return err
}

func (r *Retrier) loggerFor(ctx context.Context) *zerolog.Logger {
	if l := logger.FromContext(ctx); l.GetLevel() != zerolog.Disabled {
		scoped := l.With().Str("component", "closure_persist_retrier").Logger()
		return &scoped
	}
	return &r.logger
}

// isRetryableError checks if a PostgreSQL error should trigger a retry.
func isRetryableError(err error) bool {
	if errors.Is(err, domain.ErrAlreadyClosed) || errors.Is(err, domain.ErrIdempotencyConflict) {
		return false
	}

	switch sqlState(err) {
	case pgErrDeadlock, pgErrSerializationFailure:
		return true
	}
	return false
}

func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
