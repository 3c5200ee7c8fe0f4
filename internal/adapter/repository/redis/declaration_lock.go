package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/goclosing/internal/domain"
)

const lockReleaseTimeout = 2 * time.Second

// DeclarationLocker implements usecase.DeclarationLocker with a Redis lock
// per tenant-day. Holding it lets concurrent declarations wait for the
// first one instead of reading the ledger in parallel.
type DeclarationLocker struct {
	locker *redislock.Client
	ttl    time.Duration
	wait   time.Duration
	logger zerolog.Logger
}

// NewDeclarationLocker creates a new DeclarationLocker. ttl bounds how long a
// crashed holder can block others; wait bounds how long Acquire retries.
func NewDeclarationLocker(client *redis.Client, ttl, wait time.Duration, logger zerolog.Logger) *DeclarationLocker {
	return &DeclarationLocker{
		locker: redislock.New(client),
		ttl:    ttl,
		wait:   wait,
		logger: logger.With().Str("component", "declaration_lock").Logger(),
	}
}

// Acquire obtains the lock for (tenant, day). The returned release func is
// safe to call after ctx is cancelled.
func (l *DeclarationLocker) Acquire(ctx context.Context, tenantID string, day domain.BusinessDay) (func(), error) {
	key := fmt.Sprintf("lock:closure:%s:%s", tenantID, day)

	obtainCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	lock, err := l.locker.Obtain(obtainCtx, key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(25 * time.Millisecond),
	})
	if err != nil {
		return nil, fmt.Errorf("obtain %s: %w", key, err)
	}

	release := func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), lockReleaseTimeout)
		defer cancel()

		if err := lock.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.logger.Warn().Err(err).Str("key", key).Msg("failed to release declaration lock")
		}
	}

	return release, nil
}
