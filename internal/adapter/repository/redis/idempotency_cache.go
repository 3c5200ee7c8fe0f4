package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/goclosing/internal/domain"
	"github.com/iho/goclosing/internal/infrastructure/metrics"
	"github.com/iho/goclosing/internal/usecase"
)

// CachedIdempotencyStore decorates an IdempotencyRepository with a Redis
// read-through cache. Idempotency records never change once written, so a
// cached copy can be served as is. The wrapped store stays authoritative:
// Redis failures fall back to it and writes always go to it.
type CachedIdempotencyStore struct {
	next    usecase.IdempotencyRepository
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewCachedIdempotencyStore creates a new CachedIdempotencyStore.
func NewCachedIdempotencyStore(next usecase.IdempotencyRepository, client *redis.Client, ttl time.Duration, m *metrics.Metrics, logger zerolog.Logger) *CachedIdempotencyStore {
	return &CachedIdempotencyStore{
		next:    next,
		client:  client,
		prefix:  "idempotency:",
		ttl:     ttl,
		metrics: m,
		logger:  logger.With().Str("component", "idempotency_cache").Logger(),
	}
}

func (s *CachedIdempotencyStore) key(tenantID, scope, key string) string {
	return s.prefix + tenantID + ":" + scope + ":" + key
}

// Lookup serves from Redis when possible and fills the cache on a store hit.
func (s *CachedIdempotencyStore) Lookup(ctx context.Context, tenantID, scope, key string) (*domain.IdempotencyRecord, bool, error) {
	cacheKey := s.key(tenantID, scope, key)

	s.count("get")
	data, err := s.client.Get(ctx, cacheKey).Bytes()
	switch {
	case err == nil:
		var record domain.IdempotencyRecord
		if err := json.Unmarshal(data, &record); err == nil {
			return &record, true, nil
		}
		s.logger.Warn().Str("key", cacheKey).Msg("discarding undecodable cached idempotency record")
	case !errors.Is(err, redis.Nil):
		s.fail("get")
		s.logger.Warn().Err(err).Msg("idempotency cache unavailable, reading from store")
	}

	record, found, err := s.next.Lookup(ctx, tenantID, scope, key)
	if err != nil || !found {
		return record, found, err
	}

	s.fill(ctx, cacheKey, record)

	return record, true, nil
}

// Save writes through to the wrapped store only. The cache is filled on the
// next lookup, after the transaction has committed.
func (s *CachedIdempotencyStore) Save(ctx context.Context, tx usecase.Transaction, record *domain.IdempotencyRecord) error {
	return s.next.Save(ctx, tx, record)
}

func (s *CachedIdempotencyStore) fill(ctx context.Context, cacheKey string, record *domain.IdempotencyRecord) {
	data, err := json.Marshal(record)
	if err != nil {
		return
	}

	s.count("set")
	if err := s.client.Set(ctx, cacheKey, data, s.ttl).Err(); err != nil {
		s.fail("set")
		s.logger.Warn().Err(err).Msg("failed to cache idempotency record")
	}
}

func (s *CachedIdempotencyStore) count(op string) {
	if s.metrics != nil {
		s.metrics.RedisOperations.WithLabelValues(op).Inc()
	}
}

func (s *CachedIdempotencyStore) fail(op string) {
	if s.metrics != nil {
		s.metrics.RedisErrors.WithLabelValues(op).Inc()
	}
}
