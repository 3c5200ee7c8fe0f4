package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"

	"github.com/iho/goclosing/internal/domain"
	"github.com/iho/goclosing/internal/usecase"
)

func newTestRedisClient(t *testing.T) (*redislib.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{
		Addr:       mr.Addr(),
		MaxRetries: -1,
	})

	return client, mr
}

type countingStore struct {
	next    usecase.IdempotencyRepository
	lookups *int
}

func (s *countingStore) Lookup(ctx context.Context, tenantID, scope, key string) (*domain.IdempotencyRecord, bool, error) {
	*s.lookups++
	return s.next.Lookup(ctx, tenantID, scope, key)
}

func (s *countingStore) Save(ctx context.Context, tx usecase.Transaction, record *domain.IdempotencyRecord) error {
	return s.next.Save(ctx, tx, record)
}
