package postgres

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/goclosing/internal/domain"
	"github.com/iho/goclosing/internal/infrastructure/postgres/generated"
	"github.com/iho/goclosing/internal/usecase"
)

// IdempotencyRepository implements usecase.IdempotencyRepository.
// Records are append-only.
type IdempotencyRepository struct {
	queries *generated.Queries
}

// NewIdempotencyRepository creates a new IdempotencyRepository.
func NewIdempotencyRepository(pool *pgxpool.Pool) *IdempotencyRepository {
	return newIdempotencyRepositoryWithDB(pool)
}

func newIdempotencyRepositoryWithDB(db generated.DBTX) *IdempotencyRepository {
	return &IdempotencyRepository{queries: generated.New(db)}
}

// Lookup retrieves the record stored under (tenant, scope, key).
func (r *IdempotencyRepository) Lookup(ctx context.Context, tenantID, scope, key string) (*domain.IdempotencyRecord, bool, error) {
	row, err := r.queries.GetIdempotencyRecord(ctx, generated.GetIdempotencyRecordParams{
		TenantID: tenantID,
		Scope:    scope,
		Key:      key,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}

		return nil, false, err
	}

	return rowToIdempotencyRecord(row), true, nil
}

// Save inserts the record within a transaction. An existing row with the same
// request hash and payload is accepted as is.
func (r *IdempotencyRepository) Save(ctx context.Context, tx usecase.Transaction, record *domain.IdempotencyRecord) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := r.queries.WithTx(pgxTx)

	inserted, err := queries.InsertIdempotencyRecord(ctx, generated.InsertIdempotencyRecordParams{
		TenantID:    record.TenantID,
		Scope:       record.Scope,
		Key:         record.Key,
		RequestHash: record.RequestHash,
		Payload:     record.Payload,
		CreatedAt:   timeToPgTimestamptz(record.CreatedAt),
	})
	if err != nil {
		return err
	}

	if inserted == 1 {
		return nil
	}

	existing, err := queries.GetIdempotencyRecord(ctx, generated.GetIdempotencyRecordParams{
		TenantID: record.TenantID,
		Scope:    record.Scope,
		Key:      record.Key,
	})
	if err != nil {
		return err
	}

	if existing.RequestHash == record.RequestHash && bytes.Equal(existing.Payload, record.Payload) {
		return nil
	}

	return fmt.Errorf("%w: key %q", domain.ErrIdempotencyConflict, record.Key)
}
