package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/goclosing/internal/domain"
	"github.com/iho/goclosing/internal/infrastructure/postgres/generated"
	"github.com/iho/goclosing/internal/usecase"
)

// ClosureRepository implements usecase.ClosureRepository.
type ClosureRepository struct {
	queries *generated.Queries
}

// NewClosureRepository creates a new ClosureRepository.
func NewClosureRepository(pool *pgxpool.Pool) *ClosureRepository {
	return newClosureRepositoryWithDB(pool)
}

func newClosureRepositoryWithDB(db generated.DBTX) *ClosureRepository {
	return &ClosureRepository{queries: generated.New(db)}
}

// Create inserts a closure within a transaction.
func (r *ClosureRepository) Create(ctx context.Context, tx usecase.Transaction, record *domain.ClosureRecord) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := r.queries.WithTx(pgxTx)

	declared, err := encodeAmounts(record.Declared)
	if err != nil {
		return err
	}

	system, err := encodeAmounts(record.System)
	if err != nil {
		return err
	}

	diff, err := encodeAmounts(record.Diff)
	if err != nil {
		return err
	}

	err = queries.CreateClosureRecord(ctx, generated.CreateClosureRecordParams{
		ID:          record.ID,
		TenantID:    record.TenantID,
		BusinessDay: businessDayToPgDate(record.BusinessDay),
		Declared:    declared,
		System:      system,
		Diff:        diff,
		Status:      string(record.Status),
		DeclaredBy:  record.DeclaredBy,
		CreatedAt:   timeToPgTimestamptz(record.CreatedAt),
	})
	if isUniqueViolation(err, closureTenantDayConstraint) {
		return fmt.Errorf("%w: %s %s", domain.ErrAlreadyClosed, record.TenantID, record.BusinessDay)
	}

	return err
}

// Get retrieves the closure of a tenant-day.
func (r *ClosureRepository) Get(ctx context.Context, tenantID string, day domain.BusinessDay) (*domain.ClosureRecord, bool, error) {
	row, err := r.queries.GetClosureRecordByDay(ctx, generated.GetClosureRecordByDayParams{
		TenantID:    tenantID,
		BusinessDay: businessDayToPgDate(day),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}

		return nil, false, err
	}

	record, err := rowToClosureRecord(row)
	if err != nil {
		return nil, false, err
	}

	return record, true, nil
}

// GetByID retrieves a closure by ID.
func (r *ClosureRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.ClosureRecord, error) {
	row, err := r.queries.GetClosureRecordByID(ctx, generated.GetClosureRecordByIDParams{
		TenantID: tenantID,
		ID:       id,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrClosureNotFound
		}

		return nil, err
	}

	return rowToClosureRecord(row)
}

// List retrieves closures in an inclusive date range, newest first.
func (r *ClosureRepository) List(ctx context.Context, filter usecase.ClosureFilter) ([]*domain.ClosureRecord, error) {
	status := pgtype.Text{}
	if filter.Status != "" {
		status = pgtype.Text{String: string(filter.Status), Valid: true}
	}

	rows, err := r.queries.ListClosureRecords(ctx, generated.ListClosureRecordsParams{
		TenantID: filter.TenantID,
		FromDay:  businessDayToPgDate(filter.From),
		ToDay:    businessDayToPgDate(filter.To),
		Status:   status,
		Limit:    int32(filter.Limit),
		Offset:   int32(filter.Offset),
	})
	if err != nil {
		return nil, err
	}

	records := make([]*domain.ClosureRecord, 0, len(rows))
	for _, row := range rows {
		record, err := rowToClosureRecord(row)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}
