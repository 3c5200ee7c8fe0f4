package postgres

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/goclosing/internal/domain"
	"github.com/iho/goclosing/internal/infrastructure/postgres/generated"
)

const (
	pgErrUniqueViolation = "23505"

	closureTenantDayConstraint = "closure_records_tenant_day_key"
)

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgErrUniqueViolation && (constraint == "" || pgErr.ConstraintName == constraint)
}

// Type conversion helpers.
func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func businessDayToPgDate(day domain.BusinessDay) pgtype.Date {
	return pgtype.Date{Time: day.Time(), Valid: true}
}

func pgDateToBusinessDay(d pgtype.Date) domain.BusinessDay {
	if !d.Valid {
		return domain.BusinessDay{}
	}
	return domain.BusinessDayOf(d.Time, time.UTC)
}

func encodeAmounts(a domain.Amounts) ([]byte, error) {
	return json.Marshal(a)
}

func decodeAmounts(data []byte) (domain.Amounts, error) {
	amounts := domain.ZeroAmounts()
	if len(data) == 0 {
		return amounts, nil
	}
	if err := json.Unmarshal(data, &amounts); err != nil {
		return nil, err
	}
	return amounts, nil
}

func rowToClosureRecord(row generated.ClosureRecord) (*domain.ClosureRecord, error) {
	declared, err := decodeAmounts(row.Declared)
	if err != nil {
		return nil, fmt.Errorf("decode declared amounts of %s: %w", row.ID, err)
	}

	system, err := decodeAmounts(row.System)
	if err != nil {
		return nil, fmt.Errorf("decode system amounts of %s: %w", row.ID, err)
	}

	diff, err := decodeAmounts(row.Diff)
	if err != nil {
		return nil, fmt.Errorf("decode diff amounts of %s: %w", row.ID, err)
	}

	return &domain.ClosureRecord{
		ID:          row.ID,
		TenantID:    row.TenantID,
		BusinessDay: pgDateToBusinessDay(row.BusinessDay),
		Declared:    declared,
		System:      system,
		Diff:        diff,
		Status:      domain.ClosureStatus(row.Status),
		DeclaredBy:  row.DeclaredBy,
		CreatedAt:   row.CreatedAt.Time.UTC(),
	}, nil
}

func rowToIdempotencyRecord(row generated.IdempotencyRecord) *domain.IdempotencyRecord {
	return &domain.IdempotencyRecord{
		TenantID:    row.TenantID,
		Scope:       row.Scope,
		Key:         row.Key,
		RequestHash: row.RequestHash,
		Payload:     row.Payload,
		CreatedAt:   row.CreatedAt.Time.UTC(),
	}
}

func rowToOutboxEvent(row generated.OutboxEvent) *domain.OutboxEvent {
	var payload map[string]any
	if row.Payload != nil {
		_ = json.Unmarshal(row.Payload, &payload)
	}

	var publishedAt *time.Time
	if row.PublishedAt.Valid {
		t := row.PublishedAt.Time
		publishedAt = &t
	}

	return &domain.OutboxEvent{
		ID:            row.ID,
		AggregateID:   row.AggregateID,
		AggregateType: row.AggregateType,
		EventType:     row.EventType,
		TenantID:      row.TenantID,
		Payload:       payload,
		CreatedAt:     row.CreatedAt.Time,
		PublishedAt:   publishedAt,
		Published:     row.Published,
	}
}
