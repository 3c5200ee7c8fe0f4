package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/iho/goclosing/internal/domain"
)

type fixedIDGenerator string

func (g fixedIDGenerator) Generate() string { return string(g) }

func TestOutboxEmitterInsertsClosureEvent(t *testing.T) {
	pool := newMockPool(t)
	repo := newOutboxRepositoryWithDB(pool)
	emitter := NewOutboxEmitter(repo, fixedIDGenerator("01HZEVENT"))

	createdAt := time.Date(2026, time.March, 14, 23, 0, 0, 0, time.UTC)
	emitter.now = func() time.Time { return createdAt }

	record := sampleClosure()

	pool.ExpectExec("INSERT INTO outbox_events").
		WithArgs("01HZEVENT", record.ID, domain.AggregateTypeClosure, domain.EventTypeClosureDeclared,
			"school-1", pgxmock.AnyArg(), timeToPgTimestamptz(createdAt), false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := emitter.Emit(context.Background(), domain.NewClosureDeclaredEvent(record)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertExpectations(t, pool)
}

func TestOutboxEmitterPropagatesError(t *testing.T) {
	pool := newMockPool(t)
	emitter := NewOutboxEmitter(newOutboxRepositoryWithDB(pool), fixedIDGenerator("01HZEVENT"))

	pool.ExpectExec("INSERT INTO outbox_events").WillReturnError(errors.New("db down"))

	if err := emitter.Emit(context.Background(), domain.NewClosureDeclaredEvent(sampleClosure())); err == nil {
		t.Fatalf("expected error")
	}
}

func TestOutboxRepositoryGetUnpublished(t *testing.T) {
	pool := newMockPool(t)
	repo := newOutboxRepositoryWithDB(pool)
	createdAt := time.Date(2026, time.March, 14, 23, 0, 0, 0, time.UTC)

	pool.ExpectQuery("FROM outbox_events").
		WithArgs(int32(10)).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "aggregate_id", "aggregate_type", "event_type", "tenant_id", "payload", "created_at", "published_at", "published",
		}).AddRow(
			"evt-1", "closure-1", domain.AggregateTypeClosure, domain.EventTypeClosureDeclared, "school-1",
			[]byte(`{"status":"MATCH","total_diff":0}`),
			timeToPgTimestamptz(createdAt), pgtype.Timestamptz{}, false,
		))

	events, err := repo.GetUnpublished(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	event := events[0]
	if event.TenantID != "school-1" || event.Payload["status"] != "MATCH" || event.PublishedAt != nil {
		t.Fatalf("unexpected event: %+v", event)
	}

	assertExpectations(t, pool)
}

func TestOutboxRepositoryMarkAndDelete(t *testing.T) {
	pool := newMockPool(t)
	repo := newOutboxRepositoryWithDB(pool)
	now := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

	pool.ExpectExec("UPDATE outbox_events").
		WithArgs("evt-1", timeToPgTimestamptz(now)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	pool.ExpectExec("DELETE FROM outbox_events").
		WithArgs(timeToPgTimestamptz(now)).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	if err := repo.MarkPublished(context.Background(), "evt-1", now); err != nil {
		t.Fatalf("mark published failed: %v", err)
	}

	deleted, err := repo.DeletePublished(context.Background(), now)
	if err != nil {
		t.Fatalf("delete published failed: %v", err)
	}
	if deleted != 3 {
		t.Fatalf("expected 3 deleted rows, got %d", deleted)
	}

	assertExpectations(t, pool)
}
