package usecase

import (
	"context"
	"time"

	"github.com/iho/goclosing/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/gomocks/mock_interfaces.go -package=gomocks

// LedgerReader aggregates settled payments from the payment ledger.
type LedgerReader interface {
	// SumByChannel returns settled totals for every channel of the closed set.
	// Errors wrap domain.ErrLedgerUnavailable (transient) or domain.ErrInvalidTenant.
	SumByChannel(ctx context.Context, tenantID string, day domain.BusinessDay) (domain.Amounts, error)
}

// ClosureRepository defines data access for closure records.
type ClosureRepository interface {
	// Create inserts a new record; returns domain.ErrAlreadyClosed when the tenant-day exists.
	Create(ctx context.Context, tx Transaction, record *domain.ClosureRecord) error
	Get(ctx context.Context, tenantID string, day domain.BusinessDay) (*domain.ClosureRecord, bool, error)
	GetByID(ctx context.Context, tenantID, id string) (*domain.ClosureRecord, error)
	List(ctx context.Context, filter ClosureFilter) ([]*domain.ClosureRecord, error)
}

// ClosureFilter narrows a closure listing to an inclusive date range.
type ClosureFilter struct {
	TenantID string
	From     domain.BusinessDay
	To       domain.BusinessDay
	Status   domain.ClosureStatus
	Limit    int
	Offset   int
}

// IdempotencyRepository defines data access for idempotency records.
type IdempotencyRepository interface {
	Lookup(ctx context.Context, tenantID, scope, key string) (*domain.IdempotencyRecord, bool, error)
	// Save is a no-op for a byte-identical record and fails with
	// domain.ErrIdempotencyConflict when the stored payload differs.
	Save(ctx context.Context, tx Transaction, record *domain.IdempotencyRecord) error
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Insert(ctx context.Context, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) (int64, error)
}

// AuditEmitter receives a best-effort event after a closure is created.
type AuditEmitter interface {
	Emit(ctx context.Context, event *domain.ClosureDeclaredEvent) error
}

// DeclarationLocker serializes declarations for one tenant-day across processes.
// It is an optimisation only; uniqueness is enforced by the closure store.
type DeclarationLocker interface {
	Acquire(ctx context.Context, tenantID string, day domain.BusinessDay) (release func(), err error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}
