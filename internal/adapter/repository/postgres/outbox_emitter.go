package postgres

import (
	"context"
	"time"

	"github.com/iho/goclosing/internal/domain"
	"github.com/iho/goclosing/internal/usecase"
)

// OutboxEmitter implements usecase.AuditEmitter by appending closure events
// to the outbox. The event publisher delivers them later.
type OutboxEmitter struct {
	outbox usecase.OutboxRepository
	idGen  usecase.IDGenerator
	now    func() time.Time
}

// NewOutboxEmitter creates a new OutboxEmitter.
func NewOutboxEmitter(outbox usecase.OutboxRepository, idGen usecase.IDGenerator) *OutboxEmitter {
	return &OutboxEmitter{
		outbox: outbox,
		idGen:  idGen,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Emit stores a closure.declared event.
func (e *OutboxEmitter) Emit(ctx context.Context, event *domain.ClosureDeclaredEvent) error {
	return e.outbox.Insert(ctx, &domain.OutboxEvent{
		ID:            e.idGen.Generate(),
		AggregateID:   event.ClosureID,
		AggregateType: domain.AggregateTypeClosure,
		EventType:     domain.EventTypeClosureDeclared,
		TenantID:      event.TenantID,
		Payload:       event.Payload(),
		CreatedAt:     e.now(),
	})
}
