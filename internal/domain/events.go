package domain

import "time"

// Event types
const (
	EventTypeClosureDeclared = "closure.declared"
)

// Aggregate types
const (
	AggregateTypeClosure = "closure"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	TenantID      string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// ClosureDeclaredEvent is emitted after a closure has been created.
// It carries the verdict only; downstream approval reads the record itself.
type ClosureDeclaredEvent struct {
	ClosureID   string        `json:"closure_id"`
	TenantID    string        `json:"tenant_id"`
	BusinessDay string        `json:"business_day"`
	Status      ClosureStatus `json:"status"`
	TotalDiff   Money         `json:"total_diff"`
	DeclaredBy  string        `json:"declared_by"`
	CreatedAt   time.Time     `json:"created_at"`
}

// NewClosureDeclaredEvent builds the audit event for a fresh closure.
func NewClosureDeclaredEvent(record *ClosureRecord) *ClosureDeclaredEvent {
	return &ClosureDeclaredEvent{
		ClosureID:   record.ID,
		TenantID:    record.TenantID,
		BusinessDay: record.BusinessDay.String(),
		Status:      record.Status,
		TotalDiff:   record.TotalDiff(),
		DeclaredBy:  record.DeclaredBy,
		CreatedAt:   record.CreatedAt,
	}
}

// Payload flattens the event for the outbox.
func (e *ClosureDeclaredEvent) Payload() map[string]any {
	return map[string]any{
		"closure_id":   e.ClosureID,
		"tenant_id":    e.TenantID,
		"business_day": e.BusinessDay,
		"status":       string(e.Status),
		"total_diff":   int64(e.TotalDiff),
		"declared_by":  e.DeclaredBy,
		"created_at":   e.CreatedAt.Format(time.RFC3339Nano),
	}
}
