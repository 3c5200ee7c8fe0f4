package domain

import "time"

// ClosureStatus is the reconciliation verdict of a closure.
type ClosureStatus string

const (
	// ClosureStatusMatch means every channel diff is exactly zero.
	ClosureStatusMatch ClosureStatus = "MATCH"
	// ClosureStatusDivergent means at least one channel diff is non-zero.
	ClosureStatusDivergent ClosureStatus = "DIVERGENT"
)

// IsValid reports whether s is a known status.
func (s ClosureStatus) IsValid() bool {
	return s == ClosureStatusMatch || s == ClosureStatusDivergent
}

// ClosureRecord is the immutable result of reconciling one tenant-day.
type ClosureRecord struct {
	ID          string        `json:"id"`
	TenantID    string        `json:"tenant_id"`
	BusinessDay BusinessDay   `json:"business_day"`
	Declared    Amounts       `json:"declared"`
	System      Amounts       `json:"system"`
	Diff        Amounts       `json:"diff"`
	Status      ClosureStatus `json:"status"`
	DeclaredBy  string        `json:"declared_by"`
	CreatedAt   time.Time     `json:"created_at"`
}

// NewClosureRecord reconciles declared against system totals.
// Both maps must hold every channel; the caller validates that beforehand.
func NewClosureRecord(id, tenantID string, day BusinessDay, declared, system Amounts, declaredBy string, createdAt time.Time) *ClosureRecord {
	diff, status := Reconcile(declared, system)

	return &ClosureRecord{
		ID:          id,
		TenantID:    tenantID,
		BusinessDay: day,
		Declared:    declared.Clone(),
		System:      system.Clone(),
		Diff:        diff,
		Status:      status,
		DeclaredBy:  declaredBy,
		// Postgres keeps microseconds; truncating here makes a stored
		// record compare equal to the one returned on creation.
		CreatedAt: createdAt.UTC().Truncate(time.Microsecond),
	}
}

// Reconcile computes declared - system per channel and the resulting verdict.
// Channels missing from system count as zero.
func Reconcile(declared, system Amounts) (Amounts, ClosureStatus) {
	diff := make(Amounts, len(allChannels))
	status := ClosureStatusMatch

	for _, c := range allChannels {
		d := declared[c] - system[c]
		diff[c] = d
		if d != 0 {
			status = ClosureStatusDivergent
		}
	}

	return diff, status
}

// TotalDiff is the sum of all channel diffs.
func (r *ClosureRecord) TotalDiff() Money {
	return r.Diff.Total()
}

// ReplaySource tells where a replayed result came from.
type ReplaySource string

const (
	ReplaySourceNone            ReplaySource = ""
	ReplaySourceIdempotencyKey  ReplaySource = "idempotency_key"
	ReplaySourceNaturalKey      ReplaySource = "natural_key"
	ReplaySourceConcurrentWrite ReplaySource = "concurrent_write"
)

// ClosureResult is what a declaration returns.
type ClosureResult struct {
	Record           *ClosureRecord `json:"record"`
	IdempotentReplay bool           `json:"idempotent_replay"`
	TotalDiff        Money          `json:"total_diff"`
	ReplaySource     ReplaySource   `json:"-"`
}

// NewClosureResult wraps a freshly created record.
func NewClosureResult(record *ClosureRecord) *ClosureResult {
	return &ClosureResult{
		Record:    record,
		TotalDiff: record.TotalDiff(),
	}
}

// ReplayOf wraps an already persisted record as an idempotent replay.
func ReplayOf(record *ClosureRecord, source ReplaySource) *ClosureResult {
	return &ClosureResult{
		Record:           record,
		IdempotentReplay: true,
		TotalDiff:        record.TotalDiff(),
		ReplaySource:     source,
	}
}
