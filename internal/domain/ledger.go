package domain

import "time"

// EntryStatus is the settlement state of a payment ledger entry.
type EntryStatus string

const (
	EntryStatusSettled EntryStatus = "settled"
	EntryStatusPending EntryStatus = "pending"
	EntryStatusVoided  EntryStatus = "voided"
)

// LedgerEntry is a payment recorded by the (external) payment ledger.
// Only settled entries count towards a closure.
type LedgerEntry struct {
	TenantID  string
	Channel   Channel
	Amount    Money
	Status    EntryStatus
	SettledAt time.Time
}

// Tenant is the part of a tenant the closure engine needs.
type Tenant struct {
	ID       string
	Timezone string
}

// Location resolves the tenant's timezone.
func (t *Tenant) Location() (*time.Location, error) {
	if t.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(t.Timezone)
}
