package mocks

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iho/goclosing/internal/domain"
	"github.com/iho/goclosing/internal/usecase"
)

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)

	begun atomic.Int64
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	m.begun.Add(1)
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// Begun returns how many transactions were started.
func (m *MockTransactionManager) Begun() int64 {
	return m.begun.Load()
}

// MockTransaction is a mock implementation of Transaction. Writes made by the
// in-memory repositories register undo callbacks that run on rollback.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	mu        sync.Mutex
	done      bool
	committed bool
	undo      []func()
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		if err := m.CommitFunc(ctx); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.done = true
	m.committed = true
	m.undo = nil
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		_ = m.RollbackFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done {
		return nil
	}
	m.done = true
	for i := len(m.undo) - 1; i >= 0; i-- {
		m.undo[i]()
	}
	m.undo = nil
	return nil
}

// Committed reports whether Commit succeeded.
func (m *MockTransaction) Committed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.committed
}

func (m *MockTransaction) onRollback(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undo = append(m.undo, fn)
}

func registerUndo(tx usecase.Transaction, fn func()) {
	if mtx, ok := tx.(*MockTransaction); ok {
		mtx.onRollback(fn)
	}
}

// MockClosureRepository is an in-memory ClosureRepository enforcing one
// closure per tenant-day.
type MockClosureRepository struct {
	mu      sync.RWMutex
	records map[string]*domain.ClosureRecord

	CreateFunc  func(ctx context.Context, tx usecase.Transaction, record *domain.ClosureRecord) error
	GetFunc     func(ctx context.Context, tenantID string, day domain.BusinessDay) (*domain.ClosureRecord, bool, error)
	GetByIDFunc func(ctx context.Context, tenantID, id string) (*domain.ClosureRecord, error)
	ListFunc    func(ctx context.Context, filter usecase.ClosureFilter) ([]*domain.ClosureRecord, error)

	creates atomic.Int64
}

func NewMockClosureRepository() *MockClosureRepository {
	return &MockClosureRepository{
		records: make(map[string]*domain.ClosureRecord),
	}
}

func closureKey(tenantID string, day domain.BusinessDay) string {
	return tenantID + "|" + day.String()
}

func (m *MockClosureRepository) Create(ctx context.Context, tx usecase.Transaction, record *domain.ClosureRecord) error {
	m.creates.Add(1)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, record)
	}
	return m.Insert(tx, record)
}

// Insert stores the record, failing with domain.ErrAlreadyClosed on a duplicate tenant-day.
func (m *MockClosureRepository) Insert(tx usecase.Transaction, record *domain.ClosureRecord) error {
	key := closureKey(record.TenantID, record.BusinessDay)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[key]; ok {
		return fmt.Errorf("%w: %s", domain.ErrAlreadyClosed, key)
	}
	m.records[key] = record

	registerUndo(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.records, key)
	})
	return nil
}

func (m *MockClosureRepository) Get(ctx context.Context, tenantID string, day domain.BusinessDay) (*domain.ClosureRecord, bool, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, tenantID, day)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.records[closureKey(tenantID, day)]
	return record, ok, nil
}

func (m *MockClosureRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.ClosureRecord, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, tenantID, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, record := range m.records {
		if record.TenantID == tenantID && record.ID == id {
			return record, nil
		}
	}
	return nil, domain.ErrClosureNotFound
}

func (m *MockClosureRepository) List(ctx context.Context, filter usecase.ClosureFilter) ([]*domain.ClosureRecord, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.RLock()
	var out []*domain.ClosureRecord
	for _, record := range m.records {
		if record.TenantID != filter.TenantID {
			continue
		}
		if record.BusinessDay.Before(filter.From) || filter.To.Before(record.BusinessDay) {
			continue
		}
		if filter.Status != "" && record.Status != filter.Status {
			continue
		}
		out = append(out, record)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[j].BusinessDay.Before(out[i].BusinessDay)
	})

	if filter.Offset >= len(out) {
		return []*domain.ClosureRecord{}, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Count returns the number of stored closures.
func (m *MockClosureRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Creates returns how many Create calls were made.
func (m *MockClosureRepository) Creates() int64 {
	return m.creates.Load()
}

// MockIdempotencyRepository is an in-memory IdempotencyRepository.
type MockIdempotencyRepository struct {
	mu      sync.RWMutex
	records map[string]*domain.IdempotencyRecord

	LookupFunc func(ctx context.Context, tenantID, scope, key string) (*domain.IdempotencyRecord, bool, error)
	SaveFunc   func(ctx context.Context, tx usecase.Transaction, record *domain.IdempotencyRecord) error
}

func NewMockIdempotencyRepository() *MockIdempotencyRepository {
	return &MockIdempotencyRepository{
		records: make(map[string]*domain.IdempotencyRecord),
	}
}

func idempotencyKey(tenantID, scope, key string) string {
	return tenantID + "|" + scope + "|" + key
}

func (m *MockIdempotencyRepository) Lookup(ctx context.Context, tenantID, scope, key string) (*domain.IdempotencyRecord, bool, error) {
	if m.LookupFunc != nil {
		return m.LookupFunc(ctx, tenantID, scope, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.records[idempotencyKey(tenantID, scope, key)]
	return record, ok, nil
}

func (m *MockIdempotencyRepository) Save(ctx context.Context, tx usecase.Transaction, record *domain.IdempotencyRecord) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, record)
	}
	key := idempotencyKey(record.TenantID, record.Scope, record.Key)

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.records[key]; ok {
		if existing.RequestHash == record.RequestHash && bytes.Equal(existing.Payload, record.Payload) {
			return nil
		}
		return fmt.Errorf("%w: key %q", domain.ErrIdempotencyConflict, record.Key)
	}
	m.records[key] = record

	registerUndo(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.records, key)
	})
	return nil
}

// Count returns the number of stored idempotency records.
func (m *MockIdempotencyRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// MockLedgerReader returns fixed settled totals.
type MockLedgerReader struct {
	mu     sync.RWMutex
	totals map[string]domain.Amounts

	SumByChannelFunc func(ctx context.Context, tenantID string, day domain.BusinessDay) (domain.Amounts, error)

	calls atomic.Int64
}

func NewMockLedgerReader() *MockLedgerReader {
	return &MockLedgerReader{
		totals: make(map[string]domain.Amounts),
	}
}

// SetTotals configures the totals returned for a tenant-day.
func (m *MockLedgerReader) SetTotals(tenantID string, day domain.BusinessDay, totals domain.Amounts) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totals[closureKey(tenantID, day)] = totals
}

func (m *MockLedgerReader) SumByChannel(ctx context.Context, tenantID string, day domain.BusinessDay) (domain.Amounts, error) {
	m.calls.Add(1)
	if m.SumByChannelFunc != nil {
		return m.SumByChannelFunc(ctx, tenantID, day)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if totals, ok := m.totals[closureKey(tenantID, day)]; ok {
		return totals.Clone(), nil
	}
	return domain.ZeroAmounts(), nil
}

// Calls returns how many times the ledger was read.
func (m *MockLedgerReader) Calls() int64 {
	return m.calls.Load()
}

// MockAuditEmitter records emitted events.
type MockAuditEmitter struct {
	mu     sync.Mutex
	events []*domain.ClosureDeclaredEvent

	EmitFunc func(ctx context.Context, event *domain.ClosureDeclaredEvent) error
}

func NewMockAuditEmitter() *MockAuditEmitter {
	return &MockAuditEmitter{}
}

func (m *MockAuditEmitter) Emit(ctx context.Context, event *domain.ClosureDeclaredEvent) error {
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()
	if m.EmitFunc != nil {
		return m.EmitFunc(ctx, event)
	}
	return nil
}

// Events returns the events passed to Emit.
func (m *MockAuditEmitter) Events() []*domain.ClosureDeclaredEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.ClosureDeclaredEvent(nil), m.events...)
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%d", m.counter)
}

// FixedClock always returns the same instant.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time {
	return c.T
}
