package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/sync/errgroup"

	"github.com/iho/goclosing/internal/domain"
	"github.com/iho/goclosing/internal/infrastructure/metrics"
	"github.com/iho/goclosing/internal/usecase"
	"github.com/iho/goclosing/internal/usecase/mocks"
	"github.com/iho/goclosing/internal/usecase/mocks/gomocks"
)

const testTenant = "school-1"

var (
	testDay = domain.NewBusinessDay(2026, time.March, 14)
	testNow = time.Date(2026, time.March, 14, 23, 5, 0, 123456789, time.UTC)
)

type harness struct {
	uc       *usecase.ReconciliationUseCase
	txMgr    *mocks.MockTransactionManager
	closures *mocks.MockClosureRepository
	idem     *mocks.MockIdempotencyRepository
	ledger   *mocks.MockLedgerReader
	emitter  *mocks.MockAuditEmitter
}

func newHarness(t *testing.T, opts ...func(*usecase.ReconciliationConfig)) *harness {
	t.Helper()

	h := &harness{
		txMgr:    mocks.NewMockTransactionManager(),
		closures: mocks.NewMockClosureRepository(),
		idem:     mocks.NewMockIdempotencyRepository(),
		ledger:   mocks.NewMockLedgerReader(),
		emitter:  mocks.NewMockAuditEmitter(),
	}

	cfg := usecase.ReconciliationConfig{
		TxManager:   h.txMgr,
		Ledger:      h.ledger,
		ClosureRepo: h.closures,
		Idempotency: h.idem,
		IDGen:       mocks.NewMockIDGenerator(),
		Emitter:     h.emitter,
		Clock:       mocks.FixedClock{T: testNow},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	h.uc = usecase.NewReconciliationUseCase(cfg)
	return h
}

func amounts(cash, card, bank, mobile int64) domain.Amounts {
	return domain.Amounts{
		domain.ChannelCash:         domain.Money(cash),
		domain.ChannelCardTerminal: domain.Money(card),
		domain.ChannelBankTransfer: domain.Money(bank),
		domain.ChannelMobileMoney:  domain.Money(mobile),
	}
}

func key(s string) *string {
	return &s
}

func declareInput(declared domain.Amounts, idempotencyKey *string) usecase.DeclareInput {
	return usecase.DeclareInput{
		TenantID:       testTenant,
		BusinessDay:    testDay,
		Declared:       declared,
		DeclaredBy:     "op-7",
		IdempotencyKey: idempotencyKey,
	}
}

func TestDeclare_Match(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.ledger.SetTotals(testTenant, testDay, amounts(150000, 420050, 0, 9900))

	result, err := h.uc.Declare(context.Background(), declareInput(amounts(150000, 420050, 0, 9900), nil))
	require.NoError(t, err)

	assert.False(t, result.IdempotentReplay)
	assert.Equal(t, domain.ClosureStatusMatch, result.Record.Status)
	assert.Equal(t, domain.Money(0), result.TotalDiff)
	assert.True(t, result.Record.Diff.Equal(domain.ZeroAmounts()))
	assert.Equal(t, "op-7", result.Record.DeclaredBy)
	assert.True(t, testNow.Truncate(time.Microsecond).Equal(result.Record.CreatedAt))
	assert.Equal(t, 1, h.closures.Count())
	assert.Equal(t, 0, h.idem.Count())

	events := h.emitter.Events()
	require.Len(t, events, 1)
	assert.Equal(t, result.Record.ID, events[0].ClosureID)
	assert.Equal(t, domain.ClosureStatusMatch, events[0].Status)
}

func TestDeclare_DiffSign(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		declared  domain.Amounts
		system    domain.Amounts
		wantDiff  domain.Amounts
		wantTotal domain.Money
	}{
		{
			name:      "surplus in cash",
			declared:  amounts(10500, 0, 0, 0),
			system:    amounts(10000, 0, 0, 0),
			wantDiff:  amounts(500, 0, 0, 0),
			wantTotal: 500,
		},
		{
			name:      "shortfall on card",
			declared:  amounts(0, 9000, 0, 0),
			system:    amounts(0, 10000, 0, 0),
			wantDiff:  amounts(0, -1000, 0, 0),
			wantTotal: -1000,
		},
		{
			name:      "offsetting differences stay divergent",
			declared:  amounts(100, 0, 0, 0),
			system:    amounts(0, 0, 0, 100),
			wantDiff:  amounts(100, 0, 0, -100),
			wantTotal: 0,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t)
			h.ledger.SetTotals(testTenant, testDay, tt.system)

			result, err := h.uc.Declare(context.Background(), declareInput(tt.declared, nil))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if result.Record.Status != domain.ClosureStatusDivergent {
				t.Fatalf("expected DIVERGENT, got %s", result.Record.Status)
			}

			if diff := cmp.Diff(tt.wantDiff, result.Record.Diff); diff != "" {
				t.Fatalf("diff mismatch (-want +got):\n%s", diff)
			}

			if result.TotalDiff != tt.wantTotal {
				t.Fatalf("expected total diff %d, got %d", tt.wantTotal, result.TotalDiff)
			}
		})
	}
}

func TestDeclare_ReplayWithSameKey(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.ledger.SetTotals(testTenant, testDay, amounts(1000, 2000, 0, 0))
	input := declareInput(amounts(1000, 1500, 0, 0), key("retry-1"))

	first, err := h.uc.Declare(context.Background(), input)
	require.NoError(t, err)
	require.False(t, first.IdempotentReplay)

	second, err := h.uc.Declare(context.Background(), input)
	require.NoError(t, err)

	assert.True(t, second.IdempotentReplay)
	assert.Equal(t, domain.ReplaySourceIdempotencyKey, second.ReplaySource)
	assert.Equal(t, first.TotalDiff, second.TotalDiff)
	if diff := cmp.Diff(first.Record, second.Record); diff != "" {
		t.Fatalf("replayed record differs (-first +second):\n%s", diff)
	}

	assert.EqualValues(t, 1, h.ledger.Calls())
	assert.Equal(t, 1, h.closures.Count())
	assert.Equal(t, 1, h.idem.Count())
	assert.Len(t, h.emitter.Events(), 1)
}

func TestDeclare_NaturalKeyReplay(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.ledger.SetTotals(testTenant, testDay, amounts(500, 0, 0, 0))

	first, err := h.uc.Declare(context.Background(), declareInput(amounts(500, 0, 0, 0), key("first")))
	require.NoError(t, err)

	tests := []struct {
		name  string
		input usecase.DeclareInput
	}{
		{name: "without key", input: declareInput(amounts(500, 0, 0, 0), nil)},
		{name: "with another key", input: declareInput(amounts(500, 0, 0, 0), key("second"))},
		{name: "different amounts are not reconsidered", input: declareInput(amounts(900, 0, 0, 0), nil)},
	}

	for _, tt := range tests {
		result, err := h.uc.Declare(context.Background(), tt.input)
		require.NoError(t, err, tt.name)

		assert.True(t, result.IdempotentReplay, tt.name)
		assert.Equal(t, domain.ReplaySourceNaturalKey, result.ReplaySource, tt.name)
		assert.Equal(t, first.Record.ID, result.Record.ID, tt.name)
		assert.Equal(t, domain.ClosureStatusMatch, result.Record.Status, tt.name)
	}

	assert.EqualValues(t, 1, h.ledger.Calls())
	assert.Equal(t, 1, h.closures.Count())
	assert.Len(t, h.emitter.Events(), 1)
}

func TestDeclare_KeyReuseWithDifferentAmounts(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.ledger.SetTotals(testTenant, testDay, amounts(700, 0, 0, 0))

	first, err := h.uc.Declare(context.Background(), declareInput(amounts(700, 0, 0, 0), key("k")))
	require.NoError(t, err)

	_, err = h.uc.Declare(context.Background(), declareInput(amounts(701, 0, 0, 0), key("k")))
	require.ErrorIs(t, err, domain.ErrIdempotencyConflict)

	stored, found, err := h.closures.Get(context.Background(), testTenant, testDay)
	require.NoError(t, err)
	require.True(t, found)
	if diff := cmp.Diff(first.Record, stored); diff != "" {
		t.Fatalf("stored closure was altered (-want +got):\n%s", diff)
	}

	assert.EqualValues(t, 1, h.ledger.Calls())
}

func TestDeclare_ValidationHappensBeforeLedgerRead(t *testing.T) {
	t.Parallel()

	missingChannel := amounts(1, 1, 1, 1)
	delete(missingChannel, domain.ChannelMobileMoney)

	unknownChannel := amounts(1, 1, 1, 1)
	unknownChannel[domain.Channel("CRYPTO")] = 5

	tests := []struct {
		name   string
		mutate func(*usecase.DeclareInput)
	}{
		{name: "missing channel", mutate: func(in *usecase.DeclareInput) { in.Declared = missingChannel }},
		{name: "unknown channel", mutate: func(in *usecase.DeclareInput) { in.Declared = unknownChannel }},
		{name: "negative amount", mutate: func(in *usecase.DeclareInput) { in.Declared = amounts(-1, 0, 0, 0) }},
		{name: "empty declaration", mutate: func(in *usecase.DeclareInput) { in.Declared = domain.Amounts{} }},
		{name: "blank tenant", mutate: func(in *usecase.DeclareInput) { in.TenantID = "  " }},
		{name: "missing operator", mutate: func(in *usecase.DeclareInput) { in.DeclaredBy = "" }},
		{name: "zero business day", mutate: func(in *usecase.DeclareInput) { in.BusinessDay = domain.BusinessDay{} }},
		{name: "blank idempotency key", mutate: func(in *usecase.DeclareInput) { in.IdempotencyKey = key(" ") }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t)
			input := declareInput(amounts(0, 0, 0, 0), nil)
			tt.mutate(&input)

			_, err := h.uc.Declare(context.Background(), input)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}

			if calls := h.ledger.Calls(); calls != 0 {
				t.Fatalf("expected no ledger read, got %d", calls)
			}

			if h.closures.Count() != 0 {
				t.Fatal("expected nothing persisted")
			}
		})
	}
}

func TestDeclare_LedgerFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ledger  func(context.Context, string, domain.BusinessDay) (domain.Amounts, error)
		wantErr error
	}{
		{
			name: "transient error",
			ledger: func(context.Context, string, domain.BusinessDay) (domain.Amounts, error) {
				return nil, errors.New("connection refused")
			},
			wantErr: domain.ErrLedgerUnavailable,
		},
		{
			name: "invalid tenant",
			ledger: func(context.Context, string, domain.BusinessDay) (domain.Amounts, error) {
				return nil, fmt.Errorf("%w: unknown", domain.ErrInvalidTenant)
			},
			wantErr: domain.ErrInvalidTenant,
		},
		{
			name: "partial totals",
			ledger: func(context.Context, string, domain.BusinessDay) (domain.Amounts, error) {
				return domain.Amounts{domain.ChannelCash: 10}, nil
			},
			wantErr: domain.ErrLedgerUnavailable,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t)
			h.ledger.SumByChannelFunc = tt.ledger

			_, err := h.uc.Declare(context.Background(), declareInput(amounts(10, 0, 0, 0), key("k")))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}

			if h.closures.Count() != 0 || h.idem.Count() != 0 {
				t.Fatal("expected nothing persisted")
			}

			if h.txMgr.Begun() != 0 {
				t.Fatal("expected no transaction")
			}

			if len(h.emitter.Events()) != 0 {
				t.Fatal("expected no audit event")
			}
		})
	}
}

func TestDeclare_LedgerReadIsBounded(t *testing.T) {
	t.Parallel()

	h := newHarness(t, func(cfg *usecase.ReconciliationConfig) {
		cfg.LedgerTimeout = 20 * time.Millisecond
	})
	h.ledger.SumByChannelFunc = func(ctx context.Context, _ string, _ domain.BusinessDay) (domain.Amounts, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	_, err := h.uc.Declare(context.Background(), declareInput(amounts(10, 0, 0, 0), nil))
	require.ErrorIs(t, err, domain.ErrLedgerUnavailable)
	assert.Equal(t, 0, h.closures.Count())
}

func TestDeclare_AuditFailureDoesNotFailDeclaration(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m := metrics.NewWithRegisterer(registry)

	h := newHarness(t, func(cfg *usecase.ReconciliationConfig) {
		cfg.Metrics = m
	})
	h.emitter.EmitFunc = func(context.Context, *domain.ClosureDeclaredEvent) error {
		return errors.New("sink down")
	}

	result, err := h.uc.Declare(context.Background(), declareInput(amounts(0, 0, 0, 0), nil))
	require.NoError(t, err)
	assert.False(t, result.IdempotentReplay)
	assert.Equal(t, 1, h.closures.Count())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuditEmitFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ClosuresDeclared.WithLabelValues("MATCH")))
}

func TestDeclare_ConcurrentDeclarationsCreateOneClosure(t *testing.T) {
	t.Parallel()

	const workers = 16

	h := newHarness(t)
	h.ledger.SetTotals(testTenant, testDay, amounts(100, 200, 300, 400))

	results := make([]*domain.ClosureResult, workers)
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		i := i
		g.Go(func() error {
			var k *string
			if i%2 == 0 {
				k = key(fmt.Sprintf("device-%d", i))
			}
			result, err := h.uc.Declare(context.Background(), declareInput(amounts(100, 200, 300, int64(400+i)), k))
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, 1, h.closures.Count())

	fresh := 0
	winnerID := ""
	for _, result := range results {
		if !result.IdempotentReplay {
			fresh++
			winnerID = result.Record.ID
		}
	}
	require.Equal(t, 1, fresh)

	for i, result := range results {
		assert.Equal(t, winnerID, result.Record.ID, "worker %d", i)
	}
	assert.Len(t, h.emitter.Events(), 1)
}

func TestDeclare_LostRaceReplaysWinner(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	closures := gomocks.NewMockClosureRepository(ctrl)
	idem := gomocks.NewMockIdempotencyRepository(ctrl)

	winner := domain.NewClosureRecord("winner", testTenant, testDay, amounts(1, 0, 0, 0), amounts(1, 0, 0, 0), "op-1", testNow)

	gomock.InOrder(
		idem.EXPECT().Lookup(gomock.Any(), testTenant, domain.ScopeCashClosure, "k").Return(nil, false, nil),
		closures.EXPECT().Get(gomock.Any(), testTenant, testDay).Return(nil, false, nil),
		closures.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(fmt.Errorf("%w: duplicate", domain.ErrAlreadyClosed)),
		closures.EXPECT().Get(gomock.Any(), testTenant, testDay).Return(winner, true, nil),
	)

	emitter := mocks.NewMockAuditEmitter()
	uc := usecase.NewReconciliationUseCase(usecase.ReconciliationConfig{
		TxManager:   mocks.NewMockTransactionManager(),
		Ledger:      mocks.NewMockLedgerReader(),
		ClosureRepo: closures,
		Idempotency: idem,
		IDGen:       mocks.NewMockIDGenerator(),
		Emitter:     emitter,
	})

	result, err := uc.Declare(context.Background(), declareInput(amounts(2, 0, 0, 0), key("k")))
	require.NoError(t, err)
	assert.True(t, result.IdempotentReplay)
	assert.Equal(t, domain.ReplaySourceConcurrentWrite, result.ReplaySource)
	assert.Equal(t, "winner", result.Record.ID)
	assert.Empty(t, emitter.Events())
}

func TestDeclare_SharedKeyRaceReplaysWinnerThenConflicts(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	var raced atomic.Bool
	h.closures.CreateFunc = func(ctx context.Context, tx usecase.Transaction, record *domain.ClosureRecord) error {
		if raced.CompareAndSwap(false, true) {
			// Another device wins the tenant-day with the same key and other amounts.
			_, err := h.uc.Declare(ctx, declareInput(amounts(100, 0, 0, 0), key("shared")))
			require.NoError(t, err)
			return fmt.Errorf("%w: duplicate", domain.ErrAlreadyClosed)
		}
		return h.closures.Insert(tx, record)
	}

	loser, err := h.uc.Declare(context.Background(), declareInput(amounts(250, 0, 0, 0), key("shared")))
	require.NoError(t, err)
	assert.True(t, loser.IdempotentReplay)
	assert.Equal(t, domain.ReplaySourceConcurrentWrite, loser.ReplaySource)
	assert.Equal(t, domain.Money(100), loser.Record.Declared[domain.ChannelCash])
	assert.Equal(t, 1, h.closures.Count())

	_, err = h.uc.Declare(context.Background(), declareInput(amounts(250, 0, 0, 0), key("shared")))
	require.ErrorIs(t, err, domain.ErrIdempotencyConflict)
	assert.Equal(t, 1, h.closures.Count())
}

func TestDeclare_UnresolvedConflict(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.closures.CreateFunc = func(context.Context, usecase.Transaction, *domain.ClosureRecord) error {
		return domain.ErrAlreadyClosed
	}

	_, err := h.uc.Declare(context.Background(), declareInput(amounts(0, 0, 0, 0), nil))
	require.ErrorIs(t, err, domain.ErrUnresolvedConflict)
}

func TestDeclare_PersistFailureLeavesNothingBehind(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.txMgr.BeginFunc = func(context.Context) (usecase.Transaction, error) {
		return &mocks.MockTransaction{
			CommitFunc: func(context.Context) error { return errors.New("disk full") },
		}, nil
	}

	_, err := h.uc.Declare(context.Background(), declareInput(amounts(0, 0, 0, 0), key("k")))
	require.ErrorIs(t, err, domain.ErrPersist)
	assert.Equal(t, 0, h.closures.Count())
	assert.Equal(t, 0, h.idem.Count())
	assert.Empty(t, h.emitter.Events())
}

func TestDeclare_CancelledBeforePersist(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	h.ledger.SumByChannelFunc = func(context.Context, string, domain.BusinessDay) (domain.Amounts, error) {
		cancel()
		return domain.ZeroAmounts(), nil
	}

	_, err := h.uc.Declare(ctx, declareInput(amounts(0, 0, 0, 0), nil))
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, h.closures.Count())
	assert.EqualValues(t, 0, h.txMgr.Begun())
}

func TestDeclare_CancelledDuringPersistStillCommits(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	h.txMgr.BeginFunc = func(txCtx context.Context) (usecase.Transaction, error) {
		cancel()
		if txCtx.Err() != nil {
			return nil, txCtx.Err()
		}
		return &mocks.MockTransaction{}, nil
	}

	result, err := h.uc.Declare(ctx, declareInput(amounts(0, 0, 0, 0), nil))
	require.NoError(t, err)
	assert.False(t, result.IdempotentReplay)
	assert.Equal(t, 1, h.closures.Count())
}

func TestDeclare_UsesRetrierAndLocker(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	retrier := gomocks.NewMockRetrier(ctrl)
	locker := gomocks.NewMockDeclarationLocker(ctrl)

	var released atomic.Bool
	locker.EXPECT().Acquire(gomock.Any(), testTenant, testDay).Return(func() { released.Store(true) }, nil)
	retrier.EXPECT().Retry(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, op func() error) error {
		return op()
	})

	h := newHarness(t, func(cfg *usecase.ReconciliationConfig) {
		cfg.Retrier = retrier
		cfg.Locker = locker
	})

	_, err := h.uc.Declare(context.Background(), declareInput(amounts(0, 0, 0, 0), nil))
	require.NoError(t, err)
	assert.True(t, released.Load())
}

func TestDeclare_LockUnavailableStillDeclares(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	locker := gomocks.NewMockDeclarationLocker(ctrl)
	locker.EXPECT().Acquire(gomock.Any(), testTenant, testDay).Return(nil, errors.New("lock held"))

	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	h := newHarness(t, func(cfg *usecase.ReconciliationConfig) {
		cfg.Locker = locker
		cfg.Metrics = m
	})

	result, err := h.uc.Declare(context.Background(), declareInput(amounts(0, 0, 0, 0), nil))
	require.NoError(t, err)
	assert.False(t, result.IdempotentReplay)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LockContention))
}

func TestDeclare_IdempotencyLookupFailure(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.idem.LookupFunc = func(context.Context, string, string, string) (*domain.IdempotencyRecord, bool, error) {
		return nil, false, errors.New("timeout")
	}

	_, err := h.uc.Declare(context.Background(), declareInput(amounts(0, 0, 0, 0), key("k")))
	require.ErrorIs(t, err, domain.ErrPersist)
	assert.EqualValues(t, 0, h.ledger.Calls())
}

func TestGetClosure(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	_, err := h.uc.GetClosure(context.Background(), testTenant, testDay)
	require.ErrorIs(t, err, domain.ErrClosureNotFound)

	created, err := h.uc.Declare(context.Background(), declareInput(amounts(0, 0, 0, 0), nil))
	require.NoError(t, err)

	got, err := h.uc.GetClosure(context.Background(), testTenant, testDay)
	require.NoError(t, err)
	assert.Equal(t, created.Record.ID, got.ID)

	byID, err := h.uc.GetClosureByID(context.Background(), testTenant, created.Record.ID)
	require.NoError(t, err)
	assert.Equal(t, testDay, byID.BusinessDay)

	_, err = h.uc.GetClosureByID(context.Background(), "other-tenant", created.Record.ID)
	require.ErrorIs(t, err, domain.ErrClosureNotFound)
}

func TestListClosures(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	for day := 1; day <= 5; day++ {
		input := declareInput(amounts(int64(day%2), 0, 0, 0), nil)
		input.BusinessDay = domain.NewBusinessDay(2026, time.March, day)
		_, err := h.uc.Declare(context.Background(), input)
		require.NoError(t, err)
	}

	from := domain.NewBusinessDay(2026, time.March, 2)
	to := domain.NewBusinessDay(2026, time.March, 4)

	all, err := h.uc.ListClosures(context.Background(), usecase.ListClosuresInput{TenantID: testTenant, From: from, To: to})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, to, all[0].BusinessDay)

	divergent, err := h.uc.ListClosures(context.Background(), usecase.ListClosuresInput{
		TenantID: testTenant,
		From:     from,
		To:       to,
		Status:   domain.ClosureStatusDivergent,
	})
	require.NoError(t, err)
	require.Len(t, divergent, 1)
	assert.Equal(t, domain.NewBusinessDay(2026, time.March, 3), divergent[0].BusinessDay)

	_, err = h.uc.ListClosures(context.Background(), usecase.ListClosuresInput{TenantID: testTenant, From: to, To: from})
	require.ErrorIs(t, err, domain.ErrInvalidDateRange)

	_, err = h.uc.ListClosures(context.Background(), usecase.ListClosuresInput{TenantID: testTenant, From: from, To: to, Status: "PENDING"})
	require.ErrorIs(t, err, domain.ErrValidation)
}
