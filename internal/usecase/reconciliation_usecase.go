package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/goclosing/internal/domain"
	"github.com/iho/goclosing/internal/infrastructure/metrics"
)

// ReconciliationUseCase closes a tenant's business day by reconciling the
// operator's blind declaration against the payment ledger.
type ReconciliationUseCase struct {
	txManager      TransactionManager
	ledger         LedgerReader
	closureRepo    ClosureRepository
	idempotency    IdempotencyRepository
	idGen          IDGenerator
	emitter        AuditEmitter
	locker         DeclarationLocker
	retrier        Retrier
	clock          Clock
	metrics        *metrics.Metrics
	logger         zerolog.Logger
	ledgerTimeout  time.Duration
	persistTimeout time.Duration
	emitTimeout    time.Duration
}

// ReconciliationConfig wires a ReconciliationUseCase.
// TxManager, Ledger, ClosureRepo, Idempotency and IDGen are required.
type ReconciliationConfig struct {
	TxManager      TransactionManager
	Ledger         LedgerReader
	ClosureRepo    ClosureRepository
	Idempotency    IdempotencyRepository
	IDGen          IDGenerator
	Emitter        AuditEmitter
	Locker         DeclarationLocker
	Retrier        Retrier
	Clock          Clock
	Metrics        *metrics.Metrics
	Logger         *zerolog.Logger
	LedgerTimeout  time.Duration
	PersistTimeout time.Duration
	EmitTimeout    time.Duration
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(cfg ReconciliationConfig) *ReconciliationUseCase {
	if cfg.Clock == nil {
		cfg.Clock = systemClock{}
	}
	if cfg.LedgerTimeout <= 0 {
		cfg.LedgerTimeout = DefaultLedgerReadTimeout
	}
	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = DefaultTransactionTimeout
	}
	if cfg.EmitTimeout <= 0 {
		cfg.EmitTimeout = DefaultAuditEmitTimeout
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &ReconciliationUseCase{
		txManager:      cfg.TxManager,
		ledger:         cfg.Ledger,
		closureRepo:    cfg.ClosureRepo,
		idempotency:    cfg.Idempotency,
		idGen:          cfg.IDGen,
		emitter:        cfg.Emitter,
		locker:         cfg.Locker,
		retrier:        cfg.Retrier,
		clock:          cfg.Clock,
		metrics:        cfg.Metrics,
		logger:         logger.With().Str("component", "reconciliation").Logger(),
		ledgerTimeout:  cfg.LedgerTimeout,
		persistTimeout: cfg.PersistTimeout,
		emitTimeout:    cfg.EmitTimeout,
	}
}

// DeclareInput represents an operator's blind declaration for one business day.
type DeclareInput struct {
	TenantID       string
	BusinessDay    domain.BusinessDay
	Declared       domain.Amounts
	DeclaredBy     string
	IdempotencyKey *string
}

// Declare validates the declaration, reconciles it against the ledger and
// persists exactly one closure per tenant-day. Retries, with or without the
// original idempotency key, and concurrent losers receive the existing
// closure marked as an idempotent replay.
func (uc *ReconciliationUseCase) Declare(ctx context.Context, input DeclareInput) (*domain.ClosureResult, error) {
	start := time.Now()

	result, err := uc.declare(ctx, input)

	uc.observe(result, err, time.Since(start))

	return result, err
}

func (uc *ReconciliationUseCase) declare(ctx context.Context, input DeclareInput) (*domain.ClosureResult, error) {
	// 1. Validate before touching any state
	if err := validateDeclareInput(input); err != nil {
		return nil, err
	}

	log := uc.logger.With().
		Str("tenant_id", input.TenantID).
		Str("business_day", input.BusinessDay.String()).
		Logger()

	// 2. Idempotency key short-circuit
	var idempotencyRecord *domain.IdempotencyRecord
	if input.IdempotencyKey != nil {
		requestHash := domain.DeclarationHash(input.TenantID, input.BusinessDay, input.Declared)

		stored, found, err := uc.idempotency.Lookup(ctx, input.TenantID, domain.ScopeCashClosure, *input.IdempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("%w: idempotency lookup: %w", domain.ErrPersist, err)
		}

		if found {
			return uc.replayStored(stored, requestHash)
		}

		idempotencyRecord = &domain.IdempotencyRecord{
			TenantID:    input.TenantID,
			Scope:       domain.ScopeCashClosure,
			Key:         *input.IdempotencyKey,
			RequestHash: requestHash,
		}
	}

	if uc.locker != nil {
		release, err := uc.locker.Acquire(ctx, input.TenantID, input.BusinessDay)
		if err != nil {
			// The unique constraint still guards the day; only a duplicate ledger read is at stake.
			log.Warn().Err(err).Msg("declaration lock not obtained, continuing without it")
			if uc.metrics != nil {
				uc.metrics.LockContention.Inc()
			}
		} else {
			defer release()
		}
	}

	// 3. Natural-key short-circuit
	existing, found, err := uc.closureRepo.Get(ctx, input.TenantID, input.BusinessDay)
	if err != nil {
		return nil, fmt.Errorf("%w: closure lookup: %w", domain.ErrPersist, err)
	}

	if found {
		log.Info().Str("closure_id", existing.ID).Msg("business day already closed, replaying")
		return domain.ReplayOf(existing, domain.ReplaySourceNaturalKey), nil
	}

	// 4. Read system totals
	system, err := uc.readLedger(ctx, input.TenantID, input.BusinessDay)
	if err != nil {
		return nil, err
	}

	// 5. Compute verdict
	record := domain.NewClosureRecord(
		uc.idGen.Generate(),
		input.TenantID,
		input.BusinessDay,
		input.Declared,
		system,
		input.DeclaredBy,
		uc.clock.Now(),
	)

	if idempotencyRecord != nil {
		payload, err := domain.EncodeClosurePayload(record)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrPersist, err)
		}

		idempotencyRecord.Payload = payload
		idempotencyRecord.CreatedAt = record.CreatedAt
	}

	// Last point at which the caller may still abandon the declaration
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 6. Persist atomically
	err = uc.persist(ctx, record, idempotencyRecord)
	if errors.Is(err, domain.ErrAlreadyClosed) {
		return uc.replayWinner(ctx, input, log)
	}

	if err != nil {
		return nil, err
	}

	log.Info().
		Str("closure_id", record.ID).
		Str("status", string(record.Status)).
		Int64("total_diff", int64(record.TotalDiff())).
		Msg("business day closed")

	// 7. Emit audit event, best-effort
	uc.emit(ctx, record, log)

	return domain.NewClosureResult(record), nil
}

func (uc *ReconciliationUseCase) replayStored(stored *domain.IdempotencyRecord, requestHash string) (*domain.ClosureResult, error) {
	if stored.RequestHash != requestHash {
		return nil, fmt.Errorf("%w: key %q", domain.ErrIdempotencyConflict, stored.Key)
	}

	record, err := domain.DecodeClosurePayload(stored.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPersist, err)
	}

	return domain.ReplayOf(record, domain.ReplaySourceIdempotencyKey), nil
}

// replayWinner serves the closure written by a concurrent declaration that
// committed between the natural-key check and our insert.
func (uc *ReconciliationUseCase) replayWinner(ctx context.Context, input DeclareInput, log zerolog.Logger) (*domain.ClosureResult, error) {
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.persistTimeout)
	defer cancel()

	winner, found, err := uc.closureRepo.Get(fetchCtx, input.TenantID, input.BusinessDay)
	if err != nil {
		return nil, fmt.Errorf("%w: closure lookup after conflict: %w", domain.ErrPersist, err)
	}

	if !found {
		return nil, fmt.Errorf("%w: closure reported as existing but not found", domain.ErrUnresolvedConflict)
	}

	log.Info().Str("closure_id", winner.ID).Msg("concurrent declaration won, replaying")

	return domain.ReplayOf(winner, domain.ReplaySourceConcurrentWrite), nil
}

func (uc *ReconciliationUseCase) readLedger(ctx context.Context, tenantID string, day domain.BusinessDay) (domain.Amounts, error) {
	ledgerCtx, cancel := context.WithTimeout(ctx, uc.ledgerTimeout)
	defer cancel()

	start := time.Now()
	system, err := uc.ledger.SumByChannel(ledgerCtx, tenantID, day)
	if uc.metrics != nil {
		uc.metrics.LedgerReadDuration.Observe(time.Since(start).Seconds())
	}

	if err != nil {
		if uc.metrics != nil {
			uc.metrics.LedgerReadErrors.WithLabelValues(errorType(err)).Inc()
		}

		switch {
		case errors.Is(err, domain.ErrInvalidTenant), errors.Is(err, domain.ErrLedgerUnavailable):
			return nil, err
		case errors.Is(err, context.Canceled) && ctx.Err() != nil:
			return nil, err
		default:
			return nil, fmt.Errorf("%w: %w", domain.ErrLedgerUnavailable, err)
		}
	}

	for _, c := range domain.AllChannels() {
		if _, ok := system[c]; !ok {
			return nil, fmt.Errorf("%w: ledger totals missing channel %s", domain.ErrLedgerUnavailable, c)
		}
	}

	return system, nil
}

// persist writes the closure and, when requested, the idempotency record in
// one transaction. Once started it runs to completion regardless of the
// caller's cancellation, so a committed outcome is always reported.
func (uc *ReconciliationUseCase) persist(ctx context.Context, record *domain.ClosureRecord, idempotencyRecord *domain.IdempotencyRecord) error {
	txCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.persistTimeout)
	defer cancel()

	operation := func() error {
		tx, err := uc.txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		if err := uc.closureRepo.Create(txCtx, tx, record); err != nil {
			return err
		}

		if idempotencyRecord != nil {
			if err := uc.idempotency.Save(txCtx, tx, idempotencyRecord); err != nil {
				return err
			}
		}

		return tx.Commit(txCtx)
	}

	var err error
	if uc.retrier != nil {
		err = uc.retrier.Retry(txCtx, operation)
	} else {
		err = operation()
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrAlreadyClosed),
		errors.Is(err, domain.ErrIdempotencyConflict),
		errors.Is(err, domain.ErrPersist):
		return err
	default:
		return fmt.Errorf("%w: %w", domain.ErrPersist, err)
	}
}

func (uc *ReconciliationUseCase) emit(ctx context.Context, record *domain.ClosureRecord, log zerolog.Logger) {
	if uc.emitter == nil {
		return
	}

	emitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.emitTimeout)
	defer cancel()

	if err := uc.emitter.Emit(emitCtx, domain.NewClosureDeclaredEvent(record)); err != nil {
		log.Error().Err(err).Str("closure_id", record.ID).Msg("failed to emit closure audit event")
		if uc.metrics != nil {
			uc.metrics.AuditEmitFailures.Inc()
		}
	}
}

func (uc *ReconciliationUseCase) observe(result *domain.ClosureResult, err error, elapsed time.Duration) {
	if uc.metrics == nil {
		return
	}

	uc.metrics.DeclareDuration.Observe(elapsed.Seconds())

	if err != nil {
		uc.metrics.ClosureErrors.WithLabelValues(errorType(err)).Inc()
		return
	}

	if result.IdempotentReplay {
		uc.metrics.ClosureReplays.WithLabelValues(string(result.ReplaySource)).Inc()
		return
	}

	uc.metrics.ClosuresDeclared.WithLabelValues(string(result.Record.Status)).Inc()
	if result.Record.Status == domain.ClosureStatusDivergent {
		diff := result.TotalDiff
		if diff < 0 {
			diff = -diff
		}
		uc.metrics.ClosureTotalDiff.Observe(float64(diff))
	}
}

// GetClosure retrieves the closure of a business day.
func (uc *ReconciliationUseCase) GetClosure(ctx context.Context, tenantID string, day domain.BusinessDay) (*domain.ClosureRecord, error) {
	if err := domain.ValidateTenantID(tenantID); err != nil {
		return nil, err
	}

	record, found, err := uc.closureRepo.Get(ctx, tenantID, day)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, domain.ErrClosureNotFound
	}

	return record, nil
}

// GetClosureByID retrieves a closure by its identifier.
func (uc *ReconciliationUseCase) GetClosureByID(ctx context.Context, tenantID, id string) (*domain.ClosureRecord, error) {
	if err := domain.ValidateTenantID(tenantID); err != nil {
		return nil, err
	}

	return uc.closureRepo.GetByID(ctx, tenantID, id)
}

// ListClosuresInput represents input for listing closures.
type ListClosuresInput struct {
	TenantID string
	From     domain.BusinessDay
	To       domain.BusinessDay
	Status   domain.ClosureStatus
	Limit    int
	Offset   int
}

// ListClosures lists a tenant's closures over an inclusive date range.
func (uc *ReconciliationUseCase) ListClosures(ctx context.Context, input ListClosuresInput) ([]*domain.ClosureRecord, error) {
	if err := domain.ValidateTenantID(input.TenantID); err != nil {
		return nil, err
	}

	if err := domain.ValidateDateRange(input.From, input.To); err != nil {
		return nil, err
	}

	if input.Status != "" && !input.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, input.Status)
	}

	limit, offset, _ := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.closureRepo.List(ctx, ClosureFilter{
		TenantID: input.TenantID,
		From:     input.From,
		To:       input.To,
		Status:   input.Status,
		Limit:    limit,
		Offset:   offset,
	})
}

func validateDeclareInput(input DeclareInput) error {
	if err := domain.ValidateTenantID(input.TenantID); err != nil {
		return err
	}

	if err := domain.ValidateBusinessDay(input.BusinessDay); err != nil {
		return err
	}

	if err := domain.ValidateOperatorID(input.DeclaredBy); err != nil {
		return err
	}

	if err := domain.ValidateIdempotencyKey(input.IdempotencyKey); err != nil {
		return err
	}

	return domain.ValidateDeclaration(input.Declared)
}

// errorType labels an error for metrics.
func errorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrIdempotencyConflict):
		return "idempotency_conflict"
	case errors.Is(err, domain.ErrInvalidTenant):
		return "invalid_tenant"
	case errors.Is(err, domain.ErrLedgerUnavailable):
		return "ledger_unavailable"
	case errors.Is(err, domain.ErrUnresolvedConflict):
		return "unresolved_conflict"
	case errors.Is(err, domain.ErrPersist):
		return "persist"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "unknown"
	}
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
