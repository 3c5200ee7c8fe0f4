package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/iho/goclosing/internal/domain"
	"github.com/iho/goclosing/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerReader over the payment ledger.
type LedgerRepository struct {
	queries *generated.Queries
	logger  zerolog.Logger
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool, logger zerolog.Logger) *LedgerRepository {
	return newLedgerRepositoryWithDB(pool, logger)
}

func newLedgerRepositoryWithDB(db generated.DBTX, logger zerolog.Logger) *LedgerRepository {
	return &LedgerRepository{
		queries: generated.New(db),
		logger:  logger.With().Str("component", "ledger_reader").Logger(),
	}
}

// SumByChannel sums settled entries of the tenant-local business day per channel.
func (r *LedgerRepository) SumByChannel(ctx context.Context, tenantID string, day domain.BusinessDay) (domain.Amounts, error) {
	timezone, err := r.queries.GetTenantTimezone(ctx, tenantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidTenant, tenantID)
		}

		return nil, fmt.Errorf("%w: tenant lookup: %w", domain.ErrLedgerUnavailable, err)
	}

	tenant := domain.Tenant{ID: tenantID, Timezone: timezone}
	loc, err := tenant.Location()
	if err != nil {
		return nil, fmt.Errorf("%w: %s has unknown timezone %q", domain.ErrInvalidTenant, tenantID, timezone)
	}

	start, end := day.Bounds(loc)

	rows, err := r.queries.SumSettledByChannel(ctx, generated.SumSettledByChannelParams{
		TenantID:    tenantID,
		SettledFrom: timeToPgTimestamptz(start),
		SettledTo:   timeToPgTimestamptz(end),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLedgerUnavailable, err)
	}

	totals := domain.ZeroAmounts()
	for _, row := range rows {
		channel := domain.Channel(row.Channel)
		if !channel.IsValid() {
			r.logger.Warn().
				Str("tenant_id", tenantID).
				Str("channel", row.Channel).
				Msg("ignoring settled entries on unknown channel")
			continue
		}
		amount := domain.Money(row.Total)
		if !domain.AmountInRange(amount) || !domain.AmountInRange(totals[channel]+amount) {
			return nil, fmt.Errorf("%w: settled total for %s out of range", domain.ErrLedgerUnavailable, channel)
		}
		totals[channel] += amount
	}

	return totals, nil
}
