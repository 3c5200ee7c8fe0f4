package postgres

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"

	"github.com/iho/goclosing/internal/domain"
)

func TestLedgerRepositorySumByChannel(t *testing.T) {
	pool := newMockPool(t)
	repo := newLedgerRepositoryWithDB(pool, zerolog.Nop())
	day := domain.NewBusinessDay(2026, time.March, 14)

	pool.ExpectQuery("FROM tenants").
		WithArgs("school-1").
		WillReturnRows(pgxmock.NewRows([]string{"timezone"}).AddRow("UTC"))

	pool.ExpectQuery("FROM payment_ledger").
		WithArgs("school-1",
			timeToPgTimestamptz(time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)),
			timeToPgTimestamptz(time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC))).
		WillReturnRows(pgxmock.NewRows([]string{"channel", "total"}).
			AddRow("CASH", int64(150000)).
			AddRow("CARD_TERMINAL", int64(420050)).
			AddRow("VOUCHER", int64(999)))

	totals, err := repo.SumByChannel(context.Background(), "school-1", day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := domain.Amounts{
		domain.ChannelCash:         150000,
		domain.ChannelCardTerminal: 420050,
		domain.ChannelBankTransfer: 0,
		domain.ChannelMobileMoney:  0,
	}
	if !totals.Equal(want) {
		t.Fatalf("expected %v, got %v", want, totals)
	}

	assertExpectations(t, pool)
}

func TestLedgerRepositoryUsesTenantTimezone(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Lisbon")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	pool := newMockPool(t)
	repo := newLedgerRepositoryWithDB(pool, zerolog.Nop())
	day := domain.NewBusinessDay(2026, time.July, 1)

	start := time.Date(2026, time.July, 1, 0, 0, 0, 0, loc).UTC()
	end := time.Date(2026, time.July, 2, 0, 0, 0, 0, loc).UTC()

	pool.ExpectQuery("FROM tenants").
		WillReturnRows(pgxmock.NewRows([]string{"timezone"}).AddRow("Europe/Lisbon"))
	pool.ExpectQuery("FROM payment_ledger").
		WithArgs("school-1", timeToPgTimestamptz(start), timeToPgTimestamptz(end)).
		WillReturnRows(pgxmock.NewRows([]string{"channel", "total"}))

	totals, err := repo.SumByChannel(context.Background(), "school-1", day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !totals.Equal(domain.ZeroAmounts()) {
		t.Fatalf("expected zero totals, got %v", totals)
	}

	assertExpectations(t, pool)
}

func TestLedgerRepositoryErrors(t *testing.T) {
	day := domain.NewBusinessDay(2026, time.March, 14)

	tests := []struct {
		name    string
		setup   func(pool pgxmock.PgxPoolIface)
		wantErr error
	}{
		{
			name: "unknown tenant",
			setup: func(pool pgxmock.PgxPoolIface) {
				pool.ExpectQuery("FROM tenants").WillReturnError(pgx.ErrNoRows)
			},
			wantErr: domain.ErrInvalidTenant,
		},
		{
			name: "unparsable timezone",
			setup: func(pool pgxmock.PgxPoolIface) {
				pool.ExpectQuery("FROM tenants").
					WillReturnRows(pgxmock.NewRows([]string{"timezone"}).AddRow("Mars/Olympus_Mons"))
			},
			wantErr: domain.ErrInvalidTenant,
		},
		{
			name: "tenant lookup failure",
			setup: func(pool pgxmock.PgxPoolIface) {
				pool.ExpectQuery("FROM tenants").WillReturnError(errors.New("connection reset"))
			},
			wantErr: domain.ErrLedgerUnavailable,
		},
		{
			name: "aggregation failure",
			setup: func(pool pgxmock.PgxPoolIface) {
				pool.ExpectQuery("FROM tenants").
					WillReturnRows(pgxmock.NewRows([]string{"timezone"}).AddRow(""))
				pool.ExpectQuery("FROM payment_ledger").WillReturnError(context.DeadlineExceeded)
			},
			wantErr: domain.ErrLedgerUnavailable,
		},
		{
			name: "settled total out of range",
			setup: func(pool pgxmock.PgxPoolIface) {
				pool.ExpectQuery("FROM tenants").
					WillReturnRows(pgxmock.NewRows([]string{"timezone"}).AddRow("UTC"))
				pool.ExpectQuery("FROM payment_ledger").
					WillReturnRows(pgxmock.NewRows([]string{"channel", "total"}).
						AddRow("CASH", int64(math.MaxInt64)))
			},
			wantErr: domain.ErrLedgerUnavailable,
		},
		{
			name: "negative settled total out of range",
			setup: func(pool pgxmock.PgxPoolIface) {
				pool.ExpectQuery("FROM tenants").
					WillReturnRows(pgxmock.NewRows([]string{"timezone"}).AddRow("UTC"))
				pool.ExpectQuery("FROM payment_ledger").
					WillReturnRows(pgxmock.NewRows([]string{"channel", "total"}).
						AddRow("CASH", int64(-1)-int64(domain.MaxAmount)))
			},
			wantErr: domain.ErrLedgerUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := newMockPool(t)
			repo := newLedgerRepositoryWithDB(pool, zerolog.Nop())
			tt.setup(pool)

			_, err := repo.SumByChannel(context.Background(), "school-1", day)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
