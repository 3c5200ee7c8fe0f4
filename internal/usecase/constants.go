package usecase

import "time"

const (
	// DefaultTransactionTimeout bounds the atomic persist of a declaration.
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultLedgerReadTimeout bounds the payment ledger aggregation.
	DefaultLedgerReadTimeout = 5 * time.Second

	// DefaultAuditEmitTimeout bounds the best-effort audit emission.
	DefaultAuditEmitTimeout = 2 * time.Second
)
