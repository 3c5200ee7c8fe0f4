package domain

import (
	"fmt"
	"strings"
)

// Validation constants
const (
	MaxTenantIDLength       = 64
	MaxOperatorIDLength     = 255
	MaxIdempotencyKeyLength = 255
	MaxClosureRangeDays     = 366
)

// MaxAmount bounds every per-channel amount, declared or settled, so that
// diffs and totals over the four channels stay exact in int64.
const MaxAmount Money = 1_000_000_000_000_000

// AmountInRange reports whether m lies in [-MaxAmount, MaxAmount].
func AmountInRange(m Money) bool {
	return m >= -MaxAmount && m <= MaxAmount
}

// ValidateDeclaration checks that every channel of the closed set has an
// amount in [0, MaxAmount] and that no unknown channel is present.
func ValidateDeclaration(declared Amounts) error {
	if len(declared) == 0 {
		return fmt.Errorf("%w: declared amounts are required", ErrValidation)
	}

	for c := range declared {
		if !c.IsValid() {
			return fmt.Errorf("%w: unknown channel %q", ErrValidation, c)
		}
	}

	for _, c := range allChannels {
		amount, ok := declared[c]
		if !ok {
			return fmt.Errorf("%w: missing amount for channel %s", ErrValidation, c)
		}

		if amount < 0 {
			return fmt.Errorf("%w: amount for channel %s must not be negative", ErrValidation, c)
		}

		if amount > MaxAmount {
			return fmt.Errorf("%w: amount for channel %s exceeds %d", ErrValidation, c, MaxAmount)
		}
	}

	return nil
}

// ValidateTenantID validates a tenant identifier
func ValidateTenantID(tenantID string) error {
	tenantID = strings.TrimSpace(tenantID)

	if tenantID == "" {
		return fmt.Errorf("%w: tenant id is required", ErrValidation)
	}

	if len(tenantID) > MaxTenantIDLength {
		return fmt.Errorf("%w: tenant id exceeds %d characters", ErrValidation, MaxTenantIDLength)
	}

	return nil
}

// ValidateOperatorID validates the identity recorded as declared_by
func ValidateOperatorID(operatorID string) error {
	operatorID = strings.TrimSpace(operatorID)

	if operatorID == "" {
		return fmt.Errorf("%w: declared_by is required", ErrValidation)
	}

	if len(operatorID) > MaxOperatorIDLength {
		return fmt.Errorf("%w: declared_by exceeds %d characters", ErrValidation, MaxOperatorIDLength)
	}

	return nil
}

// ValidateIdempotencyKey validates an optional client-supplied idempotency key
func ValidateIdempotencyKey(key *string) error {
	if key == nil {
		return nil
	}

	if strings.TrimSpace(*key) == "" {
		return fmt.Errorf("%w: idempotency key must not be blank", ErrValidation)
	}

	if len(*key) > MaxIdempotencyKeyLength {
		return fmt.Errorf("%w: idempotency key exceeds %d characters", ErrValidation, MaxIdempotencyKeyLength)
	}

	return nil
}

// ValidateBusinessDay rejects the zero date
func ValidateBusinessDay(day BusinessDay) error {
	if day.IsZero() {
		return fmt.Errorf("%w: business day is required", ErrValidation)
	}

	return nil
}

// ValidateDateRange validates an inclusive [from, to] listing range
func ValidateDateRange(from, to BusinessDay) error {
	if to.Before(from) {
		return fmt.Errorf("%w: %s is before %s", ErrInvalidDateRange, to, from)
	}

	days := int(to.Time().Sub(from.Time()).Hours() / 24)
	if days > MaxClosureRangeDays {
		return fmt.Errorf("%w: range exceeds %d days", ErrInvalidDateRange, MaxClosureRangeDays)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int, error) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}
