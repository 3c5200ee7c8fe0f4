package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goclosing/internal/domain"
)

// ClosureResponse represents a closure record in API responses. Amounts are
// minor units; the *_amount fields repeat the totals in major units.
type ClosureResponse struct {
	ID              string               `json:"id"`
	TenantID        string               `json:"tenant_id"`
	BusinessDay     string               `json:"business_day"`
	Declared        domain.Amounts       `json:"declared"`
	System          domain.Amounts       `json:"system"`
	Diff            domain.Amounts       `json:"diff"`
	Status          domain.ClosureStatus `json:"status"`
	TotalDiff       domain.Money         `json:"total_diff"`
	DeclaredAmount  decimal.Decimal      `json:"declared_amount"`
	SystemAmount    decimal.Decimal      `json:"system_amount"`
	TotalDiffAmount decimal.Decimal      `json:"total_diff_amount"`
	DeclaredBy      string               `json:"declared_by"`
	CreatedAt       time.Time            `json:"created_at"`
}

// ClosureFromDomain converts a domain closure to a response.
func ClosureFromDomain(r *domain.ClosureRecord) *ClosureResponse {
	return &ClosureResponse{
		ID:              r.ID,
		TenantID:        r.TenantID,
		BusinessDay:     r.BusinessDay.String(),
		Declared:        r.Declared,
		System:          r.System,
		Diff:            r.Diff,
		Status:          r.Status,
		TotalDiff:       r.TotalDiff(),
		DeclaredAmount:  r.Declared.Total().Decimal(),
		SystemAmount:    r.System.Total().Decimal(),
		TotalDiffAmount: r.TotalDiff().Decimal(),
		DeclaredBy:      r.DeclaredBy,
		CreatedAt:       r.CreatedAt,
	}
}

// ClosuresFromDomain converts domain closures to responses.
func ClosuresFromDomain(records []*domain.ClosureRecord) []*ClosureResponse {
	result := make([]*ClosureResponse, len(records))
	for i, r := range records {
		result[i] = ClosureFromDomain(r)
	}
	return result
}

// DeclareClosureResponse is returned by a declaration, fresh or replayed.
type DeclareClosureResponse struct {
	*ClosureResponse
	IdempotentReplay bool `json:"idempotent_replay"`
}

// DeclareResultFromDomain converts a declaration result to a response.
func DeclareResultFromDomain(result *domain.ClosureResult) *DeclareClosureResponse {
	return &DeclareClosureResponse{
		ClosureResponse:  ClosureFromDomain(result.Record),
		IdempotentReplay: result.IdempotentReplay,
	}
}

// ListClosuresResponse represents a page of closures.
type ListClosuresResponse struct {
	Closures []*ClosureResponse `json:"closures"`
	Limit    int                `json:"limit"`
	Offset   int                `json:"offset"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
