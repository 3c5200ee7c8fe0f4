package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/iho/goclosing/internal/adapter/http/dto"
	"github.com/iho/goclosing/internal/domain"
	"github.com/iho/goclosing/internal/usecase"
)

const (
	// IdempotencyKeyHeader carries the client-supplied idempotency key.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotentReplayHeader is set to "true" when a stored result is returned.
	IdempotentReplayHeader = "X-Idempotency-Replay"

	maxDeclareBodyBytes = 64 << 10
)

// ClosureService is the part of the reconciliation use case the handler needs.
type ClosureService interface {
	Declare(ctx context.Context, input usecase.DeclareInput) (*domain.ClosureResult, error)
	GetClosure(ctx context.Context, tenantID string, day domain.BusinessDay) (*domain.ClosureRecord, error)
	GetClosureByID(ctx context.Context, tenantID, id string) (*domain.ClosureRecord, error)
	ListClosures(ctx context.Context, input usecase.ListClosuresInput) ([]*domain.ClosureRecord, error)
}

// ClosureHandler handles cash closure HTTP requests.
type ClosureHandler struct {
	closureUC ClosureService
}

// NewClosureHandler creates a new ClosureHandler.
func NewClosureHandler(closureUC ClosureService) *ClosureHandler {
	return &ClosureHandler{closureUC: closureUC}
}

// Declare submits the operator's blind declaration for a business day.
func (h *ClosureHandler) Declare(w http.ResponseWriter, r *http.Request) {
	op, ok := domain.OperatorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.DeclareClosureRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDeclareBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := req.Validate(); err != nil {
		writeDomainError(w, r, "invalid declaration", err)
		return
	}

	var idempotencyKey *string
	if values, present := r.Header[IdempotencyKeyHeader]; present && len(values) > 0 {
		key := values[0]
		idempotencyKey = &key
	}

	input, err := req.ToUseCaseInput(op, idempotencyKey)
	if err != nil {
		writeDomainError(w, r, "invalid declaration", err)
		return
	}

	result, err := h.closureUC.Declare(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, "failed to declare closure", err)
		return
	}

	if result.IdempotentReplay {
		w.Header().Set(IdempotentReplayHeader, "true")
	}

	writeJSON(w, http.StatusOK, dto.DeclareResultFromDomain(result))
}

// Get retrieves the closure of a business day.
func (h *ClosureHandler) Get(w http.ResponseWriter, r *http.Request) {
	op, ok := domain.OperatorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	day, err := domain.ParseBusinessDay(chi.URLParam(r, "businessDay"))
	if err != nil {
		writeDomainError(w, r, "invalid business day", err)
		return
	}

	record, err := h.closureUC.GetClosure(r.Context(), op.TenantID, day)
	if err != nil {
		writeDomainError(w, r, "failed to get closure", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ClosureFromDomain(record))
}

// GetByID retrieves a closure by its identifier.
func (h *ClosureHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	op, ok := domain.OperatorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing closure ID", "")
		return
	}

	record, err := h.closureUC.GetClosureByID(r.Context(), op.TenantID, id)
	if err != nil {
		writeDomainError(w, r, "failed to get closure", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ClosureFromDomain(record))
}

// List lists the caller's closures over a date range.
func (h *ClosureHandler) List(w http.ResponseWriter, r *http.Request) {
	op, ok := domain.OperatorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	query := r.URL.Query()
	req := dto.ListClosuresRequest{
		From:   query.Get("from"),
		To:     query.Get("to"),
		Status: strings.ToUpper(query.Get("status")),
		Limit:  parseIntQuery(r, "limit", 50),
		Offset: parseIntQuery(r, "offset", 0),
	}

	input, err := req.ToUseCaseInput(op.TenantID)
	if err != nil {
		writeDomainError(w, r, "invalid query", err)
		return
	}

	records, err := h.closureUC.ListClosures(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, "failed to list closures", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListClosuresResponse{
		Closures: dto.ClosuresFromDomain(records),
		Limit:    input.Limit,
		Offset:   input.Offset,
	})
}
