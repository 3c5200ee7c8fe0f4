package dto

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iho/goclosing/internal/domain"
	"github.com/iho/goclosing/internal/usecase"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// DeclareClosureRequest is an operator's blind declaration. Amounts are in
// minor currency units, one per channel.
type DeclareClosureRequest struct {
	BusinessDay string           `json:"business_day" validate:"required,datetime=2006-01-02"`
	Declared    map[string]int64 `json:"declared"     validate:"required,min=1,dive,keys,required,endkeys,gte=0,lte=1000000000000000"`
}

// Validate checks the request shape. Channel coverage is checked by the domain.
func (r *DeclareClosureRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrValidation, describeValidationErrors(err))
	}
	return nil
}

// ToUseCaseInput converts to use case input. Tenant and operator come from
// the authenticated caller, never from the body.
func (r *DeclareClosureRequest) ToUseCaseInput(op *domain.Operator, idempotencyKey *string) (usecase.DeclareInput, error) {
	day, err := domain.ParseBusinessDay(r.BusinessDay)
	if err != nil {
		return usecase.DeclareInput{}, err
	}

	declared := make(domain.Amounts, len(r.Declared))
	for name, amount := range r.Declared {
		channel, err := domain.ParseChannel(name)
		if err != nil {
			return usecase.DeclareInput{}, err
		}
		if _, dup := declared[channel]; dup {
			return usecase.DeclareInput{}, fmt.Errorf("%w: channel %s declared twice", domain.ErrValidation, channel)
		}
		declared[channel] = domain.Money(amount)
	}

	return usecase.DeclareInput{
		TenantID:       op.TenantID,
		BusinessDay:    day,
		Declared:       declared,
		DeclaredBy:     op.ID,
		IdempotencyKey: idempotencyKey,
	}, nil
}

// ListClosuresRequest holds listing query parameters.
type ListClosuresRequest struct {
	From   string `validate:"required,datetime=2006-01-02"`
	To     string `validate:"required,datetime=2006-01-02"`
	Status string `validate:"omitempty,oneof=MATCH DIVERGENT"`
	Limit  int    `validate:"gte=0"`
	Offset int    `validate:"gte=0"`
}

// ToUseCaseInput validates and converts to use case input.
func (r *ListClosuresRequest) ToUseCaseInput(tenantID string) (usecase.ListClosuresInput, error) {
	if err := validate.Struct(r); err != nil {
		return usecase.ListClosuresInput{}, fmt.Errorf("%w: %s", domain.ErrValidation, describeValidationErrors(err))
	}

	from, err := domain.ParseBusinessDay(r.From)
	if err != nil {
		return usecase.ListClosuresInput{}, err
	}
	to, err := domain.ParseBusinessDay(r.To)
	if err != nil {
		return usecase.ListClosuresInput{}, err
	}

	return usecase.ListClosuresInput{
		TenantID: tenantID,
		From:     from,
		To:       to,
		Status:   domain.ClosureStatus(r.Status),
		Limit:    r.Limit,
		Offset:   r.Offset,
	}, nil
}

func describeValidationErrors(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}

	parts := make([]string, 0, len(validationErrors))
	for _, ve := range validationErrors {
		parts = append(parts, strings.ToLower(ve.Field())+": "+ve.Tag())
	}
	return strings.Join(parts, ", ")
}
