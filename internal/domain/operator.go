package domain

import (
	"context"
	"errors"
)

// Operator is the authenticated caller on whose behalf a request runs.
type Operator struct {
	ID       string
	TenantID string
	Role     Role
}

// Role represents an operator's access level.
type Role string

const (
	// RoleAdmin has full access to all operations
	RoleAdmin Role = "admin"

	// RoleFinancial manages the school's finances and may close a day
	RoleFinancial Role = "financial"

	// RoleFrontDesk collects payments and may close a day
	RoleFrontDesk Role = "front_desk"

	// RoleViewer can only read closures
	RoleViewer Role = "viewer"
)

var validRoles = map[Role]bool{
	RoleAdmin:     true,
	RoleFinancial: true,
	RoleFrontDesk: true,
	RoleViewer:    true,
}

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanDeclare checks if the role may submit a cash declaration
func (r Role) CanDeclare() bool {
	return r == RoleAdmin || r == RoleFinancial || r == RoleFrontDesk
}

// CanView checks if the role may read closures
func (r Role) CanView() bool {
	return r.IsValid()
}

// Authentication errors
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInsufficientRole = errors.New("insufficient role for this operation")
)

type operatorContextKey struct{}

// ContextWithOperator returns a copy of ctx carrying op.
func ContextWithOperator(ctx context.Context, op *Operator) context.Context {
	return context.WithValue(ctx, operatorContextKey{}, op)
}

// OperatorFromContext extracts the operator set by the auth layer.
func OperatorFromContext(ctx context.Context) (*Operator, bool) {
	op, ok := ctx.Value(operatorContextKey{}).(*Operator)
	return op, ok && op != nil
}
