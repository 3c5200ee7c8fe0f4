package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iho/goclosing/internal/domain"
)

// Claims represents the JWT claims
type Claims struct {
	TenantID   string      `json:"tenant_id"`
	OperatorID string      `json:"operator_id"`
	Role       domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Operator converts the claims to the domain operator.
func (c *Claims) Operator() *domain.Operator {
	return &domain.Operator{
		ID:       c.OperatorID,
		TenantID: c.TenantID,
		Role:     c.Role,
	}
}

// JWTManager manages JWT token creation and validation
type JWTManager struct {
	secretKey     []byte
	tokenDuration time.Duration
	now           func() time.Time
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secretKey string, tokenDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
		now:           time.Now,
	}
}

// Generate issues a token for an operator of a tenant
func (m *JWTManager) Generate(op *domain.Operator) (string, error) {
	if op == nil || op.ID == "" || op.TenantID == "" {
		return "", fmt.Errorf("%w: operator and tenant are required", domain.ErrValidation)
	}
	if !op.Role.IsValid() {
		return "", fmt.Errorf("%w: unknown role %q", domain.ErrValidation, op.Role)
	}

	now := m.now()
	claims := Claims{
		TenantID:   op.TenantID,
		OperatorID: op.ID,
		Role:       op.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   op.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// Verify verifies a JWT token and returns the claims
func (m *JWTManager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
		jwt.WithTimeFunc(m.now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrExpiredToken
		}
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidToken
	}

	if claims.TenantID == "" || claims.OperatorID == "" || !claims.Role.IsValid() {
		return nil, domain.ErrInvalidToken
	}

	return claims, nil
}
