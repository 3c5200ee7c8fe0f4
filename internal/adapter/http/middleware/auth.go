package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/iho/goclosing/internal/domain"
	"github.com/iho/goclosing/internal/infrastructure/auth"
	"github.com/iho/goclosing/internal/infrastructure/logger"
)

// Identity headers honoured when authentication is disabled.
const (
	TenantIDHeader     = "X-Tenant-ID"
	OperatorIDHeader   = "X-Operator-ID"
	OperatorRoleHeader = "X-Operator-Role"
)

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// AuthMiddleware creates an authentication middleware
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeJSONError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			claims, err := verifier.Verify(parts[1])
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(withOperator(r, claims.Operator())))
		})
	}
}

// HeaderIdentity trusts identity headers set by an upstream gateway. It is
// used in development mode when AUTH_ENABLED is false. The role defaults
// to admin.
func HeaderIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		op := &domain.Operator{
			ID:       strings.TrimSpace(r.Header.Get(OperatorIDHeader)),
			TenantID: strings.TrimSpace(r.Header.Get(TenantIDHeader)),
			Role:     domain.Role(strings.TrimSpace(r.Header.Get(OperatorRoleHeader))),
		}
		if op.Role == "" {
			op.Role = domain.RoleAdmin
		}

		if op.ID == "" || op.TenantID == "" {
			writeJSONError(w, http.StatusUnauthorized, "missing "+TenantIDHeader+" or "+OperatorIDHeader+" header")
			return
		}
		if !op.Role.IsValid() {
			writeJSONError(w, http.StatusUnauthorized, "unknown role")
			return
		}

		next.ServeHTTP(w, r.WithContext(withOperator(r, op)))
	})
}

// RequireRole rejects operators whose role does not satisfy allowed
func RequireRole(allowed func(domain.Role) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			op, ok := domain.OperatorFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			if !allowed(op.Role) {
				writeJSONError(w, http.StatusForbidden, domain.ErrInsufficientRole.Error())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireDeclarer allows only roles that may close a business day.
func RequireDeclarer(next http.Handler) http.Handler {
	return RequireRole(domain.Role.CanDeclare)(next)
}

// RequireViewer allows any known role.
func RequireViewer(next http.Handler) http.Handler {
	return RequireRole(domain.Role.CanView)(next)
}

func withOperator(r *http.Request, op *domain.Operator) context.Context {
	recordOperator(r.Context(), op)
	ctx := domain.ContextWithOperator(r.Context(), op)
	return logger.WithFields(ctx, "", op.TenantID)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
