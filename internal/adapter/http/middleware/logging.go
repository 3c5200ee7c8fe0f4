package middleware

import (
	"context"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/goclosing/internal/domain"
	"github.com/iho/goclosing/internal/infrastructure/logger"
)

// LoggingMiddleware logs HTTP requests and puts a request-scoped logger in
// the request context.
type LoggingMiddleware struct {
	logger zerolog.Logger
}

// NewLoggingMiddleware creates a new LoggingMiddleware.
func NewLoggingMiddleware(logger zerolog.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{logger: logger}
}

// Wrap wraps an http.Handler with logging.
func (m *LoggingMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ctx := logger.WithContext(r.Context(), m.logger)
		ctx = logger.WithFields(ctx, chimiddleware.GetReqID(r.Context()), "")
		r = r.WithContext(ctx)

		// The auth layer sets the operator on a derived request, so the tenant
		// is captured through the holder rather than read back from r.
		holder := &operatorHolder{}
		r = r.WithContext(withOperatorHolder(r.Context(), holder))

		wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		event := logger.FromContext(ctx).Info()
		if wrapped.statusCode >= http.StatusInternalServerError {
			event = logger.FromContext(ctx).Error()
		}
		if holder.op != nil {
			event = event.Str("tenant_id", holder.op.TenantID).Str("operator_id", holder.op.ID)
		}

		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapped.statusCode).
			Dur("duration", time.Since(start)).
			Str("remote_addr", r.RemoteAddr).
			Msg("request completed")
	})
}

type statusRecorder struct {
	http.ResponseWriter

	statusCode  int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	if !r.wroteHeader {
		r.statusCode = statusCode
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.ResponseWriter.Write(b)
}

type operatorHolder struct {
	op *domain.Operator
}

type operatorHolderKey struct{}

func withOperatorHolder(ctx context.Context, h *operatorHolder) context.Context {
	return context.WithValue(ctx, operatorHolderKey{}, h)
}

// recordOperator makes the authenticated operator visible to the request log.
func recordOperator(ctx context.Context, op *domain.Operator) {
	if h, ok := ctx.Value(operatorHolderKey{}).(*operatorHolder); ok {
		h.op = op
	}
}
