package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/goclosing/internal/infrastructure/logger"
)

func TestLoggingMiddlewareLogsRequestWithIdentity(t *testing.T) {
	var buf bytes.Buffer
	m := NewLoggingMiddleware(zerolog.New(&buf))

	var handlerLogged bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Info().Msg("inside handler")
		handlerLogged = true
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/closures", nil)
	req.Header.Set(TenantIDHeader, "school-1")
	req.Header.Set(OperatorIDHeader, "op-1")
	rec := httptest.NewRecorder()

	chimiddleware.RequestID(m.Wrap(HeaderIdentity(next))).ServeHTTP(rec, req)

	if !handlerLogged {
		t.Fatalf("handler was not called")
	}

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("expected two log lines, got %d: %s", len(lines), buf.String())
	}

	var inner, completed map[string]any
	if err := json.Unmarshal(lines[0], &inner); err != nil {
		t.Fatalf("invalid log line: %v", err)
	}
	if err := json.Unmarshal(lines[1], &completed); err != nil {
		t.Fatalf("invalid log line: %v", err)
	}

	if inner["tenant_id"] != "school-1" || inner["request_id"] == nil {
		t.Fatalf("expected handler log to carry identifiers, got %v", inner)
	}
	if completed["status"] != float64(http.StatusTeapot) || completed["tenant_id"] != "school-1" || completed["operator_id"] != "op-1" {
		t.Fatalf("unexpected completion log: %v", completed)
	}
}
