package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func healthy(context.Context) error { return nil }

func readiness(t *testing.T, h *HealthHandler) (int, map[string]string) {
	t.Helper()

	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	return rec.Code, body
}

func TestHealthHandler_Liveness(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(pingerFunc(healthy), nil).Liveness(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealthHandler_ReadinessWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	code, body := readiness(t, NewHealthHandler(pingerFunc(healthy), client))
	if code != http.StatusOK || body["redis"] != "ok" || body["status"] != "ready" {
		t.Fatalf("unexpected readiness: %d %v", code, body)
	}

	mr.Close()

	code, body = readiness(t, NewHealthHandler(pingerFunc(healthy), client))
	if code != http.StatusOK || body["status"] != "degraded" {
		t.Fatalf("expected degraded readiness without redis, got %d %v", code, body)
	}
}

func TestHealthHandler_ReadinessRedisDisabled(t *testing.T) {
	code, body := readiness(t, NewHealthHandler(pingerFunc(healthy), nil))
	if code != http.StatusOK || body["redis"] != "disabled" {
		t.Fatalf("unexpected readiness: %d %v", code, body)
	}
}

func TestHealthHandler_ReadinessDatabaseDown(t *testing.T) {
	down := pingerFunc(func(context.Context) error { return errors.New("connection refused") })

	code, body := readiness(t, NewHealthHandler(down, nil))
	if code != http.StatusServiceUnavailable || body["error"] != "postgres unhealthy" {
		t.Fatalf("unexpected readiness: %d %v", code, body)
	}
}
