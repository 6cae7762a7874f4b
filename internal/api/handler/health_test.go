package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func TestHealthHandler_Liveness(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/health", "", nil)
	if err := NewHealthHandler().Liveness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadinessHandler(t *testing.T) {
	ok := DependencyCheck{Name: "redis", Ping: func(context.Context) error { return nil }}
	down := DependencyCheck{Name: "mongodb", Ping: func(context.Context) error { return errors.New("connection refused") }}

	t.Run("all healthy", func(t *testing.T) {
		c, rec := newContext(http.MethodGet, "/health/ready", "", nil)
		if err := NewReadinessHandler(ok).Readiness(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("no dependencies", func(t *testing.T) {
		c, rec := newContext(http.MethodGet, "/health/ready", "", nil)
		if err := NewReadinessHandler().Readiness(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("one down", func(t *testing.T) {
		c, rec := newContext(http.MethodGet, "/health/ready", "", nil)
		if err := NewReadinessHandler(ok, down).Readiness(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}

		var resp readinessResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		if resp.Status != "degraded" || resp.Dependencies["mongodb"].Status != "unhealthy" || resp.Dependencies["redis"].Status != "ok" {
			t.Fatalf("unexpected body: %+v", resp)
		}
	})
}
