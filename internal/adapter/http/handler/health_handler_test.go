package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func okPinger() Pinger {
	return PingerFunc(func(ctx context.Context) error { return nil })
}

func failingPinger() Pinger {
	return PingerFunc(func(ctx context.Context) error { return errors.New("connection refused") })
}

func TestHealthHandler_Liveness(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(nil, nil).Liveness(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	tests := []struct {
		name     string
		postgres Pinger
		redis    Pinger
		expected int
	}{
		{"all healthy", okPinger(), okPinger(), http.StatusOK},
		{"redis not configured", okPinger(), nil, http.StatusOK},
		{"postgres down", failingPinger(), okPinger(), http.StatusServiceUnavailable},
		{"redis down", okPinger(), failingPinger(), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewHealthHandler(tt.postgres, tt.redis).Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			if rec.Code != tt.expected {
				t.Fatalf("expected %d, got %d: %s", tt.expected, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHealthHandler_ReadinessReportsComponents(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(okPinger(), okPinger()).Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if body["postgres"] != "ok" || body["redis"] != "ok" || body["status"] != "ready" {
		t.Fatalf("unexpected body %+v", body)
	}
}
