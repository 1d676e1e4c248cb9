package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(ctx context.Context) error {
	return s.err
}

func TestHealthLive(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthLive().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}

func TestHealthReady(t *testing.T) {
	deps := map[string]Pinger{"db": stubPinger{}, "redis": stubPinger{}}
	rec := httptest.NewRecorder()
	HealthReady(deps, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	checks := env.Data.(map[string]any)["checks"].(map[string]any)
	if checks["db"] != "up" || checks["redis"] != "up" {
		t.Fatalf("unexpected checks %v", checks)
	}
}

func TestHealthReadyDependencyDown(t *testing.T) {
	deps := map[string]Pinger{"db": stubPinger{}, "redis": stubPinger{err: errors.New("dial tcp: refused")}}
	rec := httptest.NewRecorder()
	HealthReady(deps, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Success || env.Message != "service not ready" {
		t.Fatalf("unexpected envelope %+v", env)
	}
}
