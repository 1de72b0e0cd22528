package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/p-n-ai/pai-tos/internal/platform/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return cfg
}

func TestSetup_Defaults(t *testing.T) {
	cfg := testConfig(t)

	handler, cleanup, err := setup(t.Context(), cfg)
	if err != nil {
		t.Fatalf("setup() error = %v", err)
	}
	defer cleanup()

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"healthz", "/healthz", http.StatusOK},
		{"readyz", "/readyz", http.StatusOK},
		{"subjects", "/api/subjects", http.StatusOK},
		{"unknown assessment", "/api/assessments/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestSetup_BadWeightsPath(t *testing.T) {
	cfg := testConfig(t)
	cfg.Allocation.WeightsPath = t.TempDir() + "/missing.yaml"

	if _, cleanup, err := setup(t.Context(), cfg); err == nil {
		cleanup()
		t.Error("setup() should fail for a missing weights file")
	}
}

func TestSetup_UnreachableCache(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping connection test in short mode")
	}
	cfg := testConfig(t)
	cfg.Cache.URL = "redis://127.0.0.1:1"

	if _, cleanup, err := setup(t.Context(), cfg); err == nil {
		cleanup()
		t.Error("setup() should fail for an unreachable cache")
	}
}
