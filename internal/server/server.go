// Package server exposes the MELC catalog, assessment generation and the
// live allocation preview over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/p-n-ai/pai-tos/internal/assessment"
	"github.com/p-n-ai/pai-tos/internal/curriculum"
	"github.com/p-n-ai/pai-tos/internal/tos"
)

const (
	maxBodyBytes = 1 << 20
	checkTimeout = 2 * time.Second
)

// HealthChecker is implemented by dependencies that report readiness, such
// as the database pool and the cache client.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Config holds dependencies and limits for the Server.
type Config struct {
	Source  curriculum.Source
	Builder *assessment.Builder
	Store   assessment.Store
	// Events records generation and download events; nil disables them.
	Events  assessment.EventLogger

	DefaultItems int
	MinItems     int
	MaxItems     int

	// Checks are consulted by /readyz, keyed by a short name.
	Checks map[string]HealthChecker
}

// Server serves the TOS generator API.
type Server struct {
	source  curriculum.Source
	builder *assessment.Builder
	store   assessment.Store
	events  assessment.EventLogger
	checks  map[string]HealthChecker
	schema  *gojsonschema.Schema

	defaultItems int
	minItems     int
	maxItems     int
}

// New creates a Server.
func New(cfg Config) (*Server, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("curriculum source is required")
	}
	if cfg.Builder == nil {
		return nil, fmt.Errorf("builder is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.MinItems < 1 || cfg.MaxItems < cfg.MinItems {
		return nil, fmt.Errorf("invalid item limits [%d, %d]", cfg.MinItems, cfg.MaxItems)
	}
	if cfg.DefaultItems < cfg.MinItems || cfg.DefaultItems > cfg.MaxItems {
		return nil, fmt.Errorf("default items %d outside [%d, %d]", cfg.DefaultItems, cfg.MinItems, cfg.MaxItems)
	}

	schema, err := newRequestSchema(cfg.MinItems, cfg.MaxItems)
	if err != nil {
		return nil, err
	}
	events := cfg.Events
	if events == nil {
		events = assessment.NopEventLogger{}
	}

	return &Server{
		source:       cfg.Source,
		builder:      cfg.Builder,
		store:        cfg.Store,
		events:       events,
		checks:       cfg.Checks,
		schema:       schema,
		defaultItems: cfg.DefaultItems,
		minItems:     cfg.MinItems,
		maxItems:     cfg.MaxItems,
	}, nil
}

// Handler returns the HTTP router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("GET /api/subjects", s.handleSubjects)
	mux.HandleFunc("GET /api/grades", s.handleGrades)
	mux.HandleFunc("GET /api/quarters", s.handleQuarters)
	mux.HandleFunc("GET /api/competencies", s.handleCompetencies)

	mux.HandleFunc("POST /api/assessments", s.handleCreateAssessment)
	mux.HandleFunc("GET /api/assessments/{id}", s.handleGetAssessment)
	mux.HandleFunc("GET /api/assessments/{id}/document", s.handleDocument)

	mux.HandleFunc("GET /ws/preview", s.handlePreview)
	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	failed := map[string]string{}
	for _, name := range names {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		err := s.checks[name].HealthCheck(ctx)
		cancel()
		if err != nil {
			slog.Warn("readiness check failed", "check", name, "error", err)
			failed[name] = err.Error()
		}
	}

	if len(failed) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "unavailable",
			"checks": failed,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type errorResponse struct {
	Error string `json:"error"`
}

// logEvent records an analytics event. Failures are logged and never fail
// the request.
func (s *Server) logEvent(ctx context.Context, event assessment.Event) {
	if err := s.events.LogEvent(ctx, event); err != nil {
		slog.Warn("logging event failed", "type", event.EventType, "assessment_id", event.AssessmentID, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("writing response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeFailure maps domain errors to status codes. Invalid input is the
// client's fault; anything else is logged and reported as a 500.
func writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tos.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, assessment.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		slog.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
