package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/p-n-ai/pai-tos/internal/assessment"
	"github.com/p-n-ai/pai-tos/internal/curriculum"
	"github.com/p-n-ai/pai-tos/internal/document"
	"github.com/p-n-ai/pai-tos/internal/tos"
)

// createRequest is the body of POST /api/assessments. Competencies are taken
// from the first non-empty of Competencies, Codes and FreeText.
type createRequest struct {
	Metadata     assessment.Metadata `json:"metadata"`
	TotalItems   int                 `json:"total_items"`
	Competencies []tos.Competency    `json:"competencies"`
	Codes        []string            `json:"codes"`
	FreeText     string              `json:"free_text"`
}

func (s *Server) handleCreateAssessment(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "reading request body: "+err.Error())
		return
	}

	if err := validateBody(s.schema, body); err != nil {
		writeFailure(w, err)
		return
	}
	var req createRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "decoding request: "+err.Error())
		return
	}

	comps, err := s.resolveCompetencies(r.Context(), req)
	if err != nil {
		writeFailure(w, err)
		return
	}

	total := req.TotalItems
	if total == 0 {
		total = s.defaultItems
	}

	res, err := s.builder.Build(assessment.Request{
		Metadata:     req.Metadata,
		Competencies: comps,
		TotalItems:   total,
	})
	if err != nil {
		writeFailure(w, err)
		return
	}
	if err := s.store.Save(r.Context(), res); err != nil {
		writeFailure(w, fmt.Errorf("storing assessment: %w", err))
		return
	}

	s.logEvent(r.Context(), assessment.GeneratedEvent(res))

	w.Header().Set("Location", "/api/assessments/"+res.ID)
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) resolveCompetencies(ctx context.Context, req createRequest) ([]tos.Competency, error) {
	switch {
	case len(req.Competencies) > 0:
		return req.Competencies, nil
	case len(req.Codes) > 0:
		m := req.Metadata
		if m.Subject == "" || m.Grade == "" || m.Quarter == "" {
			return nil, fmt.Errorf("%w: codes require metadata subject, grade and quarter", tos.ErrInvalidInput)
		}
		bank, err := s.source.Competencies(ctx, m.Subject, m.Grade, m.Quarter)
		if err != nil {
			return nil, fmt.Errorf("loading competencies: %w", err)
		}
		return curriculum.Select(bank, req.Codes)
	default:
		return curriculum.ParseFreeForm(req.FreeText), nil
	}
}

func (s *Server) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	res, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	res, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, err)
		return
	}

	var buf bytes.Buffer
	if err := document.Write(&buf, res); err != nil {
		writeFailure(w, fmt.Errorf("rendering workbook %s: %w", res.ID, err))
		return
	}

	filename := document.Filename(res.Metadata)
	s.logEvent(r.Context(), assessment.Event{
		AssessmentID: res.ID,
		EventType:    assessment.EventDownloaded,
		Data:         map[string]any{"filename": filename, "bytes": buf.Len()},
	})

	w.Header().Set("Content-Type", document.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("sending workbook", "id", res.ID, "error", err)
	}
}
