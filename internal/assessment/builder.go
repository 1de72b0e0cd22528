// Package assessment turns a teacher's request into a TOS with quiz items
// and keeps the results for later download.
package assessment

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/p-n-ai/pai-tos/internal/tos"
)

// ErrNoCompetencies is returned when a request selects no competencies.
var ErrNoCompetencies = fmt.Errorf("%w: select at least one competency", tos.ErrInvalidInput)

// Metadata describes the assessment on the document cover.
type Metadata struct {
	School  string `json:"school"`
	Teacher string `json:"teacher"`
	Grade   string `json:"grade"`
	Subject string `json:"subject"`
	Quarter string `json:"quarter"`
	Date    string `json:"date"`
}

// Request is one "generate" submission.
type Request struct {
	Metadata     Metadata
	Competencies []tos.Competency
	TotalItems   int
}

// Result is a generated TOS with its quiz items.
type Result struct {
	ID           string              `json:"id"`
	Metadata     Metadata            `json:"metadata"`
	Competencies []tos.Competency    `json:"competencies"`
	Rows         []tos.AllocationRow `json:"rows"`
	Items        []tos.QuizItem      `json:"items"`
	Summary      tos.Summary         `json:"summary"`
	CreatedAt    time.Time           `json:"created_at"`
}

// BuilderConfig holds dependencies for the Builder.
type BuilderConfig struct {
	Allocator    tos.Allocator
	Materializer tos.Materializer
}

// Builder runs the allocator and materializer for a request.
type Builder struct {
	allocator    tos.Allocator
	materializer tos.Materializer
}

// NewBuilder creates a Builder. Zero-value config fields use the defaults of
// the tos package.
func NewBuilder(cfg BuilderConfig) *Builder {
	return &Builder{
		allocator:    cfg.Allocator,
		materializer: cfg.Materializer,
	}
}

// Preview allocates without materializing items; used for live previews.
func (b *Builder) Preview(competencies []tos.Competency, totalItems int) (tos.Summary, error) {
	if len(competencies) == 0 {
		return tos.Summary{}, ErrNoCompetencies
	}
	rows, err := b.allocator.Allocate(competencies, totalItems)
	if err != nil {
		return tos.Summary{}, err
	}
	return tos.Summarize(rows), nil
}

// Build generates the TOS rows and quiz items for req.
func (b *Builder) Build(req Request) (*Result, error) {
	if len(req.Competencies) == 0 {
		return nil, ErrNoCompetencies
	}

	rows, err := b.allocator.Allocate(req.Competencies, req.TotalItems)
	if err != nil {
		return nil, fmt.Errorf("allocating items: %w", err)
	}
	items, err := b.materializer.Materialize(rows)
	if err != nil {
		return nil, fmt.Errorf("materializing items: %w", err)
	}

	res := &Result{
		ID:           uuid.NewString(),
		Metadata:     req.Metadata,
		Competencies: append([]tos.Competency{}, req.Competencies...),
		Rows:         rows,
		Items:        items,
		Summary:      tos.Summarize(rows),
		CreatedAt:    time.Now().UTC(),
	}

	slog.Info("assessment generated",
		"id", res.ID,
		"subject", req.Metadata.Subject,
		"grade", req.Metadata.Grade,
		"competencies", len(req.Competencies),
		"items", len(rows),
		"points", res.Summary.TotalPoints,
		"correction", b.allocator.Correction.String(),
	)
	return res, nil
}
