// Package app builds the shared runtime pieces both binaries start from.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/p-n-ai/pai-tos/internal/assessment"
	"github.com/p-n-ai/pai-tos/internal/curriculum"
	"github.com/p-n-ai/pai-tos/internal/platform/config"
	"github.com/p-n-ai/pai-tos/internal/platform/database"
	"github.com/p-n-ai/pai-tos/internal/tos"
)

// NewAllocator returns the allocator described by cfg: the weights file, or
// the default distribution, and the rounding correction.
func NewAllocator(cfg config.AllocationConfig) (tos.Allocator, error) {
	weights, err := tos.LoadWeights(cfg.WeightsPath)
	if err != nil {
		return tos.Allocator{}, fmt.Errorf("loading weights: %w", err)
	}
	correction := tos.CorrectionSymmetric
	if cfg.LegacyRounding {
		correction = tos.CorrectionLegacy
	}
	return tos.Allocator{Weights: weights, Correction: correction}, nil
}

// NewBuilder returns an assessment builder for cfg.
func NewBuilder(cfg config.AllocationConfig) (*assessment.Builder, error) {
	alloc, err := NewAllocator(cfg)
	if err != nil {
		return nil, err
	}
	return assessment.NewBuilder(assessment.BuilderConfig{Allocator: alloc}), nil
}

// OpenSource picks the MELC bank: PostgreSQL when a database URL is set,
// then a YAML directory, then the bank compiled into the binary. The returned
// DB is nil unless PostgreSQL is used; the caller closes it.
func OpenSource(ctx context.Context, cfg *config.Config) (curriculum.Source, *database.DB, error) {
	if cfg.Database.URL != "" {
		db, err := database.New(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		src, err := curriculum.NewPostgresSource(db.Pool)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		slog.Info("using PostgreSQL MELC bank")
		return src, db, nil
	}

	if cfg.CurriculumPath != "" {
		loader, err := curriculum.NewLoader(cfg.CurriculumPath)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("using MELC bank directory", "path", cfg.CurriculumPath)
		return loader, nil, nil
	}

	loader, err := curriculum.Default()
	if err != nil {
		return nil, nil, err
	}
	return loader, nil, nil
}
