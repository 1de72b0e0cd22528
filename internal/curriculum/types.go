package curriculum

import (
	"context"

	"github.com/p-n-ai/pai-tos/internal/tos"
)

// Quarter is one MELC bank file: the competencies for a subject, grade and
// quarter, in curriculum order.
type Quarter struct {
	Subject      string           `yaml:"subject"`
	Grade        string           `yaml:"grade"`
	Quarter      string           `yaml:"quarter"`
	Competencies []tos.Competency `yaml:"competencies"`
}

// Source looks up MELCs by subject, grade and quarter.
type Source interface {
	Subjects(ctx context.Context) ([]string, error)
	Grades(ctx context.Context, subject string) ([]string, error)
	Quarters(ctx context.Context, subject, grade string) ([]string, error)
	Competencies(ctx context.Context, subject, grade, quarter string) ([]tos.Competency, error)
}
