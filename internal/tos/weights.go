package tos

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

const weightSumTolerance = 1e-6

// Weights maps each cognitive level to its share of the total item count.
type Weights map[Level]float64

// DefaultWeights returns the standard six-level distribution.
func DefaultWeights() Weights {
	return Weights{
		Remembering:   0.20,
		Understanding: 0.20,
		Applying:      0.25,
		Analyzing:     0.15,
		Evaluating:    0.10,
		Creating:      0.10,
	}
}

// Validate checks that every level has a non-negative weight and that the
// weights sum to 1.
func (w Weights) Validate() error {
	if len(w) != len(Levels) {
		return invalidf("weights must cover all %d cognitive levels, got %d", len(Levels), len(w))
	}
	sum := 0.0
	for _, l := range Levels {
		v, ok := w[l]
		if !ok {
			return invalidf("missing weight for %s", l)
		}
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return invalidf("weight for %s must be a non-negative number, got %v", l, v)
		}
		sum += v
	}
	if math.Abs(sum-1) > weightSumTolerance {
		return invalidf("weights must sum to 1, got %.4f", sum)
	}
	return nil
}

// ParseWeights decodes a YAML mapping of level name to proportion, e.g.
//
//	remembering: 0.3
//	understanding: 0.3
//	applying: 0.2
//	analyzing: 0.1
//	evaluating: 0.05
//	creating: 0.05
func ParseWeights(data []byte) (Weights, error) {
	var raw map[string]float64
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: decoding weights: %v", ErrInvalidInput, err)
	}

	w := make(Weights, len(raw))
	for name, v := range raw {
		l, err := ParseLevel(name)
		if err != nil {
			return nil, err
		}
		w[l] = v
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// LoadWeights reads a weights file from disk. An empty path yields the
// default distribution.
func LoadWeights(path string) (Weights, error) {
	if path == "" {
		return DefaultWeights(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading weights file: %w", err)
	}
	return ParseWeights(data)
}
