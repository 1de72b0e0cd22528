package tos

import "math"

// Correction selects how rounding remainders are reconciled.
type Correction int

const (
	// CorrectionSymmetric adds a shortfall to Applying and trims an excess
	// starting at Creating, at both the global and per-competency stage. The
	// output always has exactly totalItems rows.
	CorrectionSymmetric Correction = iota
	// CorrectionLegacy keeps the historical rounding: a global excess is
	// subtracted from Creating and a per-competency excess is left in place,
	// so the output can exceed totalItems.
	CorrectionLegacy
)

func (c Correction) String() string {
	switch c {
	case CorrectionSymmetric:
		return "symmetric"
	case CorrectionLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// Allocator distributes items across cognitive levels and competencies.
// The zero value uses DefaultWeights and CorrectionSymmetric.
type Allocator struct {
	Weights    Weights
	Correction Correction
}

// Allocate runs the Allocator with the given weights, or DefaultWeights when
// weights is nil.
func Allocate(competencies []Competency, totalItems int, weights Weights) ([]AllocationRow, error) {
	return Allocator{Weights: weights}.Allocate(competencies, totalItems)
}

// Allocate returns the TOS rows for competencies, numbered from 1 in
// competency order, then level order.
func (a Allocator) Allocate(competencies []Competency, totalItems int) ([]AllocationRow, error) {
	if len(competencies) == 0 {
		return nil, invalidf("at least one competency is required")
	}
	if totalItems < 1 {
		return nil, invalidf("total items must be at least 1, got %d", totalItems)
	}
	weights := a.Weights
	if weights == nil {
		weights = DefaultWeights()
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	if a.Correction != CorrectionSymmetric && a.Correction != CorrectionLegacy {
		return nil, invalidf("unknown correction mode %d", int(a.Correction))
	}

	levelCounts := a.levelCounts(weights, totalItems)
	shares := competencyShares(len(competencies), totalItems)

	rows := make([]AllocationRow, 0, totalItems)
	itemNo := 1
	for i, comp := range competencies {
		breakdown := a.breakdown(levelCounts, shares[i], totalItems)
		for _, l := range Levels {
			for n := 0; n < breakdown[l]; n++ {
				t := l.ItemType()
				rows = append(rows, AllocationRow{
					ItemNo:     itemNo,
					Level:      l,
					Competency: comp,
					ItemType:   t,
					Points:     t.Points(),
				})
				itemNo++
			}
		}
	}
	return rows, nil
}

// levelCounts computes the global per-level item counts.
func (a Allocator) levelCounts(weights Weights, totalItems int) map[Level]int {
	counts := make(map[Level]int, len(Levels))
	sum := 0
	for _, l := range Levels {
		counts[l] = int(math.RoundToEven(weights[l] * float64(totalItems)))
		sum += counts[l]
	}

	diff := totalItems - sum
	switch {
	case diff > 0:
		counts[Applying] += diff
	case diff < 0 && a.Correction == CorrectionLegacy:
		counts[Creating] += diff
	case diff < 0:
		trimExcess(counts, -diff)
	}
	return counts
}

// breakdown splits one competency's items across levels in proportion to the
// global level counts.
func (a Allocator) breakdown(levelCounts map[Level]int, compItems, totalItems int) map[Level]int {
	shares := make(map[Level]int, len(Levels))
	sum := 0
	for _, l := range Levels {
		shares[l] = int(math.RoundToEven(float64(levelCounts[l]*compItems) / float64(totalItems)))
		sum += shares[l]
	}

	diff := compItems - sum
	switch {
	case diff > 0:
		shares[Applying] += diff
	case diff < 0 && a.Correction == CorrectionSymmetric:
		trimExcess(shares, -diff)
	}
	return shares
}

// competencyShares splits totalItems across n competencies; the first
// totalItems%n competencies receive one extra item.
func competencyShares(n, totalItems int) []int {
	shares := make([]int, n)
	base, extra := totalItems/n, totalItems%n
	for i := range shares {
		shares[i] = base
		if i < extra {
			shares[i]++
		}
	}
	return shares
}

// trimExcess removes excess items starting at Creating and moving down the
// level order, never leaving a level negative.
func trimExcess(counts map[Level]int, excess int) {
	for i := len(Levels) - 1; i >= 0 && excess > 0; i-- {
		l := Levels[i]
		take := min(counts[l], excess)
		if take <= 0 {
			continue
		}
		counts[l] -= take
		excess -= take
	}
}
