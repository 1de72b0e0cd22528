package tos

// CompetencySummary is one row of the two-way TOS grid.
type CompetencySummary struct {
	Competency Competency    `json:"competency"`
	Counts     map[Level]int `json:"counts"`
	Items      int           `json:"items"`
	Points     int           `json:"points"`
}

// Summary is the competency × cognitive level grid with totals.
type Summary struct {
	Competencies []CompetencySummary `json:"competencies"`
	LevelTotals  map[Level]int       `json:"level_totals"`
	TotalItems   int                 `json:"total_items"`
	TotalPoints  int                 `json:"total_points"`
}

// Summarize groups rows by competency, in order of first appearance.
func Summarize(rows []AllocationRow) Summary {
	s := Summary{LevelTotals: make(map[Level]int, len(Levels))}
	for _, l := range Levels {
		s.LevelTotals[l] = 0
	}

	index := make(map[Competency]int)
	for _, r := range rows {
		i, ok := index[r.Competency]
		if !ok {
			i = len(s.Competencies)
			index[r.Competency] = i
			counts := make(map[Level]int, len(Levels))
			for _, l := range Levels {
				counts[l] = 0
			}
			s.Competencies = append(s.Competencies, CompetencySummary{
				Competency: r.Competency,
				Counts:     counts,
			})
		}

		cs := &s.Competencies[i]
		cs.Counts[r.Level]++
		cs.Items++
		cs.Points += r.Points

		s.LevelTotals[r.Level]++
		s.TotalItems++
		s.TotalPoints += r.Points
	}
	return s
}
