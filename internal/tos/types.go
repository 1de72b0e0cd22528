package tos

// Competency is a coded learning objective (MELC) that quiz items assess.
type Competency struct {
	Code        string `json:"code" yaml:"code"`
	Description string `json:"description" yaml:"description"`
}

// String returns the "CODE: Description" label used in the TOS table.
func (c Competency) String() string {
	if c.Description == "" {
		return c.Code
	}
	return c.Code + ": " + c.Description
}

// AllocationRow is a single line of the Table of Specifications.
type AllocationRow struct {
	ItemNo     int        `json:"item_no"`
	Level      Level      `json:"cognitive_level"`
	Competency Competency `json:"competency"`
	ItemType   ItemType   `json:"item_type"`
	Points     int        `json:"point_value"`
	Remarks    string     `json:"remarks"`
}

// QuizItem is the rendered question for an AllocationRow.
type QuizItem struct {
	ItemNo int    `json:"item_no"`
	Text   string `json:"text"`
	Answer string `json:"answer"`
	Points int    `json:"points"`
}

// TotalPoints sums the point values of rows.
func TotalPoints(rows []AllocationRow) int {
	total := 0
	for _, r := range rows {
		total += r.Points
	}
	return total
}
