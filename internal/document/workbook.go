// Package document renders a generated assessment as an Excel workbook:
// cover, TOS table, TOS summary grid, quiz and answer key.
package document

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/pai-tos/internal/assessment"
	"github.com/p-n-ai/pai-tos/internal/tos"
)

// Sheet names, in workbook order.
const (
	SheetCover     = "Cover"
	SheetTOS       = "TOS"
	SheetSummary   = "Summary"
	SheetQuiz      = "Quiz"
	SheetAnswerKey = "Answer Key"
)

// ContentType is the MIME type of the rendered workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const footer = "Aligned with the Most Essential Learning Competencies (MELCs) – DepEd Order No. 012, s. 2023"

// TOSHeaders are the column titles of the TOS sheet.
var TOSHeaders = []string{"Item No.", "Cognitive Level", "Competency (MELC)", "Item Type", "Point Value", "Remarks"}

// Folio (8.5 in × 13 in) in excelize's paper size table.
const paperFolio = 14

type styles struct {
	title  int
	header int
	cell   int
	wrap   int
	bold   int
}

// Filename returns the download name for an assessment, e.g.
// "TOS_Quiz_Grade_8_Science_Q3.xlsx".
func Filename(meta assessment.Metadata) string {
	parts := []string{"TOS_Quiz"}
	for _, p := range []string{meta.Grade, meta.Subject, meta.Quarter} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, strings.ReplaceAll(p, " ", "_"))
		}
	}
	return strings.Join(parts, "_") + ".xlsx"
}

// Write renders res as an .xlsx workbook to w.
func Write(w io.Writer, res *assessment.Result) error {
	f, err := Build(res)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// Build assembles the workbook for res. The caller must Close it.
func Build(res *assessment.Result) (*excelize.File, error) {
	if res == nil {
		return nil, fmt.Errorf("result is nil")
	}
	if len(res.Rows) != len(res.Items) {
		return nil, fmt.Errorf("%w: %d rows but %d quiz items", tos.ErrInvalidInput, len(res.Rows), len(res.Items))
	}

	f := excelize.NewFile()
	ok := false
	defer func() {
		if !ok {
			f.Close()
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetCover); err != nil {
		return nil, fmt.Errorf("renaming default sheet: %w", err)
	}
	for _, name := range []string{SheetTOS, SheetSummary, SheetQuiz, SheetAnswerKey} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("creating sheet %s: %w", name, err)
		}
	}

	st, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	steps := []func(*excelize.File, *assessment.Result, styles) error{
		writeCover,
		writeTOS,
		writeSummary,
		writeQuiz,
		writeAnswerKey,
	}
	for _, step := range steps {
		if err := step(f, res, st); err != nil {
			return nil, err
		}
	}

	for _, name := range f.GetSheetList() {
		if err := setupPage(f, name); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	ok = true
	return f, nil
}

func newStyles(f *excelize.File) (styles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}

	defs := []*excelize.Style{
		{
			Font:      &excelize.Font{Bold: true, Size: 16},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		},
		{
			Font:      &excelize.Font{Bold: true},
			Border:    border,
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9E1F2"}},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		},
		{
			Border:    border,
			Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
		},
		{
			Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
		},
		{
			Font:      &excelize.Font{Bold: true},
			Alignment: &excelize.Alignment{Vertical: "top"},
		},
	}

	var st styles
	targets := []*int{&st.title, &st.header, &st.cell, &st.wrap, &st.bold}
	for i, d := range defs {
		id, err := f.NewStyle(d)
		if err != nil {
			return styles{}, fmt.Errorf("creating style: %w", err)
		}
		*targets[i] = id
	}
	return st, nil
}

func setupPage(f *excelize.File, sheet string) error {
	size := paperFolio
	orientation := "portrait"
	if err := f.SetPageLayout(sheet, &excelize.PageLayoutOptions{
		Size:        &size,
		Orientation: &orientation,
	}); err != nil {
		return fmt.Errorf("page layout %s: %w", sheet, err)
	}
	if err := f.SetHeaderFooter(sheet, &excelize.HeaderFooterOptions{
		OddFooter: "&C" + footer,
	}); err != nil {
		return fmt.Errorf("footer %s: %w", sheet, err)
	}
	return nil
}

func writeCover(f *excelize.File, res *assessment.Result, st styles) error {
	m := res.Metadata
	lines := []struct {
		text  string
		style int
	}{
		{"DEPARTMENT OF EDUCATION", st.title},
		{"TABLE OF SPECIFICATIONS & ASSESSMENT TOOL", st.title},
		{"", 0},
		{"School: " + m.School, st.bold},
		{"Grade Level: " + m.Grade, 0},
		{"Subject: " + m.Subject, 0},
		{"Quarter: " + m.Quarter, 0},
		{"Prepared by: " + m.Teacher, 0},
		{"Date: " + m.Date, 0},
	}

	if err := f.SetColWidth(SheetCover, "A", "F", 16); err != nil {
		return err
	}
	for i, line := range lines {
		row := i + 1
		first, last := cell("A", row), cell("F", row)
		if err := f.MergeCell(SheetCover, first, last); err != nil {
			return fmt.Errorf("cover row %d: %w", row, err)
		}
		if err := f.SetCellValue(SheetCover, first, line.text); err != nil {
			return err
		}
		style := line.style
		if style == 0 {
			style = st.wrap
		}
		if err := f.SetCellStyle(SheetCover, first, last, style); err != nil {
			return err
		}
	}
	return nil
}

func writeTOS(f *excelize.File, res *assessment.Result, st styles) error {
	widths := []float64{9, 16, 60, 16, 12, 20}
	for i, w := range widths {
		col := columnName(i + 1)
		if err := f.SetColWidth(SheetTOS, col, col, w); err != nil {
			return err
		}
	}

	header := make([]any, len(TOSHeaders))
	for i, h := range TOSHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetTOS, "A1", &header); err != nil {
		return fmt.Errorf("TOS header: %w", err)
	}
	if err := f.SetCellStyle(SheetTOS, "A1", cell("F", 1), st.header); err != nil {
		return err
	}

	for i, r := range res.Rows {
		row := i + 2
		values := []any{r.ItemNo, r.Level.String(), r.Competency.String(), r.ItemType.String(), r.Points, r.Remarks}
		if err := f.SetSheetRow(SheetTOS, cell("A", row), &values); err != nil {
			return fmt.Errorf("TOS row %d: %w", r.ItemNo, err)
		}
	}
	if len(res.Rows) > 0 {
		if err := f.SetCellStyle(SheetTOS, "A2", cell("F", len(res.Rows)+1), st.cell); err != nil {
			return err
		}
	}
	return nil
}

func writeSummary(f *excelize.File, res *assessment.Result, st styles) error {
	s := res.Summary
	header := []any{"Competency (MELC)"}
	for _, l := range tos.Levels {
		header = append(header, l.String())
	}
	header = append(header, "Items", "Points")
	lastCol := columnName(len(header))

	if err := f.SetColWidth(SheetSummary, "A", "A", 60); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetSummary, "B", lastCol, 14); err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetSummary, "A1", &header); err != nil {
		return fmt.Errorf("summary header: %w", err)
	}

	row := 2
	for _, cs := range s.Competencies {
		values := []any{cs.Competency.String()}
		for _, l := range tos.Levels {
			values = append(values, cs.Counts[l])
		}
		values = append(values, cs.Items, cs.Points)
		if err := f.SetSheetRow(SheetSummary, cell("A", row), &values); err != nil {
			return fmt.Errorf("summary row %d: %w", row, err)
		}
		row++
	}

	totals := []any{"Total"}
	for _, l := range tos.Levels {
		totals = append(totals, s.LevelTotals[l])
	}
	totals = append(totals, s.TotalItems, s.TotalPoints)
	if err := f.SetSheetRow(SheetSummary, cell("A", row), &totals); err != nil {
		return fmt.Errorf("summary totals: %w", err)
	}

	if err := f.SetCellStyle(SheetSummary, "A1", cell(lastCol, 1), st.header); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetSummary, "A2", cell(lastCol, row), st.cell); err != nil {
		return err
	}
	return nil
}

func writeQuiz(f *excelize.File, res *assessment.Result, st styles) error {
	if err := f.SetColWidth(SheetQuiz, "A", "A", 6); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetQuiz, "B", "B", 90); err != nil {
		return err
	}
	instructions := fmt.Sprintf("General Instructions: Answer the following. Total Points: %d", tos.TotalPoints(res.Rows))
	if err := f.SetCellValue(SheetQuiz, "A1", instructions); err != nil {
		return err
	}
	if err := f.MergeCell(SheetQuiz, "A1", "B1"); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetQuiz, "A1", "B1", st.bold); err != nil {
		return err
	}
	return writeNumbered(f, SheetQuiz, res.Items, func(it tos.QuizItem) string { return it.Text }, st)
}

func writeAnswerKey(f *excelize.File, res *assessment.Result, st styles) error {
	if err := f.SetColWidth(SheetAnswerKey, "A", "A", 6); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetAnswerKey, "B", "B", 90); err != nil {
		return err
	}
	if err := f.SetCellValue(SheetAnswerKey, "A1", "ANSWER KEY & RUBRICS"); err != nil {
		return err
	}
	if err := f.MergeCell(SheetAnswerKey, "A1", "B1"); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetAnswerKey, "A1", "B1", st.bold); err != nil {
		return err
	}
	return writeNumbered(f, SheetAnswerKey, res.Items, func(it tos.QuizItem) string { return it.Answer }, st)
}

// writeNumbered lists items from row 3 as "N." in column A and text in B.
func writeNumbered(f *excelize.File, sheet string, items []tos.QuizItem, text func(tos.QuizItem) string, st styles) error {
	for i, it := range items {
		row := i + 3
		if err := f.SetCellValue(sheet, cell("A", row), fmt.Sprintf("%d.", it.ItemNo)); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell("B", row), strings.TrimRight(text(it), "\n")); err != nil {
			return err
		}
	}
	if len(items) == 0 {
		return nil
	}
	last := len(items) + 2
	if err := f.SetCellStyle(sheet, "A3", cell("A", last), st.bold); err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "B3", cell("B", last), st.wrap)
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func columnName(n int) string {
	name, err := excelize.ColumnNumberToName(n)
	if err != nil {
		return "A"
	}
	return name
}
