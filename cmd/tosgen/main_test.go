package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/pai-tos/internal/document"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("TOS_DATABASE_URL", "")
	t.Setenv("TOS_CURRICULUM_PATH", "")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.ExecuteContext(t.Context())
	return out.String(), err
}

func openXLSX(t *testing.T, path string) *excelize.File {
	t.Helper()
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile(%s) error = %v", path, err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestGenerate_FreeFormFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "melcs.txt")
	text := "M7NS-Ia-1: Describes well-defined sets\nM7NS-Ib-1: Solves problems involving sets\n"
	if err := os.WriteFile(in, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out", "quiz.xlsx")

	stdout, err := runCLI(t, "", "generate", "--file", in, "--items", "30", "--out", out, "--school", "Tiring NHS")
	if err != nil {
		t.Fatalf("generate error = %v\n%s", err, stdout)
	}
	if !strings.Contains(stdout, "Wrote "+out) {
		t.Errorf("output missing path:\n%s", stdout)
	}
	if !strings.Contains(stdout, "M7NS-Ib-1") {
		t.Errorf("summary missing competency:\n%s", stdout)
	}

	f := openXLSX(t, out)
	instr, _ := f.GetCellValue(document.SheetQuiz, "A1")
	if !strings.Contains(instr, "Total Points: 66") {
		t.Errorf("quiz instructions = %q", instr)
	}
	school, _ := f.GetCellValue(document.SheetCover, "A4")
	if school != "School: Tiring NHS" {
		t.Errorf("cover school = %q", school)
	}
}

func TestGenerate_Stdin(t *testing.T) {
	out := filepath.Join(t.TempDir(), "quiz.xlsx")

	if _, err := runCLI(t, "S8FE-IIIa-15: Waves\n", "generate", "--file", "-", "--items", "10", "--out", out); err != nil {
		t.Fatalf("generate error = %v", err)
	}
	f := openXLSX(t, out)
	rows, err := f.GetRows(document.SheetTOS)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 11 {
		t.Errorf("TOS rows = %d, want 11", len(rows))
	}
}

func TestGenerate_FromBank(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	stdout, err := runCLI(t, "",
		"generate",
		"--subject", "Science", "--grade", "Grade 8", "--quarter", "Q3",
		"--codes", "S8FE-IIIa-15,S8FE-IIIb-16",
	)
	if err != nil {
		t.Fatalf("generate error = %v\n%s", err, stdout)
	}

	want := "TOS_Quiz_Grade_8_Science_Q3.xlsx"
	if _, err := os.Stat(filepath.Join(dir, want)); err != nil {
		t.Errorf("default output %s not written: %v", want, err)
	}
	if strings.Contains(stdout, "S8FE-IIIc-17") {
		t.Errorf("unselected competency in summary:\n%s", stdout)
	}
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"items out of range", []string{"generate", "--file", "-", "--items", "5"}, "--items must be within"},
		{"file and codes", []string{"generate", "--file", "-", "--codes", "A"}, "not both"},
		{"no source", []string{"generate"}, "are required without --file"},
		{"unknown code", []string{"generate", "--subject", "Science", "--grade", "Grade 8", "--quarter", "Q3", "--codes", "NOPE"}, "unknown competency code"},
		{"empty quarter", []string{"generate", "--subject", "Art", "--grade", "Grade 1", "--quarter", "Q1"}, "no competencies found"},
		{"no parsed competencies", []string{"generate", "--file", "-"}, "select at least one competency"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, "no colon here\n", tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestCompetencies(t *testing.T) {
	stdout, err := runCLI(t, "", "competencies", "--subject", "Mathematics")
	if err != nil {
		t.Fatalf("competencies error = %v", err)
	}
	for _, want := range []string{"Mathematics / Grade 7 / Q1", "M7NS-Ia-1", "M8AL-Ic-1", "7 competencies"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
	if strings.Contains(stdout, "S8FE") {
		t.Errorf("output contains other subjects:\n%s", stdout)
	}
	if strings.Index(stdout, "Grade 7") > strings.Index(stdout, "Grade 8") {
		t.Errorf("grades out of order:\n%s", stdout)
	}
}

func TestSeed_RequiresDatabase(t *testing.T) {
	_, err := runCLI(t, "", "seed")
	if err == nil || !strings.Contains(err.Error(), "TOS_DATABASE_URL") {
		t.Errorf("seed error = %v, want TOS_DATABASE_URL required", err)
	}
}
