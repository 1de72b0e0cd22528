package curriculum_test

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/p-n-ai/pai-tos/internal/curriculum"
)

func TestLoader_LoadBank(t *testing.T) {
	dir := setupTestBank(t)

	loader, err := curriculum.NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	subjects, err := loader.Subjects(context.Background())
	if err != nil {
		t.Fatalf("Subjects() error = %v", err)
	}
	if !reflect.DeepEqual(subjects, []string{"Mathematics", "Science"}) {
		t.Errorf("Subjects() = %v, want [Mathematics Science]", subjects)
	}
}

func TestLoader_GradesAndQuartersSorted(t *testing.T) {
	dir := setupTestBank(t)

	loader, err := curriculum.NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	grades, _ := loader.Grades(context.Background(), "Mathematics")
	if !reflect.DeepEqual(grades, []string{"Grade 7", "Grade 10"}) {
		t.Errorf("Grades() = %v, want [Grade 7 Grade 10]", grades)
	}

	quarters, _ := loader.Quarters(context.Background(), "Mathematics", "Grade 7")
	if !reflect.DeepEqual(quarters, []string{"Q1", "Q2"}) {
		t.Errorf("Quarters() = %v, want [Q1 Q2]", quarters)
	}
}

func TestLoader_Competencies(t *testing.T) {
	dir := setupTestBank(t)

	loader, err := curriculum.NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	comps, err := loader.Competencies(context.Background(), "Mathematics", "Grade 7", "Q1")
	if err != nil {
		t.Fatalf("Competencies() error = %v", err)
	}
	if len(comps) != 2 {
		t.Fatalf("len(Competencies()) = %d, want 2", len(comps))
	}
	if comps[0].Code != "M7NS-Ia-1" || comps[1].Code != "M7NS-Ib-1" {
		t.Errorf("Competencies() codes = %s, %s; want file order", comps[0].Code, comps[1].Code)
	}

	// Mutating the returned slice must not leak into the bank.
	comps[0].Code = "changed"
	again, _ := loader.Competencies(context.Background(), "Mathematics", "Grade 7", "Q1")
	if again[0].Code != "M7NS-Ia-1" {
		t.Error("Competencies() should return a copy")
	}
}

func TestLoader_UnknownQuarter(t *testing.T) {
	dir := setupTestBank(t)

	loader, err := curriculum.NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	comps, err := loader.Competencies(context.Background(), "History", "Grade 7", "Q1")
	if err != nil {
		t.Fatalf("Competencies() error = %v", err)
	}
	if len(comps) != 0 {
		t.Errorf("len(Competencies()) = %d, want 0", len(comps))
	}
}

func TestLoader_SkipsInvalidAndForeignYAML(t *testing.T) {
	dir := setupTestBank(t)

	os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("subject: [unterminated"), 0o644)
	os.WriteFile(filepath.Join(dir, "weights.yaml"), []byte("remembering: 0.2\n"), 0o644)
	os.WriteFile(filepath.Join(dir, "README.md"), []byte("# bank"), 0o644)

	loader, err := curriculum.NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	if got := len(loader.All()); got != 4 {
		t.Errorf("len(All()) = %d, want 4", got)
	}
}

func TestLoader_EmptyDir(t *testing.T) {
	loader, err := curriculum.NewLoader(t.TempDir())
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	subjects, _ := loader.Subjects(context.Background())
	if len(subjects) != 0 {
		t.Errorf("Subjects() = %v, want empty", subjects)
	}
}

func TestDefault_EmbeddedBank(t *testing.T) {
	loader, err := curriculum.Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	subjects, _ := loader.Subjects(context.Background())
	if !reflect.DeepEqual(subjects, []string{"English", "Mathematics", "Science"}) {
		t.Errorf("Subjects() = %v", subjects)
	}

	comps, _ := loader.Competencies(context.Background(), "Science", "Grade 8", "Q3")
	if len(comps) != 3 {
		t.Fatalf("len(Competencies(Science, Grade 8, Q3)) = %d, want 3", len(comps))
	}
	if comps[0].Code != "S8FE-IIIa-15" {
		t.Errorf("first code = %q, want S8FE-IIIa-15", comps[0].Code)
	}
}

func setupTestBank(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	mathDir := filepath.Join(dir, "mathematics")
	os.MkdirAll(mathDir, 0o755)

	os.WriteFile(filepath.Join(mathDir, "g7-q1.yaml"), []byte(`
subject: Mathematics
grade: Grade 7
quarter: Q1
competencies:
  - code: M7NS-Ia-1
    description: "Describes well-defined sets, subsets, universal set, and the null set and cardinality of sets."
  - code: M7NS-Ib-1
    description: "Solves problems involving sets."
  - code: ""
    description: "No code, skipped"
`), 0o644)

	os.WriteFile(filepath.Join(mathDir, "g7-q2.yml"), []byte(`
subject: Mathematics
grade: Grade 7
quarter: Q2
competencies:
  - code: M7NS-IIa-1
    description: "Expresses rational numbers from fraction form to decimal form and vice versa."
`), 0o644)

	os.WriteFile(filepath.Join(mathDir, "g10-q1.yaml"), []byte(`
subject: Mathematics
grade: Grade 10
quarter: Q1
competencies:
  - code: M10AL-Ia-1
    description: "Generates patterns."
`), 0o644)

	os.WriteFile(filepath.Join(dir, "science-g8-q3.yaml"), []byte(`
subject: Science
grade: Grade 8
quarter: Q3
competencies:
  - code: S8FE-IIIa-15
    description: "Explain how different types of waves form and behave."
`), 0o644)

	return dir
}
