// Package curriculum provides the MELC banks competencies are selected from:
// YAML files on disk or embedded in the binary, a PostgreSQL table, and
// free-form "CODE: Description" text.
package curriculum

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/p-n-ai/pai-tos/internal/tos"
)

//go:embed melcs/*.yaml
var embeddedBank embed.FS

// Loader loads and caches a YAML MELC bank.
type Loader struct {
	// subject -> grade -> quarter -> competencies
	bank map[string]map[string]map[string][]tos.Competency
	mu   sync.RWMutex
}

// NewLoader loads every bank file under rootDir.
func NewLoader(rootDir string) (*Loader, error) {
	return NewLoaderFS(os.DirFS(rootDir))
}

// Default loads the MELC bank compiled into the binary.
func Default() (*Loader, error) {
	sub, err := fs.Sub(embeddedBank, "melcs")
	if err != nil {
		return nil, fmt.Errorf("opening embedded bank: %w", err)
	}
	return NewLoaderFS(sub)
}

// NewLoaderFS loads every .yaml/.yml file in fsys. Files are read in lexical
// order, so entries for the same quarter spread over several files keep a
// stable order.
func NewLoaderFS(fsys fs.FS) (*Loader, error) {
	l := &Loader{
		bank: make(map[string]map[string]map[string][]tos.Competency),
	}

	if err := l.loadAll(fsys); err != nil {
		return nil, fmt.Errorf("loading MELC bank: %w", err)
	}

	slog.Info("MELC bank loaded", "subjects", len(l.bank), "competencies", l.count())
	return l, nil
}

func (l *Loader) Subjects(_ context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return sortedKeys(l.bank), nil
}

func (l *Loader) Grades(_ context.Context, subject string) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return sortedKeys(l.bank[subject]), nil
}

func (l *Loader) Quarters(_ context.Context, subject, grade string) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return sortedKeys(l.bank[subject][grade]), nil
}

// Competencies returns a copy of the quarter's MELCs; unknown keys yield an
// empty list.
func (l *Loader) Competencies(_ context.Context, subject, grade, quarter string) ([]tos.Competency, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	comps := l.bank[subject][grade][quarter]
	return append([]tos.Competency{}, comps...), nil
}

// All returns every loaded quarter, sorted by subject, grade and quarter.
func (l *Loader) All() []Quarter {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Quarter
	for _, subject := range sortedKeys(l.bank) {
		for _, grade := range sortedKeys(l.bank[subject]) {
			for _, quarter := range sortedKeys(l.bank[subject][grade]) {
				out = append(out, Quarter{
					Subject:      subject,
					Grade:        grade,
					Quarter:      quarter,
					Competencies: append([]tos.Competency{}, l.bank[subject][grade][quarter]...),
				})
			}
		}
	}
	return out
}

func (l *Loader) loadAll(fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
			return nil
		}
		return l.loadQuarter(fsys, path)
	})
}

func (l *Loader) loadQuarter(fsys fs.FS, path string) error {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return err
	}

	var q Quarter
	if err := yaml.Unmarshal(data, &q); err != nil {
		slog.Warn("skipping invalid MELC YAML", "path", path, "error", err)
		return nil
	}

	if q.Subject == "" || q.Grade == "" || q.Quarter == "" {
		return nil // Not a bank file
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	grades, ok := l.bank[q.Subject]
	if !ok {
		grades = make(map[string]map[string][]tos.Competency)
		l.bank[q.Subject] = grades
	}
	quarters, ok := grades[q.Grade]
	if !ok {
		quarters = make(map[string][]tos.Competency)
		grades[q.Grade] = quarters
	}
	for _, c := range q.Competencies {
		if c.Code == "" {
			slog.Warn("skipping MELC without code", "path", path)
			continue
		}
		quarters[q.Quarter] = append(quarters[q.Quarter], c)
	}
	return nil
}

func (l *Loader) count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := 0
	for _, grades := range l.bank {
		for _, quarters := range grades {
			for _, comps := range quarters {
				n += len(comps)
			}
		}
	}
	return n
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return naturalLess(keys[i], keys[j]) })
	return keys
}

// naturalLess orders "Grade 7" before "Grade 10" and "Q2" before "Q10".
func naturalLess(a, b string) bool {
	pa, na, okA := splitNumericSuffix(a)
	pb, nb, okB := splitNumericSuffix(b)
	if okA && okB && pa == pb && na != nb {
		return na < nb
	}
	return a < b
}

func splitNumericSuffix(s string) (string, int, bool) {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	if i == len(s) {
		return s, 0, false
	}
	n, err := strconv.Atoi(s[i:])
	if err != nil {
		return s, 0, false
	}
	return s[:i], n, true
}
