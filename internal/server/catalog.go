package server

import (
	"net/http"

	"github.com/p-n-ai/pai-tos/internal/tos"
)

func (s *Server) handleSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := s.source.Subjects(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"subjects": nonNil(subjects)})
}

func (s *Server) handleGrades(w http.ResponseWriter, r *http.Request) {
	params, ok := requireQuery(w, r, "subject")
	if !ok {
		return
	}
	grades, err := s.source.Grades(r.Context(), params[0])
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"grades": nonNil(grades)})
}

func (s *Server) handleQuarters(w http.ResponseWriter, r *http.Request) {
	params, ok := requireQuery(w, r, "subject", "grade")
	if !ok {
		return
	}
	quarters, err := s.source.Quarters(r.Context(), params[0], params[1])
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"quarters": nonNil(quarters)})
}

func (s *Server) handleCompetencies(w http.ResponseWriter, r *http.Request) {
	params, ok := requireQuery(w, r, "subject", "grade", "quarter")
	if !ok {
		return
	}
	comps, err := s.source.Competencies(r.Context(), params[0], params[1], params[2])
	if err != nil {
		writeFailure(w, err)
		return
	}
	if comps == nil {
		comps = []tos.Competency{}
	}
	writeJSON(w, http.StatusOK, map[string][]tos.Competency{"competencies": comps})
}

// requireQuery returns the named query parameters, or writes a 400 and
// reports false if any is missing.
func requireQuery(w http.ResponseWriter, r *http.Request, names ...string) ([]string, bool) {
	q := r.URL.Query()
	values := make([]string, len(names))
	for i, name := range names {
		values[i] = q.Get(name)
		if values[i] == "" {
			writeError(w, http.StatusBadRequest, "missing query parameter: "+name)
			return nil, false
		}
	}
	return values, true
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
