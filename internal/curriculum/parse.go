package curriculum

import (
	"fmt"
	"strings"

	"github.com/p-n-ai/pai-tos/internal/tos"
)

// ParseFreeForm reads one competency per line in "CODE: Description" form.
// The line is split on its first colon. Lines without a colon or with an
// empty code are skipped.
func ParseFreeForm(text string) []tos.Competency {
	var comps []tos.Competency
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		code, desc, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		comps = append(comps, tos.Competency{
			Code:        code,
			Description: strings.TrimSpace(desc),
		})
	}
	return comps
}

// Select picks competencies from bank by code, in the order the codes are
// given. An unknown code is an invalid input.
func Select(bank []tos.Competency, codes []string) ([]tos.Competency, error) {
	byCode := make(map[string]tos.Competency, len(bank))
	for _, c := range bank {
		byCode[c.Code] = c
	}

	selected := make([]tos.Competency, 0, len(codes))
	for _, code := range codes {
		c, ok := byCode[strings.TrimSpace(code)]
		if !ok {
			return nil, fmt.Errorf("%w: unknown competency code %q", tos.ErrInvalidInput, code)
		}
		selected = append(selected, c)
	}
	return selected, nil
}
