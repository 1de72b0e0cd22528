package tos

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultVerbs returns the Bloom's action verbs per level. The first verb of
// each list is the canonical one used in item stems.
func DefaultVerbs() map[Level][]string {
	return map[Level][]string{
		Remembering:   {"define", "list", "name", "recall", "identify"},
		Understanding: {"explain", "describe", "summarize", "paraphrase", "classify"},
		Applying:      {"solve", "use", "apply", "demonstrate", "calculate"},
		Analyzing:     {"compare", "contrast", "categorize", "differentiate", "infer"},
		Evaluating:    {"justify", "assess", "critique", "defend", "recommend"},
		Creating:      {"design", "construct", "develop", "propose", "formulate"},
	}
}

// Materializer turns allocation rows into quiz items. The zero value uses
// DefaultVerbs and DefaultTemplates.
type Materializer struct {
	Verbs     map[Level][]string
	Templates *Templates
}

// Materialize renders rows with the default verbs and templates.
func Materialize(rows []AllocationRow) ([]QuizItem, error) {
	return Materializer{}.Materialize(rows)
}

// Materialize returns one quiz item per row, in row order. Rows are validated
// up front so a malformed row yields no partial output.
func (m Materializer) Materialize(rows []AllocationRow) ([]QuizItem, error) {
	verbs := m.Verbs
	if verbs == nil {
		verbs = DefaultVerbs()
	}
	tmpl := m.Templates
	if tmpl == nil {
		tmpl = DefaultTemplates()
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}

	for _, r := range rows {
		if !r.Level.Valid() {
			return nil, invalidf("item %d: unknown cognitive level %d", r.ItemNo, int(r.Level))
		}
		if !r.ItemType.Valid() {
			return nil, invalidf("item %d: unknown item type %d", r.ItemNo, int(r.ItemType))
		}
		if len(verbs[r.Level]) == 0 {
			return nil, invalidf("item %d: no verbs configured for %s", r.ItemNo, r.Level)
		}
	}

	title := cases.Title(language.English)
	items := make([]QuizItem, 0, len(rows))
	for _, r := range rows {
		verb := title.String(verbs[r.Level][0])
		text, answer := tmpl.render(r.ItemType, verb)
		items = append(items, QuizItem{
			ItemNo: r.ItemNo,
			Text:   text,
			Answer: answer,
			Points: r.Points,
		})
	}
	return items, nil
}

// MultipleChoiceTemplate is a fixed stem with four lettered options.
type MultipleChoiceTemplate struct {
	Stem    string
	Options []string
	Correct int // index into Options
}

// ShortAnswerTemplate is a short-response prompt with a length hint.
type ShortAnswerTemplate struct {
	Prompt       string
	LengthHint   string
	SampleAnswer string
}

// RubricCriterion is one scored line of an essay rubric.
type RubricCriterion struct {
	Name        string
	Points      int
	Descriptors string
}

// EssayTemplate is a design/justify prompt scored with a rubric.
type EssayTemplate struct {
	Prompt string
	Rubric []RubricCriterion
}

// Templates holds the fixed item text for each item type. Wording does not
// depend on the competency.
type Templates struct {
	MultipleChoice MultipleChoiceTemplate
	ShortAnswer    ShortAnswerTemplate
	Essay          EssayTemplate
}

// DefaultTemplates returns the stock item wording.
func DefaultTemplates() *Templates {
	return &Templates{
		MultipleChoice: MultipleChoiceTemplate{
			Stem: "What is the primary characteristic of mechanical waves?",
			Options: []string{
				"They can travel through vacuum.",
				"They require a medium to propagate.",
				"They are always transverse.",
				"They travel faster than light.",
			},
			Correct: 1,
		},
		ShortAnswer: ShortAnswerTemplate{
			Prompt:       "how sound waves carry energy through air.",
			LengthHint:   "(2–3 sentences)",
			SampleAnswer: "Sound waves carry energy by compressing and rarefying air particles, transferring kinetic energy from one particle to the next.",
		},
		Essay: EssayTemplate{
			Prompt: "an experiment to demonstrate wave reflection and refraction using everyday materials. Justify your design choices.",
			Rubric: []RubricCriterion{
				{Name: "Content", Points: 3, Descriptors: "Accurate science, clear steps"},
				{Name: "Organization", Points: 1, Descriptors: "Logical flow"},
				{Name: "Mechanics", Points: 1, Descriptors: "Grammar, spelling"},
			},
		},
	}
}

const optionLetters = "ABCD"

// Validate checks the multiple-choice option count and answer index, and that
// the essay rubric sums to the essay point value.
func (t *Templates) Validate() error {
	mc := t.MultipleChoice
	if len(mc.Options) != len(optionLetters) {
		return invalidf("multiple choice template needs %d options, got %d", len(optionLetters), len(mc.Options))
	}
	if mc.Correct < 0 || mc.Correct >= len(mc.Options) {
		return invalidf("multiple choice correct option %d out of range", mc.Correct)
	}

	sum := 0
	for _, c := range t.Essay.Rubric {
		sum += c.Points
	}
	if sum != Essay.Points() {
		return invalidf("essay rubric totals %d points, want %d", sum, Essay.Points())
	}
	return nil
}

func (t *Templates) render(it ItemType, verb string) (text, answer string) {
	var b strings.Builder
	switch it {
	case MultipleChoice:
		mc := t.MultipleChoice
		fmt.Fprintf(&b, "%s the following:\n%s\n", verb, mc.Stem)
		for i, opt := range mc.Options {
			fmt.Fprintf(&b, "%c. %s\n", optionLetters[i], opt)
		}
		return b.String(), fmt.Sprintf("✓ %c", optionLetters[mc.Correct])

	case ShortAnswer:
		sa := t.ShortAnswer
		fmt.Fprintf(&b, "%s %s\n%s\n", verb, sa.Prompt, sa.LengthHint)
		return b.String(), "[Sample] " + sa.SampleAnswer

	default:
		es := t.Essay
		fmt.Fprintf(&b, "%s %s\n", verb, es.Prompt)
		var rubric strings.Builder
		fmt.Fprintf(&rubric, "[Rubric: %d pts total]\n", Essay.Points())
		for _, c := range es.Rubric {
			fmt.Fprintf(&rubric, "• %s (%s): %s\n", c.Name, pointsLabel(c.Points), c.Descriptors)
		}
		return b.String(), rubric.String()
	}
}

func pointsLabel(n int) string {
	if n == 1 {
		return "1 pt"
	}
	return fmt.Sprintf("%d pts", n)
}
