// Package tos builds a Table of Specifications: it allocates test items across
// Bloom's cognitive levels and curriculum competencies, and materializes each
// allocated slot into a fixed-template quiz item.
package tos

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidInput is returned for empty competency lists, non-positive item
// counts, malformed weights and unrecognized enum values.
var ErrInvalidInput = errors.New("invalid input")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Level is a Bloom's taxonomy cognitive level.
type Level int

const (
	Remembering Level = iota
	Understanding
	Applying
	Analyzing
	Evaluating
	Creating
)

// Levels lists every cognitive level in enumeration order. Row emission and
// remainder trimming both depend on this order.
var Levels = []Level{Remembering, Understanding, Applying, Analyzing, Evaluating, Creating}

func (l Level) String() string {
	switch l {
	case Remembering:
		return "Remembering"
	case Understanding:
		return "Understanding"
	case Applying:
		return "Applying"
	case Analyzing:
		return "Analyzing"
	case Evaluating:
		return "Evaluating"
	case Creating:
		return "Creating"
	default:
		return "unknown"
	}
}

// Valid reports whether l is one of the six recognized levels.
func (l Level) Valid() bool {
	return l >= Remembering && l <= Creating
}

// ItemType returns the item format used to assess l.
func (l Level) ItemType() ItemType {
	switch l {
	case Remembering, Understanding:
		return MultipleChoice
	case Applying, Analyzing:
		return ShortAnswer
	case Evaluating, Creating:
		return Essay
	default:
		return ItemType(-1)
	}
}

// ParseLevel parses a level name, ignoring case and surrounding space.
func ParseLevel(s string) (Level, error) {
	name := strings.TrimSpace(s)
	for _, l := range Levels {
		if strings.EqualFold(l.String(), name) {
			return l, nil
		}
	}
	return 0, invalidf("unknown cognitive level %q", s)
}

func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, invalidf("unknown cognitive level %d", int(l))
	}
	return []byte(l.String()), nil
}

func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ItemType is the format of a quiz item.
type ItemType int

const (
	MultipleChoice ItemType = iota
	ShortAnswer
	Essay
)

func (t ItemType) String() string {
	switch t {
	case MultipleChoice:
		return "Multiple Choice"
	case ShortAnswer:
		return "Short Answer"
	case Essay:
		return "Essay"
	default:
		return "unknown"
	}
}

// Valid reports whether t is one of the three recognized item types.
func (t ItemType) Valid() bool {
	return t >= MultipleChoice && t <= Essay
}

// Points returns the point value of a single item of type t.
func (t ItemType) Points() int {
	switch t {
	case MultipleChoice:
		return 1
	case ShortAnswer:
		return 2
	case Essay:
		return 5
	default:
		return 0
	}
}

// ParseItemType parses "Multiple Choice", "multiple_choice", "ShortAnswer" and
// similar spellings.
func ParseItemType(s string) (ItemType, error) {
	key := strings.ToLower(strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s))
	for _, t := range []ItemType{MultipleChoice, ShortAnswer, Essay} {
		if strings.ToLower(strings.ReplaceAll(t.String(), " ", "")) == key {
			return t, nil
		}
	}
	return 0, invalidf("unknown item type %q", s)
}

func (t ItemType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, invalidf("unknown item type %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *ItemType) UnmarshalText(text []byte) error {
	parsed, err := ParseItemType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
