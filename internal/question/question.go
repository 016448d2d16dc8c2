// Package question turns decoded MCQ text into ordered Question records.
//
// Parsing is best-effort: malformed blocks become Warnings and parsing
// continues with the next block. See grammar.go for the line grammar.
package question

import (
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/dusk-indust/mcqdoc/internal/source"
)

var (
	ErrEmptyStem    = errors.New("empty question stem")
	ErrFewOptions   = errors.New("question has fewer than 2 options")
	ErrEmptyOption  = errors.New("empty option text")
	ErrAnswerRange  = errors.New("answer index out of range")
	ErrNoStemOption = errors.New("option with no stem preceding it")
)

// Question is one parsed MCQ item.
type Question struct {
	// Ordinal is the 1-based position across all merged sources.
	Ordinal int `json:"ordinal"`

	Stem    string   `json:"stem"`
	Options []string `json:"options"`

	// Answer is the 0-based index of the correct option, nil when the
	// source carries no answer key.
	Answer *int `json:"answer,omitempty"`

	Origin source.Origin `json:"-"`
	Line   int           `json:"-"`
}

// Validate reports whether q satisfies the Question invariants: a non-empty
// stem, at least two options, no empty option, and an in-range answer.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Stem) == "" {
		return ErrEmptyStem
	}
	for _, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return ErrEmptyOption
		}
	}
	if len(q.Options) < 2 {
		return ErrFewOptions
	}
	if q.Answer != nil && (*q.Answer < 0 || *q.Answer >= len(q.Options)) {
		return ErrAnswerRange
	}
	return nil
}

// AnswerLetter returns the option letter of the answer ("A", "B", ...), or
// "" when there is none.
func (q Question) AnswerLetter() string {
	if q.Answer == nil {
		return ""
	}
	return string(rune('A' + *q.Answer))
}

// Warning is a non-fatal parse diagnostic.
type Warning struct {
	Origin  source.Origin `json:"-"`
	Source  string        `json:"source"`
	Line    int           `json:"line"`
	Message string        `json:"message"`
}

func newWarning(origin source.Origin, line int, format string, args ...any) Warning {
	return Warning{
		Origin:  origin,
		Source:  origin.String(),
		Line:    line,
		Message: fmt.Sprintf(format, args...),
	}
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: line %d: %s", w.Source, w.Line, w.Message)
}

// Result carries the valid questions of a parse together with every
// diagnostic collected along the way.
type Result struct {
	Questions []Question
	Warnings  []Warning
}

// All returns the questions as a sequence. Each range over it starts again
// from the first question.
func (r Result) All() iter.Seq[Question] {
	return func(yield func(Question) bool) {
		for _, q := range r.Questions {
			if !yield(q) {
				return
			}
		}
	}
}
