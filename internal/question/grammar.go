package question

import (
	"regexp"
	"strings"
)

// The grammar is line oriented and applied to trimmed lines:
//
//	blank line        ends the current block
//	Answer: B         answer key for the immediately preceding block
//	A) text  (a) text  [a] text  A. text
//	                  option line; "@" anywhere marks it correct
//	anything else     stem line; after options it starts a new block
//
// A leading question number (Q1. Q.1 Q1) 1. 1)) is stripped from stems and
// always starts a new block. "Correct answer: B" is also an answer key.
var (
	answerKeyRe  = regexp.MustCompile(`(?i)^(?:(?:correct\s+)?answer|ans|correct)\s*[:.\-=]\s*[\(\[]?([a-h])[\)\]]?\s*$`)
	optionRe     = regexp.MustCompile(`^[\(\[]?([A-Ha-h])[\)\]]\s*(.*)$`)
	optionDotRe  = regexp.MustCompile(`^([A-Ha-h])\.\s+(.*)$`)
	stemNumberRe = regexp.MustCompile(`^(?:[Qq]\.?\s*\d+[.):]?|\d+[.)])(?:\s+|$)`)
)

const correctMarker = "@"

type lineKind int

const (
	lineBlank lineKind = iota
	lineAnswerKey
	lineOption
	lineStem
)

// classified is one line after grammar classification.
type classified struct {
	kind     lineKind
	letter   int    // option or answer-key index, 0-based
	text     string // option or stem text, markers removed
	correct  bool   // option carried the correct marker
	numbered bool   // stem line began with a question number
}

func classify(raw string) classified {
	line := strings.TrimSpace(raw)
	if line == "" {
		return classified{kind: lineBlank}
	}

	if m := answerKeyRe.FindStringSubmatch(line); m != nil {
		return classified{kind: lineAnswerKey, letter: letterIndex(m[1])}
	}

	m := optionRe.FindStringSubmatch(line)
	if m == nil {
		m = optionDotRe.FindStringSubmatch(line)
	}
	if m != nil {
		text := m[2]
		correct := strings.Contains(text, correctMarker)
		if correct {
			text = strings.ReplaceAll(text, correctMarker, "")
		}
		return classified{
			kind:    lineOption,
			letter:  letterIndex(m[1]),
			text:    strings.TrimSpace(text),
			correct: correct,
		}
	}

	if loc := stemNumberRe.FindStringIndex(line); loc != nil {
		return classified{kind: lineStem, text: strings.TrimSpace(line[loc[1]:]), numbered: true}
	}
	return classified{kind: lineStem, text: line}
}

func letterIndex(s string) int {
	return int(strings.ToUpper(s)[0] - 'A')
}
