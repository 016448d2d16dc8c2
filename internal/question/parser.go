package question

import (
	"context"
	"errors"
	"iter"
	"strings"

	"github.com/dusk-indust/mcqdoc/internal/source"
	"golang.org/x/sync/errgroup"
)

// Block is one question candidate scanned from a source, together with the
// diagnostics raised while scanning it. A rejected block carries exactly one
// warning explaining the rejection and no usable Question.
type Block struct {
	Question Question
	Warnings []Warning
	Rejected bool
}

// blockBuilder accumulates the lines of the block being scanned.
type blockBuilder struct {
	origin     source.Origin
	line       int
	stem       []string
	options    []string
	optLines   []int
	inline     int // first option carrying the correct marker, -1 if none
	key        int // answer-key letter, -1 if none
	keyLine    int
	notes      []Warning
	terminated bool // a blank line followed the block
}

func newBlockBuilder(origin source.Origin, line int) *blockBuilder {
	return &blockBuilder{origin: origin, line: line, inline: -1, key: -1}
}

func (b *blockBuilder) addOption(line int, c classified) {
	if c.correct {
		if b.inline < 0 {
			b.inline = len(b.options)
		} else {
			b.notes = append(b.notes, newWarning(b.origin, line,
				"multiple options marked correct; keeping option %s", string(rune('A'+b.inline))))
		}
	}
	b.options = append(b.options, c.text)
	b.optLines = append(b.optLines, line)
}

func (b *blockBuilder) setKey(line, letter int) {
	if b.key >= 0 && b.key != letter {
		b.notes = append(b.notes, newWarning(b.origin, line,
			"answer key %s replaces earlier key %s", string(rune('A'+letter)), string(rune('A'+b.key))))
	}
	b.key = letter
	b.keyLine = line
}

// build validates the block and produces its Question or its rejection.
func (b *blockBuilder) build() Block {
	q := Question{
		Stem:    strings.Join(b.stem, "\n"),
		Options: b.options,
		Origin:  b.origin,
		Line:    b.line,
	}

	switch err := q.Validate(); {
	case errors.Is(err, ErrEmptyStem) && len(b.options) > 0:
		return rejected(newWarning(b.origin, b.optLines[0], "%s", ErrNoStemOption))
	case errors.Is(err, ErrEmptyOption):
		line := b.line
		for i, opt := range b.options {
			if opt == "" {
				line = b.optLines[i]
				break
			}
		}
		return rejected(newWarning(b.origin, line, "%s", err))
	case err != nil:
		return rejected(newWarning(b.origin, b.line, "%s", err))
	}

	notes := b.notes
	answer := b.inline
	if b.key >= 0 {
		switch {
		case b.key >= len(b.options):
			notes = append(notes, newWarning(b.origin, b.keyLine,
				"answer key %s does not match any of %d options", string(rune('A'+b.key)), len(b.options)))
		case b.inline >= 0 && b.inline != b.key:
			notes = append(notes, newWarning(b.origin, b.keyLine,
				"answer key %s overrides option %s marked %s", string(rune('A'+b.key)), string(rune('A'+b.inline)), correctMarker))
			answer = b.key
		default:
			answer = b.key
		}
	}
	if answer >= 0 {
		q.Answer = &answer
	}

	return Block{Question: q, Warnings: notes}
}

func rejected(w Warning) Block {
	return Block{Warnings: []Warning{w}, Rejected: true}
}

// Blocks scans t lazily, yielding one Block per question candidate in
// order of appearance. The sequence is restartable: each range rescans t
// from its first line. Blocks never span sources.
func Blocks(t source.Text) iter.Seq[Block] {
	return func(yield func(Block) bool) {
		var cur *blockBuilder

		flush := func() bool {
			if cur == nil {
				return true
			}
			b := cur.build()
			cur = nil
			return yield(b)
		}

		for i, raw := range strings.Split(t.Body, "\n") {
			lineNo := i + 1
			c := classify(raw)

			switch c.kind {
			case lineBlank:
				if cur != nil {
					cur.terminated = true
				}

			case lineAnswerKey:
				if cur == nil {
					if !yield(rejected(newWarning(t.Origin, lineNo, "answer key with no question preceding it"))) {
						return
					}
					continue
				}
				cur.setKey(lineNo, c.letter)

			case lineOption:
				if cur == nil || cur.terminated {
					if !flush() {
						return
					}
					cur = newBlockBuilder(t.Origin, lineNo)
				}
				cur.addOption(lineNo, c)

			case lineStem:
				// A numbered stem always opens a new question, even when the
				// one before it never got its options.
				if cur == nil || cur.terminated || len(cur.options) > 0 || (c.numbered && len(cur.stem) > 0) {
					if !flush() {
						return
					}
					cur = newBlockBuilder(t.Origin, lineNo)
				}
				if c.text != "" {
					cur.stem = append(cur.stem, c.text)
				}
			}
		}

		flush()
	}
}

// ParseText parses one decoded source. Questions carry no ordinal yet; see
// ParseAll.
func ParseText(ctx context.Context, t source.Text) (Result, error) {
	var res Result
	for b := range Blocks(t) {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		res.Warnings = append(res.Warnings, b.Warnings...)
		if !b.Rejected {
			res.Questions = append(res.Questions, b.Question)
		}
	}
	return res, nil
}

// ParseAll parses every source concurrently and concatenates the results in
// the order of texts, which is the merge order. Ordinals are assigned after
// the join so they follow first appearance across sources regardless of
// which goroutine finished first.
func ParseAll(ctx context.Context, texts []source.Text) (Result, error) {
	parts := make([]Result, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	for i, t := range texts {
		g.Go(func() error {
			res, err := ParseText(gctx, t)
			if err != nil {
				return err
			}
			parts[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var out Result
	for _, p := range parts {
		out.Questions = append(out.Questions, p.Questions...)
		out.Warnings = append(out.Warnings, p.Warnings...)
	}
	for i := range out.Questions {
		out.Questions[i].Ordinal = i + 1
	}
	return out, nil
}
