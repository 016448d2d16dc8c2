package source

import (
	"errors"
	"sort"
	"strings"
)

// Merged is the Merger's hand-off: decoded texts in merge order plus the
// decode failures of the sources that were skipped.
type Merged struct {
	Texts  []Text
	Errors []*DecodeError
}

// Merge orders the editor text first and uploads after it by submission
// index, then decodes each. Decoding failures are collected rather than
// aborting: every other source is still decoded and returned.
//
// An empty or whitespace-only editor buffer contributes no source.
func Merge(editorText string, uploads []RawSource, defaultEncoding string) Merged {
	ordered := make([]RawSource, 0, len(uploads)+1)
	if strings.TrimSpace(editorText) != "" {
		ordered = append(ordered, RawSource{
			Origin:   Editor(),
			Seq:      -1,
			Content:  []byte(editorText),
			Encoding: "utf-8",
		})
	}

	files := make([]RawSource, len(uploads))
	copy(files, uploads)
	sort.SliceStable(files, func(i, j int) bool { return files[i].Seq < files[j].Seq })
	ordered = append(ordered, files...)

	var m Merged
	for _, src := range ordered {
		if src.Encoding == "" {
			src.Encoding = defaultEncoding
		}
		body, err := Decode(src)
		if err != nil {
			var de *DecodeError
			if !errors.As(err, &de) {
				de = &DecodeError{Origin: src.Origin, Encoding: src.Encoding, Err: err}
			}
			m.Errors = append(m.Errors, de)
			continue
		}
		m.Texts = append(m.Texts, Text{Origin: src.Origin, Seq: src.Seq, Body: body})
	}
	return m
}
