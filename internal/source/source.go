// Package source models the text origins of a generation request (the
// inline editor buffer and uploaded files) and merges them into one ordered,
// decoded stream.
package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dusk-indust/mcqdoc/internal/deadline"
)

// Kind tags the variant of an Origin.
type Kind int

const (
	// KindEditor is the inline editor buffer.
	KindEditor Kind = iota

	// KindUpload is one uploaded file.
	KindUpload
)

// Origin identifies where a piece of text came from.
type Origin struct {
	Kind Kind
	Name string // file name; empty for the editor
}

// Editor returns the origin of the inline editor buffer.
func Editor() Origin { return Origin{Kind: KindEditor} }

// Upload returns the origin of an uploaded file.
func Upload(name string) Origin { return Origin{Kind: KindUpload, Name: name} }

func (o Origin) String() string {
	if o.Kind == KindEditor {
		return "editor"
	}
	return o.Name
}

// RawSource is one undecoded origin of text. Seq is the submission index of
// an upload and fixes its position in the merge order.
type RawSource struct {
	Origin   Origin
	Seq      int
	Content  []byte
	Encoding string // declared charset; empty means detect/assume UTF-8
}

// Text is a decoded source, ready for parsing.
type Text struct {
	Origin Origin
	Seq    int
	Body   string
}

// DecodeError reports a source whose bytes could not be decoded as text.
type DecodeError struct {
	Origin   Origin
	Encoding string
	Err      error
}

func (e *DecodeError) Error() string {
	enc := e.Encoding
	if enc == "" {
		enc = "utf-8"
	}
	return fmt.Sprintf("decode %s as %s: %v", e.Origin, enc, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// LoadOptions bounds the read of one upload.
type LoadOptions struct {
	Encoding string
	MaxBytes int64         // 0 means unlimited
	Timeout  time.Duration // 0 means unbounded
}

// Load reads an uploaded file into a RawSource. The read is bounded by
// opts.Timeout and fails with *deadline.TimeoutError when it expires.
func Load(ctx context.Context, seq int, name string, r io.Reader, opts LoadOptions) (RawSource, error) {
	var buf bytes.Buffer
	err := deadline.Run(ctx, opts.Timeout, "read "+name, func(ctx context.Context) error {
		src := r
		if opts.MaxBytes > 0 {
			src = io.LimitReader(r, opts.MaxBytes+1)
		}
		if _, err := io.Copy(&buf, readerWithContext{ctx: ctx, r: src}); err != nil {
			return err
		}
		if opts.MaxBytes > 0 && int64(buf.Len()) > opts.MaxBytes {
			return fmt.Errorf("file exceeds %d bytes", opts.MaxBytes)
		}
		return nil
	})
	if err != nil {
		return RawSource{}, fmt.Errorf("source: load %s: %w", name, err)
	}

	return RawSource{
		Origin:   Upload(name),
		Seq:      seq,
		Content:  buf.Bytes(),
		Encoding: opts.Encoding,
	}, nil
}

// readerWithContext stops copying once ctx is done.
type readerWithContext struct {
	ctx context.Context
	r   io.Reader
}

func (rc readerWithContext) Read(p []byte) (int, error) {
	if err := rc.ctx.Err(); err != nil {
		return 0, err
	}
	return rc.r.Read(p)
}
