package source

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}

	errBinary = errors.New("content contains NUL bytes; not a text file")
)

// Decode converts src to a string. With no declared encoding a UTF-8 or
// UTF-16 byte-order mark selects the charset; otherwise the bytes must be
// valid UTF-8. Declared names are resolved through the WHATWG encoding index
// ("latin1", "windows-1252", "shift_jis", ...).
func Decode(src RawSource) (string, error) {
	name := strings.ToLower(strings.TrimSpace(src.Encoding))

	var (
		text string
		err  error
	)
	switch name {
	case "", "utf-8", "utf8":
		text, err = decodeDefault(src.Content)
	default:
		var enc encoding.Encoding
		enc, err = htmlindex.Get(name)
		if err != nil {
			err = fmt.Errorf("unknown encoding %q", src.Encoding)
			break
		}
		var out []byte
		out, err = enc.NewDecoder().Bytes(src.Content)
		text = string(out)
	}
	if err == nil && strings.ContainsRune(text, 0) {
		err = errBinary
	}
	if err != nil {
		return "", &DecodeError{Origin: src.Origin, Encoding: src.Encoding, Err: err}
	}
	return text, nil
}

func decodeDefault(b []byte) (string, error) {
	switch {
	case bytes.HasPrefix(b, bomUTF16LE), bytes.HasPrefix(b, bomUTF16BE):
		out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), b)
		if err != nil {
			return "", err
		}
		return string(out), nil
	case bytes.HasPrefix(b, bomUTF8):
		b = b[len(bomUTF8):]
	}

	if !utf8.Valid(b) {
		return "", fmt.Errorf("invalid UTF-8 at byte %d", firstInvalid(b))
	}
	return string(b), nil
}

func firstInvalid(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return len(b)
}
