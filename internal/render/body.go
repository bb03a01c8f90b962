// Package render turns captured request bodies into something a human can
// read: structured output when the body parses, raw text otherwise.
package render

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/andybalholm/brotli"
)

// Kind describes how a body was rendered.
type Kind string

const (
	KindEmpty  Kind = "none"
	KindJSON   Kind = "json"
	KindText   Kind = "text"
	KindBinary Kind = "binary"
)

// Body is the display form of a captured payload. Rendering is best-effort:
// a body that fails a structured parse falls back to raw display, never an
// error.
type Body struct {
	Kind Kind
	Text string
	Size int
}

// Render decodes raw for display. contentEncoding is the value of the
// Content-Encoding header; gzip, brotli and deflate are decompressed first,
// anything else is shown as-is.
func Render(raw []byte, contentEncoding string) Body {
	if len(raw) == 0 {
		return Body{Kind: KindEmpty}
	}

	decoded := Decompress(raw, contentEncoding)

	if pretty, ok := tryJSON(decoded); ok {
		return Body{Kind: KindJSON, Text: pretty, Size: len(raw)}
	}
	if utf8.Valid(decoded) {
		return Body{Kind: KindText, Text: string(decoded), Size: len(raw)}
	}
	return Body{Kind: KindBinary, Text: hexPreview(decoded), Size: len(raw)}
}

// Decompress undoes gzip/br/deflate content encodings. On any failure the
// original bytes come back untouched.
func Decompress(raw []byte, encoding string) []byte {
	switch encoding {
	case "br":
		if out, err := io.ReadAll(brotli.NewReader(bytes.NewReader(raw))); err == nil {
			return out
		}
		return raw
	case "gzip":
		r, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return raw
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return raw
		}
		return out
	case "deflate":
		// Deflate bodies show up both zlib-wrapped (per RFC) and raw.
		if out, err := readAllClosing(zlib.NewReader(bytes.NewReader(raw))); err == nil {
			return out
		}
		if out, err := io.ReadAll(flate.NewReader(bytes.NewReader(raw))); err == nil {
			return out
		}
		return raw
	default:
		return raw
	}
}

func readAllClosing(r io.ReadCloser, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func tryJSON(raw []byte) (string, bool) {
	if !json.Valid(raw) {
		return "", false
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return "", false
	}
	return buf.String(), true
}

const maxBinaryPreview = 512

func hexPreview(raw []byte) string {
	rest := 0
	if len(raw) > maxBinaryPreview {
		rest = len(raw) - maxBinaryPreview
		raw = raw[:maxBinaryPreview]
	}
	out := hex.Dump(raw)
	if rest > 0 {
		out += fmt.Sprintf("... %d more bytes\n", rest)
	}
	return strings.TrimRight(out, "\n")
}
