// Package csvenc reads and writes CSV in the encodings spreadsheet users hand us:
// UTF-8 (with or without BOM) or the Windows "ANSI" code page 1252.
package csvenc

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type Encoding string

const (
	UTF8        Encoding = "utf-8"
	Windows1252 Encoding = "windows-1252"
)

func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "utf8", "utf-8":
		return UTF8, nil
	case "cp1252", "windows-1252", "ansi", "latin1":
		return Windows1252, nil
	default:
		return "", fmt.Errorf("unsupported encoding %q", s)
	}
}

func (e Encoding) codec() encoding.Encoding {
	if e == Windows1252 {
		return charmap.Windows1252
	}
	return unicode.UTF8BOM
}

// NewReader returns a csv.Reader decoding r from e. A UTF-8 BOM is stripped.
func NewReader(r io.Reader, e Encoding) *csv.Reader {
	cr := csv.NewReader(transform.NewReader(r, e.codec().NewDecoder()))
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	return cr
}

// Write renders header+rows to w encoded as e.
func Write(w io.Writer, e Encoding, header []string, rows [][]string) error {
	var enc transform.Transformer = encoding.Nop.NewEncoder()
	if e == Windows1252 {
		enc = encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())
	}

	var b bytes.Buffer
	tw := transform.NewWriter(&b, enc)
	cw := csv.NewWriter(tw)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	if err := tw.Close(); err != nil {
		return err
	}
	_, err := w.Write(b.Bytes())
	return err
}
