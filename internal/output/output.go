// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package output serialises query results as JSON lines, JSON documents or CSV
// and opens the destination, compressing it when the file name ends in .gz.
package output

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	apperr "dawgtools/cli/internal/errors"
	"dawgtools/cli/internal/sqlexec"
)

// Format names an output layout.
type Format string

const (
	// JSONL writes one object per row and line.
	JSONL Format = "jsonl"
	// JSON writes an indented array of objects.
	JSON Format = "json"
	// JSONRows writes {"fieldnames": [...], "data": [[...], ...]}.
	JSONRows Format = "json-rows"
	// CSV writes a header row followed by data rows.
	CSV Format = "csv"
)

var formatAliases = map[string]Format{
	"jsonl":     JSONL,
	"lines":     JSONL,
	"json":      JSON,
	"dicts":     JSON,
	"json-rows": JSONRows,
	"lists":     JSONRows,
	"csv":       CSV,
}

// Formats lists the accepted format names, aliases included.
func Formats() []string {
	return []string{"jsonl", "json", "json-rows", "csv", "lines", "dicts", "lists"}
}

// ParseFormat resolves a format name or alias.
func ParseFormat(name string) (Format, error) {
	if f, ok := formatAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return f, nil
	}
	return "", apperr.Newf(apperr.Usage, "unknown output format %q (want one of %s)", name, strings.Join(Formats(), ", "))
}

// Record builds an ordered object from a row. A repeated header keeps the
// position of its first occurrence and the value of its last.
func Record(headers []string, row []any) *orderedmap.OrderedMap[string, any] {
	rec := orderedmap.New[string, any](len(headers))
	for i, h := range headers {
		var v any
		if i < len(row) {
			v = Value(row[i])
		}
		rec.Set(h, v)
	}
	return rec
}

// Write serialises res to w in format f.
func Write(w io.Writer, f Format, res *sqlexec.Result) error {
	var err error
	switch f {
	case JSONL:
		enc := newEncoder(w, false)
		for _, row := range res.Rows {
			if err = enc.Encode(Record(res.Columns, row)); err != nil {
				break
			}
		}
	case JSON:
		records := make([]*orderedmap.OrderedMap[string, any], 0, len(res.Rows))
		for _, row := range res.Rows {
			records = append(records, Record(res.Columns, row))
		}
		err = newEncoder(w, true).Encode(records)
	case JSONRows:
		data := make([][]any, 0, len(res.Rows))
		for _, row := range res.Rows {
			vals := make([]any, len(row))
			for i, v := range row {
				vals[i] = Value(v)
			}
			data = append(data, vals)
		}
		doc := orderedmap.New[string, any]()
		doc.Set("fieldnames", nonNil(res.Columns))
		doc.Set("data", data)
		err = newEncoder(w, true).Encode(doc)
	case CSV:
		err = WriteCSV(w, res, CSVOptions{})
	default:
		return apperr.Newf(apperr.Usage, "unknown output format %q", f)
	}
	if err != nil {
		return apperr.Wrap(apperr.IO, "writing results", err)
	}
	return nil
}

// CSVOptions tunes WriteCSV.
type CSVOptions struct {
	// MaxChars truncates each cell to this many characters when positive.
	MaxChars int
}

// WriteCSV writes res as CSV. NULL becomes an empty cell.
func WriteCSV(w io.Writer, res *sqlexec.Result, opts CSVOptions) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(res.Columns); err != nil {
		return err
	}
	rec := make([]string, len(res.Columns))
	for _, row := range res.Rows {
		for i := range rec {
			rec[i] = ""
			if i < len(row) {
				rec[i] = truncate(Text(row[i]), opts.MaxChars)
			}
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func newEncoder(w io.Writer, indent bool) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Open returns a writer for name: stdout when name is empty, a gzip stream
// when it ends in .gz and a plain file otherwise. Closing flushes and closes
// everything except stdout.
func Open(name string) (io.WriteCloser, error) {
	if name == "" {
		return &writer{buf: bufio.NewWriter(os.Stdout)}, nil
	}

	f, err := os.Create(name)
	if err != nil {
		return nil, apperr.Wrap(apperr.IO, "creating output file", err)
	}
	out := &writer{file: f}
	if strings.HasSuffix(name, ".gz") {
		out.gz = gzip.NewWriter(f)
		out.buf = bufio.NewWriter(out.gz)
	} else {
		out.buf = bufio.NewWriter(f)
	}
	return out, nil
}

type writer struct {
	buf  *bufio.Writer
	gz   *gzip.Writer
	file *os.File
}

func (w *writer) Write(p []byte) (int, error) { return w.buf.Write(p) }

func (w *writer) Close() error {
	err := w.buf.Flush()
	if w.gz != nil {
		if cerr := w.gz.Close(); err == nil {
			err = cerr
		}
	}
	if w.file != nil {
		if cerr := w.file.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return fmt.Errorf("closing output: %w", err)
	}
	return nil
}
