// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

package output

import (
	"bytes"
	"encoding/json"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "dawgtools/cli/internal/errors"
	"dawgtools/cli/internal/sqlexec"
)

func sampleResult() *sqlexec.Result {
	return &sqlexec.Result{
		Columns: []string{"col1", "amount", "seen", "payload"},
		Rows: [][]any{
			{"foo", sqlexec.Decimal("12.70"), sqlexec.Date(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)), json.RawMessage(`{"x":1}`)},
			{"bar", sqlexec.Decimal("-3.5"), time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC), nil},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"jsonl": JSONL, "lines": JSONL,
		"json": JSON, "dicts": JSON,
		"json-rows": JSONRows, "lists": JSONRows,
		"CSV": CSV,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("xml")
	assert.Equal(t, apperr.Usage, apperr.KindOf(err))
}

func TestWriteJSONL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, JSONL, sampleResult()))

	want := `{"col1":"foo","amount":12,"seen":"2024-03-01","payload":{"x":1}}
{"col1":"bar","amount":-3,"seen":"2024-03-01T09:30:00","payload":null}
`
	assert.Equal(t, want, buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	res := &sqlexec.Result{Columns: []string{"a"}, Rows: [][]any{{int64(1)}}}
	require.NoError(t, Write(&buf, JSON, res))
	assert.Equal(t, "[\n  {\n    \"a\": 1\n  }\n]\n", buf.String())
}

func TestWriteJSONRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, JSONRows, sampleResult()))

	var doc struct {
		Fieldnames []string `json:"fieldnames"`
		Data       [][]any  `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, []string{"col1", "amount", "seen", "payload"}, doc.Fieldnames)
	assert.Equal(t, []any{"foo", float64(12), "2024-03-01", map[string]any{"x": float64(1)}}, doc.Data[0])
	assert.Contains(t, buf.String(), `"fieldnames"`)
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("fieldnames")), bytes.Index(buf.Bytes(), []byte("data")))
}

func TestWriteJSONRows_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, JSONRows, &sqlexec.Result{}))
	assert.JSONEq(t, `{"fieldnames": [], "data": []}`, buf.String())
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, CSV, sampleResult()))

	want := "col1,amount,seen,payload\n" +
		"foo,12,2024-03-01,\"{\"\"x\"\":1}\"\n" +
		"bar,-3,2024-03-01T09:30:00,\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSV_Truncates(t *testing.T) {
	var buf bytes.Buffer
	res := &sqlexec.Result{Columns: []string{"note"}, Rows: [][]any{{"héllo world"}}}
	require.NoError(t, WriteCSV(&buf, res, CSVOptions{MaxChars: 5}))
	assert.Equal(t, "note\nhéllo\n", buf.String())
}

func TestRecordDuplicateHeaders(t *testing.T) {
	rec := Record([]string{"id", "name", "id"}, []any{int64(1), "ann", int64(2)})

	b, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, `{"id":2,"name":"ann"}`, string(b))
}

func TestValue(t *testing.T) {
	huge := sqlexec.Decimal("123456789012345678901234567890.9")
	want, _ := new(big.Int).SetString("123456789012345678901234567890", 10)

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"decimal whole", sqlexec.Decimal("12.0"), int64(12)},
		{"decimal truncates", sqlexec.Decimal("12.7"), int64(12)},
		{"decimal negative truncates toward zero", sqlexec.Decimal("-12.7"), int64(-12)},
		{"decimal huge", huge, want},
		{"decimal garbage passes through", sqlexec.Decimal("n/a"), "n/a"},
		{"bytes", []byte("abc"), "abc"},
		{"datetime at midnight", time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), "2023-03-01T00:00:00"},
		{"date column", sqlexec.Date(time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)), "2023-03-01"},
		{"micros", time.Date(2023, 3, 1, 1, 2, 3, 4000, time.UTC), "2023-03-01T01:02:03.000004"},
		{"offset", time.Date(2023, 3, 1, 1, 2, 3, 0, time.FixedZone("X", -7*3600)), "2023-03-01T01:02:03-07:00"},
		{"int passes", int64(5), int64(5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Value(tt.in))
		})
	}
}

func TestOpenGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl.gz")

	w, err := Open(path)
	require.NoError(t, err)
	_, err = io.WriteString(w, "{\"a\":1}\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	got, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":1}\n", string(got))
}

func TestOpenPlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	w, err := Open(path)
	require.NoError(t, err)
	_, err = io.WriteString(w, "a,b\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(got))
}
