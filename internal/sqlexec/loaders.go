// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"regexp"
	"strings"

	apperr "dawgtools/cli/internal/errors"
)

// LoadCSVRows reads a CSV file with a header row into one map per data row.
func LoadCSVRows(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.IO, "opening data file", err)
	}
	defer f.Close()
	return ReadCSVRows(f)
}

// ReadCSVRows reads CSV with a header row from r.
func ReadCSVRows(r io.Reader) ([]map[string]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperr.New(apperr.Staging, "data file is empty")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Staging, "reading data header", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows []map[string]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperr.Wrap(apperr.Staging, "reading data file", err)
		}
		if len(rec) != len(header) {
			line, _ := cr.FieldPos(0)
			return nil, apperr.Newf(apperr.Staging, "data line %d has %d fields, header has %d", line, len(rec), len(header))
		}
		row := make(map[string]string, len(header))
		for i, h := range header {
			row[h] = rec[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadIDs reads whitespace-separated identifiers from a file.
func LoadIDs(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.IO, "opening ID file", err)
	}
	return strings.Fields(string(b)), nil
}

var goLineRe = regexp.MustCompile(`(?im)^[ \t]*go[ \t]*;?[ \t]*\r?$`)

// SplitBatches splits a script on lines holding only GO, the batch separator
// used by sqlcmd. Empty batches are dropped.
func SplitBatches(script string) []string {
	var out []string
	for _, part := range goLineRe.Split(script, -1) {
		if strings.TrimSpace(part) != "" {
			out = append(out, strings.TrimSpace(part))
		}
	}
	return out
}
