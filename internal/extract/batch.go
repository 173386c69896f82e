// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

package extract

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	apperr "dawgtools/cli/internal/errors"
)

// FileEvent reports how one input file was handled.
type FileEvent struct {
	Path   string
	Cached bool
	Items  int
}

// Stats summarizes a batch run.
type Stats struct {
	Files   int
	Cached  int
	Called  int
	Rows    int
	Invalid int
}

// Batch extracts features from a sequence of files.
type Batch struct {
	Schema *Schema
	Cache  *Cache
	Client Responder
	Model  string
	Prompt string
	// NoCache forces a model call for every file; responses are still stored.
	NoCache bool
	Log     *zap.Logger
	// OnStart and OnFile are optional progress hooks called before and after
	// each file.
	OnStart func(path string, cached bool)
	OnFile  func(FileEvent)
}

// Run writes one CSV row per extracted item to w.
func (b *Batch) Run(ctx context.Context, files []string, w io.Writer) (Stats, error) {
	var stats Stats
	log := b.Log
	if log == nil {
		log = zap.NewNop()
	}

	validator, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(b.Schema.Parameters))
	if err != nil {
		log.Warn("schema parameters are not a usable JSON Schema; skipping validation", zap.Error(err))
		validator = nil
	}

	cw := csv.NewWriter(w)
	header := append([]string{"filename", "item"}, b.Schema.Fields...)
	if err := cw.Write(header); err != nil {
		return stats, apperr.Wrap(apperr.IO, "writing CSV header", err)
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		raw, cached, err := b.response(ctx, path)
		if err != nil {
			return stats, err
		}
		stats.Files++
		if cached {
			stats.Cached++
		} else {
			stats.Called++
		}

		features, err := FeatureTable(raw)
		if err != nil {
			return stats, apperr.Wrap(apperr.External, filepath.Base(path), err)
		}

		for i, f := range features {
			if validator != nil && !b.valid(log, validator, path, i+1, f) {
				stats.Invalid++
			}
			if err := cw.Write(b.row(filepath.Base(path), i+1, f)); err != nil {
				return stats, apperr.Wrap(apperr.IO, "writing CSV row", err)
			}
			stats.Rows++
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return stats, apperr.Wrap(apperr.IO, "writing CSV", err)
		}

		if b.OnFile != nil {
			b.OnFile(FileEvent{Path: path, Cached: cached, Items: len(features)})
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return stats, apperr.Wrap(apperr.IO, "writing CSV", err)
	}
	return stats, nil
}

func (b *Batch) response(ctx context.Context, path string) ([]byte, bool, error) {
	if !b.NoCache {
		raw, ok, err := b.Cache.Load(path, b.Model)
		if err != nil {
			return nil, false, err
		}
		if ok {
			if b.OnStart != nil {
				b.OnStart(path, true)
			}
			return raw, true, nil
		}
	}

	if b.OnStart != nil {
		b.OnStart(path, false)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, false, apperr.Wrap(apperr.IO, "reading input", err)
	}
	raw, err := b.Client.Respond(ctx, Request{
		Model:   b.Model,
		Content: string(content),
		Prompt:  b.Prompt,
		Tool:    b.Schema.Raw,
	})
	if err != nil {
		return nil, false, err
	}
	if err := b.Cache.Store(path, b.Model, raw); err != nil {
		return nil, false, err
	}
	return raw, false, nil
}

func (b *Batch) row(filename string, item int, f Feature) []string {
	row := make([]string, 0, len(b.Schema.Fields)+2)
	row = append(row, filename, strconv.Itoa(item))
	for _, field := range b.Schema.Fields {
		v, ok := f.Values.Get(field)
		if !ok {
			row = append(row, "")
			continue
		}
		row = append(row, cell(v))
	}
	return row
}

func (b *Batch) valid(log *zap.Logger, schema *gojsonschema.Schema, path string, item int, f Feature) bool {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(f.Arguments))
	if err != nil {
		log.Warn("could not validate arguments", zap.String("file", path), zap.Int("item", item), zap.Error(err))
		return false
	}
	if result.Valid() {
		return true
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	log.Warn("arguments do not match schema",
		zap.String("file", path),
		zap.Int("item", item),
		zap.String("errors", strings.Join(msgs, "; ")))
	return false
}

// cell renders a decoded JSON value for CSV. Strings are written as is and
// null as empty; anything else is re-encoded as JSON.
func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// CollectInputs lists the files to process: infile first, then the .txt and
// .md files directly inside dir, in name order.
func CollectInputs(infile, dir string) ([]string, error) {
	if infile == "" && dir == "" {
		return nil, apperr.New(apperr.Usage, "either -i/--infile or -d/--dirname must be specified")
	}

	var files []string
	if infile != "" {
		files = append(files, infile)
	}
	if dir == "" {
		return files, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apperr.Wrap(apperr.IO, "reading input dir", err)
	}
	var found []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".txt", ".md":
			found = append(found, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(found)
	return append(files, found...), nil
}
