// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package extract sends text files to a language model together with a
// function schema, caches the raw responses on disk and flattens the
// returned function-call arguments into CSV rows.
package extract

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	apperr "dawgtools/cli/internal/errors"
)

// Schema is a function tool definition:
//
//	{"type": "function", "name": "...", "parameters": {"type": "object", "properties": {...}}}
type Schema struct {
	Path string
	// Stem is the file name without its final extension.
	Stem string
	// Raw is the file content, sent to the model unchanged.
	Raw []byte
	// Hash is the hex md5 of Raw; a changed schema gets a fresh cache partition.
	Hash string
	// Fields lists parameters.properties names in file order.
	Fields []string
	// Parameters is the JSON Schema that function arguments must satisfy.
	Parameters json.RawMessage
}

// LoadSchema reads and inspects a schema file.
func LoadSchema(path string) (*Schema, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.IO, "reading schema", err)
	}
	return ParseSchema(path, raw)
}

// ParseSchema inspects schema content read from path.
func ParseSchema(path string, raw []byte) (*Schema, error) {
	var doc struct {
		Parameters json.RawMessage `json:"parameters"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, apperr.Wrap(apperr.Usage, "schema "+path+" is not valid JSON", err)
	}
	if len(doc.Parameters) == 0 {
		return nil, apperr.Newf(apperr.Usage, "schema %s has no parameters object", path)
	}

	var params struct {
		Properties *orderedmap.OrderedMap[string, json.RawMessage] `json:"properties"`
	}
	if err := json.Unmarshal(doc.Parameters, &params); err != nil {
		return nil, apperr.Wrap(apperr.Usage, "schema "+path+" has malformed parameters", err)
	}
	if params.Properties == nil {
		return nil, apperr.Newf(apperr.Usage, "schema %s has no parameters.properties", path)
	}

	fields := make([]string, 0, params.Properties.Len())
	for p := params.Properties.Oldest(); p != nil; p = p.Next() {
		fields = append(fields, p.Key)
	}

	sum := md5.Sum(raw)
	base := filepath.Base(path)
	return &Schema{
		Path:       path,
		Stem:       strings.TrimSuffix(base, filepath.Ext(base)),
		Raw:        raw,
		Hash:       hex.EncodeToString(sum[:]),
		Fields:     fields,
		Parameters: doc.Parameters,
	}, nil
}
