// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

package extract

import (
	"bytes"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	apperr "dawgtools/cli/internal/errors"
)

// Feature is one function call returned by the model.
type Feature struct {
	// Arguments is the decoded JSON argument document.
	Arguments json.RawMessage
	// Values holds the arguments in the order the model produced them.
	Values *orderedmap.OrderedMap[string, any]
}

// FeatureTable returns the function-call items of a response in order. Only
// output items carrying an "arguments" key count; messages and reasoning
// items are skipped.
func FeatureTable(raw []byte) ([]Feature, error) {
	var resp struct {
		Output *[]map[string]json.RawMessage `json:"output"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, apperr.Wrap(apperr.External, "decoding model response", err)
	}
	if resp.Output == nil {
		return nil, apperr.New(apperr.External, "model response has no output")
	}

	var out []Feature
	for i, item := range *resp.Output {
		args, ok := item["arguments"]
		if !ok {
			continue
		}
		doc, err := argumentDocument(args)
		if err != nil {
			return nil, apperr.Wrap(apperr.External, fmt.Sprintf("output item %d", i), err)
		}
		values := orderedmap.New[string, any]()
		if err := json.Unmarshal(doc, values); err != nil {
			return nil, apperr.Wrap(apperr.External, fmt.Sprintf("output item %d arguments", i), err)
		}
		out = append(out, Feature{Arguments: doc, Values: values})
	}
	return out, nil
}

// argumentDocument unwraps arguments, which the API sends as a JSON-encoded
// string. An inline object is accepted as is.
func argumentDocument(args json.RawMessage) (json.RawMessage, error) {
	doc := args
	var s string
	if err := json.Unmarshal(args, &s); err == nil {
		doc = json.RawMessage(s)
	}
	if !json.Valid(doc) {
		return nil, fmt.Errorf("arguments are not valid JSON: %q", doc)
	}
	if t := bytes.TrimSpace(doc); len(t) == 0 || t[0] != '{' {
		return nil, fmt.Errorf("arguments are not a JSON object: %s", doc)
	}
	return doc, nil
}
