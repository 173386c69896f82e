// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// JSONSuffix marks columns whose text holds a JSON document.
const JSONSuffix = "__json"

// Decimal is the text of a fixed-point value (DECIMAL, NUMERIC, MONEY).
type Decimal string

// Date is a value read from a DATE column. Datetime columns stay time.Time.
type Date time.Time

type columnKind int

const (
	plainColumn columnKind = iota
	decimalColumn
	dateColumn
	jsonColumn
)

type columns struct {
	names []string
	kinds []columnKind
}

func newColumns(types []*sql.ColumnType) columns {
	c := columns{names: make([]string, len(types)), kinds: make([]columnKind, len(types))}
	for i, t := range types {
		name := t.Name()
		switch {
		case strings.HasSuffix(name, JSONSuffix):
			c.kinds[i] = jsonColumn
			name = strings.TrimSuffix(name, JSONSuffix)
		case isDecimalType(t.DatabaseTypeName()):
			c.kinds[i] = decimalColumn
		case strings.EqualFold(t.DatabaseTypeName(), "DATE"):
			c.kinds[i] = dateColumn
		}
		c.names[i] = name
	}
	return c
}

func (c columns) headers() []string {
	return append([]string(nil), c.names...)
}

func isDecimalType(name string) bool {
	upper := strings.ToUpper(name)
	for _, p := range []string{"DECIMAL", "NUMERIC", "MONEY", "SMALLMONEY"} {
		if strings.HasPrefix(upper, p) {
			return true
		}
	}
	return false
}

// convert rewrites driver values in place.
func (c columns) convert(vals []any) error {
	for i, v := range vals {
		if v == nil {
			continue
		}
		switch c.kinds[i] {
		case jsonColumn:
			doc, err := decodeJSON(v)
			if err != nil {
				return fmt.Errorf("column %q: %w", c.names[i], err)
			}
			vals[i] = doc
		case decimalColumn:
			vals[i] = toDecimal(v)
		case dateColumn:
			vals[i] = toDate(v)
		default:
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
	}
	return nil
}

// decodeJSON validates a JSON cell and returns it compacted. Some exports
// double-escape newlines inside strings; the literal \\n is restored to \n
// before decoding.
func decodeJSON(v any) (json.RawMessage, error) {
	var text string
	switch t := v.(type) {
	case []byte:
		text = string(t)
	case string:
		text = t
	default:
		return nil, fmt.Errorf("expected text holding JSON, got %T", v)
	}
	text = strings.ReplaceAll(text, `\\n`, `\n`)

	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(text)); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return json.RawMessage(buf.Bytes()), nil
}

func toDecimal(v any) any {
	switch t := v.(type) {
	case []byte:
		return Decimal(t)
	case string:
		return Decimal(t)
	case float64:
		return Decimal(strconv.FormatFloat(t, 'f', -1, 64))
	case int64:
		return Decimal(strconv.FormatInt(t, 10))
	default:
		return v
	}
}

func toDate(v any) any {
	switch t := v.(type) {
	case time.Time:
		return Date(t)
	case []byte:
		return string(t)
	default:
		return v
	}
}
