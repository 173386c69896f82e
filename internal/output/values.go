// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

package output

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"dawgtools/cli/internal/sqlexec"
)

// Value converts a scanned database value into something encoding/json
// renders the way downstream consumers expect.
//
// Decimals become integers, truncated toward zero: 12.0 and 12.7 both
// become 12.
func Value(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case time.Time:
		return isoformat(t)
	case sqlexec.Date:
		return time.Time(t).Format("2006-01-02")
	case sqlexec.Decimal:
		return decimalInt(string(t))
	case []byte:
		return string(t)
	default:
		return v
	}
}

// Text renders a value as a CSV cell.
func Text(v any) string {
	switch t := Value(v).(type) {
	case nil:
		return ""
	case string:
		return t
	case json.RawMessage:
		return string(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case *big.Int:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// isoformat renders an instant with seconds and, when present, microseconds.
// A UTC offset is added for zones other than UTC.
func isoformat(t time.Time) string {
	layout := "2006-01-02T15:04:05"
	if t.Nanosecond() != 0 {
		layout += ".000000"
	}
	if t.Location() != time.UTC {
		layout += "-07:00"
	}
	return t.Format(layout)
}

func decimalInt(s string) any {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return s
	}
	n := new(big.Int).Quo(r.Num(), r.Denom())
	if n.IsInt64() {
		return n.Int64()
	}
	return n
}
