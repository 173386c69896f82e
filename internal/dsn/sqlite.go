// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"strings"
)

// SQLiteResolver handles SQLite database paths and URIs.
type SQLiteResolver struct{}

// NewSQLiteResolver creates a new SQLite resolver
func NewSQLiteResolver() *SQLiteResolver {
	return &SQLiteResolver{}
}

// Parse accepts sqlite://path, sqlite:path, file:path URIs, ":memory:" and bare
// paths ending in .db, .sqlite or .sqlite3.
func (r *SQLiteResolver) Parse(dsn string) (*DSNInfo, error) {
	rest := strings.TrimSpace(dsn)
	if trimmed, ok := trimScheme(rest, "sqlite://", "sqlite:", "file:"); ok {
		rest = trimmed
	}

	info := &DSNInfo{Type: DBTypeSQLite, Params: make(map[string]string), Original: dsn}
	if q := strings.Index(rest, "?"); q >= 0 {
		parseQuery(rest[q+1:], info.Params)
		rest = rest[:q]
	}
	if rest == "" {
		return nil, NewParseError(dsn, "missing database path", "use sqlite://path/to/file.db or :memory:")
	}
	info.Database = rest
	return info, nil
}

// Normalize returns a file: URI as accepted by modernc.org/sqlite.
func (r *SQLiteResolver) Normalize(info *DSNInfo) (string, error) {
	if info == nil {
		return "", NewParseError("", "nil DSN info", "")
	}
	out := "file:" + info.Database
	if len(info.Params) > 0 {
		out += "?" + encodeSorted(info.Params, "&", escape)
	}
	return out, nil
}

// Validate checks if the DSN names a database.
func (r *SQLiteResolver) Validate(dsn string) error {
	_, err := r.Parse(dsn)
	return err
}
