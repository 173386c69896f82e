// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"strings"
)

// DetectDBType detects the database type from a DSN string.
// Besides URL schemes it accepts ODBC and ADO style key=value strings, which
// are taken to mean SQL Server, and bare paths to SQLite database files.
func DetectDBType(dsn string) DBType {
	lower := strings.ToLower(strings.TrimSpace(dsn))

	switch {
	case strings.HasPrefix(lower, "sqlserver://"), strings.HasPrefix(lower, "mssql://"), strings.HasPrefix(lower, "odbc:"):
		return DBTypeSQLServer
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return DBTypePostgreSQL
	case strings.HasPrefix(lower, "sqlite://"), strings.HasPrefix(lower, "sqlite:"), strings.HasPrefix(lower, "file:"):
		return DBTypeSQLite
	case lower == ":memory:":
		return DBTypeSQLite
	}

	if strings.Contains(lower, "://") {
		return DBTypeUnknown
	}
	if strings.Contains(lower, "=") && (strings.Contains(lower, "server=") || strings.Contains(lower, "driver=") ||
		strings.Contains(lower, "data source=")) {
		return DBTypeSQLServer
	}
	for _, ext := range []string{".db", ".sqlite", ".sqlite3"} {
		if strings.HasSuffix(lower, ext) {
			return DBTypeSQLite
		}
	}
	return DBTypeUnknown
}

func resolverFor(dsn string) (Resolver, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, NewParseError(dsn, "empty DSN", "provide a valid database connection string")
	}

	switch DetectDBType(dsn) {
	case DBTypeSQLServer:
		return NewSQLServerResolver(), nil
	case DBTypePostgreSQL:
		return NewPostgreSQLResolver(), nil
	case DBTypeSQLite:
		return NewSQLiteResolver(), nil
	default:
		return nil, NewParseError(dsn, "unknown database type",
			"use sqlserver://, an ODBC string such as Driver={...};Server=..., postgres:// or sqlite://")
	}
}

// Parse parses a DSN string and returns the normalized connection string.
// This is the main entry point for DSN parsing.
func Parse(dsn string) (string, error) {
	resolver, err := resolverFor(dsn)
	if err != nil {
		return "", err
	}

	info, err := resolver.Parse(dsn)
	if err != nil {
		return "", err
	}
	return resolver.Normalize(info)
}

// Validate validates a DSN string without normalizing it
func Validate(dsn string) error {
	resolver, err := resolverFor(dsn)
	if err != nil {
		return err
	}
	return resolver.Validate(dsn)
}

// ParseInfo parses a DSN string and returns detailed DSN info.
// Useful for inspecting connection details.
func ParseInfo(dsn string) (*DSNInfo, error) {
	resolver, err := resolverFor(dsn)
	if err != nil {
		return nil, err
	}
	return resolver.Parse(dsn)
}

// Resolve parses dsn and returns the normalized connection string together
// with its dialect. No connection is made.
func Resolve(dsn string) (string, Dialect, error) {
	normalized, err := Parse(dsn)
	if err != nil {
		return "", Dialect{}, err
	}
	return normalized, DialectFor(DetectDBType(dsn)), nil
}
