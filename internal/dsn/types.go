// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package dsn recognises database connection strings, normalises them for the
// driver that will open them and describes the SQL dialect behind each one.
package dsn

import "fmt"

// DBType represents the type of database
type DBType string

const (
	DBTypeSQLServer  DBType = "sqlserver"
	DBTypePostgreSQL DBType = "postgresql"
	DBTypeSQLite     DBType = "sqlite"
	DBTypeUnknown    DBType = "unknown"
)

// DSNInfo contains parsed information from a DSN string
type DSNInfo struct {
	Type     DBType
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Params   map[string]string
	Original string
}

// String returns the DSN as given
func (d *DSNInfo) String() string {
	return d.Original
}

// Resolver is an interface for database-specific DSN resolution
type Resolver interface {
	// Parse parses a DSN string and returns its parts
	Parse(dsn string) (*DSNInfo, error)

	// Normalize converts DSN info to the connection string the driver expects
	Normalize(info *DSNInfo) (string, error)

	// Validate checks if the DSN is valid for the database type
	Validate(dsn string) error
}

// ParseError represents an error that occurred during DSN parsing
type ParseError struct {
	DSN    string
	Reason string
	Hint   string
}

func (e *ParseError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("invalid DSN format: %s\nHint: %s", e.Reason, e.Hint)
	}
	return fmt.Sprintf("invalid DSN format: %s", e.Reason)
}

// NewParseError creates a new ParseError
func NewParseError(dsn, reason, hint string) *ParseError {
	return &ParseError{
		DSN:    dsn,
		Reason: reason,
		Hint:   hint,
	}
}
