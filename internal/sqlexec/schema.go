// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"context"
	"database/sql"
	"regexp"
	"strings"

	apperr "dawgtools/cli/internal/errors"
)

var createTableRe = regexp.MustCompile(`(?i)\bcreate\s+(?:(?:global\s+|local\s+)?temp(?:orary)?\s+)?table\s+(?:if\s+not\s+exists\s+)?([#\w.]+)`)

// TableName extracts the table name from a create table statement. Names may
// start with '#' (SQL Server temporary tables) and may be schema qualified.
func TableName(create string) (string, error) {
	m := createTableRe.FindStringSubmatch(create)
	if m == nil {
		return "", apperr.New(apperr.Staging, "could not find table name in create statement")
	}
	return m[1], nil
}

// parseTableName splits "schema.table" into its parts; schema is empty for
// unqualified names.
func parseTableName(name string) (schema, table string) {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Columns returns the column names of table in declaration order.
func Columns(ctx context.Context, q querier, table string) ([]string, error) {
	rows, err := q.QueryContext(ctx, "select * from "+table+" where 1=0")
	if err != nil {
		return nil, apperr.Wrap(apperr.External, "reading columns of "+table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, apperr.Wrap(apperr.External, "reading columns of "+table, err)
	}
	return cols, rows.Err()
}
