// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"dawgtools/cli/internal/dsn"
	apperr "dawgtools/cli/internal/errors"
)

// TempTable creates a table from a user supplied statement and loads rows
// into it. Rows must carry every column of the created table; other keys
// are ignored.
type TempTable struct {
	Create string
	Rows   []map[string]string
}

// Stage implements Stager.
func (t TempTable) Stage(ctx context.Context, tx *sql.Tx, d dsn.Dialect) error {
	// Parse first so a statement we cannot load never runs.
	name, err := TableName(t.Create)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, t.Create); err != nil {
		return apperr.Wrap(apperr.External, "creating table "+name, err)
	}
	cols, err := Columns(ctx, tx, name)
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return apperr.Newf(apperr.Staging, "table %s has no columns", name)
	}

	for i, row := range t.Rows {
		for _, c := range cols {
			if _, ok := row[c]; !ok {
				return apperr.Newf(apperr.Staging, "data row %d has no value for column %q of %s", i+1, c, name)
			}
		}
	}

	return insertRows(ctx, tx, d, name, cols, len(t.Rows), func(i int) []any {
		args := make([]any, len(cols))
		for j, c := range cols {
			args[j] = t.Rows[i][c]
		}
		return args
	})
}

// IDList loads identifiers into the dialect's one-column ID table (#mrns on
// SQL Server), replacing any table of that name left on the connection.
type IDList struct {
	IDs []string
}

// Stage implements Stager.
func (l IDList) Stage(ctx context.Context, tx *sql.Tx, d dsn.Dialect) error {
	if _, err := tx.ExecContext(ctx, d.DropIDTable); err != nil {
		return apperr.Wrap(apperr.External, "dropping "+d.IDTable, err)
	}
	if _, err := tx.ExecContext(ctx, d.CreateIDTable); err != nil {
		return apperr.Wrap(apperr.External, "creating "+d.IDTable, err)
	}
	return insertRows(ctx, tx, d, d.IDTable, []string{"mrn"}, len(l.IDs), func(i int) []any {
		return []any{l.IDs[i]}
	})
}

// Statements runs each statement in order, discarding any rows. It carries
// the leading batches of a multi-batch script.
type Statements []string

// Stage implements Stager.
func (s Statements) Stage(ctx context.Context, tx *sql.Tx, _ dsn.Dialect) error {
	for i, stmt := range s {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return apperr.Wrap(apperr.External, fmt.Sprintf("batch %d", i+1), err)
		}
	}
	return nil
}

func insertRows(ctx context.Context, tx *sql.Tx, d dsn.Dialect, table string, cols []string, n int, args func(int) []any) error {
	if n == 0 {
		return nil
	}

	quoted := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = d.QuoteIdent(c)
		marks[i] = d.Placeholder.Token(i + 1)
	}
	insert := fmt.Sprintf("insert into %s (%s) values (%s)", table, strings.Join(quoted, ", "), strings.Join(marks, ", "))

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return apperr.Wrap(apperr.External, "preparing insert into "+table, err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return apperr.Wrap(apperr.External, fmt.Sprintf("inserting row %d into %s", i+1, table), err)
		}
	}
	return nil
}
