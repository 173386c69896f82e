// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package sqlexec runs rendered query templates against SQL Server, PostgreSQL
// or SQLite through database/sql.
//
// Every query runs in its own transaction: optional stagers fill temporary
// tables first, then the statement executes and its rows are scanned into a
// Result. Any failure rolls the transaction back, so a half-loaded temporary
// table never outlives the command.
//
// Scanning normalises driver values: byte slices become strings, fixed-point
// columns become Decimal and columns whose name ends in "__json" are decoded
// and renamed without the suffix.
package sqlexec

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"  // registers "pgx"
	_ "github.com/microsoft/go-mssqldb" // registers "sqlserver"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // registers "sqlite"

	"dawgtools/cli/internal/dsn"
	apperr "dawgtools/cli/internal/errors"
	"dawgtools/cli/internal/sqltemplate"
)

// Result holds the headers and rows of a query. Headers may repeat.
type Result struct {
	Columns []string
	Rows    [][]any
}

// Stager prepares state, typically a temporary table, inside the query
// transaction before the main statement runs.
type Stager interface {
	Stage(ctx context.Context, tx *sql.Tx, d dsn.Dialect) error
}

// Executor executes statements over a database/sql handle.
type Executor struct {
	// DB is the underlying connection pool
	DB      *sql.DB
	Dialect dsn.Dialect
	log     *zap.Logger
}

// New creates an Executor from an open handle.
func New(db *sql.DB, d dsn.Dialect, log *zap.Logger) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{DB: db, Dialect: d, log: log}
}

// Open connects using a normalized connection string and verifies the
// connection with a ping.
func Open(ctx context.Context, connStr string, d dsn.Dialect, log *zap.Logger) (*Executor, error) {
	db, err := sql.Open(d.Driver, connStr)
	if err != nil {
		return nil, apperr.Wrap(apperr.External, "opening database", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, apperr.Wrap(apperr.External, "connecting to database", err)
	}
	return New(db, d, log), nil
}

// Close releases the connection pool.
func (e *Executor) Close() error {
	return e.DB.Close()
}

// Query runs stagers and then stmt in one transaction and returns the rows.
// The transaction is committed only when every step succeeds.
func (e *Executor) Query(ctx context.Context, stmt sqltemplate.Rendered, stagers ...Stager) (*Result, error) {
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.External, "starting transaction", err)
	}
	// no-op once committed
	defer func() { _ = tx.Rollback() }()

	for _, s := range stagers {
		if err := s.Stage(ctx, tx, e.Dialect); err != nil {
			return nil, err
		}
	}

	e.log.Debug("executing query", zap.String("sql", stmt.SQL), zap.Int("args", len(stmt.Args)))
	rows, err := tx.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, apperr.Wrap(apperr.External, "executing query", err)
	}
	res, err := scan(rows)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Wrap(apperr.External, "commit failed", err)
	}
	e.log.Info("query finished", zap.Int("columns", len(res.Columns)), zap.Int("rows", len(res.Rows)))
	return res, nil
}

func scan(rows *sql.Rows) (*Result, error) {
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, apperr.Wrap(apperr.External, "reading result columns", err)
	}
	cols := newColumns(types)

	res := &Result{Columns: cols.headers(), Rows: [][]any{}}
	for rows.Next() {
		vals := make([]any, len(types))
		ptrs := make([]any, len(types))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, apperr.Wrap(apperr.External, "scanning row", err)
		}
		if err := cols.convert(vals); err != nil {
			return nil, apperr.Wrap(apperr.External, fmt.Sprintf("row %d", len(res.Rows)+1), err)
		}
		res.Rows = append(res.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.External, "reading rows", err)
	}
	return res, nil
}
