// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"dawgtools/cli/internal/dsn"
	apperr "dawgtools/cli/internal/errors"
	"dawgtools/cli/internal/sqltemplate"
)

func newSQLiteExecutor(t *testing.T) *Executor {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// one connection, so temp tables are visible to follow-up checks
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return New(db, dsn.DialectFor(dsn.DBTypeSQLite), zaptest.NewLogger(t))
}

func tempTableExists(t *testing.T, e *Executor, name string) bool {
	t.Helper()
	var n int
	err := e.DB.QueryRow("select count(*) from sqlite_temp_master where type = 'table' and name = ?", name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func TestTempTable_LoadsRows(t *testing.T) {
	e := newSQLiteExecutor(t)

	stager := TempTable{
		Create: "create temp table people (id integer, name text)",
		Rows: []map[string]string{
			{"id": "2", "name": "bob", "ignored": "x"},
			{"id": "1", "name": "ann", "ignored": "y"},
		},
	}
	stmt, err := sqltemplate.Render("select id, name from people where id >= %(min)s order by id", map[string]any{"min": 1})
	require.NoError(t, err)

	res, err := e.Query(context.Background(), stmt, stager)
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name"}, res.Columns)
	assert.Equal(t, [][]any{{int64(1), "ann"}, {int64(2), "bob"}}, res.Rows)
}

func TestTempTable_MissingColumnRollsBack(t *testing.T) {
	e := newSQLiteExecutor(t)

	stager := TempTable{
		Create: "create temp table people (id integer, name text)",
		Rows:   []map[string]string{{"id": "1"}},
	}
	_, err := e.Query(context.Background(), sqltemplate.Rendered{SQL: "select * from people"}, stager)
	require.Error(t, err)
	assert.Equal(t, apperr.Staging, apperr.KindOf(err))
	assert.Contains(t, err.Error(), `"name"`)

	assert.False(t, tempTableExists(t, e, "people"), "table must not survive the rollback")
}

func TestTempTable_UnparseableCreateRunsNothing(t *testing.T) {
	e := newSQLiteExecutor(t)

	stager := TempTable{Create: "create temp view v as select 1 as x"}
	_, err := e.Query(context.Background(), sqltemplate.Rendered{SQL: "select 1"}, stager)
	require.Error(t, err)
	assert.Equal(t, apperr.Staging, apperr.KindOf(err))

	var n int
	require.NoError(t, e.DB.QueryRow("select count(*) from sqlite_temp_master").Scan(&n))
	assert.Zero(t, n)
}

func TestIDList_ReplacesExistingTable(t *testing.T) {
	e := newSQLiteExecutor(t)
	ctx := context.Background()
	stmt := sqltemplate.Rendered{SQL: "select mrn from mrns order by mrn"}

	_, err := e.Query(ctx, stmt, IDList{IDs: []string{"999"}})
	require.NoError(t, err)

	res, err := e.Query(ctx, stmt, IDList{IDs: []string{"b", "a", "c"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"mrn"}, res.Columns)
	assert.Equal(t, [][]any{{"a"}, {"b"}, {"c"}}, res.Rows)
}

func TestStatements_RunBeforeQuery(t *testing.T) {
	e := newSQLiteExecutor(t)

	batches := SplitBatches("create temp table t (x integer)\nGO\ninsert into t values (1), (2)\ngo\nselect sum(x) as total from t\n")
	require.Len(t, batches, 3)

	last := len(batches) - 1
	res, err := e.Query(context.Background(), sqltemplate.Rendered{SQL: batches[last]}, Statements(batches[:last]))
	require.NoError(t, err)
	assert.Equal(t, [][]any{{int64(3)}}, res.Rows)
}

func TestQuery_JSONKeepsKeyOrder(t *testing.T) {
	e := newSQLiteExecutor(t)

	res, err := e.Query(context.Background(), sqltemplate.Rendered{SQL: `select '{"b": 1, "a": [2, 3]}' as doc__json, null as empty__json`})
	require.NoError(t, err)

	assert.Equal(t, []string{"doc", "empty"}, res.Columns)
	assert.Equal(t, json.RawMessage(`{"b":1,"a":[2,3]}`), res.Rows[0][0])
	assert.Nil(t, res.Rows[0][1])
}
