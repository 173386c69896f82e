// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "dawgtools/cli/internal/errors"
)

func TestTableName(t *testing.T) {
	tests := []struct {
		create  string
		want    string
		wantErr bool
	}{
		{create: "create table #people (id int)", want: "#people"},
		{create: "CREATE TABLE ##global_tmp (id int)", want: "##global_tmp"},
		{create: "create temporary table cohort (mrn text)", want: "cohort"},
		{create: "create global temporary table g1 (x int)", want: "g1"},
		{create: "create temp table if not exists t2 (x int)", want: "t2"},
		{create: "-- staging\ncreate   table\n  dbo.visits (id int)", want: "dbo.visits"},
		{create: "create view v as select 1", wantErr: true},
		{create: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := TableName(tt.create)
		if tt.wantErr {
			assert.Error(t, err, tt.create)
			assert.Equal(t, apperr.Staging, apperr.KindOf(err))
			continue
		}
		require.NoError(t, err, tt.create)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseTableName(t *testing.T) {
	schema, table := parseTableName("dbo.visits")
	assert.Equal(t, "dbo", schema)
	assert.Equal(t, "visits", table)

	schema, table = parseTableName("#people")
	assert.Empty(t, schema)
	assert.Equal(t, "#people", table)
}

func TestReadCSVRows(t *testing.T) {
	rows, err := ReadCSVRows(strings.NewReader("\ufeffid,name,notes\n1,ann,\"a, b\"\n2,bob,\n"))
	require.NoError(t, err)
	assert.Equal(t, []map[string]string{
		{"id": "1", "name": "ann", "notes": "a, b"},
		{"id": "2", "name": "bob", "notes": ""},
	}, rows)
}

func TestReadCSVRows_Errors(t *testing.T) {
	_, err := ReadCSVRows(strings.NewReader(""))
	assert.Equal(t, apperr.Staging, apperr.KindOf(err))

	_, err = ReadCSVRows(strings.NewReader("a,b\n1\n"))
	assert.Equal(t, apperr.Staging, apperr.KindOf(err))
}

func TestLoadIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mrns.txt")
	require.NoError(t, os.WriteFile(path, []byte("100 200\n300\r\n\t400\n"), 0o600))

	ids, err := LoadIDs(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"100", "200", "300", "400"}, ids)

	_, err = LoadIDs(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Equal(t, apperr.IO, apperr.KindOf(err))
}

func TestSplitBatches(t *testing.T) {
	script := "set nocount on\nGO\n\nselect 1 as good_name\n  go  \nselect 2\n"
	assert.Equal(t, []string{"set nocount on", "select 1 as good_name", "select 2"}, SplitBatches(script))
	assert.Equal(t, []string{"select 'go' as word"}, SplitBatches("select 'go' as word"))
}
