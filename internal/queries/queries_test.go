// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

package queries

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "dawgtools/cli/internal/errors"
	"dawgtools/cli/internal/sqltemplate"
)

func TestBuiltinExampleRenders(t *testing.T) {
	c := NewCatalog("")

	text, err := c.Get("example")
	require.NoError(t, err)

	r, err := sqltemplate.Render(text, map[string]any{"barval": "bar"})
	require.NoError(t, err)
	assert.Contains(t, r.SQL, "select 'foo' as col1, ? as col2")
	assert.Equal(t, []any{"bar"}, r.Args)
}

func TestBuiltinColumnsOptionalSchema(t *testing.T) {
	text, err := NewCatalog("").Get("columns")
	require.NoError(t, err)

	r, err := sqltemplate.Render(text, map[string]any{"table": "visits"})
	require.NoError(t, err)
	assert.Equal(t, []any{"visits"}, r.Args)

	r, err = sqltemplate.Render(text, map[string]any{"table": "visits", "schema": "dbo"})
	require.NoError(t, err)
	assert.Equal(t, []any{"visits", "dbo"}, r.Args)
}

func TestDirectoryOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "example.sql"), []byte("-- mine\nselect 2"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cohort.sql"), []byte("select * from #mrns"), 0o600))
	c := NewCatalog(dir)

	text, err := c.Get("example")
	require.NoError(t, err)
	assert.Equal(t, "-- mine\nselect 2", text)

	list, err := c.List()
	require.NoError(t, err)

	byName := map[string]Query{}
	for _, q := range list {
		byName[q.Name] = q
	}
	assert.Equal(t, "mine", byName["example"].Description)
	assert.Equal(t, filepath.Join(dir, "example.sql"), byName["example"].Source)
	assert.Equal(t, "", byName["cohort"].Description)
	assert.Equal(t, "builtin", byName["columns"].Source)
	assert.Equal(t, "cohort", list[0].Name, "sorted by name")
}

func TestGetUnknown(t *testing.T) {
	_, err := NewCatalog(t.TempDir()).Get("nope")
	assert.Equal(t, apperr.Usage, apperr.KindOf(err))

	_, err = NewCatalog("").Get("../etc/passwd")
	assert.Equal(t, apperr.Usage, apperr.KindOf(err))
}

func TestListMissingDirIsFine(t *testing.T) {
	list, err := NewCatalog(filepath.Join(t.TempDir(), "missing")).List()
	require.NoError(t, err)
	assert.NotEmpty(t, list)
}
