// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqltemplate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "dawgtools/cli/internal/errors"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		template string
		params   map[string]any
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "single placeholder",
			template: "select 'foo' as col1, %(barval)s as col2",
			params:   map[string]any{"barval": "bar"},
			wantSQL:  "select 'foo' as col1, ? as col2",
			wantArgs: []any{"bar"},
		},
		{
			name:     "distinct placeholders in order",
			template: "select * from t where a = %(a)s and b = %(b)s and c = %(c)s",
			params:   map[string]any{"c": 3, "a": 1, "b": 2},
			wantSQL:  "select * from t where a = ? and b = ? and c = ?",
			wantArgs: []any{1, 2, 3},
		},
		{
			name:     "repeated name",
			template: "select %(x)s, %(y)s, %(x)s",
			params:   map[string]any{"x": "X", "y": "Y"},
			wantSQL:  "select ?, ?, ?",
			wantArgs: []any{"X", "Y", "X"},
		},
		{
			name:     "no placeholders",
			template: "select 1 from #mrns",
			params:   map[string]any{"unused": "ok"},
			wantSQL:  "select 1 from #mrns",
			wantArgs: []any{},
		},
		{
			name:     "taken branch is bound",
			template: "select * from t{% if since %} where d > %(since)s{% endif %}",
			params:   map[string]any{"since": "2024-01-01"},
			wantSQL:  "select * from t where d > ?",
			wantArgs: []any{"2024-01-01"},
		},
		{
			name:     "skipped branch is not bound",
			template: "select * from t{% if since %} where d > %(since)s{% endif %}",
			params:   map[string]any{},
			wantSQL:  "select * from t",
			wantArgs: []any{},
		},
		{
			name:     "loop expands before scanning",
			template: "select {% for c in cols %}{{ c }}{% if not loop.last %}, {% endif %}{% endfor %} from t where id = %(id)s",
			params:   map[string]any{"cols": []string{"a", "b"}, "id": 7},
			wantSQL:  "select a, b from t where id = ?",
			wantArgs: []any{7},
		},
		{
			name:     "loop counters",
			template: "select {% for c in cols %}{{ c }} as c{{ loop.index }}{% if not loop.last %}, {% endif %}{% endfor %}",
			params:   map[string]any{"cols": []string{"a", "b"}},
			wantSQL:  "select a as c1, b as c2",
			wantArgs: []any{},
		},
		{
			name:     "filter call with default",
			template: "select 1 from {{ tbl | default('#mrns') }}",
			params:   map[string]any{},
			wantSQL:  "select 1 from #mrns",
			wantArgs: []any{},
		},
		{
			name:     "filter call with supplied value",
			template: "select 1 from {{ tbl|default(\"#mrns\") }}",
			params:   map[string]any{"tbl": "cohort"},
			wantSQL:  "select 1 from cohort",
			wantArgs: []any{},
		},
		{
			name:     "single trailing newline dropped",
			template: "select 1\n\n",
			wantSQL:  "select 1\n",
			wantArgs: []any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.template, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, got.SQL)
			assert.Equal(t, tt.wantArgs, got.Args)
		})
	}
}

func TestRenderStyle(t *testing.T) {
	tmpl := "select %(a)s, %(b)s, %(a)s"
	params := map[string]any{"a": 1, "b": 2}

	pg, err := RenderStyle(tmpl, params, Dollar)
	require.NoError(t, err)
	assert.Equal(t, "select $1, $2, $3", pg.SQL)

	ms, err := RenderStyle(tmpl, params, AtP)
	require.NoError(t, err)
	assert.Equal(t, "select @p1, @p2, @p3", ms.SQL)
	assert.Equal(t, []any{1, 2, 1}, ms.Args)
}

func TestRenderMissingParameter(t *testing.T) {
	_, err := Render("select %(present)s, %(absent)s", map[string]any{"present": 1})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Template))
	assert.Contains(t, err.Error(), `"absent"`)
}

func TestRenderBadTemplate(t *testing.T) {
	_, err := Render("select 1 {% if %}", nil)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Template))
}

func TestRenderUnsupportedLoopAttribute(t *testing.T) {
	_, err := Render("select {% for c in cols %}{{ loop.length }}{% endfor %}", map[string]any{"cols": []string{"a"}})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Template))
	assert.Contains(t, err.Error(), "loop.length")
}

func TestTranslateJinja(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "{% if loop.first %}x{% endif %}", want: "{% if forloop.First %}x{% endif %}"},
		{in: "{{ loop.revindex0 }}", want: "{{ forloop.Revcounter0 }}"},
		{in: "{{ forloop.Last }}", want: "{{ forloop.Last }}"},
		{in: "{{ name|upper() }}", want: "{{ name|upper }}"},
		{in: "{{ n | default(0) }}", want: "{{ n |default:0 }}"},
		{in: "loop.last outside tags", want: "loop.last outside tags"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := translateJinja(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderedString(t *testing.T) {
	r := Rendered{SQL: "select ?", Args: []any{"x", 2}}
	assert.Equal(t, "select ?\nParameters: [\"x\", 2]", r.String())
}

func TestFormatBraces(t *testing.T) {
	params := map[string]any{"site": "north", "year": 2024}

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "out-{site}-{year}.jsonl.gz", want: "out-north-2024.jsonl.gz"},
		{in: "plain.csv", want: "plain.csv"},
		{in: "select '{{literal}}'", want: "select '{literal}'"},
		{in: "{missing}.csv", wantErr: true},
		{in: "{site", wantErr: true},
		{in: "x}", wantErr: true},
		{in: "{}", wantErr: true},
		{in: "{year:04d}", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := FormatBraces(tt.in, params)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderNonIdentifierKey(t *testing.T) {
	got, err := Render("select %(start-date)s", map[string]any{"start-date": "2024-01-01"})
	require.NoError(t, err)
	assert.Equal(t, []any{"2024-01-01"}, got.Args)
}
