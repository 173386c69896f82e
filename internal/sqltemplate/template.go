// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package sqltemplate turns parameterized SQL templates into driver-ready
// statements. A template is first expanded with pongo2 (Django syntax, with
// Jinja's loop.* attributes and name(arg) filter calls accepted) so that
// {% if %} and {% for %} blocks can shape the statement, then every
// %(name)s directive is replaced by a positional placeholder and the named
// value is appended to the argument list.
package sqltemplate

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/flosch/pongo2/v6"

	apperr "dawgtools/cli/internal/errors"
)

func init() {
	// SQL is not HTML.
	pongo2.SetAutoescape(false)
}

// Style selects the positional placeholder token a driver expects.
type Style string

const (
	// Question renders every placeholder as "?".
	Question Style = "?"
	// Dollar renders "$1", "$2", ... as used by PostgreSQL drivers.
	Dollar Style = "$"
	// AtP renders "@p1", "@p2", ... as used by the sqlserver driver.
	AtP Style = "@p"
)

// Token returns the placeholder for the n-th argument, counting from 1.
func (s Style) Token(n int) string {
	switch s {
	case Dollar:
		return "$" + strconv.Itoa(n)
	case AtP:
		return "@p" + strconv.Itoa(n)
	default:
		return "?"
	}
}

// Rendered is a statement ready to hand to database/sql.
type Rendered struct {
	SQL  string
	Args []any
}

var (
	placeholderRe = regexp.MustCompile(`%\((.*?)\)s`)
	identRe       = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Render expands tmpl with params using "?" placeholders.
func Render(tmpl string, params map[string]any) (Rendered, error) {
	return RenderStyle(tmpl, params, Question)
}

// RenderStyle expands tmpl with params using the given placeholder style.
// Names are bound in order of appearance; a name used k times yields k
// arguments. Parameters the template never references are ignored, while a
// referenced name missing from params is an error.
func RenderStyle(tmpl string, params map[string]any, style Style) (Rendered, error) {
	expanded, err := expand(tmpl, params)
	if err != nil {
		return Rendered{}, err
	}

	var (
		args    []any
		missing string
	)
	sql := placeholderRe.ReplaceAllStringFunc(expanded, func(m string) string {
		if missing != "" {
			return m
		}
		name := placeholderRe.FindStringSubmatch(m)[1]
		v, ok := params[name]
		if !ok {
			missing = name
			return m
		}
		args = append(args, v)
		return style.Token(len(args))
	})
	if missing != "" {
		return Rendered{}, apperr.Newf(apperr.Template, "query references parameter %q which was not supplied", missing)
	}
	if args == nil {
		args = []any{}
	}
	return Rendered{SQL: sql, Args: args}, nil
}

func expand(tmpl string, params map[string]any) (string, error) {
	src, err := translateJinja(trimTrailingNewline(tmpl))
	if err != nil {
		return "", err
	}
	tpl, err := pongo2.FromString(src)
	if err != nil {
		return "", apperr.Wrap(apperr.Template, "parsing query template", err)
	}
	ctx := pongo2.Context{}
	for k, v := range params {
		// pongo2 rejects contexts holding keys that are not identifiers; such
		// parameters can still be bound through %(name)s.
		if identRe.MatchString(k) {
			ctx[k] = v
		}
	}
	out, err := tpl.Execute(ctx)
	if err != nil {
		return "", apperr.Wrap(apperr.Template, "expanding query template", err)
	}
	return out, nil
}

// String renders a statement and its arguments for dry-run output.
func (r Rendered) String() string {
	return fmt.Sprintf("%s\nParameters: %s", r.SQL, formatArgs(r.Args))
}

func formatArgs(args []any) string {
	out := "["
	for i, a := range args {
		if i > 0 {
			out += ", "
		}
		if s, ok := a.(string); ok {
			out += strconv.Quote(s)
		} else {
			out += fmt.Sprint(a)
		}
	}
	return out + "]"
}
