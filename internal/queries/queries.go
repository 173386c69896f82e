// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package queries provides named query templates: a built-in set compiled into
// the binary and an optional directory of *.sql files that may add to or
// override it.
package queries

import (
	"bufio"
	"embed"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperr "dawgtools/cli/internal/errors"
)

//go:embed sql/*.sql
var builtin embed.FS

// Query describes one named template.
type Query struct {
	Name string
	// Source is "builtin" or the path of the file that defines the query.
	Source string
	// Description is the text of the first "--" comment line, if any.
	Description string
}

// Catalog looks queries up in an override directory first, then in the
// built-in set.
type Catalog struct {
	dir     string
	builtin fs.FS
}

// NewCatalog returns a catalog; dir may be empty.
func NewCatalog(dir string) *Catalog {
	sub, _ := fs.Sub(builtin, "sql")
	return &Catalog{dir: dir, builtin: sub}
}

// Get returns the text of the named query.
func (c *Catalog) Get(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", apperr.Newf(apperr.Usage, "invalid query name %q", name)
	}
	file := name + ".sql"

	if c.dir != "" {
		b, err := os.ReadFile(filepath.Join(c.dir, file))
		if err == nil {
			return string(b), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", apperr.Wrap(apperr.IO, "reading query "+name, err)
		}
	}

	b, err := fs.ReadFile(c.builtin, file)
	if err != nil {
		return "", apperr.Newf(apperr.Usage, "no query named %q; run 'dawgtools queries' to list them", name)
	}
	return string(b), nil
}

// List returns every query sorted by name. Directory entries hide built-ins
// of the same name.
func (c *Catalog) List() ([]Query, error) {
	byName := map[string]Query{}

	if err := c.collect(c.builtin, "builtin", byName); err != nil {
		return nil, err
	}
	if c.dir != "" {
		if _, err := os.Stat(c.dir); err == nil {
			if err := c.collect(os.DirFS(c.dir), c.dir, byName); err != nil {
				return nil, err
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.Wrap(apperr.IO, "reading queries dir", err)
		}
	}

	out := make([]Query, 0, len(byName))
	for _, q := range byName {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (c *Catalog) collect(fsys fs.FS, source string, into map[string]Query) error {
	matches, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return apperr.Wrap(apperr.IO, "listing queries", err)
	}
	for _, m := range matches {
		b, err := fs.ReadFile(fsys, m)
		if err != nil {
			return apperr.Wrap(apperr.IO, "reading query "+m, err)
		}
		name := strings.TrimSuffix(m, ".sql")
		src := source
		if source != "builtin" {
			src = filepath.Join(source, m)
		}
		into[name] = Query{Name: name, Source: src, Description: describe(string(b))}
	}
	return nil
}

func describe(text string) string {
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "--") {
			return strings.TrimSpace(strings.TrimPrefix(line, "--"))
		}
		return ""
	}
	return ""
}
