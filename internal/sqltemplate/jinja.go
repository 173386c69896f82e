// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqltemplate

import (
	"regexp"
	"strings"

	apperr "dawgtools/cli/internal/errors"
)

// pongo2 follows Django's template syntax. Query files written for Jinja
// mostly differ in two places: the loop variable and filter arguments. Both
// are rewritten inside tags before parsing. Anything else Jinja-only is left
// for pongo2 to reject.

var (
	tagRe        = regexp.MustCompile(`(?s)\{\{.*?\}\}|\{%.*?%\}`)
	loopAttrRe   = regexp.MustCompile(`\bloop\.([A-Za-z_][A-Za-z0-9_]*)`)
	filterCallRe = regexp.MustCompile(`\|\s*([A-Za-z_][A-Za-z0-9_]*)\(\s*('[^'"]*'|"[^"]*"|[A-Za-z0-9_.+-]*)\s*\)`)
)

var loopAttrs = map[string]string{
	"index":     "forloop.Counter",
	"index0":    "forloop.Counter0",
	"revindex":  "forloop.Revcounter",
	"revindex0": "forloop.Revcounter0",
	"first":     "forloop.First",
	"last":      "forloop.Last",
}

// translateJinja rewrites loop.<attr> and name(arg) filter calls into their
// pongo2 spelling. A loop attribute without a pongo2 equivalent is an error.
func translateJinja(tmpl string) (string, error) {
	var unsupported string
	out := tagRe.ReplaceAllStringFunc(tmpl, func(tag string) string {
		tag = loopAttrRe.ReplaceAllStringFunc(tag, func(m string) string {
			attr := loopAttrRe.FindStringSubmatch(m)[1]
			repl, ok := loopAttrs[attr]
			if !ok {
				if unsupported == "" {
					unsupported = m
				}
				return m
			}
			return repl
		})
		return filterCallRe.ReplaceAllStringFunc(tag, func(m string) string {
			sub := filterCallRe.FindStringSubmatch(m)
			arg := sub[2]
			if arg == "" {
				return "|" + sub[1]
			}
			if strings.HasPrefix(arg, "'") {
				arg = `"` + strings.Trim(arg, "'") + `"`
			}
			return "|" + sub[1] + ":" + arg
		})
	})
	if unsupported != "" {
		return "", apperr.Newf(apperr.Template, "%s is not supported in query templates", unsupported)
	}
	return out, nil
}

// trimTrailingNewline drops one final newline from a template source.
func trimTrailingNewline(s string) string {
	if strings.HasSuffix(s, "\r\n") {
		return s[:len(s)-2]
	}
	return strings.TrimSuffix(s, "\n")
}
