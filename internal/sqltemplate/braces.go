// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqltemplate

import (
	"fmt"
	"strings"

	apperr "dawgtools/cli/internal/errors"
)

// FormatBraces replaces {name} fields in s with the matching value from params.
// "{{" and "}}" produce literal braces. Positional fields, format specs and
// unknown names are errors.
func FormatBraces(s string, params map[string]any) (string, error) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '{':
			if i+1 < len(s) && s[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(s[i+1:], '}')
			if end < 0 {
				return "", apperr.Newf(apperr.Template, "unmatched '{' in %q", s)
			}
			name := s[i+1 : i+1+end]
			if name == "" || strings.ContainsAny(name, "{:!") {
				return "", apperr.Newf(apperr.Template, "unsupported field {%s} in %q", name, s)
			}
			v, ok := params[name]
			if !ok {
				return "", apperr.Newf(apperr.Template, "no value for {%s}", name)
			}
			b.WriteString(fmt.Sprint(v))
			i += end + 1
		case '}':
			if i+1 < len(s) && s[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return "", apperr.Newf(apperr.Template, "single '}' in %q", s)
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}
