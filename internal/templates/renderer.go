// Package templates implements the {{token}} substitution used for reminder
// messages and proposal documents.
package templates

import "strings"

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

// Render replaces every {{name}} in tmpl whose name is a key of values.
// Unknown placeholders and unterminated delimiters are copied unchanged. The
// scan is a single left-to-right pass, so text coming from a value is never
// interpreted as a placeholder.
func Render(tmpl string, values map[string]string) string {
	var b strings.Builder
	b.Grow(len(tmpl))

	rest := tmpl
	for {
		start := strings.Index(rest, openDelim)
		if start < 0 {
			b.WriteString(rest)
			return b.String()
		}
		end := strings.Index(rest[start+len(openDelim):], closeDelim)
		if end < 0 {
			b.WriteString(rest)
			return b.String()
		}

		b.WriteString(rest[:start])
		name := rest[start+len(openDelim) : start+len(openDelim)+end]
		placeholder := rest[start : start+len(openDelim)+end+len(closeDelim)]

		if v, ok := values[name]; ok {
			b.WriteString(v)
			rest = rest[len(placeholder)+start:]
			continue
		}

		// Leave the opening braces in place and resume right after them so a
		// nested "{{{{x}}" still finds the inner placeholder.
		b.WriteString(openDelim)
		rest = rest[start+len(openDelim):]
	}
}
