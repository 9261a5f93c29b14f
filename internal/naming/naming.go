// Package naming converts source identifiers between the naming_convention
// preference values a backend accepts (spec §6): snake_case, the surface
// subset's own convention, and camelCase, required by targets whose idiom
// rejects underscores. Conversion round-trips for snake_case identifiers made
// of lower-case ASCII words that start with a letter and are joined by single
// underscores; leading, trailing or doubled underscores are not preserved.
package naming

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.Und)

// Convention is one of the enumerated naming_convention preference values.
type Convention string

const (
	SnakeCase Convention = "snake_case"
	CamelCase Convention = "camel_case"
)

// Apply renders ident (assumed snake_case, the surface language's own
// convention) under convention.
func Apply(ident string, convention Convention) string {
	switch convention {
	case CamelCase:
		return ToCamel(ident)
	default:
		return ident
	}
}

// ToCamel converts a snake_case identifier to camelCase: the first word
// stays lowercase, every later word is title-cased and concatenated.
func ToCamel(ident string) string {
	parts := strings.Split(ident, "_")
	var b strings.Builder
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i == 0 {
			b.WriteString(p)
			continue
		}
		b.WriteString(titleCaser.String(p))
	}
	return b.String()
}

// ToSnake converts a camelCase identifier back to snake_case by inserting an
// underscore before every upper-case ASCII letter and lower-casing it. This
// is the inverse of ToCamel only for lower-case ASCII words that start with a
// letter and are joined by single underscores; "_x" comes back as "x".
func ToSnake(ident string) string {
	var b strings.Builder
	for i, r := range ident {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
