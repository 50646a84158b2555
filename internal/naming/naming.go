// Package naming converts model names into field-name fragments: the
// parent-side back-reference field and the collapsed serialization keys.
package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Uncapitalize lowers the first rune: "BlogPost" -> "blogPost".
func Uncapitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// Snakelize converts UpperCamel or lowerCamel to snake_case:
// "BlogPost" -> "blog_post".
func Snakelize(s string) string {
	s = Uncapitalize(s)
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		if unicode.IsUpper(r) {
			b.WriteByte('_')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// UpperCamelize converts snake_case or lowerCamel to UpperCamel:
// "blog_post" -> "BlogPost", "blogPost" -> "BlogPost".
func UpperCamelize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	upper := true
	for _, r := range s {
		if r == '_' {
			upper = true
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Normalizer maps a model name to a field-name fragment.
type Normalizer func(string) string

// For returns the normalizer for the chosen case convention.
func For(camelCase bool) Normalizer {
	if camelCase {
		return Uncapitalize
	}
	return Snakelize
}

// BackReferenceField returns the parent-side field holding ids of children
// of model: the normalized name plus "s". Pluralization is by suffix only.
func BackReferenceField(normalize Normalizer, model string) string {
	return normalize(model) + "s"
}
