// Package sanitizer normalizes untrusted form input before validation.
//
// Every function is a pure string (or slice) transform. Apply and Compose
// chain them:
//
//	name := sanitizer.Apply(raw, sanitizer.StripHTML, sanitizer.SingleLine, sanitizer.MaxLength(100))
package sanitizer

import (
	"html"
	"regexp"
	"slices"
	"strings"
	"unicode"
)

var (
	htmlTagRegex    = regexp.MustCompile(`<[^>]*>`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
	dotRegex        = regexp.MustCompile(`\.{2,}`)
)

// Apply runs transforms over value in order.
func Apply[T any](value T, transforms ...func(T) T) T {
	for _, fn := range transforms {
		value = fn(value)
	}
	return value
}

// Compose returns a reusable pipeline.
func Compose[T any](transforms ...func(T) T) func(T) T {
	return func(value T) T { return Apply(value, transforms...) }
}

func Trim(s string) string    { return strings.TrimSpace(s) }
func ToLower(s string) string { return strings.ToLower(s) }

// MaxLength returns a transform cutting strings to n runes.
func MaxLength(n int) func(string) string {
	return func(s string) string {
		if n <= 0 {
			return ""
		}
		if r := []rune(s); len(r) > n {
			return string(r[:n])
		}
		return s
	}
}

// RemoveControlChars drops every control character, line breaks included.
func RemoveControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// SingleLine collapses all whitespace runs, line breaks included, into one
// space and trims the result.
func SingleLine(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

// StripHTML removes tags and decodes entities.
func StripHTML(s string) string {
	return html.UnescapeString(htmlTagRegex.ReplaceAllString(s, ""))
}

// NormalizeEmail trims, lowercases and collapses repeated dots in the local
// part. Input without exactly one "@" is only trimmed and lowercased.
func NormalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return email
	}
	local = strings.Trim(dotRegex.ReplaceAllString(local, "."), ".")
	return local + "@" + domain
}

// NormalizePhone keeps digits and a leading "+".
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	var b strings.Builder
	for i, r := range phone {
		if unicode.IsDigit(r) || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Text is the pipeline for free-text single-line fields.
func Text(maxLen int) func(string) string {
	return Compose(StripHTML, SingleLine, RemoveControlChars, SingleLine, MaxLength(maxLen))
}

// Tokens applies fn to each element, drops empty results and duplicates,
// and keeps first-seen order.
func Tokens(values []string, fn func(string) string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = fn(v); v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
