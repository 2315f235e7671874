// Package sanitize provides text sanitization utilities to prevent XSS attacks.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	// htmlTagRegex matches HTML tags
	htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

	entityReplacer = strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&amp;", "&",
		"&quot;", "\"",
		"&#39;", "'",
	)
)

// StripHTML removes all HTML tags from a string, making it safe for text-only display.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = entityReplacer.Replace(result)
	// Re-strip after entity decode to catch encoded tags
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// HasMarkup reports whether s contains an HTML tag.
func HasMarkup(s string) bool {
	return htmlTagRegex.MatchString(s)
}

// Text sanitizes a single-line field such as a lead name, company or source:
// tags are stripped and runs of whitespace collapse to one space.
func Text(s string) string {
	return strings.Join(strings.Fields(StripHTML(s)), " ")
}
