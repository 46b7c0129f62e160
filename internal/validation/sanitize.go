// Package validation contains input validation and content sanitization rules.
package validation

import "strings"

// markupEscaper escapes the two characters that would let stored content be
// interpreted as HTML. Intentionally narrower than html.EscapeString: the
// stored bytes for '&' and quotes must pass through unchanged.
var markupEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;")

// SanitizeContent escapes '<' and '>' in user-supplied content. Applied to
// every stored post and comment body before it reaches a repository.
func SanitizeContent(s string) string {
	return markupEscaper.Replace(s)
}

// IsSanitized reports whether s contains no raw markup characters.
func IsSanitized(s string) bool {
	return !strings.ContainsAny(s, "<>")
}
