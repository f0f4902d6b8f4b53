package news

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

var htmlTag = regexp.MustCompile(`<[^>]*>`)

// PlainText strips HTML tags, unescapes entities and collapses whitespace.
// Non-breaking spaces count as whitespace.
func PlainText(input string) string {
	cleaned := htmlTag.ReplaceAllString(input, " ")
	cleaned = html.UnescapeString(cleaned)
	return strings.Join(strings.Fields(cleaned), " ")
}

// Excerpt is the plain-text prefix of content, at most n runes, cut at a
// word boundary when possible and marked with an ellipsis when shortened.
func Excerpt(content string, n int) string {
	text := PlainText(content)
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}

	runes := []rune(text)
	cut := string(runes[:n])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
