// Package htmlsanitize strips markup from user-supplied free text.
//
// Listings, contact messages and profile names are plain text. Anything that
// looks like markup is removed before the value reaches the store; templates
// escape on output as usual.
package htmlsanitize

import (
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// StripTags removes every HTML element and returns unescaped plain text.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// IsPlainText reports whether s contains no HTML elements.
func IsPlainText(s string) bool {
	if s == "" {
		return true
	}
	return StripTags(s) == strings.TrimSpace(s)
}

// PlainTextToHTML escapes s and converts newlines to <br>, wrapped in <p>.
func PlainTextToHTML(s string) template.HTML {
	if s == "" {
		return ""
	}
	escaped := html.EscapeString(s)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	escaped = strings.ReplaceAll(escaped, "\n", "<br>")
	return template.HTML("<p>" + escaped + "</p>")
}
