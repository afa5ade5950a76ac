package render

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// maxDecodeRounds bounds how many layers of entity encoding are decoded.
const maxDecodeRounds = 4

// Sanitize removes all HTML tags and attributes, leaving the text content.
// Entities are decoded for display, and the result is sanitized again until
// it's stable, so encoded markup such as &lt;b&gt; doesn't come back as a tag.
func Sanitize(s string) string {
	for range maxDecodeRounds {
		out := html.UnescapeString(strict.Sanitize(s))
		if out == s {
			return strings.TrimSpace(s)
		}
		s = out
	}
	// Still changing, leave the last layer encoded.
	return strings.TrimSpace(strict.Sanitize(s))
}
