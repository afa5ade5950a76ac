package render

import (
	"strings"
	"testing"
)

func TestSanitizeRemovesDeeplyEncodedMarkup(t *testing.T) {
	input := "&amp;amp;amp;amp;lt;b&amp;amp;amp;amp;gt;x"
	actual := Sanitize(input)
	if strings.ContainsAny(actual, "<>") {
		t.Errorf("expected no tags, got %q", actual)
	}
}

func TestSanitizeTrimsWhitespace(t *testing.T) {
	if actual := Sanitize("  <div>\n  hello\n</div>  "); actual != "hello" {
		t.Errorf("expected %q, got %q", "hello", actual)
	}
}
