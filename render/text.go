package render

import (
	"fmt"
	"io"
	"strings"
)

// WriteText writes the model as plain text.
func WriteText(w io.Writer, m DisplayModel) (err error) {
	var sb strings.Builder
	for _, line := range []string{m.StatusLine, m.Error, m.Message} {
		if line != "" {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	if len(m.Items) > 0 {
		sb.WriteString("Search Results:\n")
	}
	for i, item := range m.Items {
		fmt.Fprintf(&sb, "\n%d.\n", i+1)
		for _, f := range item.Fields() {
			fmt.Fprintf(&sb, "  %s: %s\n", f.Label, f.Value)
		}
	}
	_, err = io.WriteString(w, sb.String())
	return err
}
