package vectordb

import (
	"fmt"
	"strings"
)

// FormatResults renders search results as human-readable text.
func FormatResults(results []SearchResult) string {
	if len(results) == 0 {
		return "No results found."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d result(s):\n\n", len(results))

	for i, r := range results {
		md := r.Document.Metadata
		fmt.Fprintf(&sb, "--- Result %d (similarity: %.4f) ---\n", i+1, r.Similarity)
		if md.Type != "" {
			fmt.Fprintf(&sb, "Type: %s\n", md.Type)
		}
		if md.Category != "" {
			fmt.Fprintf(&sb, "Category: %s\n", md.Category)
		}
		if md.Source != "" {
			fmt.Fprintf(&sb, "Source: %s\n", md.Source)
		}
		sb.WriteString("\n")
		sb.WriteString(r.Document.Content)
		sb.WriteString("\n\n")
	}

	return sb.String()
}
