package retrieval

import (
	"strings"

	"github.com/ziadkadry99/physio-intake/internal/vectordb"
)

// Dedupe keeps the first occurrence of each distinct content and drops hits
// with empty content.
func Dedupe(hits []Hit) []Hit {
	seen := make(map[string]struct{}, len(hits))
	out := make([]Hit, 0, len(hits))
	for _, h := range hits {
		if h.Content == "" {
			continue
		}
		if _, ok := seen[h.Content]; ok {
			continue
		}
		seen[h.Content] = struct{}{}
		out = append(out, h)
	}
	return out
}

// Format renders hits as labeled blocks separated by blank lines:
//
//	[ASSESSMENT - knee]
//	content
func Format(hits []Hit) string {
	blocks := make([]string, 0, len(hits))
	for _, h := range hits {
		blocks = append(blocks, "["+label(h.Type)+" - "+h.Category+"]\n"+h.Content+"\n")
	}
	return strings.Join(blocks, "\n")
}

func label(t vectordb.DocumentType) string {
	if t == "" {
		t = vectordb.DocTypeUnspecified
	}
	return strings.ToUpper(string(t))
}
