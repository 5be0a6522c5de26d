// Package report renders intake summaries and checks them for the expected
// section structure.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Summary section headings, in the order the summary prompt asks for them.
const (
	SectionClinicalUnderstanding = "Clinical Understanding"
	SectionChiefComplaints       = "Chief Complaints"
	SectionProvisionalDiagnosis  = "Provisional Diagnosis"
	SectionAssessment            = "Assessment & Recommendation"
)

// RequiredSections lists every heading a finished summary should carry.
var RequiredSections = []string{
	SectionClinicalUnderstanding,
	SectionChiefComplaints,
	SectionProvisionalDiagnosis,
	SectionAssessment,
}

// Raw HTML in generated text is escaped rather than passed through.
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

// RenderHTML converts a markdown summary to an HTML fragment.
func RenderHTML(summary string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(summary), &buf); err != nil {
		return "", fmt.Errorf("rendering summary: %w", err)
	}
	return buf.String(), nil
}

// Headings returns the plain text of every heading in the document, in order.
func Headings(summary string) []string {
	src := []byte(summary)
	doc := md.Parser().Parse(text.NewReader(src))

	var out []string
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			out = append(out, strings.TrimSpace(plainText(h, src)))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return out
}

// MissingSections reports which required headings the summary lacks.
// Matching ignores case and surrounding emphasis.
func MissingSections(summary string) []string {
	have := make(map[string]bool)
	for _, h := range Headings(summary) {
		have[normalize(h)] = true
	}
	var missing []string
	for _, s := range RequiredSections {
		if !have[normalize(s)] {
			missing = append(missing, s)
		}
	}
	return missing
}

func plainText(n ast.Node, src []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		default:
			b.WriteString(plainText(c, src))
		}
	}
	return b.String()
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
