package report

import (
	"strings"
	"testing"
)

const fullSummary = `---

### Clinical Understanding
Based on the information provided, it appears you are experiencing **knee pain**.

### Chief Complaints
- **Pain on stairs**
- **Pain intensity (6/10)**

### Provisional Diagnosis
The symptoms suggest a possible case of **patellofemoral pain syndrome**.

### Assessment & Recommendation
I recommend that you consult with a qualified physiotherapist who can provide a detailed assessment of your condition.
`

func TestHeadings(t *testing.T) {
	got := Headings(fullSummary)
	if len(got) != 4 {
		t.Fatalf("Headings() = %q, want 4 headings", got)
	}
	if got[3] != SectionAssessment {
		t.Errorf("last heading = %q, want %q", got[3], SectionAssessment)
	}
}

func TestMissingSections(t *testing.T) {
	if missing := MissingSections(fullSummary); len(missing) != 0 {
		t.Errorf("expected no missing sections, got %q", missing)
	}

	partial := "## **clinical understanding**\ntext\n\n## Chief Complaints\n- a\n"
	missing := MissingSections(partial)
	if len(missing) != 2 || missing[0] != SectionProvisionalDiagnosis || missing[1] != SectionAssessment {
		t.Errorf("MissingSections() = %q", missing)
	}

	if got := MissingSections("INFORMATION_COMPLETE"); len(got) != len(RequiredSections) {
		t.Errorf("plain text should miss every section, got %q", got)
	}
}

func TestRenderHTML(t *testing.T) {
	out, err := RenderHTML(fullSummary)
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	for _, want := range []string{"<h3", "Chief Complaints", "<strong>knee pain</strong>", "<li>"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderHTMLEscapesRawHTML(t *testing.T) {
	out, err := RenderHTML("hello <script>alert(1)</script>")
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Errorf("raw HTML passed through:\n%s", out)
	}
}
