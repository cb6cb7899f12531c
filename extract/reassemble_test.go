package extract

import (
	"strings"
	"testing"

	"github.com/coursekit/go-i18n/bundle"
)

func TestReassemble_Paragraphs(t *testing.T) {
	extraction := ExtractField(bundle.FieldHTML, "<p>a</p><p>b</p>", newTestRegistry())
	out, err := extraction.Reassemble([]string{"A", "B"})
	if err != nil {
		t.Fatalf("Reassemble() error = %v", err)
	}
	if out != "<p>A</p><p>B</p>" {
		t.Fatalf("Reassemble() = %q", out)
	}
}

func TestReassemble_StringField(t *testing.T) {
	extraction := ExtractField(bundle.FieldString, "Test Unit", newTestRegistry())
	out, err := extraction.Reassemble([]string{"TEST UNIT"})
	if err != nil {
		t.Fatalf("Reassemble() error = %v", err)
	}
	if out != "TEST UNIT" {
		t.Fatalf("Reassemble() = %q", out)
	}

	out, err = extraction.Reassemble([]string{""})
	if err != nil {
		t.Fatalf("Reassemble() error = %v", err)
	}
	if out != "Test Unit" {
		t.Fatalf("empty translation should keep the source, got %q", out)
	}
}

func TestReassemble_EmptyEntriesKeepSource(t *testing.T) {
	extraction := ExtractField(bundle.FieldHTML, "<p>a</p><p>b</p>", newTestRegistry())
	out, err := extraction.Reassemble([]string{"A", ""})
	if err != nil {
		t.Fatalf("Reassemble() error = %v", err)
	}
	if out != "<p>A</p><p>b</p>" {
		t.Fatalf("Reassemble() = %q", out)
	}
}

func TestReassemble_PositionalTolerance(t *testing.T) {
	extraction := ExtractField(bundle.FieldHTML, "<p>a</p><p>b</p>", newTestRegistry())

	out, err := extraction.Reassemble([]string{"A"})
	if err != nil {
		t.Fatalf("Reassemble() error = %v", err)
	}
	if out != "<p>A</p><p>b</p>" {
		t.Fatalf("short list: Reassemble() = %q", out)
	}

	out, err = extraction.Reassemble([]string{"A", "B", "C"})
	if err != nil {
		t.Fatalf("Reassemble() error = %v", err)
	}
	if out != "<p>A</p><p>B</p>" {
		t.Fatalf("long list: Reassemble() = %q", out)
	}
}

func TestReassemble_PlaceholderExpansion(t *testing.T) {
	source := `text<gcb-youtube videoid="Kdg2drcUjYI" instanceid="c4CLTDvttJEu"></gcb-youtube>`
	extraction := ExtractField(bundle.FieldHTML, source, newTestRegistry())

	out, err := extraction.Reassemble([]string{`TEXT<gcb-youtube#1 videoid="jUfccP5Rl5M" />`})
	if err != nil {
		t.Fatalf("Reassemble() error = %v", err)
	}
	if !strings.HasPrefix(out, "TEXT") {
		t.Fatalf("translated text missing: %q", out)
	}
	if !strings.Contains(out, `videoid="jUfccP5Rl5M"`) {
		t.Fatalf("marker attribute override missing: %q", out)
	}
	if !strings.Contains(out, `instanceid="c4CLTDvttJEu"`) {
		t.Fatalf("hidden attribute not restored: %q", out)
	}
	if !strings.Contains(out, "<gcb-youtube") || !strings.Contains(out, "</gcb-youtube>") {
		t.Fatalf("expanded element not balanced: %q", out)
	}
}

func TestReassemble_UnknownMarkerKeptAsText(t *testing.T) {
	extraction := ExtractField(bundle.FieldHTML, "<p>a</p>", newTestRegistry())
	out, err := extraction.Reassemble([]string{`A<gcb-bogus#7 x="1" />`})
	if err != nil {
		t.Fatalf("Reassemble() error = %v", err)
	}
	if !strings.Contains(out, "A") {
		t.Fatalf("translated text missing: %q", out)
	}
	if strings.Contains(out, "<gcb-bogus ") {
		t.Fatalf("unknown marker must not expand to an element: %q", out)
	}
}

func TestReassemble_IdentityKeepsStructure(t *testing.T) {
	source := "<p>a</p><p>b</p>"
	extraction := ExtractField(bundle.FieldHTML, source, newTestRegistry())
	out, err := extraction.Reassemble([]string{"a", "b"})
	if err != nil {
		t.Fatalf("Reassemble() error = %v", err)
	}
	if out != source {
		t.Fatalf("identity reassembly changed content: %q", out)
	}
}
