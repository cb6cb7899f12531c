package extract

import (
	"testing"

	"github.com/coursekit/go-i18n/bundle"
)

func newTestRegistry() *Registry {
	registry := NewRegistry()
	registry.RegisterPrefix("gcb-")
	registry.Register("gcb-youtube", "videoid")
	registry.Register("question")
	registry.Register("question-group")
	return registry
}

func TestExtractField_StringIsVerbatim(t *testing.T) {
	extraction := ExtractField(bundle.FieldString, "Test Unit", newTestRegistry())
	fragments := extraction.Fragments()
	if len(fragments) != 1 || fragments[0] != "Test Unit" {
		t.Fatalf("unexpected fragments %q", fragments)
	}

	extraction = ExtractField(bundle.FieldString, "", newTestRegistry())
	if fragments := extraction.Fragments(); len(fragments) != 1 || fragments[0] != "" {
		t.Fatalf("empty string field should yield one empty fragment, got %q", fragments)
	}
}

func TestExtractField_HTMLParagraphs(t *testing.T) {
	extraction := ExtractField(bundle.FieldHTML, "<p>a</p><p>b</p>", newTestRegistry())
	fragments := extraction.Fragments()
	if len(fragments) != 2 {
		t.Fatalf("expected 2 fragments, got %d (%q)", len(fragments), fragments)
	}
	if fragments[0] != "a" || fragments[1] != "b" {
		t.Fatalf("unexpected fragments %q", fragments)
	}
}

func TestExtractField_EmptyHTML(t *testing.T) {
	extraction := ExtractField(bundle.FieldHTML, "", newTestRegistry())
	if fragments := extraction.Fragments(); len(fragments) != 0 {
		t.Fatalf("empty html should yield zero fragments, got %q", fragments)
	}
}

func TestExtractField_CustomTagPlaceholder(t *testing.T) {
	extraction := ExtractField(bundle.FieldHTML, `text<gcb-widget id="1"/>`, newTestRegistry())
	fragments := extraction.Fragments()
	if len(fragments) != 1 {
		t.Fatalf("expected 1 fragment, got %d (%q)", len(fragments), fragments)
	}
	if fragments[0] != `text<gcb-widget#1 id="1" />` {
		t.Fatalf("unexpected fragment %q", fragments[0])
	}
	if _, ok := extraction.Table().Lookup("gcb-widget", 1); !ok {
		t.Fatalf("placeholder table missing gcb-widget#1")
	}
}

func TestExtractField_HiddenAttributesFiltered(t *testing.T) {
	source := `text<gcb-youtube videoid="Kdg2drcUjYI" instanceid="c4CLTDvttJEu"></gcb-youtube>`
	extraction := ExtractField(bundle.FieldHTML, source, newTestRegistry())
	fragments := extraction.Fragments()
	if len(fragments) != 1 {
		t.Fatalf("expected 1 fragment, got %d (%q)", len(fragments), fragments)
	}
	if fragments[0] != `text<gcb-youtube#1 videoid="Kdg2drcUjYI" />` {
		t.Fatalf("unexpected fragment %q", fragments[0])
	}

	placeholder, ok := extraction.Table().Lookup("gcb-youtube", 1)
	if !ok {
		t.Fatalf("placeholder table missing gcb-youtube#1")
	}
	if len(placeholder.Attrs) != 2 {
		t.Fatalf("table should keep all attributes, got %+v", placeholder.Attrs)
	}
}

func TestExtractField_RepeatedTagsAreIndexed(t *testing.T) {
	source := `<gcb-widget id="1"/>mid<gcb-widget id="2"/>`
	extraction := ExtractField(bundle.FieldHTML, source, newTestRegistry())
	fragments := extraction.Fragments()
	if len(fragments) != 1 {
		t.Fatalf("expected 1 fragment, got %q", fragments)
	}
	want := `<gcb-widget#1 id="1" />mid<gcb-widget#2 id="2" />`
	if fragments[0] != want {
		t.Fatalf("fragment = %q, want %q", fragments[0], want)
	}
}

func TestExtractField_InlineMarkupDelimitsRuns(t *testing.T) {
	extraction := ExtractField(bundle.FieldHTML, "<p>a<b>x</b>c</p>", newTestRegistry())
	fragments := extraction.Fragments()
	if len(fragments) != 3 {
		t.Fatalf("expected 3 fragments, got %q", fragments)
	}
	if fragments[0] != "a" || fragments[1] != "x" || fragments[2] != "c" {
		t.Fatalf("unexpected fragments %q", fragments)
	}
}

func TestExtractField_Deterministic(t *testing.T) {
	source := `<p>a</p>text<gcb-widget id="1"/><p>b</p>`
	first := ExtractField(bundle.FieldHTML, source, newTestRegistry())
	second := ExtractField(bundle.FieldHTML, source, newTestRegistry())

	a, b := first.Fragments(), second.Fragments()
	if len(a) != len(b) {
		t.Fatalf("fragment counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("fragment %d differs: %q vs %q", i, a[i], b[i])
		}
	}
}

func TestExtractField_WhitespaceOnlyRunsDropped(t *testing.T) {
	extraction := ExtractField(bundle.FieldHTML, "<p>a</p>\n   <p>b</p>", newTestRegistry())
	fragments := extraction.Fragments()
	if len(fragments) != 2 {
		t.Fatalf("whitespace between blocks should not extract, got %q", fragments)
	}
}

func TestExtractField_EntitiesStayEscaped(t *testing.T) {
	extraction := ExtractField(bundle.FieldHTML, "<p>a &amp; b</p>", newTestRegistry())
	fragments := extraction.Fragments()
	if len(fragments) != 1 {
		t.Fatalf("expected 1 fragment, got %q", fragments)
	}
	if fragments[0] != "a &amp; b" {
		t.Fatalf("unexpected fragment %q", fragments[0])
	}
}
