package extract

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func embedRegistry() *Registry {
	registry := NewRegistry()
	registry.RegisterPrefix("gcb-")
	registry.RegisterExpander("gcb-youtube", func(attrs []Attr) (string, error) {
		for _, attr := range attrs {
			if attr.Name == "videoid" {
				return fmt.Sprintf(`<iframe src="https://www.youtube.com/embed/%s"></iframe>`, attr.Value), nil
			}
		}
		return "", errors.New("videoid missing")
	})
	return registry
}

func TestExpandTags_RegisteredExpander(t *testing.T) {
	registry := embedRegistry()
	out, err := ExpandTags(`<p>intro</p><gcb-youtube videoid="Kdg2drcUjYI"></gcb-youtube>`, registry)
	if err != nil {
		t.Fatalf("ExpandTags() error = %v", err)
	}
	if !strings.Contains(out, `<iframe src="https://www.youtube.com/embed/Kdg2drcUjYI">`) {
		t.Fatalf("embed not expanded: %q", out)
	}
	if strings.Contains(out, "gcb-youtube") {
		t.Fatalf("custom element left behind: %q", out)
	}
	if !strings.Contains(out, "<p>intro</p>") {
		t.Fatalf("surrounding markup changed: %q", out)
	}
}

func TestExpandTags_UnregisteredTagUntouched(t *testing.T) {
	registry := embedRegistry()
	source := `<gcb-markdown instanceid="x">body</gcb-markdown>`
	out, err := ExpandTags(source, registry)
	if err != nil {
		t.Fatalf("ExpandTags() error = %v", err)
	}
	if out != source {
		t.Fatalf("ExpandTags() = %q, want input unchanged", out)
	}
}

func TestExpandTags_ExpanderErrorSurfaces(t *testing.T) {
	registry := embedRegistry()
	if _, err := ExpandTags(`<gcb-youtube></gcb-youtube>`, registry); err == nil {
		t.Fatal("expected expander error")
	}
}

func TestExpandTags_SelfClosedElement(t *testing.T) {
	registry := embedRegistry()
	out, err := ExpandTags(`before <gcb-youtube videoid="jUfccP5Rl5M" /> after`, registry)
	if err != nil {
		t.Fatalf("ExpandTags() error = %v", err)
	}
	if !strings.Contains(out, "embed/jUfccP5Rl5M") {
		t.Fatalf("self-closed element not expanded: %q", out)
	}
	if !strings.Contains(out, "before ") || !strings.Contains(out, " after") {
		t.Fatalf("sibling text lost: %q", out)
	}
}
