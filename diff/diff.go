// Package diff classifies freshly extracted source fragments against a
// previously stored translation bundle.
package diff

import (
	"fmt"

	"github.com/coursekit/go-i18n/bundle"
)

// Verb classifies one fragment's translation status relative to the current
// source. The wire values are stable; interchange tooling depends on them.
type Verb int

const (
	// VerbNew marks a fragment with no stored translation record.
	VerbNew Verb = 1
	// VerbCurrent marks a fragment whose stored source still matches.
	VerbCurrent Verb = 2
	// VerbChanged marks a fragment whose source drifted since translation.
	VerbChanged Verb = 3
)

func (v Verb) String() string {
	switch v {
	case VerbNew:
		return "new"
	case VerbCurrent:
		return "current"
	case VerbChanged:
		return "changed"
	default:
		return fmt.Sprintf("verb(%d)", int(v))
	}
}

// Fragment is one classified fragment record. OldSourceValue is nil for new
// fragments; for the rest it carries the source text the stored translation
// was made from.
type Fragment struct {
	SourceValue    string  `json:"source_value"`
	OldSourceValue *string `json:"old_source_value"`
	TargetValue    string  `json:"target_value"`
	Verb           Verb    `json:"verb"`
	Changed        bool    `json:"changed"`
}

// Mismatch reports a stored section whose fragment count disagrees with the
// current extraction. It is a data condition, not a failure: callers decide
// per audience how to surface it.
type Mismatch struct {
	Stored   int
	Expected int
}

// Message renders the reviewer-facing description of the mismatch.
func (m *Mismatch) Message() string {
	return fmt.Sprintf(
		"The lists of translations must have the same number of items (%d) "+
			"as extracted from the original content (%d).",
		m.Stored, m.Expected)
}

// Section is the classified view of one field for the translation console.
type Section struct {
	Name        string           `json:"name"`
	Label       string           `json:"label"`
	Type        bundle.FieldType `json:"type"`
	SourceValue string           `json:"source_value"`
	Data        []Fragment       `json:"data"`
	Mismatch    *Mismatch        `json:"mismatch,omitempty"`
}

// DiffSection classifies the current fragments of one field against the
// stored section, if any. A missing stored section makes every fragment new.
// When the stored fragment count disagrees with the extraction the section is
// flagged as a structural mismatch and per-fragment classification is
// skipped: the mismatch takes precedence.
func DiffSection(name, label string, fieldType bundle.FieldType, sourceValue string, current []string, stored *bundle.Section) Section {
	section := Section{
		Name:        name,
		Label:       label,
		Type:        fieldType,
		SourceValue: sourceValue,
	}

	if stored == nil {
		section.Data = make([]Fragment, 0, len(current))
		for _, source := range current {
			section.Data = append(section.Data, Fragment{
				SourceValue: source,
				Verb:        VerbNew,
			})
		}
		return section
	}

	if len(stored.Data) != len(current) {
		section.Mismatch = &Mismatch{Stored: len(stored.Data), Expected: len(current)}
		return section
	}

	section.Data = make([]Fragment, 0, len(current))
	for i, source := range current {
		record := stored.Data[i]
		oldSource := record.SourceValue
		fragment := Fragment{
			SourceValue:    source,
			OldSourceValue: &oldSource,
			TargetValue:    record.TargetValue,
		}
		if record.SourceValue == source {
			fragment.Verb = VerbCurrent
		} else {
			fragment.Verb = VerbChanged
			fragment.Changed = true
		}
		section.Data = append(section.Data, fragment)
	}
	return section
}
