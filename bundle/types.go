package bundle

import (
	"github.com/coursekit/go-i18n/resource"
)

// FieldType declares how a field value is extracted: string fields hold one
// opaque fragment, html fields hold zero or more.
type FieldType string

const (
	FieldString FieldType = "string"
	FieldHTML   FieldType = "html"
)

// Fragment pairs one extracted source text with its translation.
type Fragment struct {
	SourceValue string `json:"source_value"`
	TargetValue string `json:"target_value"`
}

// Section stores the fragments of one named field. SourceValue keeps the full
// original field value at the time of the last save so whole-field drift can
// be detected later.
type Section struct {
	Name        string     `json:"name"`
	Type        FieldType  `json:"type"`
	SourceValue string     `json:"source_value"`
	Data        []Fragment `json:"data"`
}

// Bundle holds the ordered sections of one resource translated into one
// locale. Saves replace the whole bundle; there are no patch semantics.
type Bundle struct {
	Key      resource.BundleKey `json:"key"`
	Sections []Section          `json:"sections"`
}

// Section returns the named section, or nil when the bundle has none.
func (b *Bundle) Section(name string) *Section {
	if b == nil {
		return nil
	}
	for i := range b.Sections {
		if b.Sections[i].Name == name {
			return &b.Sections[i]
		}
	}
	return nil
}

// Clone returns a deep copy so callers can mutate without aliasing stores.
func (b *Bundle) Clone() *Bundle {
	if b == nil {
		return nil
	}
	out := &Bundle{Key: b.Key, Sections: make([]Section, len(b.Sections))}
	for i, section := range b.Sections {
		copied := section
		copied.Data = make([]Fragment, len(section.Data))
		copy(copied.Data, section.Data)
		out.Sections[i] = copied
	}
	return out
}

// Status tracks per-locale translation progress.
type Status int

const (
	StatusNotStarted Status = 0
	StatusInProgress Status = 1
	StatusDone       Status = 2
)

// Label returns the human-readable dashboard label for the status.
func (s Status) Label() string {
	switch s {
	case StatusInProgress:
		return "In progress"
	case StatusDone:
		return "Done"
	default:
		return "Not started"
	}
}

// Class returns the dashboard style class for the status.
func (s Status) Class() string {
	switch s {
	case StatusInProgress:
		return "in-progress"
	case StatusDone:
		return "done"
	default:
		return "not-started"
	}
}

// Progress records a resource's translatability flag and the latest derived
// per-locale status snapshot. Absence of a record is equivalent to the
// defaults: translatable, not started everywhere.
type Progress struct {
	Key            resource.Key      `json:"key"`
	IsTranslatable bool              `json:"is_translatable"`
	Locales        map[string]Status `json:"locales"`
}

// NewProgress constructs a progress record with default values.
func NewProgress(key resource.Key) *Progress {
	return &Progress{
		Key:            key,
		IsTranslatable: true,
		Locales:        map[string]Status{},
	}
}

// Status returns the recorded status for a locale, defaulting to not started.
func (p *Progress) Status(locale string) Status {
	if p == nil || p.Locales == nil {
		return StatusNotStarted
	}
	return p.Locales[locale]
}

// SetStatus records the derived status for a locale.
func (p *Progress) SetStatus(locale string, status Status) {
	if p.Locales == nil {
		p.Locales = map[string]Status{}
	}
	p.Locales[locale] = status
}

// Clone returns a deep copy of the progress record.
func (p *Progress) Clone() *Progress {
	if p == nil {
		return nil
	}
	out := &Progress{Key: p.Key, IsTranslatable: p.IsTranslatable}
	if p.Locales != nil {
		out.Locales = make(map[string]Status, len(p.Locales))
		for locale, status := range p.Locales {
			out.Locales[locale] = status
		}
	}
	return out
}
