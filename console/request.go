package console

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/coursekit/go-i18n/bundle"
	"github.com/coursekit/go-i18n/resource"
)

// SectionInput carries the translator-submitted fragments for one field. The
// fragment order must match the extraction order of the current source.
type SectionInput struct {
	Name string            `json:"name"`
	Data []bundle.Fragment `json:"data"`
}

// SaveRequest replaces a resource's translation bundle for one locale
// wholesale. Sections omitted from the request are dropped from the stored
// bundle.
type SaveRequest struct {
	Key      string         `json:"key"`
	Actor    string         `json:"actor,omitempty"`
	Sections []SectionInput `json:"sections"`
}

// Validate checks request shape before any extraction work runs.
func (r SaveRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Key, validation.Required, validation.By(func(value any) error {
			raw := strings.TrimSpace(value.(string))
			if raw == "" {
				return validation.NewError("i18n.console.save.key_required", "bundle key is required")
			}
			if _, err := resource.ParseBundleKey(raw); err != nil {
				return validation.NewError("i18n.console.save.key_invalid", err.Error())
			}
			return nil
		})),
		validation.Field(&r.Sections, validation.Required, validation.By(func(value any) error {
			sections := value.([]SectionInput)
			seen := make(map[string]struct{}, len(sections))
			for _, section := range sections {
				name := strings.TrimSpace(section.Name)
				if name == "" {
					return validation.NewError("i18n.console.save.section_name_required", "section name is required")
				}
				if _, dup := seen[name]; dup {
					return validation.NewError("i18n.console.save.section_duplicated", "section "+name+" appears more than once")
				}
				seen[name] = struct{}{}
			}
			return nil
		})),
	)
}

// TranslatableRequest toggles a resource's participation in translation
// workflows.
type TranslatableRequest struct {
	Key            string `json:"key"`
	IsTranslatable bool   `json:"is_translatable"`
	Actor          string `json:"actor,omitempty"`
}

// Validate checks the resource key shape.
func (r TranslatableRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Key, validation.Required, validation.By(func(value any) error {
			raw := strings.TrimSpace(value.(string))
			if raw == "" {
				return validation.NewError("i18n.console.translatable.key_required", "resource key is required")
			}
			if _, err := resource.ParseKey(raw); err != nil {
				return validation.NewError("i18n.console.translatable.key_invalid", err.Error())
			}
			return nil
		})),
	)
}
