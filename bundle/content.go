package bundle

import (
	"context"

	"github.com/coursekit/go-i18n/resource"
)

// Field is one translatable field of a resource as supplied by the course
// content provider: its machine name, human label, declared value type, and
// the current default-locale value.
type Field struct {
	Name  string    `json:"name"`
	Label string    `json:"label"`
	Type  FieldType `json:"type"`
	Value string    `json:"value"`
}

// ContentSource enumerates the translatable fields of a resource in their
// declared order. Implementations live with the course content model; the
// translation pipeline only consumes the contract.
type ContentSource interface {
	Fields(ctx context.Context, key resource.Key) ([]Field, error)
}
