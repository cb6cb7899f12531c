package resource

import (
	"errors"
	"fmt"
	"strings"
)

const separator = ":"

var (
	// ErrUnknownType indicates a resource key was constructed with a type
	// outside the supported set.
	ErrUnknownType = errors.New("resource: unknown resource type")
	// ErrMalformedKey indicates a serialized key could not be parsed.
	ErrMalformedKey = errors.New("resource: malformed key")
	// ErrUnmappedUnitType indicates a course-outline unit carries a runtime
	// type with no corresponding resource type.
	ErrUnmappedUnitType = errors.New("resource: unmapped unit type")
)

// Type enumerates the kinds of translatable course resources.
type Type string

const (
	TypeAssessment     Type = "assessment"
	TypeLink           Type = "link"
	TypeUnit           Type = "unit"
	TypeLesson         Type = "lesson"
	TypeCourseSettings Type = "course_settings"
	TypeQuestionMC     Type = "question_mc"
	TypeQuestionSA     Type = "question_sa"
	TypeQuestionGroup  Type = "question_group"
)

var knownTypes = map[Type]struct{}{
	TypeAssessment:     {},
	TypeLink:           {},
	TypeUnit:           {},
	TypeLesson:         {},
	TypeCourseSettings: {},
	TypeQuestionMC:     {},
	TypeQuestionSA:     {},
	TypeQuestionGroup:  {},
}

// Valid reports whether the type belongs to the supported set.
func (t Type) Valid() bool {
	_, ok := knownTypes[t]
	return ok
}

// Key identifies one translatable resource. The key component is opaque; its
// meaning depends on the type (unit ids, question ids, settings section names).
type Key struct {
	Type Type
	Key  string
}

// NewKey constructs a resource key, rejecting unknown types.
func NewKey(t Type, key string) (Key, error) {
	if !t.Valid() {
		return Key{}, fmt.Errorf("%w: %q", ErrUnknownType, string(t))
	}
	return Key{Type: t, Key: key}, nil
}

// String serializes the key as "type:key".
func (k Key) String() string {
	return string(k.Type) + separator + k.Key
}

// IsZero reports whether the key is the zero value.
func (k Key) IsZero() bool {
	return k.Type == "" && k.Key == ""
}

// ParseKey is the exact inverse of String for all valid keys. It fails on
// malformed input or an unknown type; it never coerces.
func ParseKey(s string) (Key, error) {
	typeName, rest, ok := strings.Cut(s, separator)
	if !ok {
		return Key{}, fmt.Errorf("%w: %q", ErrMalformedKey, s)
	}
	return NewKey(Type(typeName), rest)
}

// OutlineType tags a course-outline unit's runtime kind.
type OutlineType string

const (
	OutlineAssessment OutlineType = "A"
	OutlineLink       OutlineType = "O"
	OutlineUnit       OutlineType = "U"
)

// CourseUnit describes the course-outline fields needed to derive a key.
type CourseUnit interface {
	OutlineType() OutlineType
	ID() string
}

var outlineTypes = map[OutlineType]Type{
	OutlineAssessment: TypeAssessment,
	OutlineLink:       TypeLink,
	OutlineUnit:       TypeUnit,
}

// ForUnit maps a course-outline unit to its resource key, preserving the
// unit's identifier. Unmapped runtime types fail loudly.
func ForUnit(unit CourseUnit) (Key, error) {
	if unit == nil {
		return Key{}, fmt.Errorf("%w: nil unit", ErrUnmappedUnitType)
	}
	keyType, ok := outlineTypes[unit.OutlineType()]
	if !ok {
		return Key{}, fmt.Errorf("%w: %q", ErrUnmappedUnitType, string(unit.OutlineType()))
	}
	return Key{Type: keyType, Key: unit.ID()}, nil
}

// BundleKey identifies the translations of one resource into one locale.
type BundleKey struct {
	Resource Key
	Locale   string
}

// NewBundleKey composes a resource key with a locale tag.
func NewBundleKey(t Type, key, locale string) (BundleKey, error) {
	resourceKey, err := NewKey(t, key)
	if err != nil {
		return BundleKey{}, err
	}
	if locale == "" {
		return BundleKey{}, fmt.Errorf("%w: empty locale", ErrMalformedKey)
	}
	return BundleKey{Resource: resourceKey, Locale: locale}, nil
}

// String serializes the bundle key as "type:key:locale".
func (k BundleKey) String() string {
	return k.Resource.String() + separator + k.Locale
}

// ParseBundleKey parses a "type:key:locale" serialization. The locale is the
// token after the rightmost separator so resource keys containing separators
// survive the split.
func ParseBundleKey(s string) (BundleKey, error) {
	idx := strings.LastIndex(s, separator)
	if idx <= 0 || idx == len(s)-1 {
		return BundleKey{}, fmt.Errorf("%w: %q", ErrMalformedKey, s)
	}
	resourceKey, err := ParseKey(s[:idx])
	if err != nil {
		return BundleKey{}, err
	}
	return BundleKey{Resource: resourceKey, Locale: s[idx+1:]}, nil
}
