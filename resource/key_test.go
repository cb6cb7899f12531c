package resource

import (
	"errors"
	"testing"
)

func TestKey_RoundTrip(t *testing.T) {
	key1, err := NewKey(TypeAssessment, "23")
	if err != nil {
		t.Fatalf("NewKey() error = %v", err)
	}
	key2, err := ParseKey(key1.String())
	if err != nil {
		t.Fatalf("ParseKey() error = %v", err)
	}
	if key1 != key2 {
		t.Fatalf("round trip mismatch: %v != %v", key1, key2)
	}
}

func TestKey_RoundTripAllTypes(t *testing.T) {
	for keyType := range knownTypes {
		key, err := NewKey(keyType, "some-id")
		if err != nil {
			t.Fatalf("NewKey(%s) error = %v", keyType, err)
		}
		parsed, err := ParseKey(key.String())
		if err != nil {
			t.Fatalf("ParseKey(%s) error = %v", key, err)
		}
		if parsed != key {
			t.Fatalf("round trip mismatch for %s: got %v", keyType, parsed)
		}
	}
}

func TestKey_RejectsBadType(t *testing.T) {
	if _, err := NewKey("BAD_TYPE", "23"); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("NewKey() error = %v, want ErrUnknownType", err)
	}
	if _, err := ParseKey("BAD_TYPE:23"); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("ParseKey() error = %v, want ErrUnknownType", err)
	}
	if _, err := ParseKey("no-separator"); !errors.Is(err, ErrMalformedKey) {
		t.Fatalf("ParseKey() error = %v, want ErrMalformedKey", err)
	}
}

type fakeUnit struct {
	outlineType OutlineType
	id          string
}

func (u fakeUnit) OutlineType() OutlineType { return u.outlineType }
func (u fakeUnit) ID() string               { return u.id }

var _ CourseUnit = fakeUnit{}

func TestForUnit(t *testing.T) {
	typeTable := []struct {
		outlineType OutlineType
		keyType     Type
	}{
		{OutlineAssessment, TypeAssessment},
		{OutlineLink, TypeLink},
		{OutlineUnit, TypeUnit},
	}
	for _, tc := range typeTable {
		key, err := ForUnit(fakeUnit{outlineType: tc.outlineType, id: "5"})
		if err != nil {
			t.Fatalf("ForUnit(%s) error = %v", tc.outlineType, err)
		}
		if key.Type != tc.keyType {
			t.Fatalf("ForUnit(%s) type = %s, want %s", tc.outlineType, key.Type, tc.keyType)
		}
		if key.Key != "5" {
			t.Fatalf("ForUnit(%s) key = %q, want %q", tc.outlineType, key.Key, "5")
		}
	}
}

func TestForUnit_UnmappedType(t *testing.T) {
	if _, err := ForUnit(fakeUnit{outlineType: "X", id: "5"}); !errors.Is(err, ErrUnmappedUnitType) {
		t.Fatalf("ForUnit() error = %v, want ErrUnmappedUnitType", err)
	}
}

func TestBundleKey_RoundTrip(t *testing.T) {
	key1, err := NewBundleKey(TypeAssessment, "23", "el")
	if err != nil {
		t.Fatalf("NewBundleKey() error = %v", err)
	}
	key2, err := ParseBundleKey(key1.String())
	if err != nil {
		t.Fatalf("ParseBundleKey() error = %v", err)
	}
	if key1.Locale != key2.Locale {
		t.Fatalf("locale mismatch: %q != %q", key1.Locale, key2.Locale)
	}
	if key1.Resource != key2.Resource {
		t.Fatalf("resource mismatch: %v != %v", key1.Resource, key2.Resource)
	}
}

func TestBundleKey_NumericKeysSurviveSplit(t *testing.T) {
	key, err := ParseBundleKey("course_settings:homepage:el")
	if err != nil {
		t.Fatalf("ParseBundleKey() error = %v", err)
	}
	if key.Resource.Type != TypeCourseSettings || key.Resource.Key != "homepage" || key.Locale != "el" {
		t.Fatalf("unexpected parse %+v", key)
	}

	key, err = ParseBundleKey("unit:14:pt-BR")
	if err != nil {
		t.Fatalf("ParseBundleKey() error = %v", err)
	}
	if key.Resource.Key != "14" || key.Locale != "pt-BR" {
		t.Fatalf("unexpected parse %+v", key)
	}
}

func TestBundleKey_Malformed(t *testing.T) {
	for _, input := range []string{"", "unit", "unit:5", "unit:5:", ":5:el"} {
		if _, err := ParseBundleKey(input); err == nil {
			t.Fatalf("ParseBundleKey(%q) expected error", input)
		}
	}
}
