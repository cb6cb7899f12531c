package catalog

import (
	"reflect"
	"strings"
	"testing"
)

func mustLocation(t *testing.T, raw string) Location {
	t.Helper()
	loc, err := ParseLocation(raw)
	if err != nil {
		t.Fatalf("ParseLocation(%q) error = %v", raw, err)
	}
	return loc
}

func TestPO_RoundTrip(t *testing.T) {
	cat := &Catalog{
		Locale: "el",
		Entries: []*Entry{
			{
				MsgID:  "Test Unit",
				MsgStr: "TEST UNIT",
				Locations: []Location{
					mustLocation(t, "unit:1:el#title[0]"),
				},
			},
			{
				MsgID:  "a",
				MsgStr: "",
				Locations: []Location{
					mustLocation(t, "unit:1:el#unit_header[0]"),
					mustLocation(t, "lesson:2:el#objectives[1]"),
				},
			},
			{
				MsgID:  `say "hi"` + "\nnew line\ttab",
				MsgStr: `backslash \ kept`,
				Locations: []Location{
					mustLocation(t, "unit:1:el#unit_header[1]"),
				},
			},
		},
	}

	var b strings.Builder
	if err := WritePO(&b, cat); err != nil {
		t.Fatalf("WritePO() error = %v", err)
	}

	parsed, err := ReadPO(strings.NewReader(b.String()), "")
	if err != nil {
		t.Fatalf("ReadPO() error = %v", err)
	}
	if parsed.Locale != "el" {
		t.Fatalf("parsed locale = %q", parsed.Locale)
	}
	if !reflect.DeepEqual(cat.Entries, parsed.Entries) {
		t.Fatalf("round trip mismatch:\nwrote %+v\nread  %+v", cat.Entries, parsed.Entries)
	}
}

func TestReadPO_RejectsGarbage(t *testing.T) {
	inputs := []string{
		"msgid not-quoted\nmsgstr \"x\"\n",
		"#: not-a-location\nmsgid \"a\"\nmsgstr \"b\"\n",
		"\"dangling continuation\"\n",
	}
	for _, input := range inputs {
		if _, err := ReadPO(strings.NewReader(input), "el"); err == nil {
			t.Fatalf("ReadPO(%q) accepted garbage", input)
		}
	}
}

func TestReadPO_ExplicitLocaleWins(t *testing.T) {
	input := "msgid \"\"\nmsgstr \"Language: el\\n\"\n\nmsgid \"a\"\nmsgstr \"A\"\n"
	cat, err := ReadPO(strings.NewReader(input), "ru")
	if err != nil {
		t.Fatalf("ReadPO() error = %v", err)
	}
	if cat.Locale != "ru" {
		t.Fatalf("locale = %q, want caller override", cat.Locale)
	}
	if len(cat.Entries) != 1 || cat.Entries[0].MsgStr != "A" {
		t.Fatalf("entries = %+v", cat.Entries)
	}
}
