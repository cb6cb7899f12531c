// Package catalog moves translations in and out of the store in bulk using a
// gettext-style catalog, one catalog per locale.
package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/coursekit/go-i18n/resource"
)

// ErrMalformedLocation indicates a location reference that cannot be mapped
// back to a stored fragment.
var ErrMalformedLocation = errors.New("catalog: malformed location")

// Location points at one fragment: the bundle it lives in, the section name,
// and the fragment's position within the section.
type Location struct {
	Key     resource.BundleKey
	Section string
	Index   int
}

// String serializes the location as "type:key:locale#section[index]".
func (l Location) String() string {
	return fmt.Sprintf("%s#%s[%d]", l.Key.String(), l.Section, l.Index)
}

// ParseLocation is the inverse of String.
func ParseLocation(raw string) (Location, error) {
	keyPart, rest, ok := strings.Cut(raw, "#")
	if !ok {
		return Location{}, fmt.Errorf("%w: %q", ErrMalformedLocation, raw)
	}
	key, err := resource.ParseBundleKey(keyPart)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %q: %v", ErrMalformedLocation, raw, err)
	}

	open := strings.LastIndex(rest, "[")
	if open <= 0 || !strings.HasSuffix(rest, "]") {
		return Location{}, fmt.Errorf("%w: %q", ErrMalformedLocation, raw)
	}
	section := rest[:open]
	index, err := strconv.Atoi(rest[open+1 : len(rest)-1])
	if err != nil || index < 0 {
		return Location{}, fmt.Errorf("%w: %q", ErrMalformedLocation, raw)
	}
	return Location{Key: key, Section: section, Index: index}, nil
}

// Entry is one catalog message: the source text, its translation, and every
// fragment the pair applies to. Fragments sharing source text share an entry,
// as gettext requires unique message ids.
type Entry struct {
	MsgID     string
	MsgStr    string
	Locations []Location
}

// Catalog holds every translatable fragment of one locale.
type Catalog struct {
	Locale  string
	Entries []*Entry
}

// Entry returns the entry for a message id, or nil.
func (c *Catalog) Entry(msgID string) *Entry {
	for _, entry := range c.Entries {
		if entry.MsgID == msgID {
			return entry
		}
	}
	return nil
}

// add registers a fragment, merging into an existing entry when the source
// text repeats. The first non-empty translation wins for merged entries.
func (c *Catalog) add(msgID, msgStr string, loc Location) {
	if entry := c.Entry(msgID); entry != nil {
		entry.Locations = append(entry.Locations, loc)
		if entry.MsgStr == "" {
			entry.MsgStr = msgStr
		}
		return
	}
	c.Entries = append(c.Entries, &Entry{
		MsgID:     msgID,
		MsgStr:    msgStr,
		Locations: []Location{loc},
	})
}
