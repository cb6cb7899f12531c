package extract

import (
	"sort"
	"strings"
	"sync"
)

// Attr is one element attribute captured during extraction.
type Attr struct {
	Name  string
	Value string
}

// TagRegistry decides which elements are custom tags. Custom tags form
// extraction boundaries: their descendants are never extracted as text and
// the tag itself is replaced by a placeholder marker.
type TagRegistry interface {
	// IsCustom reports whether the element name denotes a custom tag.
	IsCustom(name string) bool
	// TranslatableAttrs lists the attributes surfaced on placeholder markers
	// for the tag. A nil result surfaces every attribute.
	TranslatableAttrs(name string) []string
}

// TagExpander is an optional registry capability: turning a restored custom
// element into final markup at serve time (a video embed, say). Registries
// without it leave custom elements as-is for downstream renderers.
type TagExpander interface {
	// Expand renders a custom element from its attribute set. The second
	// return is false when no expansion is registered for the name.
	Expand(name string, attrs []Attr) (string, bool, error)
}

// ExpandFunc renders one custom element kind from its attributes.
type ExpandFunc func(attrs []Attr) (string, error)

// Registry is the default TagRegistry: custom tags are matched by explicit
// name or by name prefix (the whole gcb-* element family, typically).
type Registry struct {
	mu        sync.RWMutex
	prefixes  []string
	tags      map[string][]string
	expanders map[string]ExpandFunc
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tags:      map[string][]string{},
		expanders: map[string]ExpandFunc{},
	}
}

// RegisterPrefix marks every element whose name starts with prefix as custom.
func (r *Registry) RegisterPrefix(prefix string) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.prefixes {
		if existing == prefix {
			return
		}
	}
	r.prefixes = append(r.prefixes, prefix)
	sort.Strings(r.prefixes)
}

// Register marks an element name as custom. When attrs are given, only those
// attributes appear on placeholder markers; hidden attributes are still
// restored from the placeholder table on reassembly.
func (r *Registry) Register(name string, attrs ...string) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(attrs) == 0 {
		r.tags[name] = nil
		return
	}
	copied := make([]string, len(attrs))
	copy(copied, attrs)
	r.tags[name] = copied
}

// RegisterExpander installs the serve-time expansion for a tag name. The
// name becomes custom if it was not already.
func (r *Registry) RegisterExpander(name string, fn ExpandFunc) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || fn == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tags[name]; !ok {
		r.tags[name] = nil
	}
	r.expanders[name] = fn
}

// Expand renders the element through its registered expander, if any.
func (r *Registry) Expand(name string, attrs []Attr) (string, bool, error) {
	r.mu.RLock()
	fn, ok := r.expanders[strings.ToLower(name)]
	r.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	markup, err := fn(attrs)
	if err != nil {
		return "", true, err
	}
	return markup, true, nil
}

// IsCustom reports whether the name is registered directly or via a prefix.
func (r *Registry) IsCustom(name string) bool {
	name = strings.ToLower(name)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.tags[name]; ok {
		return true
	}
	for _, prefix := range r.prefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// TranslatableAttrs returns the marker attribute filter for the tag.
func (r *Registry) TranslatableAttrs(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	attrs, ok := r.tags[strings.ToLower(name)]
	if !ok || attrs == nil {
		return nil
	}
	copied := make([]string, len(attrs))
	copy(copied, attrs)
	return copied
}
