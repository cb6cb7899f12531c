package extract

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/coursekit/go-i18n/bundle"
)

// Placeholder records one custom element replaced by a marker during
// extraction. Attrs keeps the element's complete attribute set so hidden
// attributes survive a round trip through translation.
type Placeholder struct {
	Tag   string
	Index int
	Attrs []Attr
}

// PlaceholderTable maps marker identities back to the elements they stand for.
type PlaceholderTable struct {
	entries map[string]Placeholder
}

func newPlaceholderTable() *PlaceholderTable {
	return &PlaceholderTable{entries: map[string]Placeholder{}}
}

func (t *PlaceholderTable) add(p Placeholder) {
	t.entries[markerID(p.Tag, p.Index)] = p
}

// Lookup resolves a (tag, occurrence) marker identity.
func (t *PlaceholderTable) Lookup(tag string, index int) (Placeholder, bool) {
	if t == nil {
		return Placeholder{}, false
	}
	p, ok := t.entries[markerID(tag, index)]
	return p, ok
}

// Len returns the number of recorded placeholders.
func (t *PlaceholderTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

func markerID(tag string, index int) string {
	return fmt.Sprintf("%s#%d", tag, index)
}

// Extraction is the result of walking one field value: the ordered fragment
// list plus the placeholder table needed to reverse marker substitution.
type Extraction struct {
	source    string
	fieldType bundle.FieldType
	registry  TagRegistry
	fragments []string
	table     *PlaceholderTable
	opaque    bool
}

// Fragments returns the extracted fragment source values in document order.
func (e *Extraction) Fragments() []string {
	out := make([]string, len(e.fragments))
	copy(out, e.fragments)
	return out
}

// Table returns the placeholder table produced during extraction.
func (e *Extraction) Table() *PlaceholderTable {
	return e.table
}

// ExtractField extracts the translatable fragments of one field value.
// String fields yield exactly one verbatim fragment; html fields yield one
// fragment per contiguous text run in depth-first document order, with custom
// tags spliced in as placeholder markers. Extraction is pure: the same input
// always produces the same fragments in the same order.
func ExtractField(fieldType bundle.FieldType, value string, registry TagRegistry) *Extraction {
	if fieldType != bundle.FieldHTML {
		return &Extraction{
			source:    value,
			fieldType: bundle.FieldString,
			registry:  registry,
			fragments: []string{value},
			table:     newPlaceholderTable(),
		}
	}
	return extractHTML(value, registry)
}

// run is a contiguous stretch of text nodes and custom-tag nodes that
// translates as one unit.
type run struct {
	nodes  []*xhtml.Node
	source string
}

type walker struct {
	registry TagRegistry
	table    *PlaceholderTable
	counters map[string]int

	current     []*xhtml.Node
	currentText strings.Builder
	hasMarker   bool
	runs        []run
}

func extractHTML(source string, registry TagRegistry) *Extraction {
	extraction := &Extraction{
		source:    source,
		fieldType: bundle.FieldHTML,
		registry:  registry,
		table:     newPlaceholderTable(),
	}
	if strings.TrimSpace(source) == "" {
		extraction.fragments = []string{}
		return extraction
	}

	container, err := parseFragment(normalizeSelfClosing(source, registry))
	if err != nil {
		// Unparseable content degrades to one opaque fragment instead of
		// failing the pipeline.
		extraction.opaque = true
		extraction.fragments = []string{source}
		return extraction
	}

	w := &walker{
		registry: registry,
		table:    extraction.table,
		counters: map[string]int{},
	}
	for child := container.FirstChild; child != nil; child = child.NextSibling {
		w.visit(child)
	}
	w.flush()

	extraction.fragments = make([]string, len(w.runs))
	for i, r := range w.runs {
		extraction.fragments[i] = r.source
	}
	return extraction
}

var selfClosingPattern = regexp.MustCompile(`<([a-zA-Z][a-zA-Z0-9-]*)([^<>]*?)/>`)

// normalizeSelfClosing expands self-closed custom tags into explicit
// open/close pairs. The HTML5 parser ignores the trailing slash on
// non-foreign elements, which would otherwise swallow following siblings
// into the custom tag's body.
func normalizeSelfClosing(source string, registry TagRegistry) string {
	if registry == nil || !strings.Contains(source, "/>") {
		return source
	}
	return selfClosingPattern.ReplaceAllStringFunc(source, func(match string) string {
		sub := selfClosingPattern.FindStringSubmatch(match)
		name := sub[1]
		if !registry.IsCustom(name) {
			return match
		}
		return "<" + name + strings.TrimRight(sub[2], " \t") + "></" + name + ">"
	})
}

func parseFragment(source string) (*xhtml.Node, error) {
	container := &xhtml.Node{
		Type:     xhtml.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	}
	nodes, err := xhtml.ParseFragment(strings.NewReader(source), container)
	if err != nil {
		return nil, err
	}
	for _, node := range nodes {
		container.AppendChild(node)
	}
	return container, nil
}

func (w *walker) visit(node *xhtml.Node) {
	switch node.Type {
	case xhtml.TextNode:
		w.current = append(w.current, node)
		w.currentText.WriteString(html.EscapeString(node.Data))
	case xhtml.ElementNode:
		if w.registry != nil && w.registry.IsCustom(node.Data) {
			w.appendMarker(node)
			return
		}
		// Standard elements delimit text runs on the way in and out.
		w.flush()
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			w.visit(child)
		}
		w.flush()
	default:
		// Comments, doctypes and the like are transparent.
	}
}

func (w *walker) appendMarker(node *xhtml.Node) {
	tag := node.Data
	w.counters[tag]++
	placeholder := Placeholder{
		Tag:   tag,
		Index: w.counters[tag],
		Attrs: captureAttrs(node),
	}
	w.table.add(placeholder)

	w.current = append(w.current, node)
	w.currentText.WriteString(renderMarker(placeholder, w.registry))
	w.hasMarker = true
}

func (w *walker) flush() {
	if len(w.current) == 0 {
		w.reset()
		return
	}
	source := w.currentText.String()
	if !w.hasMarker && strings.TrimSpace(source) == "" {
		w.reset()
		return
	}
	w.runs = append(w.runs, run{
		nodes:  append([]*xhtml.Node(nil), w.current...),
		source: strings.TrimSpace(source),
	})
	w.reset()
}

func (w *walker) reset() {
	w.current = nil
	w.currentText.Reset()
	w.hasMarker = false
}

func captureAttrs(node *xhtml.Node) []Attr {
	if len(node.Attr) == 0 {
		return nil
	}
	attrs := make([]Attr, 0, len(node.Attr))
	for _, attr := range node.Attr {
		attrs = append(attrs, Attr{Name: attr.Key, Value: attr.Val})
	}
	return attrs
}

// renderMarker serializes a placeholder as an inline marker such as
// <gcb-youtube#1 videoid="..." />. Only the registry's translatable
// attributes are surfaced; the rest stay in the table for reassembly.
func renderMarker(p Placeholder, registry TagRegistry) string {
	var allowed []string
	if registry != nil {
		allowed = registry.TranslatableAttrs(p.Tag)
	}

	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(markerID(p.Tag, p.Index))
	for _, attr := range p.Attrs {
		if allowed != nil && !containsName(allowed, attr.Name) {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(attr.Name)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(attr.Value))
		b.WriteByte('"')
	}
	b.WriteString(" />")
	return b.String()
}

func containsName(names []string, name string) bool {
	for _, candidate := range names {
		if strings.EqualFold(candidate, name) {
			return true
		}
	}
	return false
}
