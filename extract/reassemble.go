package extract

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	xhtml "golang.org/x/net/html"

	"github.com/coursekit/go-i18n/bundle"
)

var (
	markerPattern = regexp.MustCompile(`<([a-zA-Z][a-zA-Z0-9-]*)#([0-9]+)((?:\s+[a-zA-Z_][-a-zA-Z0-9_:.]*="[^"]*")*)\s*/>`)
	attrPattern   = regexp.MustCompile(`([a-zA-Z_][-a-zA-Z0-9_:.]*)="([^"]*)"`)
)

// Reassemble rebuilds the field value with each fragment replaced by the
// corresponding entry of translated. Empty entries keep the original
// fragment. Placeholder markers are re-expanded into elements carrying the
// recorded tag and attribute set; attributes present on the marker override
// the recorded values. The operation is strictly positional: surplus
// translated entries are ignored and missing ones leave the original
// fragment in place.
func (e *Extraction) Reassemble(translated []string) (string, error) {
	if e.fieldType == bundle.FieldString || e.opaque {
		if len(translated) > 0 && translated[0] != "" {
			return translated[0], nil
		}
		return e.source, nil
	}
	if len(e.fragments) == 0 {
		return e.source, nil
	}

	// Re-walk a fresh tree; extraction is deterministic so the runs line up
	// with the fragment order handed to translators.
	container, err := parseFragment(normalizeSelfClosing(e.source, e.registry))
	if err != nil {
		if len(translated) > 0 && translated[0] != "" {
			return translated[0], nil
		}
		return e.source, nil
	}

	w := &walker{
		registry: e.registry,
		table:    newPlaceholderTable(),
		counters: map[string]int{},
	}
	for child := container.FirstChild; child != nil; child = child.NextSibling {
		w.visit(child)
	}
	w.flush()

	for i, r := range w.runs {
		if i >= len(translated) || translated[i] == "" || translated[i] == r.source {
			continue
		}
		replaceRun(container, r, e.buildNodes(translated[i]))
	}

	var b strings.Builder
	for child := container.FirstChild; child != nil; child = child.NextSibling {
		if err := xhtml.Render(&b, child); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

// buildNodes parses a translated fragment into a node list, expanding every
// placeholder marker through the extraction's table. Markers with no table
// entry are kept as literal text rather than dropped.
func (e *Extraction) buildNodes(fragment string) []*xhtml.Node {
	var nodes []*xhtml.Node
	rest := fragment
	for {
		loc := markerPattern.FindStringSubmatchIndex(rest)
		if loc == nil {
			break
		}
		if prefix := rest[:loc[0]]; prefix != "" {
			nodes = append(nodes, textNode(prefix))
		}
		tag := rest[loc[2]:loc[3]]
		index, _ := strconv.Atoi(rest[loc[4]:loc[5]])
		rawAttrs := rest[loc[6]:loc[7]]

		if placeholder, ok := e.table.Lookup(tag, index); ok {
			nodes = append(nodes, elementNode(placeholder, parseMarkerAttrs(rawAttrs)))
		} else {
			nodes = append(nodes, textNode(rest[loc[0]:loc[1]]))
		}
		rest = rest[loc[1]:]
	}
	if rest != "" {
		nodes = append(nodes, textNode(rest))
	}
	return nodes
}

func textNode(escaped string) *xhtml.Node {
	return &xhtml.Node{Type: xhtml.TextNode, Data: html.UnescapeString(escaped)}
}

func elementNode(placeholder Placeholder, overrides []Attr) *xhtml.Node {
	node := &xhtml.Node{Type: xhtml.ElementNode, Data: placeholder.Tag}
	merged := make([]Attr, len(placeholder.Attrs))
	copy(merged, placeholder.Attrs)
	for _, override := range overrides {
		replaced := false
		for i := range merged {
			if strings.EqualFold(merged[i].Name, override.Name) {
				merged[i].Value = override.Value
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, override)
		}
	}
	for _, attr := range merged {
		node.Attr = append(node.Attr, xhtml.Attribute{Key: attr.Name, Val: attr.Value})
	}
	return node
}

func parseMarkerAttrs(raw string) []Attr {
	matches := attrPattern.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return nil
	}
	attrs := make([]Attr, 0, len(matches))
	for _, match := range matches {
		attrs = append(attrs, Attr{Name: match[1], Value: html.UnescapeString(match[2])})
	}
	return attrs
}

// replaceRun swaps the nodes of one extracted run for the translated nodes,
// keeping the surrounding document structure intact.
func replaceRun(container *xhtml.Node, r run, replacement []*xhtml.Node) {
	if len(r.nodes) == 0 {
		return
	}
	parent := r.nodes[0].Parent
	if parent == nil {
		parent = container
	}
	anchor := r.nodes[0]
	for _, node := range replacement {
		parent.InsertBefore(node, anchor)
	}
	for _, node := range r.nodes {
		if node.Parent != nil {
			node.Parent.RemoveChild(node)
		}
	}
}
