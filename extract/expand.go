package extract

import (
	"strings"

	xhtml "golang.org/x/net/html"
)

// ExpandTags replaces every custom element carrying a registered expander
// with its serve-time markup. Elements without an expander, and registries
// without the TagExpander capability, pass through untouched. Expansion
// output is inserted as parsed markup and is not expanded again.
func ExpandTags(value string, registry TagRegistry) (string, error) {
	expander, ok := registry.(TagExpander)
	if !ok || !strings.Contains(value, "<") {
		return value, nil
	}

	container, err := parseFragment(normalizeSelfClosing(value, registry))
	if err != nil {
		return value, nil
	}

	targets := collectCustom(container, registry)
	if len(targets) == 0 {
		return value, nil
	}

	expanded := false
	for _, node := range targets {
		markup, ok, err := expander.Expand(node.Data, captureAttrs(node))
		if err != nil {
			return "", err
		}
		if !ok {
			continue
		}
		replacement, err := parseFragment(markup)
		if err != nil {
			continue
		}
		spliceChildren(node, replacement)
		expanded = true
	}
	if !expanded {
		return value, nil
	}

	var b strings.Builder
	for child := container.FirstChild; child != nil; child = child.NextSibling {
		if err := xhtml.Render(&b, child); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

// collectCustom gathers custom elements depth-first before any mutation so
// the traversal never visits freshly spliced nodes.
func collectCustom(node *xhtml.Node, registry TagRegistry) []*xhtml.Node {
	var out []*xhtml.Node
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xhtml.ElementNode {
			if registry.IsCustom(child.Data) {
				out = append(out, child)
				continue
			}
			out = append(out, collectCustom(child, registry)...)
		}
	}
	return out
}

// spliceChildren replaces node with the children of replacement, preserving
// sibling order.
func spliceChildren(node *xhtml.Node, replacement *xhtml.Node) {
	parent := node.Parent
	if parent == nil {
		return
	}
	for replacement.FirstChild != nil {
		child := replacement.FirstChild
		replacement.RemoveChild(child)
		parent.InsertBefore(child, node)
	}
	parent.RemoveChild(node)
}
