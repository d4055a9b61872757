package browser

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// maxAccessibleNameLen caps the rendered accessible name of one element.
const maxAccessibleNameLen = 120

// RenderAccessibilityText renders an accessibility-style text dump from raw
// HTML, used when the browser cannot produce a native ARIA snapshot. The
// output mirrors the snapshot shape the compaction pipeline expects: one
// element per line, role first, quoted accessible name, nesting depth as
// indentation. Scripts, styles, and other non-content elements are dropped.
func RenderAccessibilityText(rawHTML string) (string, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var b strings.Builder
	renderNode(doc, &b, 0)
	return strings.TrimRight(b.String(), "\n"), nil
}

func renderNode(n *html.Node, b *strings.Builder, depth int) {
	switch n.Type {
	case html.CommentNode, html.DoctypeNode:
		return

	case html.TextNode:
		text := collapseSpace(n.Data)
		if text == "" {
			return
		}
		writeLine(b, depth, "text", text)
		return

	case html.ElementNode:
		tag := strings.ToLower(n.Data)
		if isDroppedElement(tag) {
			return
		}

		role, named := elementRole(n, tag)
		if role == "" {
			// Structural wrapper with no accessibility role: children
			// render at the same depth.
			renderChildren(n, b, depth)
			return
		}

		name := accessibleName(n)
		line := role
		if name != "" {
			line = fmt.Sprintf("%s %q", role, name)
		}
		if level := headingLevel(tag); level > 0 {
			line += fmt.Sprintf(" [level=%d]", level)
		}
		writeIndented(b, depth, line)

		// Leaf roles take their name from their own text; re-rendering
		// the children would duplicate it.
		if named {
			return
		}
		renderChildren(n, b, depth+1)
		return
	}

	renderChildren(n, b, depth)
}

func renderChildren(n *html.Node, b *strings.Builder, depth int) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderNode(c, b, depth)
	}
}

func writeLine(b *strings.Builder, depth int, role, name string) {
	writeIndented(b, depth, fmt.Sprintf("%s %q", role, name))
}

func writeIndented(b *strings.Builder, depth int, line string) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(line)
	b.WriteString("\n")
}

// elementRole maps an element to its snapshot role. The second return is
// true for leaf roles whose accessible name consumes their subtree text.
func elementRole(n *html.Node, tag string) (string, bool) {
	// An explicit role attribute wins over the tag mapping.
	if role := attr(n, "role"); role != "" {
		switch role {
		case "button", "link", "textbox", "checkbox", "radio", "combobox",
			"option", "tab", "menuitem":
			return role, true
		default:
			return role, false
		}
	}

	switch tag {
	case "a":
		if attr(n, "href") != "" {
			return "link", true
		}
		return "", false
	case "button":
		return "button", true
	case "input":
		switch attr(n, "type") {
		case "button", "submit", "reset":
			return "button", true
		case "checkbox":
			return "checkbox", true
		case "radio":
			return "radio", true
		case "hidden":
			return "", false
		default:
			return "textbox", true
		}
	case "textarea":
		return "textbox", true
	case "select":
		return "combobox", false
	case "option":
		return "option", true
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return "heading", true
	case "nav":
		return "navigation", false
	case "header":
		return "banner", false
	case "footer":
		return "contentinfo", false
	case "main":
		return "main", false
	case "dialog":
		return "dialog", false
	case "img":
		return "image", true
	case "li":
		return "listitem", false
	case "table":
		return "table", false
	}
	return "", false
}

// accessibleName approximates the element's accessible name: explicit label
// attributes first, then the flattened subtree text.
func accessibleName(n *html.Node) string {
	for _, key := range []string{"aria-label", "alt", "placeholder", "title"} {
		if v := collapseSpace(attr(n, key)); v != "" {
			return truncateName(v)
		}
	}
	if v := collapseSpace(attr(n, "value")); v != "" && strings.ToLower(n.Data) == "input" {
		return truncateName(v)
	}
	return truncateName(collapseSpace(subtreeText(n)))
}

func subtreeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
			b.WriteString(" ")
			return
		}
		if node.Type == html.ElementNode && isDroppedElement(strings.ToLower(node.Data)) {
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func isDroppedElement(tag string) bool {
	switch tag {
	case "script", "style", "noscript", "template", "iframe", "embed",
		"object", "svg", "head", "meta", "base":
		return true
	}
	return false
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateName(s string) string {
	if len(s) > maxAccessibleNameLen {
		return s[:maxAccessibleNameLen]
	}
	return s
}
