// Package richtext filters chat message markup down to a fixed
// allow-list of tags and attributes. Disallowed elements are unwrapped
// (their children spliced into the parent) rather than deleted, so the
// text content of pasted markup survives sanitization.
package richtext

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var allowedTags = map[string]bool{
	"b":      true,
	"strong": true,
	"i":      true,
	"em":     true,
	"u":      true,
	"p":      true,
	"br":     true,
	"ul":     true,
	"ol":     true,
	"li":     true,
	"div":    true,
	"span":   true,
	"a":      true,
}

var allowedAttrsByTag = map[string]map[string]bool{
	"a":    {"href": true, "target": true, "rel": true},
	"span": {"data-mention": true, "data-email": true, "class": true},
}

// Sanitize parses raw as an HTML fragment and returns the fragment
// with only allow-listed structure remaining. It is idempotent:
// Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(raw string) string {
	if raw == "" {
		return ""
	}

	wrapper, err := parseFragment(raw)
	if err != nil {
		return ""
	}

	sanitizeChildren(wrapper)

	var b strings.Builder
	for c := wrapper.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return ""
		}
	}
	return strings.TrimSpace(b.String())
}

// PlainText returns the concatenated text content of the fragment,
// the way a rendered node's textContent would read.
func PlainText(markup string) string {
	if markup == "" {
		return ""
	}

	wrapper, err := parseFragment(markup)
	if err != nil {
		return ""
	}

	var b strings.Builder
	collectText(wrapper, &b)
	return b.String()
}

func parseFragment(raw string) (*html.Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(raw), ctx)
	if err != nil {
		return nil, err
	}

	wrapper := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	for _, n := range nodes {
		wrapper.AppendChild(n)
	}
	return wrapper, nil
}

// sanitizeChildren walks the children of parent depth-first. Unwrapped
// nodes are revisited in place, so structure spliced out of a
// disallowed element is itself sanitized.
func sanitizeChildren(parent *html.Node) {
	c := parent.FirstChild
	for c != nil {
		switch c.Type {
		case html.CommentNode:
			next := c.NextSibling
			parent.RemoveChild(c)
			c = next

		case html.ElementNode:
			if !allowedTags[c.Data] {
				c = unwrap(parent, c)
				continue
			}
			sanitizeAttrs(c)
			sanitizeChildren(c)
			c = c.NextSibling

		default:
			c = c.NextSibling
		}
	}
}

// unwrap splices el's children into parent at el's position, removes
// el, and returns the node the caller should continue from.
func unwrap(parent, el *html.Node) *html.Node {
	first := el.FirstChild
	for el.FirstChild != nil {
		child := el.FirstChild
		el.RemoveChild(child)
		parent.InsertBefore(child, el)
	}
	next := el.NextSibling
	parent.RemoveChild(el)
	if first != nil {
		return first
	}
	return next
}

func sanitizeAttrs(el *html.Node) {
	allowed := allowedAttrsByTag[el.Data]

	kept := el.Attr[:0]
	for _, attr := range el.Attr {
		if attr.Namespace == "" && allowed[strings.ToLower(attr.Key)] {
			kept = append(kept, attr)
		}
	}
	el.Attr = kept

	if el.Data == "a" {
		if safeHref(getAttr(el, "href")) {
			setAttr(el, "target", "_blank")
			setAttr(el, "rel", "noopener noreferrer")
		} else {
			removeAttr(el, "href")
		}
	}

	if el.Data == "span" && !hasAttr(el, "data-mention") {
		removeAttr(el, "class")
	}
}

// safeHref accepts http/https/mailto URLs, fragments, and
// site-relative paths.
func safeHref(href string) bool {
	lower := strings.ToLower(href)
	return strings.HasPrefix(lower, "http:") ||
		strings.HasPrefix(lower, "https:") ||
		strings.HasPrefix(lower, "mailto:") ||
		strings.HasPrefix(lower, "#") ||
		strings.HasPrefix(lower, "/")
}

func getAttr(el *html.Node, key string) string {
	for _, attr := range el.Attr {
		if strings.EqualFold(attr.Key, key) {
			return attr.Val
		}
	}
	return ""
}

func hasAttr(el *html.Node, key string) bool {
	for _, attr := range el.Attr {
		if strings.EqualFold(attr.Key, key) {
			return true
		}
	}
	return false
}

func setAttr(el *html.Node, key, val string) {
	for i, attr := range el.Attr {
		if strings.EqualFold(attr.Key, key) {
			el.Attr[i].Val = val
			return
		}
	}
	el.Attr = append(el.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(el *html.Node, key string) {
	kept := el.Attr[:0]
	for _, attr := range el.Attr {
		if !strings.EqualFold(attr.Key, key) {
			kept = append(kept, attr)
		}
	}
	el.Attr = kept
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}

// IsBlank reports whether the plain-text rendering of markup contains
// no visible characters.
func IsBlank(markup string) bool {
	return strings.TrimFunc(PlainText(markup), unicode.IsSpace) == ""
}
