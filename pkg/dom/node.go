package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// walk visits n and its descendants depth first until visit returns false.
func walk(n *html.Node, visit func(*html.Node) bool) (more bool) {
	more = visit(n)
	for c := n.FirstChild; c != nil && more; c = c.NextSibling {
		more = walk(c, visit)
	}
	return more
}

// FindByID returns the first element under root with the given id.
func FindByID(root *html.Node, id string) (found *html.Node) {
	walk(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		if v, ok := Attr(n, "id"); ok && v == id {
			found = n
			return false
		}
		return true
	})

	return found
}

// FindAllByClass returns every element under root carrying class, in document order.
func FindAllByClass(root *html.Node, class string) (found []*html.Node) {
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && HasClass(n, class) {
			found = append(found, n)
		}
		return true
	})

	return found
}

// Attr returns the value of an attribute.
func Attr(n *html.Node, key string) (val string, ok bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			val = a.Val
			ok = true
			return val, ok
		}
	}

	return val, ok
}

// SetAttr sets or replaces an attribute.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}

	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// HasClass reports whether n carries class.
func HasClass(n *html.Node, class string) (ok bool) {
	v, _ := Attr(n, "class")
	for _, c := range strings.Fields(v) {
		if c == class {
			ok = true
			return ok
		}
	}

	return ok
}

// ToggleClass adds class when on is true and removes it otherwise.
func ToggleClass(n *html.Node, class string, on bool) {
	v, _ := Attr(n, "class")
	fields := strings.Fields(v)

	kept := fields[:0]
	for _, c := range fields {
		if c != class {
			kept = append(kept, c)
		}
	}
	if on {
		kept = append(kept, class)
	}

	SetAttr(n, "class", strings.Join(kept, " "))
}

// TextContent concatenates the text nodes under n.
func TextContent(n *html.Node) (text string) {
	var b strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})

	text = b.String()
	return text
}
