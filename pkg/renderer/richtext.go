package renderer

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Rich text modes.
const (
	RichTextHTML     = "html"
	RichTextMarkdown = "markdown"
)

// RichText turns a trusted rich field into markup. Inline is used for targets
// that only take phrasing content, such as a <p>.
type RichText interface {
	Render(s string) (out template.HTML, err error)
	Inline(s string) (out template.HTML, err error)
}

// TrustedHTML inserts rich fields as-is.
type TrustedHTML struct{}

// Render returns s unchanged.
func (TrustedHTML) Render(s string) (out template.HTML, err error) {
	//nolint:gosec // Rich fields are trusted markup by contract
	out = template.HTML(s)
	return out, err
}

// Inline returns s unchanged.
func (t TrustedHTML) Inline(s string) (out template.HTML, err error) {
	out, err = t.Render(s)
	return out, err
}

// Markdown converts rich fields with goldmark. Raw HTML passes through.
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown creates a Markdown rich text renderer.
func NewMarkdown() (m *Markdown) {
	m = &Markdown{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
	}
	return m
}

// Render converts s. A lone paragraph is unwrapped so the result fits inline targets.
func (m *Markdown) Render(s string) (out template.HTML, err error) {
	var buf bytes.Buffer
	err = m.md.Convert([]byte(s), &buf)
	if err != nil {
		err = errors.Wrap(err, "failed to convert markdown")
		return out, err
	}

	//nolint:gosec // Rich fields are trusted markup by contract
	out = template.HTML(unwrapParagraph(strings.TrimSpace(buf.String())))
	return out, err
}

// Inline converts s and flattens block elements into lines separated by <br>.
func (m *Markdown) Inline(s string) (out template.HTML, err error) {
	var block template.HTML
	block, err = m.Render(s)
	if err != nil {
		return out, err
	}

	parent := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	var nodes []*html.Node
	nodes, err = html.ParseFragment(strings.NewReader(string(block)), parent)
	if err != nil {
		err = errors.Wrap(err, "failed to parse converted markdown")
		return out, err
	}

	lines := make([]string, 0)
	for _, line := range flattenBlocks(nodes) {
		var buf bytes.Buffer
		for _, n := range line {
			err = html.Render(&buf, n)
			if err != nil {
				err = errors.Wrap(err, "failed to render inline markdown")
				return out, err
			}
		}
		lines = append(lines, strings.TrimSpace(buf.String()))
	}

	//nolint:gosec // Rich fields are trusted markup by contract
	out = template.HTML(strings.Join(lines, "<br>"))
	return out, err
}

//nolint:gochecknoglobals // lookup table
var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Ul: true, atom.Ol: true, atom.Li: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Blockquote: true, atom.Pre: true, atom.Hr: true,
	atom.Table: true, atom.Thead: true, atom.Tbody: true, atom.Tr: true, atom.Td: true, atom.Th: true,
	atom.Dl: true, atom.Dt: true, atom.Dd: true,
}

// flattenBlocks splits nodes into runs of inline content. Every block element
// ends the current run and contributes the runs of its own children.
func flattenBlocks(nodes []*html.Node) (lines [][]*html.Node) {
	var current []*html.Node
	flush := func() {
		if !blank(current) {
			lines = append(lines, current)
		}
		current = nil
	}

	for _, n := range nodes {
		if n.Type == html.ElementNode && blockElements[n.DataAtom] {
			flush()
			var children []*html.Node
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				children = append(children, c)
			}
			lines = append(lines, flattenBlocks(children)...)
			continue
		}
		current = append(current, n)
	}
	flush()

	return lines
}

func blank(nodes []*html.Node) (ok bool) {
	for _, n := range nodes {
		if n.Type != html.TextNode || strings.TrimSpace(n.Data) != "" {
			return ok
		}
	}
	ok = true
	return ok
}

func unwrapParagraph(s string) (out string) {
	out = s
	if !strings.HasPrefix(s, "<p>") || !strings.HasSuffix(s, "</p>") {
		return out
	}

	inner := strings.TrimSuffix(strings.TrimPrefix(s, "<p>"), "</p>")
	if strings.Contains(inner, "<p>") || strings.Contains(inner, "</p>") {
		return out
	}

	out = inner
	return out
}

// NewRichText returns the renderer for a mode name.
func NewRichText(mode string) (rt RichText, err error) {
	switch mode {
	case "", RichTextHTML:
		rt = TrustedHTML{}
	case RichTextMarkdown:
		rt = NewMarkdown()
	default:
		err = errors.Errorf("unknown rich text mode %q: must be 'html' or 'markdown'", mode)
	}
	return rt, err
}
