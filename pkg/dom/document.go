// Package dom holds an HTML page shell in memory and exposes the small set of
// element operations the renderer needs: lookup by id, text and fragment
// replacement, class toggling and serialization.
//
// Every Document method takes the document lock, so timers that flip classes
// and handlers that serialize the page can share one Document.
package dom

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MissingElementError reports a page shell without a required element.
type MissingElementError struct {
	ID string
}

func (e *MissingElementError) Error() (msg string) {
	msg = fmt.Sprintf("page shell has no element with id %q", e.ID)
	return msg
}

// Document is a parsed page shell.
type Document struct {
	mu   sync.Mutex
	root *html.Node
}

// Parse reads a page shell.
func Parse(r io.Reader) (doc *Document, err error) {
	var root *html.Node
	root, err = html.Parse(r)
	if err != nil {
		err = errors.Wrap(err, "failed to parse page shell")
		return doc, err
	}

	doc = &Document{root: root}
	return doc, err
}

// ParseString parses a page shell held in memory.
func ParseString(s string) (doc *Document, err error) {
	doc, err = Parse(strings.NewReader(s))
	return doc, err
}

// ParseFile reads a page shell from disk.
func ParseFile(path string) (doc *Document, err error) {
	var f *os.File
	f, err = os.Open(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to open page shell: %s", path)
		return doc, err
	}
	defer f.Close()

	doc, err = Parse(f)
	if err != nil {
		err = errors.Wrapf(err, "page shell: %s", path)
		return doc, err
	}

	return doc, err
}

// Require checks that every id is present.
func (d *Document) Require(ids ...string) (err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, id := range ids {
		if FindByID(d.root, id) == nil {
			err = &MissingElementError{ID: id}
			return err
		}
	}

	return err
}

// Has reports whether an element with id exists.
func (d *Document) Has(id string) (ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ok = FindByID(d.root, id) != nil
	return ok
}

// SetText replaces the children of id with a single text node.
func (d *Document) SetText(id, text string) (err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var n *html.Node
	n, err = d.element(id)
	if err != nil {
		return err
	}

	removeChildren(n)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})

	return err
}

// SetHTML replaces the children of id with the parsed fragment.
func (d *Document) SetHTML(id, fragment string) (err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var n *html.Node
	n, err = d.element(id)
	if err != nil {
		return err
	}

	var nodes []*html.Node
	nodes, err = html.ParseFragment(strings.NewReader(fragment), n)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse fragment for #%s", id)
		return err
	}

	removeChildren(n)
	for _, child := range nodes {
		n.AppendChild(child)
	}

	return err
}

// AppendHTML appends the parsed fragment to the first element with the given tag.
func (d *Document) AppendHTML(tag atom.Atom, fragment string) (err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := findByAtom(d.root, tag)
	if n == nil {
		err = errors.Errorf("page shell has no <%s> element", tag)
		return err
	}

	var nodes []*html.Node
	nodes, err = html.ParseFragment(strings.NewReader(fragment), n)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse fragment for <%s>", tag)
		return err
	}

	for _, child := range nodes {
		n.AppendChild(child)
	}

	return err
}

// SetTitle sets the document title, creating <title> when the shell has none.
func (d *Document) SetTitle(title string) (err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := findByAtom(d.root, atom.Title)
	if n == nil {
		head := findByAtom(d.root, atom.Head)
		if head == nil {
			err = errors.New("page shell has no <head> element")
			return err
		}
		n = &html.Node{Type: html.ElementNode, Data: "title", DataAtom: atom.Title}
		head.AppendChild(n)
	}

	removeChildren(n)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: title})

	return err
}

// Title returns the document title.
func (d *Document) Title() (title string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := findByAtom(d.root, atom.Title)
	if n == nil {
		return title
	}

	title = TextContent(n)
	return title
}

// Text returns the text content of id.
func (d *Document) Text(id string) (text string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var n *html.Node
	n, err = d.element(id)
	if err != nil {
		return text, err
	}

	text = TextContent(n)
	return text, err
}

// Tag returns the element type of the element with id.
func (d *Document) Tag(id string) (tag atom.Atom, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var n *html.Node
	n, err = d.element(id)
	if err != nil {
		return tag, err
	}

	tag = n.DataAtom
	return tag, err
}

// Update runs fn with the document locked. fn must not call other Document methods.
func (d *Document) Update(fn func(root *html.Node) error) (err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	err = fn(d.root)
	return err
}

// Render serializes the document.
func (d *Document) Render(w io.Writer) (err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	err = html.Render(w, d.root)
	if err != nil {
		err = errors.Wrap(err, "failed to render page")
		return err
	}

	return err
}

// String serializes the document, returning an empty string on failure.
func (d *Document) String() (s string) {
	var buf bytes.Buffer
	if d.Render(&buf) != nil {
		return s
	}

	s = buf.String()
	return s
}

func (d *Document) element(id string) (n *html.Node, err error) {
	n = FindByID(d.root, id)
	if n == nil {
		err = &MissingElementError{ID: id}
		return n, err
	}

	return n, err
}

func removeChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
}

func findByAtom(root *html.Node, a atom.Atom) (found *html.Node) {
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == a {
			found = n
			return false
		}
		return true
	})

	return found
}
