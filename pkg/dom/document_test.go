package dom

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const shell = `<!DOCTYPE html>
<html><head><title>Loading</title></head>
<body>
<nav><div id="nav-logo"></div><ul id="nav-links"></ul></nav>
<p id="footer-credit">placeholder</p>
<div id="slides"><div class="slide active">a</div><div class="slide">b</div></div>
</body></html>`

func parseShell(t *testing.T) *Document {
	t.Helper()
	doc, err := ParseString(shell)
	require.NoError(t, err)
	return doc
}

func TestRequire(t *testing.T) {
	doc := parseShell(t)

	require.NoError(t, doc.Require("nav-logo", "nav-links", "footer-credit"))

	err := doc.Require("nav-logo", "hero-name")
	require.Error(t, err)

	var missing *MissingElementError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "hero-name", missing.ID)
}

func TestSetTextEscapes(t *testing.T) {
	doc := parseShell(t)

	require.NoError(t, doc.SetText("footer-credit", "<b>bold</b> & co"))

	text, err := doc.Text("footer-credit")
	require.NoError(t, err)
	assert.Equal(t, "<b>bold</b> & co", text)
	assert.Contains(t, doc.String(), "&lt;b&gt;bold&lt;/b&gt; &amp; co")
}

func TestSetHTMLReplacesChildren(t *testing.T) {
	doc := parseShell(t)

	require.NoError(t, doc.SetHTML("nav-links", `<li><a href="#about">About</a></li><li><a href="#work">Work</a></li>`))
	require.NoError(t, doc.SetHTML("nav-links", `<li><a href="#about">About</a></li>`))

	var count int
	err := doc.Update(func(root *html.Node) error {
		links := FindByID(root, "nav-links")
		for c := links.FirstChild; c != nil; c = c.NextSibling {
			if c.DataAtom == atom.Li {
				count++
			}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSetMissing(t *testing.T) {
	doc := parseShell(t)

	var missing *MissingElementError
	require.ErrorAs(t, doc.SetText("nope", "x"), &missing)
	require.ErrorAs(t, doc.SetHTML("nope", "<b>x</b>"), &missing)
	_, err := doc.Text("nope")
	require.ErrorAs(t, err, &missing)
}

func TestTag(t *testing.T) {
	doc := parseShell(t)

	tag, err := doc.Tag("footer-credit")
	require.NoError(t, err)
	assert.Equal(t, atom.P, tag)

	tag, err = doc.Tag("slides")
	require.NoError(t, err)
	assert.Equal(t, atom.Div, tag)

	_, err = doc.Tag("nope")
	var missing *MissingElementError
	assert.ErrorAs(t, err, &missing)
}

func TestSetTitle(t *testing.T) {
	doc := parseShell(t)
	require.NoError(t, doc.SetTitle("Jane Doe | Engineer"))
	assert.Equal(t, "Jane Doe | Engineer", doc.Title())

	bare, err := ParseString(`<html><head></head><body></body></html>`)
	require.NoError(t, err)
	require.NoError(t, bare.SetTitle("Created"))
	assert.Equal(t, "Created", bare.Title())
}

func TestAppendHTML(t *testing.T) {
	doc := parseShell(t)
	require.NoError(t, doc.AppendHTML(atom.Body, `<script src="/live.js"></script>`))
	assert.Contains(t, doc.String(), `<script src="/live.js"></script></body>`)
}

func TestClassHelpers(t *testing.T) {
	doc := parseShell(t)

	err := doc.Update(func(root *html.Node) error {
		slides := FindAllByClass(root, "slide")
		require.Len(t, slides, 2)
		assert.True(t, HasClass(slides[0], "active"))
		assert.False(t, HasClass(slides[1], "active"))

		ToggleClass(slides[0], "active", false)
		ToggleClass(slides[1], "active", true)
		ToggleClass(slides[1], "active", true)
		return nil
	})
	require.NoError(t, err)

	out := doc.String()
	assert.Contains(t, out, `<div class="slide">a</div>`)
	assert.Contains(t, out, `<div class="slide active">b</div>`)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.html")
	require.NoError(t, os.WriteFile(path, []byte(shell), 0600))

	doc, err := ParseFile(path)
	require.NoError(t, err)
	assert.True(t, doc.Has("nav-logo"))
	assert.False(t, doc.Has("missing"))

	_, err = ParseFile(filepath.Join(t.TempDir(), "nope.html"))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "nope.html"))
}
