// Package markup turns one content document's raw bytes into a navigable
// tree with class attributes intact and non-narrative elements removed.
package markup

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"
)

// skipTags never hold narrative text.
var skipTags = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
}

// Normalize parses data as HTML and removes executable and style elements.
// Parsing is best-effort: malformed markup is repaired the way browsers do.
// Data that is not valid UTF-8 is decoded using contentType and any
// in-document charset declaration.
func Normalize(data []byte, contentType string) (*goquery.Document, error) {
	var r io.Reader = bytes.NewReader(data)
	if !utf8.Valid(data) {
		decoded, err := charset.NewReader(r, contentType)
		if err != nil {
			return nil, fmt.Errorf("decode markup: %w", err)
		}
		r = decoded
	}

	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}
	clean(root)
	return goquery.NewDocumentFromNode(root), nil
}

// clean recursively drops skip-tag elements and comments.
func clean(n *html.Node) {
	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		if c.Type == html.CommentNode || (c.Type == html.ElementNode && skipTags[c.DataAtom]) {
			n.RemoveChild(c)
			continue
		}
		clean(c)
	}
}

// Body returns the document's body element, or the document root when the
// markup has none.
func Body(doc *goquery.Document) *html.Node {
	if body := doc.Find("body"); body.Length() > 0 {
		return body.Get(0)
	}
	return doc.Get(0)
}
