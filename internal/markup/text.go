package markup

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"
)

// StrippedText concatenates every descendant text node of the selection,
// each trimmed, with no separator. This is the form used for class-group
// fragments and the full-text blob: because inter-element whitespace is
// dropped, a heading followed by a paragraph reads as heading+paragraph,
// which is what anchors are built from.
func StrippedText(sel *goquery.Selection) string {
	var sb strings.Builder
	for _, n := range sel.Nodes {
		appendStripped(&sb, n)
	}
	return norm.NFC.String(sb.String())
}

func appendStripped(sb *strings.Builder, n *html.Node) {
	if n.Type == html.TextNode {
		sb.WriteString(strings.TrimSpace(n.Data))
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		appendStripped(sb, c)
	}
}

// NodeText returns the readable text of n: all descendant text with
// whitespace runs collapsed to single spaces and the ends trimmed.
func NodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		sep := n.Type == html.ElementNode && separatingTags[n.DataAtom]
		if sep {
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if sep {
			sb.WriteByte(' ')
		}
	}
	walk(n)
	return norm.NFC.String(strings.Join(strings.Fields(sb.String()), " "))
}

// separatingTags break words apart even when the markup has no whitespace
// between them.
var separatingTags = map[atom.Atom]bool{
	atom.Br: true, atom.P: true, atom.Div: true, atom.Li: true,
	atom.Td: true, atom.Th: true, atom.Tr: true, atom.Dt: true, atom.Dd: true,
}

// Classes returns the class names carried by n, in attribute order.
func Classes(n *html.Node) []string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == "class" {
			return strings.Fields(a.Val)
		}
	}
	return nil
}

// ClassKey is the identity of n's class list, used to compare runs.
func ClassKey(n *html.Node) string {
	return strings.Join(Classes(n), " ")
}

// HasAnyClass reports whether n carries at least one class in set.
func HasAnyClass(n *html.Node, set map[string]bool) bool {
	for _, c := range Classes(n) {
		if set[c] {
			return true
		}
	}
	return false
}
