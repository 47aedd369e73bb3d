// Package classgroup buckets a document's text fragments by class name.
//
// Within one class the fragments keep extraction order; across classes the
// order is lost, which is why the anchor reconstructor needs the full-text
// blob to put sections back in sequence.
package classgroup

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dgallion1/bookstruct/internal/markup"
)

// Groups maps class names to their fragments. It is append-only while being
// built and read-only afterwards; accessors return copies.
type Groups struct {
	order []string
	frags map[string][]string
}

// New returns an empty index.
func New() *Groups {
	return &Groups{frags: make(map[string][]string)}
}

// Index walks every element carrying a class attribute in document order and
// appends its stripped text to each of its classes. Elements whose text is
// empty contribute nothing.
func Index(doc *goquery.Document) *Groups {
	g := New()
	doc.Find("[class]").Each(func(_ int, s *goquery.Selection) {
		text := markup.StrippedText(s)
		if text == "" {
			return
		}
		for _, class := range markup.Classes(s.Get(0)) {
			g.Add(class, text)
		}
	})
	return g
}

// Add appends text to class after trimming; empty text is dropped.
func (g *Groups) Add(class, text string) {
	text = strings.TrimSpace(text)
	if class == "" || text == "" {
		return
	}
	if _, ok := g.frags[class]; !ok {
		g.order = append(g.order, class)
	}
	g.frags[class] = append(g.frags[class], text)
}

// Has reports whether class holds at least one fragment.
func (g *Groups) Has(class string) bool {
	return len(g.frags[class]) > 0
}

// Get returns a copy of the fragments recorded for class.
func (g *Groups) Get(class string) []string {
	return append([]string(nil), g.frags[class]...)
}

// First returns the first fragment recorded for class.
func (g *Groups) First(class string) (string, bool) {
	f := g.frags[class]
	if len(f) == 0 {
		return "", false
	}
	return f[0], true
}

// Concat returns the fragments of each class in turn, skipping absent ones.
func (g *Groups) Concat(classes ...string) []string {
	var out []string
	for _, c := range classes {
		out = append(out, g.frags[c]...)
	}
	return out
}

// Classes returns class names in first-seen order.
func (g *Groups) Classes() []string {
	return append([]string(nil), g.order...)
}

// Len returns the number of distinct classes.
func (g *Groups) Len() int {
	return len(g.order)
}
