// Package segment walks a normalized document in order and cuts it into
// sections using heading tags, boundary classes on block containers, and
// changes of class between consecutive paragraphs.
package segment

import (
	"io"
	"log/slog"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dgallion1/bookstruct/internal/doctree"
	"github.com/dgallion1/bookstruct/internal/markup"
)

// Config names the classes that drive segmentation.
type Config struct {
	// BoundaryClasses on a block container start a new section.
	BoundaryClasses []string
	// SubheadingClass marks text that sets the current section's subtitle.
	SubheadingClass string
	// SideNoteClasses mark elements (or whole containers) whose text goes to
	// the section's side notes instead of its paragraphs.
	SideNoteClasses []string
}

// DefaultConfig returns the boundary and role classes used when none are
// configured.
func DefaultConfig() Config {
	return Config{
		BoundaryClasses: []string{"Basic-Text-Frame", "chapter", "section"},
		SubheadingClass: "subtitle",
		SideNoteClasses: []string{"sidenote", "footnote", "Intro_IN-HET-KORT-TXT"},
	}
}

// Result is the output of one segmentation run.
type Result struct {
	Sections []doctree.Section
	// DroppedHeadings holds heading text that arrived after both heading
	// slots of its section were filled.
	DroppedHeadings []string
}

// Segmenter is safe for concurrent use; each Segment call keeps its own state.
type Segmenter struct {
	boundary   map[string]bool
	sideNote   map[string]bool
	subheading string
	log        *slog.Logger
}

func New(cfg Config, log *slog.Logger) *Segmenter {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Segmenter{
		boundary:   toSet(cfg.BoundaryClasses),
		sideNote:   toSet(cfg.SideNoteClasses),
		subheading: cfg.SubheadingClass,
		log:        log,
	}
}

// containerTags are block containers: they may carry boundary classes and
// their end flushes the paragraph run.
var containerTags = map[atom.Atom]bool{
	atom.Body:       true,
	atom.Div:        true,
	atom.Section:    true,
	atom.Article:    true,
	atom.Aside:      true,
	atom.Main:       true,
	atom.Header:     true,
	atom.Footer:     true,
	atom.Nav:        true,
	atom.Blockquote: true,
	atom.Figure:     true,
}

// textTags are the text-bearing blocks; their whole text is taken at once.
var textTags = map[atom.Atom]bool{
	atom.P:          true,
	atom.Table:      true,
	atom.Ul:         true,
	atom.Ol:         true,
	atom.Dl:         true,
	atom.Pre:        true,
	atom.Figcaption: true,
}

// Segment returns the sections of doc in document order.
func (s *Segmenter) Segment(doc *goquery.Document) Result {
	st := &state{seg: s}
	st.container(markup.Body(doc), false)
	st.flush()
	st.seq.Emit(st.cur)

	return Result{
		Sections:        st.seq.Sections(),
		DroppedHeadings: st.dropped,
	}
}

type state struct {
	seg *Segmenter
	seq doctree.Sequence
	cur doctree.Section

	run      []string
	runClass string

	dropped []string
}

func (st *state) container(n *html.Node, side bool) {
	if n.Type == html.ElementNode && markup.HasAnyClass(n, st.seg.boundary) {
		st.flush()
		st.seq.Emit(st.cur)
		st.cur = doctree.Section{Order: st.seq.Next()}
	}
	side = side || markup.HasAnyClass(n, st.seg.sideNote)
	st.children(n, side)
	st.flush()
}

func (st *state) children(n *html.Node, side bool) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch {
		case containerTags[c.DataAtom]:
			st.container(c, side)
		case headingLevel(c.DataAtom) > 0:
			st.heading(c, side)
		case textTags[c.DataAtom]:
			st.text(c, side)
		default:
			st.children(c, side)
		}
	}
}

func (st *state) heading(n *html.Node, side bool) {
	text := markup.NodeText(n)
	if text == "" {
		return
	}
	if side || markup.HasAnyClass(n, st.seg.sideNote) {
		st.cur.SideNotes = append(st.cur.SideNotes, text)
		return
	}
	st.flush()
	if st.isSubheading(n) {
		st.cur.Subtitle = text
		return
	}
	// A heading after body text opens the next unit.
	if len(st.cur.Paragraphs) > 0 {
		st.seq.Emit(st.cur)
		st.cur = doctree.Section{Order: st.seq.Next()}
	}
	if !st.cur.AddHeading(text) {
		st.dropped = append(st.dropped, text)
		st.seg.log.Debug("heading dropped, both slots filled",
			"title", st.cur.Title, "subtitle", st.cur.Subtitle, "heading", text)
	}
}

func (st *state) text(n *html.Node, side bool) {
	text := markup.NodeText(n)
	if text == "" {
		return
	}
	if side || markup.HasAnyClass(n, st.seg.sideNote) {
		st.cur.SideNotes = append(st.cur.SideNotes, text)
		return
	}
	if st.isSubheading(n) {
		st.flush()
		st.cur.Subtitle = text
		return
	}
	class := markup.ClassKey(n)
	if len(st.run) > 0 && class != st.runClass {
		st.flush()
	}
	if len(st.run) == 0 {
		st.runClass = class
	}
	st.run = append(st.run, text)
}

// flush turns the buffered run into one paragraph of the open section.
func (st *state) flush() {
	if len(st.run) > 0 {
		st.cur.Paragraphs = append(st.cur.Paragraphs, doctree.JoinRun(st.run))
	}
	st.run = nil
	st.runClass = ""
}

func (st *state) isSubheading(n *html.Node) bool {
	if st.seg.subheading == "" {
		return false
	}
	for _, c := range markup.Classes(n) {
		if c == st.seg.subheading {
			return true
		}
	}
	return false
}

func headingLevel(a atom.Atom) int {
	switch a {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	case atom.H5:
		return 5
	case atom.H6:
		return 6
	}
	return 0
}

func toSet(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		if it != "" {
			m[it] = true
		}
	}
	return m
}
