package structure

import (
	"github.com/dgallion1/bookstruct/internal/classgroup"
	"github.com/dgallion1/bookstruct/internal/doctree"
	"github.com/dgallion1/bookstruct/internal/reconstruct"
)

// anchor reconstructs the document from its class groups and assembles the
// lead, the reconstructed sections and the literature list.
func (e *Engine) anchor(g *classgroup.Groups) ([]doctree.Section, []string, error) {
	p := e.profile
	required := []struct{ class, role string }{
		{p.FullText, "full text"},
		{p.headingClass(), "section heading"},
		{p.FirstParagraph, "first paragraph"},
		{p.Continuation, "continuation"},
	}
	for _, r := range required {
		if !g.Has(r.class) {
			return nil, nil, &doctree.MissingClassError{Class: r.class, Role: r.role}
		}
	}

	full, _ := g.First(p.FullText)
	res, err := e.rec.Reconstruct(reconstruct.Input{
		SectionNames:  g.Concat(p.SectionHeadings...),
		FirstLines:    g.Get(p.FirstParagraph),
		Continuations: g.Get(p.Continuation),
		FullText:      full,
	})
	if err != nil {
		return nil, nil, err
	}

	lead := doctree.Section{
		Title:     doctree.JoinRun(g.Get(p.Headline)),
		SideNotes: g.Get(p.InBrief),
	}
	if intro := g.Get(p.Intro); len(intro) > 0 {
		lead.Subtitle = intro[0]
		lead.Paragraphs = append(lead.Paragraphs, intro[1:]...)
	}
	lead.Paragraphs = append(lead.Paragraphs, g.Get(p.Lead)...)

	// An untitled first section holds what was drained before the first
	// heading; it belongs to the lead.
	sections := res.Sections
	if len(sections) > 0 && sections[0].Title == "" {
		lead.Paragraphs = append(lead.Paragraphs, sections[0].Paragraphs...)
		sections = sections[1:]
	}

	var seq doctree.Sequence
	seq.Emit(lead)
	for _, s := range sections {
		seq.Emit(s)
	}
	if lit := g.Get(p.Literature); len(lit) > 0 {
		seq.Emit(doctree.Section{
			Title:      doctree.JoinRun(g.Get(p.LiteratureHeading)),
			Paragraphs: lit,
		})
	}

	return seq.Sections(), g.Concat(p.AuthorName, p.AuthorCredit), nil
}
