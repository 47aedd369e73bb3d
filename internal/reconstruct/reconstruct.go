// Package reconstruct re-linearizes class-bucketed text.
//
// Bucketing by class keeps order within a class but loses it across
// classes. The full rendering of the document is the only place where true
// adjacency survives, so each section's position is found by searching it
// for the section name immediately followed by the section's opening line.
// Continuation paragraphs are then poured out until the text that precedes
// that position (the fingerprint) has been emitted.
package reconstruct

import (
	"io"
	"log/slog"
	"strings"

	"github.com/dgallion1/bookstruct/internal/doctree"
)

// Input is the class-group data the reconstructor needs.
type Input struct {
	// SectionNames are section headings in extraction order. Each is used
	// at most once.
	SectionNames []string
	// FirstLines[i] is the opening line of the i-th section in reading order.
	FirstLines []string
	// Continuations are all non-opening paragraphs in reading order.
	Continuations []string
	// FullText is the reading-order rendering of the whole document.
	FullText string
}

// Result holds the reconstructed sections. The first section has no title
// and collects paragraphs that precede the first heading; it is omitted
// when there are none.
type Result struct {
	Sections []doctree.Section
	// Trace is the emitted line stream: a blank line before every section
	// name, then the name, opening line and paragraphs as they were poured.
	Trace []string
}

type Reconstructor struct {
	Locator          Locator
	FingerprintWidth int
	log              *slog.Logger
}

func New(log *slog.Logger) *Reconstructor {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Reconstructor{
		Locator:          SubstringLocator{},
		FingerprintWidth: DefaultFingerprintWidth,
		log:              log,
	}
}

// Reconstruct orders in.Continuations around the section headings. It
// fails with *doctree.UnresolvedAnchorError when a section cannot be
// placed, and with *doctree.BoundaryError when the continuation paragraphs
// run out before a section's fingerprint is seen.
func (r *Reconstructor) Reconstruct(in Input) (*Result, error) {
	pool := newNamePool(in.SectionNames)
	out := &emitter{}
	j := 0

	for i := range len(in.SectionNames) {
		if i >= len(in.FirstLines) {
			return nil, &doctree.UnresolvedAnchorError{Index: i, Candidates: pool.remaining()}
		}
		first := in.FirstLines[i]

		candidates := pool.remaining()
		name, offset, ok := pool.take(func(name string) int {
			return r.Locator.Locate(in.FullText, name+first)
		})
		if !ok {
			return nil, &doctree.UnresolvedAnchorError{Index: i, Line: first, Candidates: candidates}
		}

		fp := Fingerprint(in.FullText, offset, r.FingerprintWidth)
		if fp == "" {
			r.log.Debug("empty fingerprint", "section", i, "name", name)
		}

		// The previous section ended right where this one begins.
		if last, ok := out.last(); ok && strings.Contains(last, fp) {
			out.section(name, first)
			continue
		}

		for !(fp == "" || (j > 0 && strings.Contains(in.Continuations[j-1], fp))) {
			if j >= len(in.Continuations) {
				return nil, &doctree.BoundaryError{Index: i, Name: name, Fingerprint: fp}
			}
			out.paragraph(in.Continuations[j])
			j++
		}
		out.section(name, first)
	}

	for ; j < len(in.Continuations); j++ {
		out.paragraph(in.Continuations[j])
	}
	out.seq.Emit(out.cur)

	return &Result{Sections: out.seq.Sections(), Trace: out.trace}, nil
}

// emitter builds sections from the poured line stream.
type emitter struct {
	seq     doctree.Sequence
	cur     doctree.Section
	emitted []string
	trace   []string
}

func (e *emitter) last() (string, bool) {
	if len(e.emitted) == 0 {
		return "", false
	}
	return e.emitted[len(e.emitted)-1], true
}

func (e *emitter) paragraph(p string) {
	e.cur.Paragraphs = append(e.cur.Paragraphs, p)
	e.emitted = append(e.emitted, p)
	e.trace = append(e.trace, p)
}

func (e *emitter) section(name, first string) {
	e.seq.Emit(e.cur)
	e.cur = doctree.Section{
		Order:      e.seq.Next(),
		Title:      name,
		Paragraphs: []string{first},
	}
	e.emitted = append(e.emitted, name, first)
	e.trace = append(e.trace, "", name, first)
}
