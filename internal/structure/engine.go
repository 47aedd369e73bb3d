// Package structure turns content documents into ordered sections using
// either the structural segmenter or the anchor reconstructor.
package structure

import (
	"io"
	"log/slog"

	"github.com/dgallion1/bookstruct/internal/classgroup"
	"github.com/dgallion1/bookstruct/internal/container"
	"github.com/dgallion1/bookstruct/internal/doctree"
	"github.com/dgallion1/bookstruct/internal/markup"
	"github.com/dgallion1/bookstruct/internal/reconstruct"
	"github.com/dgallion1/bookstruct/internal/segment"
)

type Options struct {
	Strategy Strategy
	// SkipFailed records a failing document's error and moves on to the
	// next one instead of aborting the book.
	SkipFailed bool
	// FingerprintWidth overrides reconstruct.DefaultFingerprintWidth when > 0.
	FingerprintWidth int
}

// Engine structures content documents. Documents share no state, so an
// Engine may be used from several goroutines at once.
type Engine struct {
	profile Profile
	opts    Options
	seg     *segment.Segmenter
	rec     *reconstruct.Reconstructor
	log     *slog.Logger
}

func NewEngine(profile Profile, opts Options, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Strategy == "" {
		opts.Strategy = StrategyAuto
	}
	rec := reconstruct.New(log)
	if opts.FingerprintWidth > 0 {
		rec.FingerprintWidth = opts.FingerprintWidth
	}
	return &Engine{
		profile: profile,
		opts:    opts,
		seg:     segment.New(profile.Segment, log),
		rec:     rec,
		log:     log,
	}
}

// WithStrategy returns a copy of e that uses s.
func (e *Engine) WithStrategy(s Strategy) *Engine {
	cp := *e
	cp.opts.Strategy = s
	return &cp
}

func (e *Engine) Options() Options { return e.opts }

// StructureDocument returns the ordered sections of one content document.
// Failures are returned as *doctree.DocumentError.
func (e *Engine) StructureDocument(cd container.ContentDocument) (doctree.Document, error) {
	out := doctree.Document{ID: cd.ID, Href: cd.Href}

	doc, err := markup.Normalize(cd.Data, cd.MediaType)
	if err != nil {
		return out, &doctree.DocumentError{DocID: cd.ID, Err: err}
	}

	strategy := e.opts.Strategy
	var groups *classgroup.Groups
	if strategy != StrategyStructural {
		groups = classgroup.Index(doc)
		if strategy == StrategyAuto {
			strategy = StrategyStructural
			if groups.Has(e.profile.FullText) && groups.Has(e.profile.headingClass()) {
				strategy = StrategyAnchor
			}
		}
	}
	e.log.Debug("structuring document", "doc_id", cd.ID, "strategy", strategy)
	out.Strategy = string(strategy)

	if strategy == StrategyAnchor {
		sections, byline, err := e.anchor(groups)
		if err != nil {
			return out, &doctree.DocumentError{DocID: cd.ID, Err: err}
		}
		out.Sections = sections
		out.Byline = byline
		return out, nil
	}

	res := e.seg.Segment(doc)
	if len(res.DroppedHeadings) > 0 {
		e.log.Debug("headings beyond title and subtitle dropped",
			"doc_id", cd.ID, "count", len(res.DroppedHeadings))
	}
	out.Sections = res.Sections
	return out, nil
}

// StructureBook structures every content document in spine order. Without
// SkipFailed the first failing document aborts the book.
func (e *Engine) StructureBook(c *container.Container) (*doctree.Book, error) {
	book := &doctree.Book{Metadata: c.Metadata}
	for _, cd := range c.Documents {
		d, err := e.StructureDocument(cd)
		if err != nil {
			if !e.opts.SkipFailed {
				return nil, err
			}
			e.log.Warn("document skipped", "doc_id", cd.ID, "error", err)
			d = doctree.Document{ID: cd.ID, Href: cd.Href, Strategy: d.Strategy, Error: err.Error()}
		}
		book.Documents = append(book.Documents, d)
	}
	return book, nil
}
