package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dgallion1/bookstruct/internal/doctree"
)

type renderer struct {
	format string
	w      io.Writer
}

func newRenderer(format string, w io.Writer) (*renderer, error) {
	switch format {
	case "text", "json":
		return &renderer{format: format, w: w}, nil
	}
	return nil, fmt.Errorf("unknown format %q (want text or json)", format)
}

func (r *renderer) render(path string, book *doctree.Book) error {
	if r.format == "json" {
		enc := json.NewEncoder(r.w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			File string `json:"file"`
			*doctree.Book
		}{path, book})
	}
	bw := bufio.NewWriter(r.w)
	writeText(bw, book)
	return bw.Flush()
}

// writeText prints the byline, then every section as title, subtitle,
// paragraphs and side notes, one per line, followed by a blank line.
func writeText(w io.Writer, book *doctree.Book) {
	for _, d := range book.Documents {
		if len(d.Byline) > 0 {
			for _, line := range d.Byline {
				fmt.Fprintln(w, line)
			}
			fmt.Fprintln(w)
		}
		for _, s := range d.Sections {
			for _, line := range s.Headings() {
				fmt.Fprintln(w, line)
			}
			for _, p := range s.Paragraphs {
				fmt.Fprintln(w, p)
			}
			for _, n := range s.SideNotes {
				fmt.Fprintln(w, n)
			}
			fmt.Fprintln(w)
		}
	}
}
