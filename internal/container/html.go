package container

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dgallion1/bookstruct/internal/doctree"
)

// HTMLExtractor handles a single HTML or XHTML file. Metadata comes from the
// <title> element and the author/description meta tags.
type HTMLExtractor struct{}

func (p *HTMLExtractor) Extract(r io.Reader, filename string) (*Container, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, malformed(filename, fmt.Errorf("read: %w", err))
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, malformed(filename, fmt.Errorf("parse html: %w", err))
	}

	meta := doctree.Metadata{Title: baseTitle(filename)}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		meta.Title = title
	}
	meta.Author = metaContent(doc, "author")
	meta.Subtitle = metaContent(doc, "description")

	return single(filename, "text/html", meta, data), nil
}

func metaContent(doc *goquery.Document, name string) string {
	v, _ := doc.Find(`meta[name="` + name + `"]`).First().Attr("content")
	return strings.TrimSpace(v)
}
