package container

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/bookstruct/internal/doctree"
)

// MarkdownExtractor renders Markdown to HTML with goldmark. Each top-level
// block is wrapped in its own <div> so blank-line separated paragraphs stay
// separate paragraphs. Heading attributes ({.class}) and raw HTML pass
// through, so class-tagged markup can be written inline.
type MarkdownExtractor struct{}

var markdown = goldmark.New(
	goldmark.WithParserOptions(parser.WithAttribute()),
	goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
)

func (p *MarkdownExtractor) Extract(r io.Reader, filename string) (*Container, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, malformed(filename, fmt.Errorf("read: %w", err))
	}

	doc := markdown.Parser().Parse(text.NewReader(src))
	meta := doctree.Metadata{Title: baseTitle(filename)}
	titled := false

	var buf bytes.Buffer
	buf.WriteString("<html><body>\n")
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok && h.Level == 1 && !titled {
			if t := strings.TrimSpace(string(h.Text(src))); t != "" {
				meta.Title = t
				titled = true
			}
		}
		buf.WriteString("<div>")
		if err := markdown.Renderer().Render(&buf, src, n); err != nil {
			return nil, malformed(filename, fmt.Errorf("render markdown: %w", err))
		}
		buf.WriteString("</div>\n")
	}
	buf.WriteString("</body></html>\n")

	return single(filename, "text/html", meta, buf.Bytes()), nil
}
