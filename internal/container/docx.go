package container

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fumiama/go-docx"
	"golang.org/x/net/html"

	"github.com/dgallion1/bookstruct/internal/doctree"
)

// DOCXExtractor handles .docx files. A paragraph's style name becomes its
// class; heading styles become h1..h6 and the Title style sets the
// container title.
type DOCXExtractor struct{}

func (p *DOCXExtractor) Extract(r io.Reader, filename string) (*Container, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, malformed(filename, fmt.Errorf("read: %w", err))
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, malformed(filename, fmt.Errorf("parse docx: %w", err))
	}

	meta := doctree.Metadata{Title: baseTitle(filename)}
	titled := false

	var buf strings.Builder
	buf.WriteString("<html><body>\n")
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := docxParagraphText(para)
		if text == "" {
			continue
		}
		style := docxStyle(para)
		if !titled && strings.EqualFold(style, "Title") {
			meta.Title = text
			titled = true
		}

		tag := "p"
		if level := docxHeadingLevel(style); level > 0 {
			tag = fmt.Sprintf("h%d", level)
		}
		buf.WriteString("<div>")
		buf.WriteString("<" + tag)
		if class := styleClass(style); class != "" {
			buf.WriteString(` class="` + html.EscapeString(class) + `"`)
		}
		buf.WriteString(">")
		buf.WriteString(html.EscapeString(text))
		buf.WriteString("</" + tag + "></div>\n")
	}
	buf.WriteString("</body></html>\n")

	return single(filename, "text/html", meta, []byte(buf.String())), nil
}

func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return para.Properties.Style.Val
}

// docxHeadingLevel recognises "Heading1" and "heading 1" style names. The
// Title style counts as level 1.
func docxHeadingLevel(style string) int {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	if s == "title" {
		return 1
	}
	if len(s) == len("heading1") && strings.HasPrefix(s, "heading") {
		if d := s[len(s)-1]; d >= '1' && d <= '6' {
			return int(d - '0')
		}
	}
	return 0
}

func styleClass(style string) string {
	return strings.Join(strings.Fields(style), "-")
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
