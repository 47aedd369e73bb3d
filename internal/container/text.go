package container

import (
	"bufio"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/bookstruct/internal/doctree"
)

// TextExtractor handles plain text files. Paragraphs are separated by blank
// lines; each becomes its own block.
type TextExtractor struct{}

func (p *TextExtractor) Extract(r io.Reader, filename string) (*Container, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			if len(current) > 0 {
				paragraphs = append(paragraphs, strings.Join(current, " "))
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		paragraphs = append(paragraphs, strings.Join(current, " "))
	}
	if err := scanner.Err(); err != nil {
		return nil, malformed(filename, err)
	}

	var buf strings.Builder
	buf.WriteString("<html><body>\n")
	for _, para := range paragraphs {
		buf.WriteString("<div><p>" + html.EscapeString(para) + "</p></div>\n")
	}
	buf.WriteString("</body></html>\n")

	meta := doctree.Metadata{Title: baseTitle(filename)}
	return single(filename, "text/html", meta, []byte(buf.String())), nil
}
