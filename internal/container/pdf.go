package container

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
	"golang.org/x/net/html"

	"github.com/dgallion1/bookstruct/internal/doctree"
)

// PDFExtractor handles PDF files. It tries the Go library first, then falls
// back to pdftotext if enabled and available. PDFs carry no classes: every
// page becomes a "pdf-page" container and every blank-line separated block
// its own paragraph.
type PDFExtractor struct {
	FallbackPdftotext bool
}

func (p *PDFExtractor) Extract(r io.Reader, filename string) (*Container, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, malformed(filename, fmt.Errorf("read: %w", err))
	}

	pages, err := extractPDFPages(data)
	if err != nil && p.FallbackPdftotext {
		pages, err = extractPdftotext(data)
	}
	if err != nil {
		return nil, malformed(filename, fmt.Errorf("extract pdf text: %w", err))
	}

	var buf strings.Builder
	buf.WriteString("<html><body>\n")
	for _, page := range pages {
		blocks := splitBlocks(page)
		if len(blocks) == 0 {
			continue
		}
		buf.WriteString(`<div class="pdf-page">`)
		for _, b := range blocks {
			buf.WriteString("<div><p>" + html.EscapeString(b) + "</p></div>")
		}
		buf.WriteString("</div>\n")
	}
	buf.WriteString("</body></html>\n")

	meta := doctree.Metadata{Title: baseTitle(filename)}
	return single(filename, "text/html", meta, []byte(buf.String())), nil
}

func extractPDFPages(data []byte) (pages []string, err error) {
	// The pdf library panics on some malformed input.
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdf reader: %v", rec)
		}
	}()

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

func extractPdftotext(data []byte) ([]string, error) {
	tmp, err := os.CreateTemp("", "bookstruct-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	out, err := exec.Command("pdftotext", "-layout", tmpPath, "-").Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	// Form feed separates pages.
	return strings.Split(string(out), "\f"), nil
}

// splitBlocks splits text on blank lines and collapses whitespace inside
// each block.
func splitBlocks(text string) []string {
	var blocks []string
	var cur []string
	flush := func() {
		if len(cur) > 0 {
			blocks = append(blocks, strings.Join(cur, " "))
			cur = nil
		}
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			flush()
			continue
		}
		cur = append(cur, line)
	}
	flush()
	return blocks
}
