package container

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/bookstruct/internal/doctree"
)

const containerXML = `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

const contentOPF = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0" unique-identifier="bookid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Test Book</dc:title>
    <dc:creator>Jan Jansen</dc:creator>
    <dc:description>A short subtitle</dc:description>
  </metadata>
  <manifest>
    <item id="c1" href="ch1.xhtml" media-type="application/xhtml+xml"/>
    <item id="c2" href="ch2.xhtml" media-type="application/xhtml+xml"/>
    <item id="css" href="style.css" media-type="text/css"/>
  </manifest>
  <spine>
    <itemref idref="c2"/>
    <itemref idref="c1"/>
  </spine>
</package>`

func buildEPUB(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	// mimetype goes first, as the format requires.
	order := []string{"mimetype"}
	for name := range files {
		if name != "mimetype" {
			order = append(order, name)
		}
	}
	for _, name := range order {
		body, ok := files[name]
		if !ok {
			continue
		}
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func testEPUB(t *testing.T) []byte {
	return buildEPUB(t, map[string]string{
		"mimetype":               "application/epub+zip",
		"META-INF/container.xml": containerXML,
		"OEBPS/content.opf":      contentOPF,
		"OEBPS/ch1.xhtml":        `<html><body><h1>One</h1><p>first</p></body></html>`,
		"OEBPS/ch2.xhtml":        `<html><body><h1>Two</h1><p>second</p></body></html>`,
		"OEBPS/style.css":        `p { margin: 0 }`,
	})
}

func TestEPUBExtractor_SpineOrderAndMetadata(t *testing.T) {
	c, err := (&EPUBExtractor{}).Extract(bytes.NewReader(testEPUB(t)), "book.epub")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.Metadata.Title != "Test Book" {
		t.Errorf("expected title %q, got %q", "Test Book", c.Metadata.Title)
	}
	if c.Metadata.Author != "Jan Jansen" {
		t.Errorf("expected author %q, got %q", "Jan Jansen", c.Metadata.Author)
	}
	if c.Metadata.Subtitle != "A short subtitle" {
		t.Errorf("expected subtitle %q, got %q", "A short subtitle", c.Metadata.Subtitle)
	}

	if len(c.Documents) != 2 {
		t.Fatalf("expected 2 content documents, got %d", len(c.Documents))
	}
	if c.Documents[0].ID != "c2" || c.Documents[1].ID != "c1" {
		t.Errorf("expected spine order [c2 c1], got [%s %s]", c.Documents[0].ID, c.Documents[1].ID)
	}
	if !strings.Contains(string(c.Documents[0].Data), "second") {
		t.Errorf("expected ch2 content first, got %q", c.Documents[0].Data)
	}
}

func TestEPUBExtractor_Malformed(t *testing.T) {
	_, err := (&EPUBExtractor{}).Extract(strings.NewReader("not a zip"), "broken.epub")
	if !errors.Is(err, doctree.ErrMalformedContainer) {
		t.Fatalf("expected ErrMalformedContainer, got %v", err)
	}
	var ce *doctree.ContainerError
	if !errors.As(err, &ce) || ce.Filename != "broken.epub" {
		t.Errorf("expected container error naming broken.epub, got %v", err)
	}
}

func TestEPUBExtractor_MissingContainerXML(t *testing.T) {
	data := buildEPUB(t, map[string]string{
		"mimetype":        "application/epub+zip",
		"OEBPS/ch1.xhtml": `<p>x</p>`,
	})
	_, err := (&EPUBExtractor{}).Extract(bytes.NewReader(data), "nocontainer.epub")
	if !errors.Is(err, doctree.ErrMalformedContainer) {
		t.Fatalf("expected ErrMalformedContainer, got %v", err)
	}
}

func TestEPUBExtractor_OnlyMimetype(t *testing.T) {
	data := buildEPUB(t, map[string]string{"mimetype": "application/epub+zip"})
	_, err := (&EPUBExtractor{}).Extract(bytes.NewReader(data), "empty.epub")
	if !errors.Is(err, doctree.ErrMalformedContainer) {
		t.Fatalf("expected ErrMalformedContainer, got %v", err)
	}
	if !strings.Contains(err.Error(), "container.xml") {
		t.Errorf("expected error to name container.xml, got %v", err)
	}
}

func TestEPUBExtractor_ManifestItemMissing(t *testing.T) {
	data := buildEPUB(t, map[string]string{
		"mimetype":               "application/epub+zip",
		"META-INF/container.xml": containerXML,
		"OEBPS/content.opf":      contentOPF,
		"OEBPS/ch2.xhtml":        `<p>second</p>`,
	})
	_, err := (&EPUBExtractor{}).Extract(bytes.NewReader(data), "partial.epub")
	if !errors.Is(err, doctree.ErrMalformedContainer) {
		t.Fatalf("expected ErrMalformedContainer, got %v", err)
	}
}

func TestHTMLExtractor_Metadata(t *testing.T) {
	src := `<html><head><title> My Page </title>
<meta name="author" content="A. Writer"><meta name="description" content="About things"></head>
<body><p class="x">hi</p></body></html>`
	c, err := (&HTMLExtractor{}).Extract(strings.NewReader(src), "page.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Metadata.Title != "My Page" || c.Metadata.Author != "A. Writer" || c.Metadata.Subtitle != "About things" {
		t.Errorf("unexpected metadata: %+v", c.Metadata)
	}
	if len(c.Documents) != 1 || string(c.Documents[0].Data) != src {
		t.Errorf("expected the original markup as the only document")
	}
}

func TestHTMLExtractor_TitleFallsBackToFilename(t *testing.T) {
	c, err := (&HTMLExtractor{}).Extract(strings.NewReader(`<p>x</p>`), "chapter-3.xhtml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Metadata.Title != "chapter-3" {
		t.Errorf("expected title %q, got %q", "chapter-3", c.Metadata.Title)
	}
}

func TestMarkdownExtractor_BlocksAndTitle(t *testing.T) {
	input := `# Title

First paragraph.

Second paragraph.

## Part {.chapter-head}
`
	c, err := (&MarkdownExtractor{}).Extract(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Metadata.Title != "Title" {
		t.Errorf("expected title %q, got %q", "Title", c.Metadata.Title)
	}
	html := string(c.Documents[0].Data)
	if strings.Count(html, "<div>") != 4 {
		t.Errorf("expected 4 wrapped blocks, got %q", html)
	}
	if !strings.Contains(html, `class="chapter-head"`) {
		t.Errorf("expected heading attribute to render as class, got %q", html)
	}
}

func TestTextExtractor_Paragraphs(t *testing.T) {
	input := "First line one.\nFirst line two.\n\nSecond <para>.\n\n\n"
	c, err := (&TextExtractor{}).Extract(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Metadata.Title != "notes" {
		t.Errorf("expected title %q, got %q", "notes", c.Metadata.Title)
	}
	html := string(c.Documents[0].Data)
	if !strings.Contains(html, "<div><p>First line one. First line two.</p></div>") {
		t.Errorf("expected joined first paragraph, got %q", html)
	}
	if !strings.Contains(html, "Second &lt;para&gt;.") {
		t.Errorf("expected escaped second paragraph, got %q", html)
	}
}

func TestSplitBlocks(t *testing.T) {
	got := splitBlocks("  a   b\nc\n\n\n d \n")
	if len(got) != 2 || got[0] != "a b c" || got[1] != "d" {
		t.Errorf("expected [\"a b c\" \"d\"], got %q", got)
	}
}

func TestDocxHeadingLevel(t *testing.T) {
	tests := map[string]int{
		"Heading1":  1,
		"heading 3": 3,
		"Title":     1,
		"Heading7":  0,
		"Normal":    0,
		"":          0,
	}
	for style, want := range tests {
		if got := docxHeadingLevel(style); got != want {
			t.Errorf("%q: expected %d, got %d", style, want, got)
		}
	}
}

func TestForFile(t *testing.T) {
	for _, name := range []string{"a.epub", "a.HTML", "a.xhtml", "a.md", "a.docx", "a.pdf", "a.txt"} {
		if _, err := ForFile(name); err != nil {
			t.Errorf("%s: unexpected error %v", name, err)
		}
		if !IsSupportedExtension(name) {
			t.Errorf("%s: expected supported", name)
		}
	}
	if _, err := ForFile("a.csv"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}
