package segment

import (
	"reflect"
	"testing"

	"github.com/dgallion1/bookstruct/internal/doctree"
	"github.com/dgallion1/bookstruct/internal/markup"
)

func segment(t *testing.T, body string) Result {
	t.Helper()
	doc, err := markup.Normalize([]byte("<html><body>"+body+"</body></html>"), "")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	return New(DefaultConfig(), nil).Segment(doc)
}

func checkParagraphs(t *testing.T, sec doctree.Section, want ...string) {
	t.Helper()
	if len(sec.Paragraphs) != len(want) {
		t.Fatalf("section %d: expected paragraphs %q, got %q", sec.Order, want, sec.Paragraphs)
	}
	for i := range want {
		if sec.Paragraphs[i] != want[i] {
			t.Errorf("section %d paragraph %d: expected %q, got %q", sec.Order, i, want[i], sec.Paragraphs[i])
		}
	}
}

func TestSegment_HeadingsAndSameClassRun(t *testing.T) {
	res := segment(t, `<h1>Intro</h1><p class="a">p1</p><p class="a">p2</p><h1>Intro2</h1>`)

	if len(res.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d: %+v", len(res.Sections), res.Sections)
	}
	if res.Sections[0].Title != "Intro" {
		t.Errorf("expected title %q, got %q", "Intro", res.Sections[0].Title)
	}
	checkParagraphs(t, res.Sections[0], "p1 p2")
	if res.Sections[1].Title != "Intro2" {
		t.Errorf("expected title %q, got %q", "Intro2", res.Sections[1].Title)
	}
	checkParagraphs(t, res.Sections[1])
}

func TestSegment_ClassChangeFlushesRun(t *testing.T) {
	res := segment(t, `<p class="a">1</p><p class="a">2</p><p class="b">3</p><p class="a">4</p>`)
	if len(res.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(res.Sections))
	}
	checkParagraphs(t, res.Sections[0], "1 2", "3", "4")
}

func TestSegment_ContainerEndFlushesRun(t *testing.T) {
	res := segment(t, `<div><p>1</p><p>2</p></div><div><p>3</p></div>`)
	if len(res.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(res.Sections))
	}
	checkParagraphs(t, res.Sections[0], "1 2", "3")
}

func TestSegment_SecondHeadingBecomesSubtitleAndThirdIsDropped(t *testing.T) {
	res := segment(t, `<h1>A</h1><h2>B</h2><h3>C</h3><p>x</p>`)
	if len(res.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(res.Sections))
	}
	sec := res.Sections[0]
	if sec.Title != "A" || sec.Subtitle != "B" {
		t.Errorf("expected title A subtitle B, got %q / %q", sec.Title, sec.Subtitle)
	}
	checkParagraphs(t, sec, "x")
	if len(res.DroppedHeadings) != 1 || res.DroppedHeadings[0] != "C" {
		t.Errorf("expected dropped [C], got %q", res.DroppedHeadings)
	}
}

func TestSegment_BoundaryClassesAndEmptyShells(t *testing.T) {
	res := segment(t, `<p>lead</p>
<div class="chapter"><h1>One</h1><p>a</p></div>
<div class="chapter">   </div>
<div class="Basic-Text-Frame"><p>b</p></div>`)

	if len(res.Sections) != 3 {
		t.Fatalf("expected 3 sections, got %d: %+v", len(res.Sections), res.Sections)
	}
	checkParagraphs(t, res.Sections[0], "lead")
	if res.Sections[1].Title != "One" {
		t.Errorf("expected title One, got %q", res.Sections[1].Title)
	}
	checkParagraphs(t, res.Sections[1], "a")
	checkParagraphs(t, res.Sections[2], "b")

	for i, sec := range res.Sections {
		if sec.Order != i {
			t.Errorf("section %d: expected order %d, got %d", i, i, sec.Order)
		}
		if sec.Empty() {
			t.Errorf("section %d is empty", i)
		}
	}
}

func TestSegment_LeadingEmptyShellIsDropped(t *testing.T) {
	res := segment(t, `<div class="chapter"><h1>Only</h1></div>`)
	if len(res.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(res.Sections))
	}
	if res.Sections[0].Order != 0 || res.Sections[0].Title != "Only" {
		t.Errorf("expected section 0 titled Only, got %+v", res.Sections[0])
	}
}

func TestSegment_SubheadingClass(t *testing.T) {
	res := segment(t, `<h1>T</h1><p class="subtitle">First sub</p><p>body</p><p class="subtitle">Second sub</p>`)
	if len(res.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(res.Sections))
	}
	sec := res.Sections[0]
	if sec.Subtitle != "Second sub" {
		t.Errorf("expected subtitle overwritten to %q, got %q", "Second sub", sec.Subtitle)
	}
	checkParagraphs(t, sec, "body")
}

func TestSegment_SideNotes(t *testing.T) {
	res := segment(t, `<h1>T</h1><p>body</p>
<aside class="sidenote"><h4>Box</h4><p>boxed text</p></aside>
<p class="footnote">fn</p><p>more</p>`)
	if len(res.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(res.Sections))
	}
	sec := res.Sections[0]
	want := []string{"Box", "boxed text", "fn"}
	if !reflect.DeepEqual(sec.SideNotes, want) {
		t.Errorf("expected side notes %q, got %q", want, sec.SideNotes)
	}
	checkParagraphs(t, sec, "body", "more")
}

func TestSegment_TablesAndLists(t *testing.T) {
	res := segment(t, `<h2>Data</h2><table class="t"><tr><td>a</td><td>b</td></tr></table><ul class="l"><li>x</li><li>y</li></ul>`)
	checkParagraphs(t, res.Sections[0], "a b", "x y")
}

func TestSegment_Idempotent(t *testing.T) {
	doc, err := markup.Normalize([]byte(`<body><h1>A</h1><p class="x">1</p><div class="chapter"><h1>B</h1><p>2</p></div></body>`), "")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	s := New(DefaultConfig(), nil)
	first := s.Segment(doc)
	second := s.Segment(doc)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical results, got %+v and %+v", first, second)
	}
}

func TestSegment_EmptyDocument(t *testing.T) {
	res := segment(t, `<div class="chapter"></div><p>   </p>`)
	if len(res.Sections) != 0 {
		t.Errorf("expected no sections, got %+v", res.Sections)
	}
}
