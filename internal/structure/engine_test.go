package structure

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/dgallion1/bookstruct/internal/container"
	"github.com/dgallion1/bookstruct/internal/doctree"
)

var (
	preamble = strings.Repeat("preamble words ", 8) + "the end."
	rainy    = strings.Repeat("rain fell on the hills ", 6) + "first chapter closes."
	sunny    = strings.Repeat("sunlight ", 15) + "finale."
)

// magazine is laid out the way the anchor method expects: one frame holding
// every text fragment in reading order, with class names per role.
var magazine = `<html><body>
<div class="Basic-Graphics-Frame">
  <p class="Kop-groot">Big</p><p class="Kop-groot">Headline</p>
  <p class="Intro_INTRO">The intro sub</p>
  <p class="Tekst_PLAT_Initiaal_4r">Lead para</p>
  <p class="Tekst_PLAT_VervolgAlinea">` + preamble + `</p>
  <p class="Tekst_TUSSENKOP">Ch1</p>
  <p class="Tekst_PLAT_EersteAlinea">Once upon a time</p>
  <p class="Tekst_PLAT_VervolgAlinea">` + rainy + `</p>
  <p class="Tekst_TUSSENKOP">Ch2</p>
  <p class="Tekst_PLAT_EersteAlinea">Later that day</p>
  <p class="Tekst_PLAT_VervolgAlinea">` + sunny + `</p>
</div>
<p class="Intro_IN-HET-KORT-TXT">In brief</p>
<p class="Auteurs_AUTEURSNAAM">Jan</p><p class="Auteurs_AUTEURSVERMELDING">Editor</p>
<p class="Literatuur_LITERATUURKOP">Literature</p>
<p class="Literatuur_LITERATUURTXT">Ref 1</p><p class="Literatuur_LITERATUURTXT">Ref 2</p>
</body></html>`

func doc(id, body string) container.ContentDocument {
	return container.ContentDocument{ID: id, Href: id + ".xhtml", MediaType: "application/xhtml+xml", Data: []byte(body)}
}

func TestStructureDocument_AutoPicksAnchor(t *testing.T) {
	e := NewEngine(DefaultProfile(), Options{}, nil)
	d, err := e.StructureDocument(doc("c1", magazine))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Strategy != string(StrategyAnchor) {
		t.Errorf("expected anchor strategy, got %q", d.Strategy)
	}

	want := []doctree.Section{
		{
			Order:      0,
			Title:      "Big Headline",
			Subtitle:   "The intro sub",
			Paragraphs: []string{"Lead para", preamble},
			SideNotes:  []string{"In brief"},
		},
		{Order: 1, Title: "Ch1", Paragraphs: []string{"Once upon a time", rainy}},
		{Order: 2, Title: "Ch2", Paragraphs: []string{"Later that day", sunny}},
		{Order: 3, Title: "Literature", Paragraphs: []string{"Ref 1", "Ref 2"}},
	}
	if !reflect.DeepEqual(d.Sections, want) {
		t.Errorf("expected %+v\ngot %+v", want, d.Sections)
	}
	if !reflect.DeepEqual(d.Byline, []string{"Jan", "Editor"}) {
		t.Errorf("expected byline [Jan Editor], got %q", d.Byline)
	}
}

func TestStructureDocument_AutoPicksStructural(t *testing.T) {
	e := NewEngine(DefaultProfile(), Options{}, nil)
	d, err := e.StructureDocument(doc("c1", `<h1>Intro</h1><p class="a">p1</p><p class="a">p2</p><h1>Intro2</h1>`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Strategy != string(StrategyStructural) {
		t.Errorf("expected structural strategy, got %q", d.Strategy)
	}
	if len(d.Sections) != 2 || d.Sections[0].Title != "Intro" || d.Sections[1].Title != "Intro2" {
		t.Fatalf("unexpected sections: %+v", d.Sections)
	}
	if !reflect.DeepEqual(d.Sections[0].Paragraphs, []string{"p1 p2"}) {
		t.Errorf("expected [p1 p2], got %q", d.Sections[0].Paragraphs)
	}
}

func TestStructureDocument_ForcedStructuralIgnoresClasses(t *testing.T) {
	e := NewEngine(DefaultProfile(), Options{Strategy: StrategyStructural}, nil)
	d, err := e.StructureDocument(doc("c1", magazine))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Strategy != string(StrategyStructural) {
		t.Errorf("expected structural strategy, got %q", d.Strategy)
	}
	if len(d.Byline) != 0 {
		t.Errorf("expected no byline from the segmenter, got %q", d.Byline)
	}
}

func TestStructureDocument_ForcedAnchorMissingClass(t *testing.T) {
	e := NewEngine(DefaultProfile(), Options{Strategy: StrategyAnchor}, nil)
	_, err := e.StructureDocument(doc("c7", `<p class="Tekst_TUSSENKOP">Ch1</p>`))
	if !errors.Is(err, doctree.ErrMissingClass) {
		t.Fatalf("expected ErrMissingClass, got %v", err)
	}
	var mc *doctree.MissingClassError
	if !errors.As(err, &mc) || mc.Class != "Basic-Graphics-Frame" {
		t.Errorf("expected missing full-text class, got %v", err)
	}
	var de *doctree.DocumentError
	if !errors.As(err, &de) || de.DocID != "c7" {
		t.Errorf("expected document error for c7, got %v", err)
	}
}

func TestStructureDocument_ForcedAnchorMissingContinuation(t *testing.T) {
	src := `<div class="Basic-Graphics-Frame"><p class="Tekst_TUSSENKOP">Ch1</p><p class="Tekst_PLAT_EersteAlinea">Once</p></div>`

	e := NewEngine(DefaultProfile(), Options{Strategy: StrategyAnchor}, nil)
	_, err := e.StructureDocument(doc("c8", src))
	if !errors.Is(err, doctree.ErrMissingClass) {
		t.Fatalf("expected ErrMissingClass, got %v", err)
	}
	var mc *doctree.MissingClassError
	if !errors.As(err, &mc) || mc.Class != "Tekst_PLAT_VervolgAlinea" || mc.Role != "continuation" {
		t.Errorf("expected missing continuation class, got %v", err)
	}
}

func TestStructureDocument_UnresolvedAnchor(t *testing.T) {
	src := `<div class="Basic-Graphics-Frame"><p class="Tekst_TUSSENKOP">ChX</p></div>
<p class="Tekst_PLAT_EersteAlinea">Never seen</p>
<p class="Tekst_PLAT_VervolgAlinea">Body</p>`

	e := NewEngine(DefaultProfile(), Options{}, nil)
	_, err := e.StructureDocument(doc("c1", src))
	if !errors.Is(err, doctree.ErrUnresolvedAnchor) {
		t.Fatalf("expected ErrUnresolvedAnchor, got %v", err)
	}
}

func TestStructureBook_SkipFailed(t *testing.T) {
	c := &container.Container{
		Filename: "book.epub",
		Metadata: doctree.Metadata{Title: "Book"},
		Documents: []container.ContentDocument{
			doc("good", magazine),
			doc("bad", `<p>no classes here</p>`),
		},
	}

	e := NewEngine(DefaultProfile(), Options{Strategy: StrategyAnchor, SkipFailed: true}, nil)
	book, err := e.StructureBook(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if book.Metadata.Title != "Book" {
		t.Errorf("expected metadata carried over, got %+v", book.Metadata)
	}
	if len(book.Documents) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(book.Documents))
	}
	if book.Documents[0].Error != "" || len(book.Documents[0].Sections) != 4 {
		t.Errorf("expected good document structured, got %+v", book.Documents[0])
	}
	if book.Documents[1].Error == "" || len(book.Documents[1].Sections) != 0 {
		t.Errorf("expected bad document to carry its error, got %+v", book.Documents[1])
	}
	if len(book.Failed()) != 1 {
		t.Errorf("expected 1 failed document, got %d", len(book.Failed()))
	}

	strict := NewEngine(DefaultProfile(), Options{Strategy: StrategyAnchor}, nil)
	if _, err := strict.StructureBook(c); !errors.Is(err, doctree.ErrMissingClass) {
		t.Errorf("expected ErrMissingClass without SkipFailed, got %v", err)
	}
}

func TestEngine_WithStrategy(t *testing.T) {
	e := NewEngine(DefaultProfile(), Options{}, nil)
	s := e.WithStrategy(StrategyStructural)
	if e.Options().Strategy != StrategyAuto {
		t.Errorf("expected original engine unchanged, got %q", e.Options().Strategy)
	}
	if s.Options().Strategy != StrategyStructural {
		t.Errorf("expected structural, got %q", s.Options().Strategy)
	}
}

func TestParseStrategy(t *testing.T) {
	for in, want := range map[string]Strategy{"": StrategyAuto, "AUTO": StrategyAuto, " anchor ": StrategyAnchor, "structural": StrategyStructural} {
		got, err := ParseStrategy(in)
		if err != nil || got != want {
			t.Errorf("%q: expected %q, got %q (%v)", in, want, got, err)
		}
	}
	if _, err := ParseStrategy("fuzzy"); err == nil {
		t.Errorf("expected error for unknown strategy")
	}
}
