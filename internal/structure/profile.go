package structure

import (
	"fmt"
	"strings"

	"github.com/dgallion1/bookstruct/internal/segment"
)

// Strategy selects how a content document is put in reading order.
type Strategy string

const (
	// StrategyAuto uses the anchor method when the document carries the
	// full-text and section-heading classes, and the segmenter otherwise.
	StrategyAuto       Strategy = "auto"
	StrategyStructural Strategy = "structural"
	StrategyAnchor     Strategy = "anchor"
)

// ParseStrategy accepts "auto", "structural" or "anchor". The empty string
// means auto.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyAuto:
		return StrategyAuto, nil
	case StrategyStructural:
		return StrategyStructural, nil
	case StrategyAnchor:
		return StrategyAnchor, nil
	}
	return "", fmt.Errorf("unknown strategy %q (want auto, structural or anchor)", s)
}

// Profile names the classes that play each role in a layout.
type Profile struct {
	// SectionHeadings hold section names. The first is required by the
	// anchor method; fragments of later ones are appended after it.
	SectionHeadings []string
	FirstParagraph  string
	Continuation    string
	// FullText holds the reading-order blob; its first fragment is used.
	FullText string

	Lead              string
	Headline          string
	Intro             string
	InBrief           string
	AuthorName        string
	AuthorCredit      string
	LiteratureHeading string
	Literature        string

	Segment segment.Config
}

// DefaultProfile returns the class names of the magazine layout the anchor
// method was built for.
func DefaultProfile() Profile {
	return Profile{
		SectionHeadings:   []string{"Tekst_TUSSENKOP", "Tekst_TUSSENKOPCURSIEF"},
		FirstParagraph:    "Tekst_PLAT_EersteAlinea",
		Continuation:      "Tekst_PLAT_VervolgAlinea",
		FullText:          "Basic-Graphics-Frame",
		Lead:              "Tekst_PLAT_Initiaal_4r",
		Headline:          "Kop-groot",
		Intro:             "Intro_INTRO",
		InBrief:           "Intro_IN-HET-KORT-TXT",
		AuthorName:        "Auteurs_AUTEURSNAAM",
		AuthorCredit:      "Auteurs_AUTEURSVERMELDING",
		LiteratureHeading: "Literatuur_LITERATUURKOP",
		Literature:        "Literatuur_LITERATUURTXT",
		Segment:           segment.DefaultConfig(),
	}
}

func (p Profile) headingClass() string {
	if len(p.SectionHeadings) == 0 {
		return ""
	}
	return p.SectionHeadings[0]
}
