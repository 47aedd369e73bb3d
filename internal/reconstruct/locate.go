package reconstruct

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// DefaultFingerprintWidth is the number of runes taken before an anchor to
// recognise the end of the preceding paragraph.
const DefaultFingerprintWidth = 99

// Locator finds where an anchor sits in the full text.
type Locator interface {
	// Locate returns the byte offset of anchor in fullText, or -1.
	Locate(fullText, anchor string) int
}

// SubstringLocator returns the first exact occurrence.
type SubstringLocator struct{}

func (SubstringLocator) Locate(fullText, anchor string) int {
	return strings.Index(fullText, anchor)
}

// Fingerprint returns the width runes that end one rune before offset.
// When fewer than width runes precede that point the fingerprint is empty,
// so a section that opens near the start of the text is placed at once.
func Fingerprint(fullText string, offset, width int) string {
	if offset <= 0 || width <= 0 {
		return ""
	}
	prefix := fullText[:offset]
	_, size := utf8.DecodeLastRuneInString(prefix)
	prefix = prefix[:len(prefix)-size]
	if utf8.RuneCountInString(prefix) < width {
		return ""
	}

	start := len(prefix)
	for range width {
		_, size := utf8.DecodeLastRuneInString(prefix[:start])
		start -= size
	}
	return prefix[start:]
}

// namePool is the ordered set of section names not yet matched. A name is
// consumed by the first anchor it completes and cannot match again.
type namePool struct {
	names []string
}

func newNamePool(names []string) *namePool {
	return &namePool{names: slices.Clone(names)}
}

// take removes and returns the first name for which locate reports an
// offset, together with that offset.
func (p *namePool) take(locate func(name string) int) (string, int, bool) {
	for i, name := range p.names {
		if off := locate(name); off >= 0 {
			p.names = slices.Delete(p.names, i, i+1)
			return name, off, true
		}
	}
	return "", -1, false
}

func (p *namePool) remaining() []string {
	return slices.Clone(p.names)
}
