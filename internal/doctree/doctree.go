package doctree

import "strings"

// MaxHeadings is the number of heading slots a Section models: title, then
// subtitle. Further headings inside the same unit are dropped.
const MaxHeadings = 2

// Book is the structured form of one container.
type Book struct {
	Metadata  Metadata   `json:"metadata"`
	Documents []Document `json:"documents"`
}

// Metadata is the container's bibliographic record.
type Metadata struct {
	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
	Author   string `json:"author,omitempty"`
}

// Document is the structured result for one content document.
type Document struct {
	ID       string    `json:"id"`
	Href     string    `json:"href,omitempty"`
	Strategy string    `json:"strategy,omitempty"`
	Byline   []string  `json:"byline,omitempty"`
	Sections []Section `json:"sections"`
	Error    string    `json:"error,omitempty"`
}

// Section is one narrative unit.
type Section struct {
	Order      int      `json:"order"`
	Title      string   `json:"title,omitempty"`
	Subtitle   string   `json:"subtitle,omitempty"`
	Paragraphs []string `json:"paragraphs"`
	SideNotes  []string `json:"side_notes,omitempty"`
}

// Empty reports whether the section has no title, no paragraphs and no side
// notes. Empty sections are never emitted.
func (s *Section) Empty() bool {
	return s.Title == "" && len(s.Paragraphs) == 0 && len(s.SideNotes) == 0
}

// AddHeading fills the next free heading slot. It returns false when both
// slots are taken and the text was dropped.
func (s *Section) AddHeading(text string) bool {
	switch {
	case s.Title == "":
		s.Title = text
	case s.Subtitle == "":
		s.Subtitle = text
	default:
		return false
	}
	return true
}

// Headings returns the filled heading slots in order.
func (s *Section) Headings() []string {
	out := make([]string, 0, MaxHeadings)
	if s.Title != "" {
		out = append(out, s.Title)
	}
	if s.Subtitle != "" {
		out = append(out, s.Subtitle)
	}
	return out
}

// Clone returns a deep copy of s.
func (s Section) Clone() Section {
	out := s
	out.Paragraphs = append([]string(nil), s.Paragraphs...)
	out.SideNotes = append([]string(nil), s.SideNotes...)
	return out
}

// JoinRun merges one run of fragments into a single paragraph.
func JoinRun(fragments []string) string {
	return strings.Join(fragments, " ")
}

// Text flattens every section into a single string, one line per entry.
func (d *Document) Text() string {
	var sb strings.Builder
	for _, sec := range d.Sections {
		for _, h := range sec.Headings() {
			sb.WriteString(h)
			sb.WriteByte('\n')
		}
		for _, p := range sec.Paragraphs {
			sb.WriteString(p)
			sb.WriteByte('\n')
		}
		for _, n := range sec.SideNotes {
			sb.WriteString(n)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Text flattens every document of the book.
func (b *Book) Text() string {
	var sb strings.Builder
	for i := range b.Documents {
		sb.WriteString(b.Documents[i].Text())
	}
	return sb.String()
}

// SectionCount returns the number of sections across all documents.
func (b *Book) SectionCount() int {
	n := 0
	for i := range b.Documents {
		n += len(b.Documents[i].Sections)
	}
	return n
}

// Failed returns the documents that carry an error.
func (b *Book) Failed() []Document {
	var out []Document
	for _, d := range b.Documents {
		if d.Error != "" {
			out = append(out, d)
		}
	}
	return out
}
