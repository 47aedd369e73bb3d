package doctree

// Sequence is the ordered output of a structuring run. Emit assigns order
// numbers so that emitted sections are numbered 0, 1, 2, ... with no gaps,
// and silently discards empty sections.
type Sequence struct {
	sections []Section
}

// Next returns the order number the next emitted section will receive.
func (q *Sequence) Next() int {
	return len(q.sections)
}

// Emit appends a copy of s unless it is empty. It reports whether the
// section was kept.
func (q *Sequence) Emit(s Section) bool {
	if s.Empty() {
		return false
	}
	s = s.Clone()
	s.Order = len(q.sections)
	q.sections = append(q.sections, s)
	return true
}

// Len returns the number of emitted sections.
func (q *Sequence) Len() int {
	return len(q.sections)
}

// Sections returns a copy of the emitted sections.
func (q *Sequence) Sections() []Section {
	out := make([]Section, len(q.sections))
	for i := range q.sections {
		out[i] = q.sections[i].Clone()
	}
	return out
}
