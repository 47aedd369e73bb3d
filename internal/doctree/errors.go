package doctree

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds surfaced by the structuring engine. Typed errors below unwrap
// to one of these so callers can use errors.Is.
var (
	ErrMalformedContainer = errors.New("malformed container")
	ErrMissingClass       = errors.New("missing expected class")
	ErrUnresolvedAnchor   = errors.New("no matching section heading")
	ErrBoundaryNotFound   = errors.New("section boundary not found")
)

// ContainerError reports a container that could not be opened or parsed.
type ContainerError struct {
	Filename string
	Err      error
}

func (e *ContainerError) Error() string {
	return fmt.Sprintf("open container %s: %v", e.Filename, e.Err)
}

func (e *ContainerError) Unwrap() []error {
	return []error{ErrMalformedContainer, e.Err}
}

// MissingClassError names a class a strategy requires but the document lacks.
type MissingClassError struct {
	Class string
	Role  string
}

func (e *MissingClassError) Error() string {
	if e.Role != "" {
		return fmt.Sprintf("%s: class %q (%s)", ErrMissingClass, e.Class, e.Role)
	}
	return fmt.Sprintf("%s: class %q", ErrMissingClass, e.Class)
}

func (e *MissingClassError) Unwrap() error { return ErrMissingClass }

// UnresolvedAnchorError reports an opening line for which no remaining
// section name forms an anchor found in the full text.
type UnresolvedAnchorError struct {
	Index      int
	Line       string
	Candidates []string
}

func (e *UnresolvedAnchorError) Error() string {
	return fmt.Sprintf("%s for section %d (line %q, candidates [%s])",
		ErrUnresolvedAnchor, e.Index, truncate(e.Line, 60), strings.Join(e.Candidates, ", "))
}

func (e *UnresolvedAnchorError) Unwrap() error { return ErrUnresolvedAnchor }

// BoundaryError reports that every continuation paragraph was emitted without
// meeting the fingerprint that precedes a section.
type BoundaryError struct {
	Index       int
	Name        string
	Fingerprint string
}

func (e *BoundaryError) Error() string {
	return fmt.Sprintf("%s before section %d %q (fingerprint %q)",
		ErrBoundaryNotFound, e.Index, e.Name, truncate(e.Fingerprint, 40))
}

func (e *BoundaryError) Unwrap() error { return ErrBoundaryNotFound }

// DocumentError attaches the content document identifier to a fatal
// structuring error.
type DocumentError struct {
	DocID string
	Err   error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("document %s: %v", e.DocID, e.Err)
}

func (e *DocumentError) Unwrap() error { return e.Err }

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
