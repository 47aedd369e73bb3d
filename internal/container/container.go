// Package container opens e-book containers and single-file documents and
// exposes their content documents as class-tagged markup.
package container

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/bookstruct/internal/doctree"
)

var ErrUnsupportedFormat = errors.New("unsupported file extension")

// ContentDocument is one markup file of a container, in reading order.
type ContentDocument struct {
	ID        string
	Href      string
	MediaType string
	Data      []byte
}

// Container is an opened e-book: bibliographic metadata plus its content
// documents in spine order.
type Container struct {
	Filename  string
	Metadata  doctree.Metadata
	Documents []ContentDocument
}

// Extractor converts raw file bytes into a Container.
type Extractor interface {
	Extract(r io.Reader, filename string) (*Container, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".epub":     true,
	".html":     true,
	".htm":      true,
	".xhtml":    true,
	".md":       true,
	".markdown": true,
	".docx":     true,
	".pdf":      true,
	".txt":      true,
}

// ForFile returns the appropriate extractor for a filename.
func ForFile(filename string) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".epub":
		return &EPUBExtractor{}, nil
	case ".html", ".htm", ".xhtml":
		return &HTMLExtractor{}, nil
	case ".md", ".markdown":
		return &MarkdownExtractor{}, nil
	case ".docx":
		return &DOCXExtractor{}, nil
	case ".pdf":
		return &PDFExtractor{FallbackPdftotext: true}, nil
	case ".txt":
		return &TextExtractor{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Open reads the file at path with the extractor matching its extension.
func Open(path string) (*Container, error) {
	ex, err := ForFile(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &doctree.ContainerError{Filename: path, Err: err}
	}
	defer f.Close()
	return ex.Extract(f, filepath.Base(path))
}

func malformed(filename string, err error) error {
	return &doctree.ContainerError{Filename: filename, Err: err}
}

func baseTitle(filename string) string {
	return strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
}

// single wraps one rendered markup document as a one-document container.
func single(filename, mediaType string, meta doctree.Metadata, data []byte) *Container {
	return &Container{
		Filename: filename,
		Metadata: meta,
		Documents: []ContentDocument{{
			ID:        baseTitle(filename),
			Href:      filepath.Base(filename),
			MediaType: mediaType,
			Data:      data,
		}},
	}
}
