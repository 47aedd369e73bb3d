package container

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/taylorskalyo/goreader/epub"

	"github.com/dgallion1/bookstruct/internal/doctree"
)

// EPUBExtractor reads the first rootfile of an EPUB and returns its spine
// items as content documents.
type EPUBExtractor struct{}

func (e *EPUBExtractor) Extract(r io.Reader, filename string) (*Container, error) {
	// epub.NewReader needs a ReaderAt and size.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, malformed(filename, fmt.Errorf("read: %w", err))
	}
	rd, err := openEPUB(data)
	if err != nil {
		return nil, malformed(filename, err)
	}
	if len(rd.Rootfiles) == 0 {
		return nil, malformed(filename, errors.New("no rootfile"))
	}
	book := rd.Rootfiles[0]

	c := &Container{
		Filename: filename,
		Metadata: doctree.Metadata{
			Title:    strings.TrimSpace(book.Title),
			Author:   strings.TrimSpace(book.Creator),
			Subtitle: strings.TrimSpace(book.Description),
		},
	}

	for _, ref := range book.Spine.Itemrefs {
		if ref.Item == nil || !isMarkup(ref.MediaType) {
			continue
		}
		data, err := readItem(ref.Item)
		if err != nil {
			return nil, malformed(filename, fmt.Errorf("item %s: %w", ref.HREF, err))
		}
		c.Documents = append(c.Documents, ContentDocument{
			ID:        ref.ID,
			Href:      ref.HREF,
			MediaType: ref.MediaType,
			Data:      data,
		})
	}
	if len(c.Documents) == 0 {
		return nil, malformed(filename, errors.New("spine has no content documents"))
	}
	return c, nil
}

// containerPath is the entry every EPUB must carry; goreader dereferences it
// without checking.
const containerPath = "META-INF/container.xml"

func openEPUB(data []byte) (rd *epub.Reader, err error) {
	// goreader panics on some malformed archives.
	defer func() {
		if rec := recover(); rec != nil {
			rd, err = nil, fmt.Errorf("epub reader: %v", rec)
		}
	}()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	found := false
	for _, f := range zr.File {
		if f.Name == containerPath {
			found = true
			break
		}
	}
	if !found {
		return nil, errors.New("missing " + containerPath)
	}
	return epub.NewReader(bytes.NewReader(data), int64(len(data)))
}

func readItem(item *epub.Item) (data []byte, err error) {
	// Manifest entries that point at absent files have no zip entry behind
	// them.
	defer func() {
		if rec := recover(); rec != nil {
			data, err = nil, fmt.Errorf("open item: %v", rec)
		}
	}()
	rc, err := item.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func isMarkup(mediaType string) bool {
	return mediaType == "" || strings.Contains(mediaType, "html")
}
