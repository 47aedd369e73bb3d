package pathstore

import (
	"fmt"
	"strings"
)

// Key layout for structured books:
//
//	books/{docID}/meta
//	books/{docID}/documents/{n}/sections/{order}
//	books/by_hash/{hash}/{docID}
const booksRoot = "books"

func BooksPrefix() string { return booksRoot }

func BookKey(docID string) string { return booksRoot + "/" + docID }

func MetaKey(docID string) string { return BookKey(docID) + "/meta" }

func SectionKey(docID string, doc, order int) string {
	return fmt.Sprintf("%s/documents/%d/sections/%d", BookKey(docID), doc, order)
}

func HashPrefix(hash string) string { return booksRoot + "/by_hash/" + hash }

func HashKey(hash, docID string) string { return HashPrefix(hash) + "/" + docID }

// LastSegment returns the final component of a key as returned by prefix
// scans, which separate components with "." or "/".
func LastSegment(key string) string {
	if i := strings.LastIndexAny(key, "./"); i >= 0 {
		return key[i+1:]
	}
	return key
}
