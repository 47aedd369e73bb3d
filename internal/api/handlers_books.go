package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/bookstruct/internal/pathstore"
)

// pathstoreOr503 returns the sink client, or writes 503 when storage is off.
func (s *Server) pathstoreOr503(w http.ResponseWriter) *pathstore.Client {
	ps := s.orchestrator.PathstoreClient()
	if ps == nil {
		jsonError(w, "pathstore sink is not configured", http.StatusServiceUnavailable)
	}
	return ps
}

// handleListBooks lists the meta node of every stored book.
func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	ps := s.pathstoreOr503(w)
	if ps == nil {
		return
	}
	children, err := ps.ListChildren(r.Context(), pathstore.BooksPrefix(), 1000)
	if err != nil {
		jsonError(w, "failed to list books: "+err.Error(), http.StatusBadGateway)
		return
	}

	books := make([]map[string]any, 0)
	for _, child := range children {
		if pathstore.LastSegment(child.Key) != "meta" || strings.Contains(child.Key, "by_hash") {
			continue
		}
		books = append(books, map[string]any{
			"key":   child.Key,
			"value": child.Value,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"books": books})
}

// handleGetBook returns a book's meta and its stored sections.
func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	ps := s.pathstoreOr503(w)
	if ps == nil {
		return
	}
	docID := chi.URLParam(r, "docID")
	if !docIDPattern.MatchString(docID) {
		jsonError(w, "invalid doc_id", http.StatusBadRequest)
		return
	}
	ctx := r.Context()

	meta, err := ps.GetNode(ctx, pathstore.MetaKey(docID))
	if err != nil {
		jsonError(w, "failed to read book: "+err.Error(), http.StatusBadGateway)
		return
	}
	if meta == nil {
		jsonError(w, "book not found", http.StatusNotFound)
		return
	}
	sections, err := ps.ListChildren(ctx, pathstore.BookKey(docID)+"/documents", 10000)
	if err != nil {
		jsonError(w, "failed to read sections: "+err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"doc_id":   docID,
		"meta":     meta.Value,
		"sections": sections,
	})
}

// handleDeleteBook removes a book's subtree and its hash index entry.
func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	ps := s.pathstoreOr503(w)
	if ps == nil {
		return
	}
	docID := chi.URLParam(r, "docID")
	if !docIDPattern.MatchString(docID) {
		jsonError(w, "invalid doc_id", http.StatusBadRequest)
		return
	}
	ctx := r.Context()

	// Read the hash before the meta node goes away.
	hashDeleted := deleteHashIndex(ctx, ps, docID)

	if err := ps.DeleteNode(ctx, pathstore.BookKey(docID), true); err != nil {
		jsonError(w, "failed to delete book: "+err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"doc_id":             docID,
		"deleted":            true,
		"hash_index_deleted": hashDeleted,
	})
}

func deleteHashIndex(ctx context.Context, ps *pathstore.Client, docID string) bool {
	meta, err := ps.GetNode(ctx, pathstore.MetaKey(docID))
	if err != nil || meta == nil {
		return false
	}
	m, ok := meta.Value.(map[string]any)
	if !ok {
		return false
	}
	hash, _ := m["content_hash"].(string)
	if hash == "" {
		return false
	}
	return ps.DeleteNode(ctx, pathstore.HashKey(hash, docID), false) == nil
}
