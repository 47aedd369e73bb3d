package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/dgallion1/bookstruct/internal/pathstore"
)

// memStore is a minimal pathstore: PUT/GET/DELETE on /kv and prefix scans.
type memStore struct {
	mu    sync.Mutex
	nodes map[string]any
}

func (m *memStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.TrimPrefix(r.URL.Path, "/kv/")
	switch {
	case r.URL.Path == "/links":
		w.WriteHeader(http.StatusCreated)
	case r.Method == http.MethodGet && strings.HasSuffix(key, "/*"):
		prefix := strings.TrimSuffix(key, "*")
		nodes := []map[string]any{}
		for k, v := range m.nodes {
			if strings.HasPrefix(k, prefix) {
				nodes = append(nodes, map[string]any{"key_path": k, "value": v})
			}
		}
		json.NewEncoder(w).Encode(map[string]any{"nodes": nodes})
	case r.Method == http.MethodGet:
		v, ok := m.nodes[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"key_path": key, "value": v})
	case r.Method == http.MethodPut:
		var req struct {
			Value any `json:"value"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		m.nodes[key] = req.Value
		w.WriteHeader(http.StatusCreated)
	case r.Method == http.MethodDelete:
		recursive := r.URL.Query().Get("children") == "true"
		for k := range m.nodes {
			if k == key || (recursive && strings.HasPrefix(k, key+"/")) {
				delete(m.nodes, k)
			}
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (m *memStore) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.nodes[key]
	return ok
}

func newMemStore(t *testing.T) (*memStore, *pathstore.Client) {
	t.Helper()
	m := &memStore{nodes: make(map[string]any)}
	srv := httptest.NewServer(m)
	t.Cleanup(srv.Close)
	return m, pathstore.NewClient(srv.URL, "k")
}

func TestBooks_RequirePathstore(t *testing.T) {
	srv := newTestServer(t, testConfig(), nil)
	for _, req := range []*http.Request{
		authed(http.MethodGet, "/api/books"),
		authed(http.MethodGet, "/api/books/tiny"),
		authed(http.MethodDelete, "/api/books/tiny"),
	} {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s %s: expected 503, got %d", req.Method, req.URL.Path, rec.Code)
		}
	}
}

func TestBooks_Lifecycle(t *testing.T) {
	store, ps := newMemStore(t)
	srv := newTestServer(t, testConfig(), ps)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, upload(t, "/api/structure", "file", "tiny.html", tinyBook, map[string]string{"doc_id": "tiny"}))
	var accepted struct {
		JobID string `json:"job_id"`
	}
	decode(t, rec, &accepted)
	snap := waitDone(t, srv, accepted.JobID)
	if snap.Progress.SectionsStored != 2 {
		t.Fatalf("expected 2 sections stored, got %d (status %q, errors %v)", snap.Progress.SectionsStored, snap.Status, snap.Progress.Errors)
	}
	hashKey := pathstore.HashKey(snap.ContentHash, "tiny")
	if !store.has(hashKey) {
		t.Fatalf("expected hash index %s", hashKey)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, authed(http.MethodGet, "/api/books"))
	var list struct {
		Books []map[string]any `json:"books"`
	}
	decode(t, rec, &list)
	if len(list.Books) != 1 || list.Books[0]["key"] != "books/tiny/meta" {
		t.Fatalf("expected one book meta, got %+v", list.Books)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, authed(http.MethodGet, "/api/books/tiny"))
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}
	var book struct {
		Meta     map[string]any   `json:"meta"`
		Sections []map[string]any `json:"sections"`
	}
	decode(t, rec, &book)
	if book.Meta["title"] != "Tiny Book" {
		t.Errorf("expected title in meta, got %v", book.Meta["title"])
	}
	if len(book.Sections) != 2 {
		t.Errorf("expected 2 sections, got %d", len(book.Sections))
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, authed(http.MethodDelete, "/api/books/tiny"))
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}
	if store.has("books/tiny/meta") || store.has(hashKey) {
		t.Error("expected book and hash index removed")
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, authed(http.MethodGet, "/api/books/tiny"))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}
