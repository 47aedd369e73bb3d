package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/bookstruct/internal/container"
	"github.com/dgallion1/bookstruct/internal/doctree"
	"github.com/dgallion1/bookstruct/internal/pathstore"
	"github.com/dgallion1/bookstruct/internal/structure"
)

// Worker processes a single container job.
type Worker struct {
	engine    *structure.Engine
	pathstore *pathstore.Client
	stats     *LatencyStats
	log       *slog.Logger

	maxConcurrentStructure int
	maxConcurrentStore     int
}

// NewWorker returns a worker. ps may be nil, in which case results are only
// kept on the job.
func NewWorker(engine *structure.Engine, ps *pathstore.Client, stats *LatencyStats, log *slog.Logger, maxStructure, maxStore int) *Worker {
	return &Worker{
		engine:                 engine,
		pathstore:              ps,
		stats:                  stats,
		log:                    log,
		maxConcurrentStructure: max(maxStructure, 1),
		maxConcurrentStore:     max(maxStore, 1),
	}
}

// Process runs open, dedup, structure and store for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)

	// A panicking extractor fails its job, not the process.
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("job panicked", "panic", rec)
			job.AddError(fmt.Sprintf("internal error: %v", rec))
			job.SetStatus(StatusFailed, job.Snapshot().Phase)
		}
	}()

	// Phase 1: Open
	job.SetStatus(StatusOpening, "opening")
	ex, err := container.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "opening")
		return
	}
	data := job.FileData()
	c, err := ex.Extract(bytes.NewReader(data), job.Filename)
	if err != nil {
		log.Error("open failed", "error", err)
		job.AddError(fmt.Sprintf("open: %s", err))
		job.SetStatus(StatusFailed, "opening")
		return
	}
	if job.Title != "" {
		c.Metadata.Title = job.Title
	}
	job.SetContentHash(ContentHashHex(data))

	// Phase 1.5: Dedup check
	if w.pathstore != nil && !job.Force {
		exists, existingDocID, err := w.checkDuplicate(ctx, job.ContentHash)
		if err != nil {
			log.Warn("dedup check failed, proceeding", "error", err)
		} else if exists {
			log.Info("duplicate book, skipping", "existing_doc_id", existingDocID)
			job.SetStatus(StatusDupSkipped, "dedup")
			return
		}
	}

	// Phase 2: Structure documents with bounded concurrency.
	job.SetStatus(StatusStructuring, "structuring")
	job.SetTotalDocuments(len(c.Documents))
	engine := w.engine
	if job.Strategy != "" {
		engine = engine.WithStrategy(job.Strategy)
	}

	book, failed := w.structure(ctx, log, job, engine, c)
	job.SetResult(book)
	log.Info("structuring complete", "documents", len(book.Documents),
		"sections", book.SectionCount(), "failed", failed)

	if failed == len(c.Documents) {
		job.SetStatus(StatusFailed, "structuring")
		return
	}
	if failed > 0 && !engine.Options().SkipFailed {
		job.SetStatus(StatusFailed, "structuring")
		return
	}
	hadErrors := failed > 0

	// Phase 3: Store sections in pathstore.
	if w.pathstore != nil {
		job.SetStatus(StatusStoring, "storing")
		if !w.store(ctx, log, job, book) {
			hadErrors = true
		}
	}

	if hadErrors {
		job.SetStatus(StatusPartial, "done")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
}

// structure runs the engine on every content document. The returned book
// keeps spine order; failing documents carry their error.
func (w *Worker) structure(ctx context.Context, log *slog.Logger, job *Job, engine *structure.Engine, c *container.Container) (*doctree.Book, int) {
	docs := make([]doctree.Document, len(c.Documents))
	errs := make([]error, len(c.Documents))
	sem := make(chan struct{}, w.maxConcurrentStructure)
	var wg sync.WaitGroup

	for i, cd := range c.Documents {
		if ctx.Err() != nil {
			errs[i] = ctx.Err()
			docs[i] = doctree.Document{ID: cd.ID, Href: cd.Href}
			continue
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(i int, cd container.ContentDocument) {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				if rec := recover(); rec != nil {
					errs[i] = fmt.Errorf("document %s: internal error: %v", cd.ID, rec)
					docs[i] = doctree.Document{ID: cd.ID, Href: cd.Href}
					job.DocumentDone(0)
				}
			}()
			start := time.Now()
			docs[i], errs[i] = engine.StructureDocument(cd)
			if w.stats != nil {
				w.stats.Record(time.Since(start))
			}
			job.DocumentDone(len(docs[i].Sections))
		}(i, cd)
	}
	wg.Wait()

	failed := 0
	for i, err := range errs {
		if err == nil {
			continue
		}
		failed++
		log.Error("document failed", "content_doc", c.Documents[i].ID, "error", err)
		job.AddError(err.Error())
		docs[i] = doctree.Document{ID: docs[i].ID, Href: docs[i].Href, Strategy: docs[i].Strategy, Error: err.Error()}
	}
	return &doctree.Book{Metadata: c.Metadata, Documents: docs}, failed
}

// store writes sections, reading-order links, book meta and the hash index.
// It reports whether everything was written.
func (w *Worker) store(ctx context.Context, log *slog.Logger, job *Job, book *doctree.Book) bool {
	source := "bookstruct:" + job.DocID

	type storeResult struct {
		key string
		err error
	}
	total := book.SectionCount()
	results := make(chan storeResult, total)
	sem := make(chan struct{}, w.maxConcurrentStore)

	for n, d := range book.Documents {
		for _, sec := range d.Sections {
			sem <- struct{}{}
			go func(key string, sec doctree.Section) {
				defer func() { <-sem }()
				err := withRetry(ctx, log, "put section", func() error {
					return w.pathstore.PutNode(ctx, key, pathstore.NodeRequest{Value: sec, Source: source})
				})
				results <- storeResult{key: key, err: err}
			}(pathstore.SectionKey(job.DocID, n, sec.Order), sec)
		}
	}

	ok := true
	stored := 0
	for range total {
		r := <-results
		if r.err != nil {
			log.Error("store failed", "key", r.key, "error", r.err)
			job.AddError(fmt.Sprintf("store %s: %s", r.key, r.err))
			ok = false
			continue
		}
		stored++
	}
	job.AddStored(stored)
	log.Info("storage complete", "stored", stored, "total", total)

	// Reading-order edges between consecutive sections.
	for n, d := range book.Documents {
		for i := 1; i < len(d.Sections); i++ {
			link := pathstore.LinkRequest{
				From:    pathstore.SectionKey(job.DocID, n, d.Sections[i-1].Order),
				To:      pathstore.SectionKey(job.DocID, n, d.Sections[i].Order),
				Weight:  1,
				Summary: "next",
			}
			if err := withRetry(ctx, log, "put link", func() error { return w.pathstore.PutLink(ctx, link) }); err != nil {
				log.Warn("link write failed", "from", link.From, "to", link.To, "error", err)
			}
		}
	}

	meta := map[string]any{
		"filename":         job.Filename,
		"title":            book.Metadata.Title,
		"subtitle":         book.Metadata.Subtitle,
		"author":           book.Metadata.Author,
		"content_hash":     job.ContentHash,
		"documents":        len(book.Documents),
		"failed_documents": len(book.Failed()),
		"sections_stored":  stored,
		"created_at":       job.CreatedAt.Format(time.RFC3339),
	}
	err := withRetry(ctx, log, "put meta", func() error {
		return w.pathstore.PutNode(ctx, pathstore.MetaKey(job.DocID), pathstore.NodeRequest{Value: meta, Source: source})
	})
	if err != nil {
		log.Error("meta write failed", "error", err)
		job.AddError(fmt.Sprintf("meta: %s", err))
		ok = false
	}

	// Hash index for dedup.
	err = w.pathstore.PutNode(ctx, pathstore.HashKey(job.ContentHash, job.DocID), pathstore.NodeRequest{
		Value: map[string]any{
			"filename":   job.Filename,
			"created_at": job.CreatedAt.Format(time.RFC3339),
		},
		Source: source,
	})
	if err != nil {
		log.Error("hash index write failed", "error", err)
	}

	return ok
}

// checkDuplicate checks if this content hash is already stored.
func (w *Worker) checkDuplicate(ctx context.Context, hash string) (bool, string, error) {
	children, err := w.pathstore.ListChildren(ctx, pathstore.HashPrefix(hash), 1)
	if err != nil {
		return false, "", err
	}
	if len(children) > 0 {
		return true, pathstore.LastSegment(children[0].Key), nil
	}
	return false, "", nil
}
