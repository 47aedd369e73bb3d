package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/bookstruct/internal/config"
	"github.com/dgallion1/bookstruct/internal/pathstore"
	"github.com/dgallion1/bookstruct/internal/structure"
)

// Orchestrator manages the structuring pipeline.
type Orchestrator struct {
	jobs   *JobStore
	queue  chan *Job
	engine *structure.Engine
	ps     *pathstore.Client
	stats  *LatencyStats
	log    *slog.Logger
	cfg    config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. ps may be nil when no pathstore is
// configured.
func NewOrchestrator(cfg config.Config, engine *structure.Engine, ps *pathstore.Client, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:   NewJobStore(cfg.JobTTL),
		queue:  make(chan *Job, max(cfg.MaxQueueSize, 1)),
		engine: engine,
		ps:     ps,
		stats:  NewLatencyStats(cfg.StatsWindow),
		log:    log,
		cfg:    cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range max(o.cfg.WorkerCount, 1) {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.engine, o.ps, o.stats, o.log, o.cfg.MaxConcurrentStructure, o.cfg.MaxConcurrentStore)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", cap(o.queue))
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Jobs returns the number of tracked jobs.
func (o *Orchestrator) Jobs() int {
	return o.jobs.Len()
}

// Stats returns the per-document structuring latency tracker.
func (o *Orchestrator) Stats() *LatencyStats {
	return o.stats
}

// Engine returns the default structuring engine.
func (o *Orchestrator) Engine() *structure.Engine {
	return o.engine
}

// PathstoreClient returns the pathstore client for direct use by API
// handlers. It is nil when storage is disabled.
func (o *Orchestrator) PathstoreClient() *pathstore.Client {
	return o.ps
}
