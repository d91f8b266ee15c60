// Package ingest runs the worker pool that carries raw depth-socket updates
// into the shared Matrix.
package ingest

import (
	"sync"
	"time"

	"triarb/internal/matrix"
	"triarb/internal/metrics"
	"triarb/internal/models"
	"triarb/pkg/logging"
)

// DepthMessage is one depth-socket update queued for a worker to apply.
type DepthMessage struct {
	Symbol    string
	Timestamp time.Time
	Asks      []models.BookLevel
	Bids      []models.BookLevel
}

// Ingest owns a bounded depth queue and a fixed pool of workers that drain
// it into a Matrix.
type Ingest struct {
	queue   *depthQueue
	matrix  *matrix.Matrix
	workers int
	wg      sync.WaitGroup
}

// New returns an Ingest pool of workers workers deep, backed by a queue
// bounded to queueCapacity distinct-symbol entries.
func New(mx *matrix.Matrix, workers, queueCapacity int) *Ingest {
	if workers <= 0 {
		workers = 1
	}
	if queueCapacity <= 0 {
		queueCapacity = 1
	}
	return &Ingest{
		queue:   newDepthQueue(queueCapacity),
		matrix:  mx,
		workers: workers,
	}
}

// Enqueue submits msg. Called from socket callback goroutines; never
// blocks — backpressure is resolved by the queue's own eviction policy.
func (ig *Ingest) Enqueue(msg DepthMessage) {
	ig.queue.push(msg)
}

// Start launches the worker pool. Call once.
func (ig *Ingest) Start() {
	for i := 0; i < ig.workers; i++ {
		ig.wg.Add(1)
		go ig.runWorker()
	}
}

func (ig *Ingest) runWorker() {
	defer ig.wg.Done()
	for {
		msg, ok := ig.queue.pop()
		if !ok {
			return
		}
		ig.matrix.UpdatePair(msg.Symbol, msg.Timestamp, msg.Asks, msg.Bids)
		metrics.IngestQueueDepth.Set(float64(ig.QueueLen()))
		logging.Debug("book updated", logging.Symbol(msg.Symbol))
	}
}

// Stop closes the queue and blocks until every worker has drained it and
// exited.
func (ig *Ingest) Stop() {
	ig.queue.close()
	ig.wg.Wait()
}

// QueueLen reports the number of distinct-symbol messages currently
// pending, for observability.
func (ig *Ingest) QueueLen() int {
	return ig.queue.len()
}
