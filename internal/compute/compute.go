// Package compute runs the worker pool that evaluates registered cycles
// against the shared Matrix and hands off profitable deals.
package compute

import (
	"sync"
	"time"

	"triarb/internal/matrix"
	"triarb/internal/metrics"
	"triarb/internal/models"
	"triarb/internal/optimizer"
	"triarb/pkg/logging"
)

// Config controls gating and sizing for a ComputeLoop.
type Config struct {
	Fee             float64
	Grid            []float64
	AgeThresholdMs  float64
	ProfitThreshold float64
	Workers         int
}

// ComputeLoop repeatedly snapshots each registered cycle, runs the
// optimizer, gates on freshness and profit, and dispatches accepted deals.
type ComputeLoop struct {
	matrix   *matrix.Matrix
	queue    chan string
	cfg      Config
	dispatch func(models.Deal)

	wg   sync.WaitGroup
	stop chan struct{}
}

// New returns a ComputeLoop seeded with cycleIDs, which must all already be
// registered in mx. dispatch is invoked once per accepted deal; it must not
// block for long, since it runs on a compute worker's goroutine.
func New(mx *matrix.Matrix, cycleIDs []string, cfg Config, dispatch func(models.Deal)) *ComputeLoop {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	queue := make(chan string, len(cycleIDs))
	for _, id := range cycleIDs {
		queue <- id
	}
	return &ComputeLoop{
		matrix:   mx,
		queue:    queue,
		cfg:      cfg,
		dispatch: dispatch,
		stop:     make(chan struct{}),
	}
}

// Start launches the worker pool. Call once.
func (c *ComputeLoop) Start() {
	for i := 0; i < c.cfg.Workers; i++ {
		c.wg.Add(1)
		go c.runWorker()
	}
}

func (c *ComputeLoop) runWorker() {
	defer c.wg.Done()
	for {
		select {
		case <-c.stop:
			return
		case cycleID := <-c.queue:
			c.evaluate(cycleID)
		}
	}
}

// evaluate snapshots cycleID, runs the optimizer, gates the result, and
// always requeues the cycle — a cycle is first-class recurring work, not a
// one-shot job.
func (c *ComputeLoop) evaluate(cycleID string) {
	defer func() {
		select {
		case c.queue <- cycleID:
		default:
			logging.Error("compute queue full on requeue", logging.String("cycle_id", cycleID))
		}
	}()

	cycle, books, ts, ok := c.matrix.Snapshot(cycleID)
	if !ok {
		return
	}

	deal := optimizer.Optimize(cycle, books, c.cfg.Fee, c.cfg.Grid)
	ageMs := float64(time.Since(ts).Milliseconds())
	c.matrix.RecordAge(ageMs)
	metrics.DealAgeMs.Observe(ageMs)
	metrics.ComputeQueueDepth.Set(float64(c.QueueLen()))

	if deal.IsNoDeal() {
		return
	}
	if ageMs > c.cfg.AgeThresholdMs || deal.ExpectedProfit < c.cfg.ProfitThreshold {
		return
	}
	metrics.DealsAcceptedTotal.Inc()
	metrics.DealProfitFraction.Observe(deal.ExpectedProfit)
	if c.dispatch != nil {
		c.dispatch(deal)
	}
}

// Stop signals every worker to exit immediately — the pending cycle queue
// is discarded, matching the engine-wide shutdown sequencing where compute
// workers do not drain.
func (c *ComputeLoop) Stop() {
	close(c.stop)
	c.wg.Wait()
}

// QueueLen reports how many cycles are currently waiting for a worker, for
// observability.
func (c *ComputeLoop) QueueLen() int {
	return len(c.queue)
}
