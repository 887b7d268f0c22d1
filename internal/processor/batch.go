// Package processor runs verification over batches of reports with a
// bounded worker pool.
package processor

import (
	"context"
	"sync"
	"time"

	"github.com/guardline/report-verifier/internal/domain"
	"github.com/guardline/report-verifier/internal/logger"
	"github.com/guardline/report-verifier/internal/telemetry"
	"github.com/guardline/report-verifier/internal/verification"
)

const defaultConcurrency = 8

// Verifier is the per-report verification entry point.
type Verifier interface {
	VerifyReport(ctx context.Context, report *domain.Report) (*verification.Outcome, error)
}

// Result holds the outcome of verifying a single report. Error is set when
// the report could not be verified at all, for example a blocked reporter.
type Result struct {
	Report  *domain.Report        `json:"report"`
	Outcome *verification.Outcome `json:"outcome,omitempty"`
	Error   error                 `json:"-"`
}

// BatchProcessor fans a batch of reports out over a worker pool.
type BatchProcessor struct {
	verifier    Verifier
	concurrency int
	metrics     *telemetry.Metrics
	log         logger.Logger
}

func NewBatchProcessor(verifier Verifier, concurrency int, metrics *telemetry.Metrics, log logger.Logger) *BatchProcessor {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &BatchProcessor{
		verifier:    verifier,
		concurrency: concurrency,
		metrics:     metrics,
		log:         log,
	}
}

// Process verifies every report in the batch. Results preserve no ordering
// guarantee; callers match them up by report id.
func (b *BatchProcessor) Process(ctx context.Context, reports []*domain.Report) []*Result {
	if len(reports) == 0 {
		return []*Result{}
	}

	start := time.Now()
	b.log.Info("starting batch verification",
		logger.Int("batch_size", len(reports)),
		logger.Int("concurrency", b.concurrency),
	)

	jobs := make(chan *domain.Report, len(reports))
	results := make(chan *Result, len(reports))

	var wg sync.WaitGroup
	for i := 0; i < b.concurrency; i++ {
		wg.Add(1)
		go b.worker(ctx, jobs, results, &wg)
	}

	for _, report := range reports {
		jobs <- report
	}
	close(jobs)
	b.observeQueueDepth(len(reports))

	wg.Wait()
	close(results)
	b.observeQueueDepth(0)

	out := make([]*Result, 0, len(reports))
	failed := 0
	for result := range results {
		if result.Error != nil {
			failed++
		}
		out = append(out, result)
	}

	b.log.Info("batch verification complete",
		logger.Int("total", len(reports)),
		logger.Int("failed", failed),
		logger.Duration("duration", time.Since(start)),
	)
	return out
}

func (b *BatchProcessor) worker(ctx context.Context, jobs <-chan *domain.Report, results chan<- *Result, wg *sync.WaitGroup) {
	defer wg.Done()

	if b.metrics != nil {
		b.metrics.ActiveWorkers.Inc()
		defer b.metrics.ActiveWorkers.Dec()
	}

	for report := range jobs {
		select {
		case <-ctx.Done():
			results <- &Result{Report: report, Error: ctx.Err()}
			continue
		default:
		}

		outcome, err := b.verifier.VerifyReport(ctx, report)
		results <- &Result{Report: report, Outcome: outcome, Error: err}
	}
}

func (b *BatchProcessor) observeQueueDepth(depth int) {
	if b.metrics != nil {
		b.metrics.QueueDepth.Set(float64(depth))
	}
}
