//nolint:testpackage
package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/guardline/report-verifier/internal/domain"
	"github.com/guardline/report-verifier/internal/logger"
	"github.com/guardline/report-verifier/internal/verification"
)

type stubVerifier struct {
	mu      sync.Mutex
	calls   int
	failFor map[string]error
}

func (s *stubVerifier) VerifyReport(_ context.Context, report *domain.Report) (*verification.Outcome, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if err, ok := s.failFor[report.ReporterID]; ok {
		return nil, err
	}
	return &verification.Outcome{
		Verdict: domain.FakeVerdict{Tier: domain.TierHeuristic},
	}, nil
}

func makeReports(n int) []*domain.Report {
	reports := make([]*domain.Report, n)
	for i := range reports {
		reports[i] = &domain.Report{
			ID:         fmt.Sprintf("rep-%d", i),
			Text:       "A man stole a bicycle outside the library",
			ReporterID: fmt.Sprintf("reporter-%d", i),
		}
	}
	return reports
}

func TestBatchProcessor_AllReportsProcessed(t *testing.T) {
	verifier := &stubVerifier{}
	proc := NewBatchProcessor(verifier, 4, nil, logger.NewNop())

	results := proc.Process(context.Background(), makeReports(20))

	if len(results) != 20 {
		t.Fatalf("results = %d, want 20", len(results))
	}
	if verifier.calls != 20 {
		t.Errorf("verifier calls = %d, want 20", verifier.calls)
	}

	seen := make(map[string]bool, len(results))
	for _, r := range results {
		if r.Error != nil {
			t.Errorf("report %s: unexpected error %v", r.Report.ID, r.Error)
		}
		seen[r.Report.ID] = true
	}
	if len(seen) != 20 {
		t.Errorf("distinct reports = %d, want 20", len(seen))
	}
}

func TestBatchProcessor_FailuresDoNotStopBatch(t *testing.T) {
	verifier := &stubVerifier{
		failFor: map[string]error{"reporter-3": errors.New("reporter is blocked")},
	}
	proc := NewBatchProcessor(verifier, 2, nil, logger.NewNop())

	results := proc.Process(context.Background(), makeReports(6))

	failed := 0
	for _, r := range results {
		if r.Error != nil {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}
	if len(results) != 6 {
		t.Errorf("results = %d, want 6", len(results))
	}
}

func TestBatchProcessor_EmptyBatch(t *testing.T) {
	proc := NewBatchProcessor(&stubVerifier{}, 0, nil, nil)

	results := proc.Process(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("results = %d, want 0", len(results))
	}
}

func TestBatchProcessor_CancelledContext(t *testing.T) {
	verifier := &stubVerifier{}
	proc := NewBatchProcessor(verifier, 2, nil, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := proc.Process(ctx, makeReports(4))
	if len(results) != 4 {
		t.Fatalf("results = %d, want 4", len(results))
	}
	for _, r := range results {
		if r.Error == nil {
			t.Errorf("report %s: want context error", r.Report.ID)
		}
	}
}
