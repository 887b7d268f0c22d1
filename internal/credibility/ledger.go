// Package credibility maintains per-reporter trust scores. Every reporter
// starts at 50 on a 0 to 100 scale; confirmed fakes subtract, verified
// genuine reports add back, and a reporter at zero is blocked from
// submitting until an operator intervenes.
package credibility

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/guardline/report-verifier/internal/domain"
	"github.com/guardline/report-verifier/internal/logger"
)

const (
	// InitialScore is assigned to reporters with no history.
	InitialScore = 50

	// MinScore and MaxScore bound the ledger.
	MinScore = 0
	MaxScore = 100

	// UploadThreshold is the minimum score at which report uploads are
	// accepted downstream.
	UploadThreshold = 20
)

// ErrReporterBlocked marks reporters whose score has hit zero.
var ErrReporterBlocked = errors.New("reporter is blocked")

// Store persists credibility records. Implementations must make ApplyDelta
// atomic with respect to concurrent calls for the same reporter.
type Store interface {
	// Get returns the record for reporterID, or nil when unseen.
	Get(ctx context.Context, reporterID string) (*domain.CredibilityRecord, error)

	// ApplyDelta subtracts delta from the reporter's score, clamped to
	// [MinScore, MaxScore], creating the record at InitialScore first if
	// needed. fake increments the reporter's fake-report count.
	ApplyDelta(ctx context.Context, reporterID string, delta int, fake bool) (*domain.CredibilityRecord, error)
}

// Clamp bounds a score to the ledger range.
func Clamp(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// Ledger is the domain-facing view over a Store.
type Ledger struct {
	store Store
	log   logger.Logger
}

func NewLedger(store Store, log logger.Logger) *Ledger {
	if log == nil {
		log = logger.NewNop()
	}
	return &Ledger{store: store, log: log}
}

// Score returns the reporter's current score, defaulting unseen reporters
// to InitialScore without creating a record.
func (l *Ledger) Score(ctx context.Context, reporterID string) (int, error) {
	rec, err := l.store.Get(ctx, reporterID)
	if err != nil {
		return 0, fmt.Errorf("ledger lookup for %s: %w", reporterID, err)
	}
	if rec == nil {
		return InitialScore, nil
	}
	return rec.Score, nil
}

// CheckAllowed gates submission. A known reporter at MinScore gets
// ErrReporterBlocked; everyone else passes with their current score.
func (l *Ledger) CheckAllowed(ctx context.Context, reporterID string) (int, error) {
	score, err := l.Score(ctx, reporterID)
	if err != nil {
		return 0, err
	}
	if score <= MinScore {
		return score, fmt.Errorf("reporter %s: %w", reporterID, ErrReporterBlocked)
	}
	return score, nil
}

// Apply adjusts the reporter's score by delta. Positive deltas are penalties
// and count as a fake report; negative deltas are rewards. Clamping makes a
// reward at MaxScore a no-op.
func (l *Ledger) Apply(ctx context.Context, reporterID string, delta int) (*domain.CredibilityRecord, error) {
	if delta == 0 {
		rec, err := l.store.Get(ctx, reporterID)
		if err != nil {
			return nil, fmt.Errorf("ledger lookup for %s: %w", reporterID, err)
		}
		if rec == nil {
			rec = &domain.CredibilityRecord{
				ReporterID: reporterID,
				Score:      InitialScore,
				UpdatedAt:  time.Now().UTC(),
			}
		}
		return rec, nil
	}

	rec, err := l.store.ApplyDelta(ctx, reporterID, delta, delta > 0)
	if err != nil {
		return nil, fmt.Errorf("ledger update for %s: %w", reporterID, err)
	}

	l.log.Info("credibility adjusted",
		logger.String("reporter_id", reporterID),
		logger.Int("delta", delta),
		logger.Int("score", rec.Score),
	)
	return rec, nil
}
