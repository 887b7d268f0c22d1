package verification

import (
	"context"
	"errors"
	"time"

	"github.com/guardline/report-verifier/internal/credibility"
	"github.com/guardline/report-verifier/internal/domain"
	"github.com/guardline/report-verifier/internal/logger"
	"github.com/guardline/report-verifier/internal/telemetry"
)

// ReportStore persists verification outcomes. Implementations write the
// verification record, update the report's classification fields, and move
// confirmed fakes into the quarantine table.
type ReportStore interface {
	SaveVerification(ctx context.Context, rec *domain.VerificationRecord) error
	UpdateClassification(ctx context.Context, reportID string, verdict *domain.ClassificationVerdict) error
	Quarantine(ctx context.Context, report *domain.Report, verdict *domain.FakeVerdict) error
}

// Classifier assigns a crime category to report text.
type Classifier interface {
	Classify(text string) domain.ClassificationVerdict
}

// VerdictCache short-circuits repeat verification of identical reports.
// A nil cache disables caching.
type VerdictCache interface {
	Get(ctx context.Context, reportID string) (*domain.FakeVerdict, error)
	Set(ctx context.Context, reportID string, verdict *domain.FakeVerdict) error
}

// Outcome bundles everything one verification pass produced.
type Outcome struct {
	Verdict        domain.FakeVerdict            `json:"verdict"`
	NewCredibility int                           `json:"new_credibility_score"`
	Classification *domain.ClassificationVerdict `json:"classification,omitempty"`
}

// Service runs the full verification flow: ledger gate, cascade, ledger
// update, persistence, quarantine, and automatic classification of accepted
// reports.
type Service struct {
	cascade    *Cascade
	ledger     *credibility.Ledger
	classifier Classifier
	store      ReportStore
	cache      VerdictCache
	metrics    *telemetry.Metrics
	log        logger.Logger
}

func NewService(
	cascade *Cascade,
	ledger *credibility.Ledger,
	cls Classifier,
	store ReportStore,
	cache VerdictCache,
	metrics *telemetry.Metrics,
	log logger.Logger,
) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		cascade:    cascade,
		ledger:     ledger,
		classifier: cls,
		store:      store,
		cache:      cache,
		metrics:    metrics,
		log:        log,
	}
}

// VerifyReport gates the reporter, runs the cascade, settles the ledger and
// persists the outcome. A blocked reporter fails with ErrReporterBlocked
// before any classification runs.
func (s *Service) VerifyReport(ctx context.Context, report *domain.Report) (*Outcome, error) {
	start := time.Now()

	score, err := s.ledger.CheckAllowed(ctx, report.ReporterID)
	if err != nil {
		if s.metrics != nil && errors.Is(err, credibility.ErrReporterBlocked) {
			s.metrics.BlockedReporters.Inc()
		}
		return nil, err
	}

	if cached := s.cachedVerdict(ctx, report.ID); cached != nil {
		return &Outcome{Verdict: *cached, NewCredibility: score}, nil
	}

	verdict := s.cascade.Verify(ctx, report, score)

	newScore := score
	if rec, applyErr := s.ledger.Apply(ctx, report.ReporterID, verdict.CredibilityDelta); applyErr != nil {
		// The verdict is still valid; the ledger write is retried implicitly
		// on the reporter's next submission.
		s.log.Error("ledger update failed",
			logger.String("reporter_id", report.ReporterID),
			logger.Error(applyErr),
		)
	} else {
		newScore = rec.Score
		if s.metrics != nil && verdict.CredibilityDelta != 0 {
			s.metrics.ObserveCredibilityDelta(verdict.CredibilityDelta)
		}
	}

	outcome := &Outcome{Verdict: verdict, NewCredibility: newScore}

	s.persist(ctx, report, &verdict)
	if !verdict.IsFake && verdict.CanUpload && s.classifier != nil {
		cls := s.classifier.Classify(report.Text)
		outcome.Classification = &cls
		if s.metrics != nil {
			s.metrics.ObserveClassification(cls.Category)
		}
		if s.store != nil {
			if err := s.store.UpdateClassification(ctx, report.ID, &cls); err != nil {
				s.log.Error("classification persist failed",
					logger.String("report_id", report.ID),
					logger.Error(err),
				)
			}
		}
	}
	s.cacheVerdict(ctx, report.ID, &verdict)

	if s.metrics != nil {
		s.metrics.ObserveVerification(verdict.Tier, verdict.IsFake, time.Since(start))
	}
	s.log.Info("report verified",
		logger.String("report_id", report.ID),
		logger.String("tier", verdict.Tier),
		logger.Bool("is_fake", verdict.IsFake),
		logger.Int("credibility_delta", verdict.CredibilityDelta),
		logger.Int("new_credibility", newScore),
	)
	return outcome, nil
}

func (s *Service) persist(ctx context.Context, report *domain.Report, verdict *domain.FakeVerdict) {
	if s.store == nil {
		return
	}

	rec := &domain.VerificationRecord{
		ReportID:   report.ID,
		IsFake:     verdict.IsFake,
		Confidence: verdict.Confidence,
		Reasoning:  verdict.Reasoning,
		Tier:       verdict.Tier,
		VerifiedAt: time.Now().UTC(),
	}
	if err := s.store.SaveVerification(ctx, rec); err != nil {
		s.log.Error("verification persist failed",
			logger.String("report_id", report.ID),
			logger.Error(err),
		)
	}

	if verdict.IsFake {
		if err := s.store.Quarantine(ctx, report, verdict); err != nil {
			s.log.Error("quarantine move failed",
				logger.String("report_id", report.ID),
				logger.Error(err),
			)
		}
	}
}

func (s *Service) cachedVerdict(ctx context.Context, reportID string) *domain.FakeVerdict {
	if s.cache == nil || reportID == "" {
		return nil
	}
	verdict, err := s.cache.Get(ctx, reportID)
	if err != nil {
		s.log.Warn("verdict cache read failed", logger.Error(err))
		return nil
	}
	return verdict
}

func (s *Service) cacheVerdict(ctx context.Context, reportID string, verdict *domain.FakeVerdict) {
	if s.cache == nil || reportID == "" {
		return
	}
	if err := s.cache.Set(ctx, reportID, verdict); err != nil {
		s.log.Warn("verdict cache write failed", logger.Error(err))
	}
}
