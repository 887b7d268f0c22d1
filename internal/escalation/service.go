package escalation

import (
	"context"
	"time"

	"github.com/guardline/report-verifier/internal/domain"
	"github.com/guardline/report-verifier/internal/logger"
	"github.com/guardline/report-verifier/internal/riskclient"
	"github.com/guardline/report-verifier/internal/telemetry"
)

// RiskPredictor is the external base risk oracle.
type RiskPredictor interface {
	Predict(ctx context.Context, req *riskclient.PredictRequest) (*riskclient.PredictResponse, error)
}

// neutralBase is used when the oracle is unreachable; the override engine
// still runs so safety keywords can force High.
func neutralBase() domain.BaseRiskPrediction {
	return domain.BaseRiskPrediction{
		Risk:       domain.RiskMedium,
		Confidence: 0.34,
		Probabilities: map[string]float64{
			domain.RiskLow: 0.33, domain.RiskMedium: 0.34, domain.RiskHigh: 0.33,
		},
	}
}

// Service fetches the base prediction and applies the override engine.
type Service struct {
	oracle  RiskPredictor
	engine  *Engine
	metrics *telemetry.Metrics
	log     logger.Logger
}

func NewService(oracle RiskPredictor, engine *Engine, metrics *telemetry.Metrics, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	if engine == nil {
		engine = NewEngine(log)
	}
	return &Service{oracle: oracle, engine: engine, metrics: metrics, log: log}
}

// Escalate produces the final urgency verdict for one report. Oracle
// failures degrade to a neutral base prediction rather than erroring;
// keyword overrides still apply.
func (s *Service) Escalate(ctx context.Context, report *domain.Report, crimeType string) domain.EscalationVerdict {
	partOfDay := PartOfDay(occurrenceTime(report))

	base := neutralBase()
	if s.oracle != nil {
		resp, err := s.oracle.Predict(ctx, &riskclient.PredictRequest{
			Description:  report.Text,
			CrimeType:    crimeType,
			Location:     report.Location,
			PartOfDay:    partOfDay,
			IsUserReport: report.Channel == domain.ChannelCitizen,
		})
		if err != nil {
			s.log.Warn("risk oracle unavailable, using neutral base",
				logger.String("report_id", report.ID),
				logger.Error(err),
			)
		} else {
			base = resp.Base()
		}
	}

	verdict := s.engine.Apply(base, report.Text, crimeType, partOfDay)

	if s.metrics != nil {
		s.metrics.ObserveEscalation(verdict.Risk, verdict.Overridden)
	}
	return verdict
}

func occurrenceTime(report *domain.Report) time.Time {
	if report.SubmittedAt != nil {
		return *report.SubmittedAt
	}
	return time.Now()
}
