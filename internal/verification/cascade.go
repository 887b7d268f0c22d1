// Package verification decides whether a report is fabricated. Three tiers
// are consulted in order until one produces a usable verdict: the statistical
// fake-report model, the language model, and finally the local heuristic
// scorer, which always works. Reports carrying weapon or abduction
// vocabulary bypass all tiers; genuine danger signals are never suppressed
// by a fabrication classifier.
package verification

import (
	"context"
	"fmt"
	"strings"

	"github.com/guardline/report-verifier/internal/classifier"
	"github.com/guardline/report-verifier/internal/credibility"
	"github.com/guardline/report-verifier/internal/domain"
	"github.com/guardline/report-verifier/internal/llmclient"
	"github.com/guardline/report-verifier/internal/logger"
	"github.com/guardline/report-verifier/internal/mlclient"
	"github.com/guardline/report-verifier/internal/suspicion"
)

// Confidence bands mapping a fake-model verdict to a credibility penalty.
// Below the lowest band a fake label is overridden to genuine; marginal
// calls get a language-model second opinion first.
const (
	fakeBandCertain  = 0.95 // penalty 22
	fakeBandStrong   = 0.85 // penalty 18
	fakeBandModerate = 0.70 // penalty 12
	fakeBandMarginal = 0.60 // penalty 8, after LLM second opinion
)

const (
	penaltyCertain  = 22
	penaltyStrong   = 18
	penaltyModerate = 12
	penaltyMarginal = 8
)

// Genuine verdicts earn small rewards, scaled by model confidence.
const (
	rewardCertain = -5
	rewardStrong  = -3
	rewardModest  = -1
)

// MLPredictor is the statistical fake-report oracle.
type MLPredictor interface {
	Predict(ctx context.Context, req *mlclient.PredictRequest) (*mlclient.PredictResponse, error)
}

// LLMAnalyzer is the language-model analysis tier.
type LLMAnalyzer interface {
	Analyze(ctx context.Context, req *llmclient.AnalysisRequest) (*llmclient.Analysis, error)
}

// Cascade orchestrates the tiers. Safe for concurrent use.
type Cascade struct {
	ml     MLPredictor
	llm    LLMAnalyzer
	scorer *suspicion.Scorer
	log    logger.Logger
}

func NewCascade(ml MLPredictor, llm LLMAnalyzer, scorer *suspicion.Scorer, log logger.Logger) *Cascade {
	if log == nil {
		log = logger.NewNop()
	}
	if scorer == nil {
		scorer = suspicion.NewScorer(log)
	}
	return &Cascade{ml: ml, llm: llm, scorer: scorer, log: log}
}

// Verify produces the fake/genuine verdict for one report. It never returns
// an error for tier failures; the heuristic tier guarantees a verdict.
func (c *Cascade) Verify(ctx context.Context, report *domain.Report, reporterCredibility int) domain.FakeVerdict {
	// Heuristics run up front; every tier merges them.
	quick := c.scorer.Score(report.Text, reporterCredibility)

	if classifier.HasSafetyKeywords(report.Text) {
		return finalize(domain.FakeVerdict{
			IsFake:     false,
			Confidence: 1.0,
			Reasoning:  "safety-critical vocabulary present, fabrication screening bypassed",
			Tier:       domain.TierSafetyOverride,
		}, reporterCredibility)
	}

	if verdict, ok := c.tierML(ctx, report, reporterCredibility, quick); ok {
		return finalize(mergeHeuristics(verdict, quick), reporterCredibility)
	}

	if verdict, ok := c.tierLLM(ctx, report, reporterCredibility); ok {
		return finalize(mergeHeuristics(verdict, quick), reporterCredibility)
	}

	return finalize(heuristicVerdict(quick), reporterCredibility)
}

// tierML consults the statistical model. Marginal fake calls (confidence
// below the moderate band) are handed to the language model for a second
// opinion; if that tier fails too, the banded ML verdict stands.
func (c *Cascade) tierML(ctx context.Context, report *domain.Report, reporterCredibility int, quick suspicion.Result) (domain.FakeVerdict, bool) {
	if c.ml == nil {
		return domain.FakeVerdict{}, false
	}

	resp, err := c.ml.Predict(ctx, &mlclient.PredictRequest{
		ReportText:          report.Text,
		Location:            report.Location,
		TimeOfOccurrence:    report.TimeOfOccurrence,
		ReporterCredibility: reporterCredibility,
	})
	if err != nil {
		c.log.Warn("ml tier unavailable, falling through",
			logger.String("report_id", report.ID),
			logger.Error(err),
		)
		return domain.FakeVerdict{}, false
	}

	if resp.IsFake() && resp.FakeProbability < fakeBandModerate {
		if verdict, ok := c.tierLLM(ctx, report, reporterCredibility); ok {
			c.log.Info("marginal ml verdict replaced by llm second opinion",
				logger.String("report_id", report.ID),
				logger.Float64("ml_confidence", resp.FakeProbability),
			)
			return verdict, true
		}
		// Second opinion unavailable: keep the banded ML verdict.
	}

	return bandMLVerdict(resp), true
}

// bandMLVerdict applies the confidence-band table to a model response.
func bandMLVerdict(resp *mlclient.PredictResponse) domain.FakeVerdict {
	p := resp.FakeProbability

	if resp.IsFake() {
		var delta int
		switch {
		case p >= fakeBandCertain:
			delta = penaltyCertain
		case p >= fakeBandStrong:
			delta = penaltyStrong
		case p >= fakeBandModerate:
			delta = penaltyModerate
		case p >= fakeBandMarginal:
			delta = penaltyMarginal
		default:
			// Low-confidence fake calls are overridden to genuine to bound
			// false positives.
			return domain.FakeVerdict{
				IsFake:     false,
				Confidence: p,
				Reasoning:  fmt.Sprintf("model fake call below confidence floor (%.2f), treated as genuine", p),
				Tier:       domain.TierML,
			}
		}
		return domain.FakeVerdict{
			IsFake:           true,
			Confidence:       p,
			CredibilityDelta: delta,
			Reasoning:        fmt.Sprintf("statistical model flagged report as fake (confidence %.2f)", p),
			Tier:             domain.TierML,
		}
	}

	var reward int
	switch {
	case p >= fakeBandCertain:
		reward = rewardCertain
	case p >= fakeBandStrong:
		reward = rewardStrong
	case p >= fakeBandModerate:
		reward = rewardModest
	}
	return domain.FakeVerdict{
		IsFake:           false,
		Confidence:       p,
		CredibilityDelta: reward,
		Reasoning:        fmt.Sprintf("statistical model judged report genuine (confidence %.2f)", p),
		Tier:             domain.TierML,
	}
}

func (c *Cascade) tierLLM(ctx context.Context, report *domain.Report, reporterCredibility int) (domain.FakeVerdict, bool) {
	if c.llm == nil {
		return domain.FakeVerdict{}, false
	}

	analysis, err := c.llm.Analyze(ctx, &llmclient.AnalysisRequest{
		ReportText:       report.Text,
		Location:         report.Location,
		TimeOfOccurrence: report.TimeOfOccurrence,
		ReporterID:       report.ReporterID,
		Credibility:      reporterCredibility,
	})
	if err != nil {
		c.log.Warn("llm tier failed, falling through",
			logger.String("report_id", report.ID),
			logger.Error(err),
		)
		return domain.FakeVerdict{}, false
	}

	delta := analysis.CredibilityPenalty
	if !analysis.IsFake {
		delta = 0
	}
	return domain.FakeVerdict{
		IsFake:           analysis.IsFake,
		Confidence:       analysis.Confidence,
		CredibilityDelta: delta,
		Reasoning:        analysis.Reasoning,
		Tier:             domain.TierLLM,
		Reasons:          analysis.RedFlags,
	}, true
}

// heuristicVerdict adopts the scorer output directly as the last tier.
func heuristicVerdict(quick suspicion.Result) domain.FakeVerdict {
	reasoning := "report appears genuine"
	if len(quick.Reasons) > 0 {
		reasoning = strings.Join(quick.Reasons, "; ")
	}
	return domain.FakeVerdict{
		IsFake:           quick.Suspicious,
		Confidence:       quick.Confidence,
		CredibilityDelta: quick.Penalty,
		Reasoning:        reasoning,
		Tier:             domain.TierHeuristic,
		Reasons:          quick.Reasons,
	}
}

// mergeHeuristics folds the up-front heuristic result into a tier verdict.
// Heuristics may raise confidence and penalty, never lower them. Confidence
// merges on the comparison alone; penalty and reasons carry over only for
// suspicious results, so genuine verdicts keep their reward delta.
func mergeHeuristics(verdict domain.FakeVerdict, quick suspicion.Result) domain.FakeVerdict {
	if quick.Confidence > verdict.Confidence {
		verdict.Confidence = quick.Confidence
		if len(quick.Reasons) > 0 {
			summary := quick.Reasons
			if len(summary) > 2 {
				summary = summary[:2]
			}
			verdict.Reasoning += fmt.Sprintf(" [heuristics also flagged: %s]", strings.Join(summary, ", "))
		}
	}
	if !quick.Suspicious {
		return verdict
	}
	if quick.Penalty > verdict.CredibilityDelta {
		verdict.CredibilityDelta = quick.Penalty
	}
	verdict.Reasons = append(verdict.Reasons, quick.Reasons...)
	return verdict
}

// finalize computes the upload gate shared by every tier.
func finalize(verdict domain.FakeVerdict, reporterCredibility int) domain.FakeVerdict {
	verdict.CanUpload = !verdict.IsFake && reporterCredibility >= credibility.UploadThreshold
	return verdict
}
