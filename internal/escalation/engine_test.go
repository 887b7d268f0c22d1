//nolint:testpackage // override internals are exercised directly
package escalation

import (
	"strings"
	"testing"
	"time"

	"github.com/guardline/report-verifier/internal/domain"
)

func base(risk string, confidence float64, unknown int) domain.BaseRiskPrediction {
	return domain.BaseRiskPrediction{
		Risk:       risk,
		Confidence: confidence,
		Probabilities: map[string]float64{
			domain.RiskLow: 0.2, domain.RiskMedium: 0.3, domain.RiskHigh: 0.5,
		},
		UnknownCategories: unknown,
	}
}

func TestApply_LifeThreateningForcesHigh(t *testing.T) {
	e := NewEngine(nil)

	got := e.Apply(base(domain.RiskLow, 0.8, 0), "A man is holding a hostage in the bank", "", "")

	if got.Risk != domain.RiskHigh {
		t.Fatalf("risk = %q, want High", got.Risk)
	}
	if got.Confidence != 0.95 {
		t.Errorf("confidence = %v, want 0.95", got.Confidence)
	}
	if got.Probabilities[domain.RiskHigh] != 0.95 {
		t.Errorf("P(High) = %v, want 0.95", got.Probabilities[domain.RiskHigh])
	}
	if !got.Overridden {
		t.Error("Overridden = false, want true")
	}
}

func TestApply_LifeThreateningDisablesDowngrade(t *testing.T) {
	e := NewEngine(nil)

	// Short, mostly-unknown, noisy text that would otherwise downgrade.
	got := e.Apply(base(domain.RiskHigh, 0.9, 5), "heard gunman nearby", "", "")

	if got.Risk != domain.RiskHigh {
		t.Fatalf("risk = %q, want High (downgrade must never fire on armed threats)", got.Risk)
	}
	if got.Confidence != 0.95 {
		t.Errorf("confidence = %v, want 0.95", got.Confidence)
	}
}

func TestApply_ChildSafetyForcesHigh(t *testing.T) {
	e := NewEngine(nil)

	got := e.Apply(base(domain.RiskLow, 0.7, 0), "a toddler was left alone near the highway", "", "")

	if got.Risk != domain.RiskHigh {
		t.Fatalf("risk = %q, want High", got.Risk)
	}
	if got.Confidence != 0.85 {
		t.Errorf("confidence = %v, want 0.85", got.Confidence)
	}
	if !strings.Contains(got.Reasoning, "Child safety") {
		t.Errorf("reasoning = %q, want child safety mention", got.Reasoning)
	}
}

func TestApply_LifeThreateningWinsOverChildSafety(t *testing.T) {
	e := NewEngine(nil)

	got := e.Apply(base(domain.RiskMedium, 0.6, 0), "a gunman grabbed a child outside school", "", "")

	if got.Confidence != 0.95 {
		t.Errorf("confidence = %v, want 0.95 (life-threatening takes priority)", got.Confidence)
	}
}

func TestApply_NoiseDowngradeToLow(t *testing.T) {
	e := NewEngine(nil)

	// Base High, half the features unknown, five words, generic noise.
	got := e.Apply(base(domain.RiskHigh, 0.9, 4), "loud noise from the neighbors", "", "")

	if got.Risk != domain.RiskLow {
		t.Fatalf("risk = %q, want Low", got.Risk)
	}
	if got.Confidence != 0.60 {
		t.Errorf("confidence = %v, want 0.60", got.Confidence)
	}
	if got.Probabilities[domain.RiskLow] != 0.60 {
		t.Errorf("P(Low) = %v, want 0.60", got.Probabilities[domain.RiskLow])
	}
	if !got.Overridden {
		t.Error("Overridden = false, want true")
	}
}

func TestApply_GenericDowngradeToMedium(t *testing.T) {
	e := NewEngine(nil)

	got := e.Apply(base(domain.RiskHigh, 0.9, 4), "something strange going on", "", "")

	if got.Risk != domain.RiskMedium {
		t.Fatalf("risk = %q, want Medium", got.Risk)
	}
	if got.Confidence != 0.55 {
		t.Errorf("confidence = %v, want 0.55", got.Confidence)
	}
}

func TestApply_DowngradeNeedsAllConditions(t *testing.T) {
	e := NewEngine(nil)

	tests := []struct {
		name string
		base domain.BaseRiskPrediction
		text string
	}{
		{
			name: "too few unknown features",
			base: base(domain.RiskHigh, 0.9, 1),
			text: "loud noise from the neighbors",
		},
		{
			name: "detailed description",
			base: base(domain.RiskHigh, 0.9, 4),
			text: "loud noise from the neighbors that has continued for three hours and is getting worse",
		},
		{
			name: "violence vocabulary present",
			base: base(domain.RiskHigh, 0.9, 4),
			text: "heard a knife fight outside",
		},
		{
			name: "base risk not high",
			base: base(domain.RiskMedium, 0.9, 4),
			text: "loud noise from the neighbors",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Apply(tt.base, tt.text, "", "")
			if got.Risk == domain.RiskLow {
				t.Errorf("risk downgraded to Low, want downgrade suppressed")
			}
			if tt.base.Risk == domain.RiskHigh && got.Risk != domain.RiskHigh {
				t.Errorf("risk = %q, want High pass-through", got.Risk)
			}
		})
	}
}

func TestApply_PassThroughConfidencePenalty(t *testing.T) {
	e := NewEngine(nil)

	// No safety or downgrade triggers; two unknown features cost 0.30.
	got := e.Apply(base(domain.RiskMedium, 0.80, 2), "a quiet dispute between neighbors over parking", "", "")

	if got.Risk != domain.RiskMedium {
		t.Fatalf("risk = %q, want Medium", got.Risk)
	}
	if got.Confidence < 0.49 || got.Confidence > 0.51 {
		t.Errorf("confidence = %v, want 0.50", got.Confidence)
	}
	if got.Overridden {
		t.Error("Overridden = true, want false for pass-through")
	}

	// The floor holds even with everything unknown.
	got = e.Apply(base(domain.RiskMedium, 0.40, 8), "a quiet dispute between neighbors over parking", "", "")
	if got.Confidence != 0.30 {
		t.Errorf("confidence = %v, want floor 0.30", got.Confidence)
	}
}

func TestApply_ReasoningContext(t *testing.T) {
	e := NewEngine(nil)

	got := e.Apply(base(domain.RiskHigh, 0.9, 0), "a man fired shots at the market", "Armed Robbery", PartNight)
	if !strings.Contains(got.Reasoning, "Nighttime") {
		t.Errorf("reasoning = %q, want nighttime mention", got.Reasoning)
	}

	got = e.Apply(base(domain.RiskMedium, 0.9, 0), "a quiet dispute between neighbors over parking", "", PartAfternoon)
	if !strings.Contains(got.Reasoning, "afternoon") {
		t.Errorf("reasoning = %q, want part of day mention", got.Reasoning)
	}
}

func TestPartOfDay(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{5, PartMorning},
		{11, PartMorning},
		{12, PartAfternoon},
		{16, PartAfternoon},
		{17, PartEvening},
		{20, PartEvening},
		{21, PartNight},
		{3, PartNight},
	}
	for _, tt := range tests {
		ts := time.Date(2025, 6, 1, tt.hour, 0, 0, 0, time.UTC)
		if got := PartOfDay(ts); got != tt.want {
			t.Errorf("PartOfDay(hour %d) = %q, want %q", tt.hour, got, tt.want)
		}
	}
}
