// Package escalation decides how urgently a report must be escalated. It
// starts from an external risk model's three-way prediction and applies
// deterministic overrides: life-threatening and child-safety vocabulary
// force High risk, and unreliable High predictions over thin, generic
// descriptions are downgraded.
package escalation

import (
	"fmt"
	"strings"

	"github.com/cloudflare/ahocorasick"

	"github.com/guardline/report-verifier/internal/domain"
	"github.com/guardline/report-verifier/internal/logger"
)

// Fixed confidence values for forced verdicts.
const (
	lifeThreateningConfidence = 0.95
	childSafetyConfidence     = 0.85
	downgradeLowConfidence    = 0.60
	downgradeMediumConfidence = 0.55

	// Each unknown categorical feature costs this much confidence on
	// pass-through verdicts.
	unknownCategoryPenalty = 0.15
	confidenceFloor        = 0.30

	// totalCategoricalFeatures is what the risk model encodes per incident.
	totalCategoricalFeatures = 8

	// Descriptions under this many words count as generic.
	genericDescriptionWords = 8

	// unknownRatioThreshold gates the downgrade override.
	unknownRatioThreshold = 0.3
)

// Substring vocabularies, matched anywhere in the lowercased description.
var (
	lifeThreateningMatcher = ahocorasick.NewStringMatcher([]string{
		"hostage", "gun", "armed", "weapon", "shooting", "shooter",
		"bomb", "explosive", "terror", "active shooter", "gunman",
		"armed robbery", "held at gunpoint", "threatening with",
	})

	childSafetyMatcher = ahocorasick.NewStringMatcher([]string{
		"child", "children", "kid", "kids", "girl", "boy", "baby",
		"infant", "toddler", "minor", "juvenile", "abduct", "trafficking",
		"kidnap", "molest", "abuse",
	})

	violenceMatcher = ahocorasick.NewStringMatcher([]string{
		"shot", "fire", "fired", "gun", "weapon", "knife", "stab", "attack",
		"assault", "threat", "violence", "hurt", "blood", "injured", "dead",
		"kill", "murder", "robbery", "armed", "hostage", "kidnap",
	})

	// Noise-complaint vocabulary. "suspicious" is deliberately excluded;
	// it can indicate a real threat.
	genericNoiseMatcher = ahocorasick.NewStringMatcher([]string{
		"noise", "loud", "sound", "hearing", "heard",
	})
)

func matchesAny(m *ahocorasick.Matcher, text string) bool {
	return len(m.MatchThreadSafe([]byte(text))) > 0
}

// Engine applies the override rules. Stateless and safe for concurrent use.
type Engine struct {
	log logger.Logger
}

func NewEngine(log logger.Logger) *Engine {
	if log == nil {
		log = logger.NewNop()
	}
	return &Engine{log: log}
}

// Apply produces the final escalation verdict for one report. partOfDay may
// be empty; it only flavors the reasoning text.
func (e *Engine) Apply(base domain.BaseRiskPrediction, text, crimeType, partOfDay string) domain.EscalationVerdict {
	lower := strings.ToLower(text)

	lifeThreatening := matchesAny(lifeThreateningMatcher, lower)
	childSafety := matchesAny(childSafetyMatcher, lower)
	violence := matchesAny(violenceMatcher, lower)
	genericNoise := matchesAny(genericNoiseMatcher, lower)
	genericDescription := len(strings.Fields(text)) < genericDescriptionWords
	unknownRatio := float64(base.UnknownCategories) / totalCategoricalFeatures

	verdict := domain.EscalationVerdict{
		Risk:          base.Risk,
		Confidence:    adjustedConfidence(base.Confidence, base.UnknownCategories),
		Probabilities: base.Probabilities,
	}

	// Safety upgrades, highest priority first. Either one disables every
	// downgrade below.
	switch {
	case lifeThreatening:
		verdict.Risk = domain.RiskHigh
		verdict.Confidence = lifeThreateningConfidence
		verdict.Probabilities = map[string]float64{
			domain.RiskLow: 0.02, domain.RiskMedium: 0.03, domain.RiskHigh: 0.95,
		}
		verdict.Overridden = true

	case childSafety:
		verdict.Risk = domain.RiskHigh
		verdict.Confidence = childSafetyConfidence
		verdict.Probabilities = map[string]float64{
			domain.RiskLow: 0.05, domain.RiskMedium: 0.10, domain.RiskHigh: 0.85,
		}
		verdict.Overridden = true

	case base.Risk == domain.RiskHigh && !violence &&
		unknownRatio > unknownRatioThreshold && genericDescription:
		// A High prediction built mostly on unknown features over a thin,
		// generic description is not trustworthy.
		if genericNoise {
			verdict.Risk = domain.RiskLow
			verdict.Confidence = downgradeLowConfidence
			verdict.Probabilities = map[string]float64{
				domain.RiskLow: 0.60, domain.RiskMedium: 0.35, domain.RiskHigh: 0.05,
			}
		} else {
			verdict.Risk = domain.RiskMedium
			verdict.Confidence = downgradeMediumConfidence
			verdict.Probabilities = map[string]float64{
				domain.RiskLow: 0.20, domain.RiskMedium: 0.55, domain.RiskHigh: 0.25,
			}
		}
		verdict.Overridden = true
	}

	verdict.Reasoning = reasoning(verdict, crimeType, partOfDay, lifeThreatening, childSafety, genericDescription)

	if verdict.Overridden {
		e.log.Info("escalation override applied",
			logger.String("base_risk", base.Risk),
			logger.String("final_risk", verdict.Risk),
		)
	}
	return verdict
}

func adjustedConfidence(raw float64, unknownCategories int) float64 {
	adjusted := raw - float64(unknownCategories)*unknownCategoryPenalty
	if adjusted < confidenceFloor {
		return confidenceFloor
	}
	return adjusted
}

func reasoning(v domain.EscalationVerdict, crimeType, partOfDay string, lifeThreatening, childSafety, genericDescription bool) string {
	switch v.Risk {
	case domain.RiskHigh:
		var r string
		switch {
		case lifeThreatening:
			r = "Life-threatening situation: armed threat or hostage vocabulary detected. Immediate tactical response required."
		case childSafety:
			r = "Child safety concern detected. Immediate response required."
		case crimeType != "":
			r = fmt.Sprintf("Serious incident of %s requiring immediate police response.", strings.ToLower(crimeType))
		default:
			r = "Critical situation requiring urgent attention and resources."
		}
		if strings.EqualFold(partOfDay, PartNight) {
			r += " Nighttime occurrence increases severity."
		}
		return r

	case domain.RiskMedium:
		r := "Incident requires monitoring and potential intervention."
		if partOfDay != "" {
			r += fmt.Sprintf(" Reported during %s.", strings.ToLower(partOfDay))
		}
		return r

	default:
		r := "Routine incident. Standard procedures apply."
		if genericDescription {
			r += " Limited details provided."
		}
		return r
	}
}
