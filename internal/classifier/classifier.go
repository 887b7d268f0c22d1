// Package classifier assigns crime categories to report text using an
// ordered keyword rule cascade. Rules are evaluated most-severe-first with
// one deliberate exception: fraud precedes kidnapping so financial phrasing
// like "disappeared with the money" never trips the abduction vocabulary.
package classifier

import (
	"strings"

	"github.com/guardline/report-verifier/internal/domain"
	"github.com/guardline/report-verifier/internal/logger"
)

// Classifier evaluates the keyword rule cascade over report text.
type Classifier struct {
	log logger.Logger
}

func New(log logger.Logger) *Classifier {
	if log == nil {
		log = logger.NewNop()
	}
	return &Classifier{log: log}
}

// Classify runs the cascade and returns the first matching rule's verdict.
// The returned verdict always carries a category; unmatched text falls
// through to Unknown with low confidence so callers can route it for manual
// review instead of guessing.
func (c *Classifier) Classify(text string) domain.ClassificationVerdict {
	normalized := strings.ToLower(strings.TrimSpace(text))
	m := matchText(normalized)

	verdict := c.primary(m)

	// Secondary tags ride along regardless of which rule fired.
	if m.child && verdict.Category != domain.CategoryUnknown {
		verdict.Tags = append(verdict.Tags, domain.TagMinorInvolved)
	}
	if m.weapon && !verdict.HasTag(domain.TagWeaponDetected) {
		verdict.Tags = append(verdict.Tags, domain.TagWeaponDetected)
	}

	verdict.ExtractedLocation = ExtractLocation(text)
	verdict.ExtractedDate, verdict.ExtractedTime = ExtractDateTime(text)

	c.log.Debug("classified report text",
		logger.String("category", verdict.Category),
		logger.Float64("confidence", verdict.Confidence),
	)
	return verdict
}

// rule pairs a predicate with the verdict it produces. Rules are evaluated
// in slice order, first match wins; priority lives in the table, not in
// nested branching.
type rule struct {
	name    string
	matches func(*matches) bool
	verdict domain.ClassificationVerdict
}

var rules = []rule{
	{
		// Evaluated ahead of kidnapping so financial "disappeared" phrasing
		// cannot trip the abduction vocabulary.
		name:    "fraud",
		matches: func(m *matches) bool { return m.fraud },
		verdict: verdict(domain.CategoryFraud, confidenceFraud,
			"fraud vocabulary matched"),
	},
	{
		// Abductions are recorded at maximal severity. The override tag
		// tells consumers the underlying event is a kidnapping.
		name:    "kidnapping",
		matches: (*matches).kidnapping,
		verdict: domain.ClassificationVerdict{
			Category:   domain.CategoryMurder,
			Confidence: confidenceKidnapping,
			Reasoning:  "abduction vocabulary with person context, escalated to maximal severity",
			Tags:       []string{domain.TagKidnappingOverride},
		},
	},
	{
		name:    "sexual violence",
		matches: func(m *matches) bool { return m.rape },
		verdict: verdict(domain.CategoryRape, confidenceRape,
			"sexual violence vocabulary matched"),
	},
	{
		name:    "armed robbery",
		matches: func(m *matches) bool { return m.weapon && m.robberyVerb },
		verdict: domain.ClassificationVerdict{
			Category:   domain.CategoryArmedRobbery,
			Confidence: confidenceArmedRobbery,
			Reasoning:  "weapon and robbery vocabulary matched together",
			Tags:       []string{domain.TagWeaponDetected},
		},
	},
	{
		name:    "armed theft",
		matches: func(m *matches) bool { return m.weapon && m.theft },
		verdict: domain.ClassificationVerdict{
			Category:   domain.CategoryArmedRobbery,
			Confidence: confidenceArmedRobbery,
			Reasoning:  "weapon vocabulary with theft context",
			Tags:       []string{domain.TagWeaponDetected},
		},
	},
	{
		name:    "weapon",
		matches: func(m *matches) bool { return m.weapon },
		verdict: domain.ClassificationVerdict{
			Category:   domain.CategoryAssault,
			Confidence: confidenceWeaponOnly,
			Reasoning:  "weapon vocabulary without robbery context",
			Tags:       []string{domain.TagWeaponDetected},
		},
	},
	{
		name:    "harassment",
		matches: func(m *matches) bool { return m.harassment },
		verdict: verdict(domain.CategorySexualHarassment, confidenceHarassment,
			"harassment vocabulary matched"),
	},
	{
		name:    "drugs",
		matches: func(m *matches) bool { return m.drug },
		verdict: verdict(domain.CategoryDrugOffense, confidenceDrug,
			"narcotics vocabulary matched"),
	},
	{
		name:    "arson",
		matches: func(m *matches) bool { return m.arson },
		verdict: verdict(domain.CategoryArson, confidenceArson,
			"fire or explosion vocabulary matched"),
	},
	{
		name:    "vandalism",
		matches: func(m *matches) bool { return m.vandalism },
		verdict: verdict(domain.CategoryVandalism, confidenceVandalism,
			"property damage vocabulary matched"),
	},
	{
		name:    "burglary",
		matches: func(m *matches) bool { return m.burglary },
		verdict: verdict(domain.CategoryBurglary, confidenceBurglary,
			"forced entry vocabulary matched"),
	},
	{
		name:    "assault",
		matches: func(m *matches) bool { return m.assault },
		verdict: verdict(domain.CategoryAssault, confidenceAssault,
			"physical violence vocabulary matched"),
	},
	{
		name:    "theft",
		matches: func(m *matches) bool { return m.theft },
		verdict: verdict(domain.CategoryTheft, confidenceTheft,
			"theft vocabulary matched"),
	},
}

func (c *Classifier) primary(m *matches) domain.ClassificationVerdict {
	for _, r := range rules {
		if r.matches(m) {
			v := r.verdict
			// Copy tags so callers never mutate the shared table.
			v.Tags = append([]string(nil), v.Tags...)
			return v
		}
	}
	return verdict(domain.CategoryUnknown, confidenceUnknown,
		"no crime vocabulary matched")
}

func verdict(category string, confidence float64, reasoning string) domain.ClassificationVerdict {
	return domain.ClassificationVerdict{
		Category:   category,
		Confidence: confidence,
		Reasoning:  reasoning,
	}
}

// HasSafetyKeywords reports whether text mentions weapons or abduction.
// The verification cascade uses this as its safety bypass: such reports are
// never gated behind fake detection.
func HasSafetyKeywords(text string) bool {
	normalized := strings.ToLower(text)
	return weaponPattern.MatchString(normalized) ||
		kidnapPattern.MatchString(normalized) && personPattern.MatchString(normalized) ||
		missingChildPattern.MatchString(normalized)
}
