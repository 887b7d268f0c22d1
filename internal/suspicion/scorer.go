// Package suspicion scores crime report text with cheap local heuristics
// before any model is consulted. The score is a credibility penalty in
// [0, 25]; reports that accumulate a penalty of eight or more are flagged
// suspicious. It deliberately errs toward false negatives: the model tiers
// behind it catch what these heuristics miss.
package suspicion

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/guardline/report-verifier/internal/logger"
)

const (
	// MaxPenalty caps the credibility cost a single report can incur.
	MaxPenalty = 25

	// suspicionThreshold is the raw penalty at which a report is flagged.
	suspicionThreshold = 8

	// lowCredibilityFloor marks reporters whose history alone adds penalty.
	lowCredibilityFloor = 25
)

const (
	penaltyGibberish     = 20
	penaltyJoke          = 20
	penaltyDisclaimer    = 15
	penaltyNoCrimeTerms  = 10
	penaltyNonCrimeTerms = 12
	penaltyImplausible   = 8
	penaltyVeryBrief     = 5
	penaltyLowCred       = 5
	penaltyVague         = 4
	penaltyContradiction = 3
	penaltyPunctuation   = 3
	penaltyCaps          = 3
	penaltyShort         = 2
)

var (
	consonantRunPattern = regexp.MustCompile(`[^aeiou\s]{4,}`)

	// Exaggerated quantities that real reports almost never contain.
	implausiblePatterns = []struct {
		re   *regexp.Regexp
		desc string
	}{
		{regexp.MustCompile(`\b1000\b`), "1000+"},
		{regexp.MustCompile(`\b999\b`), "999"},
		{regexp.MustCompile(`\b100\s+(?:robbers|criminals|people)\b`), "100+ criminals"},
		{regexp.MustCompile(`\bmillion\b`), "million losses"},
		{regexp.MustCompile(`\b50\+?\s+(?:shots|bullets|explosions)\b`), "50+ shots"},
		{regexp.MustCompile(`\bevery\s+(?:\w+\s+)?second\b`), "constant occurrence"},
	}

	// Letter groups present in nearly all English words of five or more
	// characters. A word containing none of them reads as keyboard mashing.
	commonLetterPatterns = []string{
		"th", "er", "on", "an", "in", "ed", "ing", "ly", "ion", "al", "en",
	}
)

// Result is the outcome of a heuristic pass over one report.
type Result struct {
	Suspicious bool     `json:"is_suspicious"`
	Confidence float64  `json:"confidence"`
	Penalty    int      `json:"penalty"`
	Reasons    []string `json:"reasons"`
}

// Scorer runs the heuristic checks. Safe for concurrent use.
type Scorer struct {
	log logger.Logger
}

func NewScorer(log logger.Logger) *Scorer {
	if log == nil {
		log = logger.NewNop()
	}
	return &Scorer{log: log}
}

// Score evaluates text against every heuristic and accumulates a penalty.
// credibility is the reporter's current ledger score in [0, 100].
func (s *Scorer) Score(text string, credibility int) Result {
	lower := strings.ToLower(text)
	words := strings.Fields(text)

	var reasons []string
	penalty := 0

	// Gibberish checks only make sense on very short texts; longer prose
	// self-evidences as language.
	if len(words) <= 5 {
		if p, r := gibberishChecks(lower, words); p > 0 {
			penalty += p
			reasons = append(reasons, r...)
		}
	}

	switch {
	case len(words) < 5:
		reasons = append(reasons, "extremely brief report")
		penalty += penaltyVeryBrief
	case len(words) < 10:
		reasons = append(reasons, "very short report, lacks detail")
		penalty += penaltyShort
	}

	if hasAny(jokeMatcher, lower) {
		reasons = append(reasons, "obvious satire or joke indicators")
		penalty += penaltyJoke
	}

	for _, p := range implausiblePatterns {
		if p.re.MatchString(lower) {
			reasons = append(reasons, fmt.Sprintf("implausible scenario (%s)", p.desc))
			penalty += penaltyImplausible
		}
	}

	if strings.Contains(lower, "but") && hasAny(negationMatcher, lower) {
		reasons = append(reasons, "contradictory logic")
		penalty += penaltyContradiction
	}

	if strings.Count(lower, "!") > 3 || strings.Count(lower, "?") > 3 {
		reasons = append(reasons, "excessive punctuation")
		penalty += penaltyPunctuation
	}

	if excessiveCaps(text) {
		reasons = append(reasons, "excessive capitalization")
		penalty += penaltyCaps
	}

	if countHits(vagueMatcher, lower) >= 3 {
		reasons = append(reasons, "vague description with generic terms")
		penalty += penaltyVague
	}

	if hasAny(disclaimerMatcher, lower) {
		reasons = append(reasons, "suspicious disclaimer language")
		penalty += penaltyDisclaimer
	}

	if credibility < lowCredibilityFloor {
		reasons = append(reasons, "very low reporter credibility")
		penalty += penaltyLowCred
	}

	if !hasAny(crimeMatcher, lower) && len(words) >= 5 {
		reasons = append(reasons, "no crime-related keywords detected")
		penalty += penaltyNoCrimeTerms

		if hasAny(nonCrimeMatcher, lower) {
			reasons = append(reasons, "contains personal or non-crime keywords")
			penalty += penaltyNonCrimeTerms
		}
	}

	// Suspicion and confidence scale with the raw penalty; only the
	// reported penalty is capped.
	result := Result{
		Suspicious: penalty >= suspicionThreshold,
		Confidence: min(0.2+float64(penalty)*0.03, 0.95),
		Penalty:    min(penalty, MaxPenalty),
		Reasons:    reasons,
	}

	if result.Suspicious {
		s.log.Debug("heuristic checks flagged report",
			logger.Int("penalty", result.Penalty),
			logger.Int("reasons", len(result.Reasons)),
		)
	}
	return result
}

func gibberishChecks(lower string, words []string) (int, []string) {
	var reasons []string
	penalty := 0

	vowels, letters := 0, 0
	for _, r := range lower {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if strings.ContainsRune("aeiou", r) {
			vowels++
		}
	}
	if letters > 0 && float64(vowels)/float64(letters) < 0.2 {
		reasons = append(reasons, "gibberish detected (low vowel ratio)")
		penalty += penaltyGibberish
	}

	if consonantRunPattern.MatchString(lower) {
		reasons = append(reasons, "gibberish detected (unusual consonant clusters)")
		penalty += penaltyGibberish
	}

	// Words of five or more letters with no common English letter group, or
	// with a character repeated three times running.
	suspiciousWords := 0
	for _, word := range words {
		w := strings.ToLower(word)
		if len(w) <= 4 {
			continue
		}
		hasPattern := false
		for _, p := range commonLetterPatterns {
			if strings.Contains(w, p) {
				hasPattern = true
				break
			}
		}
		if !hasPattern || hasRepeatedRun(w) {
			suspiciousWords++
		}
	}
	if len(words) > 0 && float64(suspiciousWords) >= float64(len(words))/2 {
		reasons = append(reasons, "gibberish detected (unrecognizable words)")
		penalty += penaltyGibberish
	}

	return penalty, reasons
}

// hasRepeatedRun reports whether any rune appears three or more times in a
// row. Go's regexp has no backreferences, so `(.)\1{2,}` cannot be used.
func hasRepeatedRun(s string) bool {
	var prev rune
	run := 0
	for _, r := range s {
		if r == prev {
			run++
			if run >= 3 {
				return true
			}
		} else {
			prev = r
			run = 1
		}
	}
	return false
}

// excessiveCaps reports whether more than 30% of the letters are uppercase.
func excessiveCaps(text string) bool {
	upper, letters := 0, 0
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.IsUpper(r) {
			upper++
		}
	}
	return letters > 0 && float64(upper)/float64(letters) > 0.3
}
