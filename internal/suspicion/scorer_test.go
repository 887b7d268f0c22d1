//nolint:testpackage // heuristic internals are exercised directly
package suspicion

import (
	"testing"
)

const neutralCredibility = 50

func TestScore_JokeReport(t *testing.T) {
	s := NewScorer(nil)

	got := s.Score("lol jk this is fake", neutralCredibility)

	if !got.Suspicious {
		t.Error("expected joke report to be flagged suspicious")
	}
	if got.Penalty < 20 {
		t.Errorf("penalty = %d, want >= 20", got.Penalty)
	}
	if got.Penalty > MaxPenalty {
		t.Errorf("penalty = %d, exceeds cap %d", got.Penalty, MaxPenalty)
	}
	if len(got.Reasons) == 0 {
		t.Error("expected at least one reason")
	}
}

func TestScore_GenuineReportPassesClean(t *testing.T) {
	s := NewScorer(nil)

	got := s.Score(
		"A man with a knife attacked a shopkeeper near the central market around 9 pm and stole the cash register",
		neutralCredibility,
	)

	if got.Suspicious {
		t.Errorf("genuine report flagged suspicious, penalty = %d, reasons = %v", got.Penalty, got.Reasons)
	}
	if got.Penalty != 0 {
		t.Errorf("penalty = %d, want 0", got.Penalty)
	}
}

func TestScore_Gibberish(t *testing.T) {
	s := NewScorer(nil)

	got := s.Score("asdkfj qwrtpz xcvbnm", neutralCredibility)

	if !got.Suspicious {
		t.Error("expected gibberish to be flagged suspicious")
	}
	if got.Penalty != MaxPenalty {
		t.Errorf("penalty = %d, want capped at %d", got.Penalty, MaxPenalty)
	}
}

func TestScore_GibberishChecksSkippedForLongText(t *testing.T) {
	s := NewScorer(nil)

	// Seven words, so the gibberish heuristics never run; the text still
	// loses points for brevity and missing crime vocabulary.
	got := s.Score("zxq vbn mkl pqr stw xyz abc", neutralCredibility)

	for _, r := range got.Reasons {
		if r == "gibberish detected (low vowel ratio)" ||
			r == "gibberish detected (unusual consonant clusters)" ||
			r == "gibberish detected (unrecognizable words)" {
			t.Errorf("gibberish check ran on text longer than five words: %q", r)
		}
	}
}

func TestScore_ImplausibleQuantities(t *testing.T) {
	s := NewScorer(nil)

	got := s.Score("There were 1000 robbers and a million dollars stolen every single second", neutralCredibility)

	if !got.Suspicious {
		t.Error("expected implausible quantities to be flagged")
	}
	if got.Penalty < 24 {
		t.Errorf("penalty = %d, want >= 24 for three implausible patterns", got.Penalty)
	}
}

func TestScore_DisclaimerLanguage(t *testing.T) {
	s := NewScorer(nil)

	got := s.Score("Someone attacked a man outside the station but I'm not sure if this really counts", neutralCredibility)

	found := false
	for _, r := range got.Reasons {
		if r == "suspicious disclaimer language" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected disclaimer reason, got %v", got.Reasons)
	}
}

func TestScore_NonCrimeReport(t *testing.T) {
	s := NewScorer(nil)

	got := s.Score("My game account password stopped working after the latest update yesterday", neutralCredibility)

	if !got.Suspicious {
		t.Error("expected non-crime report to be flagged")
	}
	// 10 for no crime vocabulary plus 12 for non-crime vocabulary.
	if got.Penalty < 22 {
		t.Errorf("penalty = %d, want >= 22", got.Penalty)
	}
}

func TestScore_LowCredibilityAddsPenalty(t *testing.T) {
	s := NewScorer(nil)

	text := "A thief stole a bicycle from the rack outside the library this morning"
	clean := s.Score(text, neutralCredibility)
	flagged := s.Score(text, 10)

	if flagged.Penalty != clean.Penalty+5 {
		t.Errorf("low credibility penalty = %d, want %d", flagged.Penalty, clean.Penalty+5)
	}
}

func TestScore_ExcessivePunctuationAndCaps(t *testing.T) {
	s := NewScorer(nil)

	got := s.Score("HELP!!!! SOMEONE STOLE MY CAR!!!! RIGHT NOW!!!!", neutralCredibility)

	var punct, caps bool
	for _, r := range got.Reasons {
		switch r {
		case "excessive punctuation":
			punct = true
		case "excessive capitalization":
			caps = true
		}
	}
	if !punct {
		t.Error("expected excessive punctuation reason")
	}
	if !caps {
		t.Error("expected excessive capitalization reason")
	}
}

func TestScore_VagueTerms(t *testing.T) {
	s := NewScorer(nil)

	got := s.Score("Something happened and somebody took stuff from anyone nearby during the incident", neutralCredibility)

	found := false
	for _, r := range got.Reasons {
		if r == "vague description with generic terms" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected vague description reason, got %v", got.Reasons)
	}
}

func TestScore_ConfidenceScalesWithPenalty(t *testing.T) {
	s := NewScorer(nil)

	low := s.Score("A thief stole a bicycle from the rack outside the library this morning", neutralCredibility)
	high := s.Score("lol jk this is fake", neutralCredibility)

	if low.Confidence >= high.Confidence {
		t.Errorf("confidence should grow with penalty: low = %.2f, high = %.2f", low.Confidence, high.Confidence)
	}
	if high.Confidence > 0.95 {
		t.Errorf("confidence = %.2f, want <= 0.95", high.Confidence)
	}
}
