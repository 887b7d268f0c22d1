package llmclient

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const systemPrompt = `You are an expert crime report analyst trained in fraud detection and report authentication. Your job is to identify fabricated, exaggerated, or malicious crime reports with high accuracy.

CRITICAL: This is a crime reporting system. Reports about non-crime issues (missing orders, app crashes, game problems, personal complaints, customer service issues) are FAKE and should be flagged immediately.

FIRST CHECK - IS THIS EVEN A CRIME?
- Missing package/order delivery = NOT a crime
- App bug or crash = NOT a crime
- Game/character complaint = NOT a crime
- Password/account access = NOT a crime
- Noise complaint = MIGHT be a crime (disorderly conduct)
- Fight/assault/theft/robbery/weapon = YES, crime
If the report is about a non-crime issue, mark is_fake=true with high confidence.

EVALUATION CRITERIA for actual crime reports:
1. Content authenticity and detail level: genuine reports carry specific details; vague generic descriptions are suspicious.
2. Implausible elements: impossible numbers, unrealistic scenarios, exaggerated harm.
3. Linguistic red flags: excessive punctuation or caps, obvious satire ("lol", "jk"), inconsistent tone.
4. Temporal and geographic consistency.
5. Internal contradictions and self-defeating logic.
6. Reporter credibility signals: low score plus a suspicious report means likely fake; first-time reporters may lack detail but are not necessarily fake.
7. Hallmark phrases of false reports: "just checking if this works", "probably not important but", unusual disclaimer language.

Respond ONLY with valid JSON, no markdown code blocks or extra text:
{
  "is_fake": true or false,
  "confidence": 0.0 to 1.0,
  "reasoning": "concise one or two sentence explanation",
  "credibility_penalty": 0 to 25,
  "can_upload": true or false,
  "red_flags_found": ["flag1", "flag2"],
  "severity": "low", "medium" or "high"
}

credibility_penalty: 0 if genuine crime, 5-15 if suspicious crime, 15-25 if non-crime or fabricated.
can_upload: false if is_fake is true.`

func buildPrompt(req *AnalysisRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CRIME REPORT TO ANALYZE:\n")
	fmt.Fprintf(&b, "Description: %s\n", req.ReportText)
	fmt.Fprintf(&b, "Location: %s\n", orUnknown(req.Location))
	fmt.Fprintf(&b, "Time: %s\n", orUnknown(req.TimeOfOccurrence))
	fmt.Fprintf(&b, "Report Length: %d words\n\n", len(strings.Fields(req.ReportText)))
	fmt.Fprintf(&b, "REPORTER PROFILE:\n")
	fmt.Fprintf(&b, "- Credibility Score: %d/100\n", req.Credibility)
	fmt.Fprintf(&b, "- Reporter ID: %s\n", orUnknown(req.ReporterID))
	return b.String()
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return s
}

// jsonObjectPattern pulls the outermost JSON object from a response that may
// be wrapped in prose or a markdown fence despite instructions.
var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

func parseAnalysis(raw string) (*Analysis, error) {
	match := jsonObjectPattern.FindString(raw)
	if match == "" {
		return nil, fmt.Errorf("%w: no JSON object in output", ErrParse)
	}

	var a Analysis
	if err := json.Unmarshal([]byte(match), &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if a.Confidence < 0 || a.Confidence > 1 {
		return nil, fmt.Errorf("%w: confidence %v out of range", ErrParse, a.Confidence)
	}
	if a.CredibilityPenalty < 0 {
		a.CredibilityPenalty = 0
	}
	if a.CredibilityPenalty > 25 {
		a.CredibilityPenalty = 25
	}
	return &a, nil
}
