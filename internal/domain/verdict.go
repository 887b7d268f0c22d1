package domain

// Crime categories produced by the keyword rule engine and fallback models.
const (
	CategoryArmedRobbery     = "Armed Robbery"
	CategoryArson            = "Arson"
	CategoryAssault          = "Assault"
	CategoryBurglary         = "Burglary"
	CategoryDrugOffense      = "Drug Offense"
	CategoryFraud            = "Fraud"
	CategoryMurder           = "Murder" // maximal severity; kidnapping escalates here
	CategoryRape             = "Rape"
	CategorySexualHarassment = "Sexual Harassment"
	CategoryTheft            = "Theft"
	CategoryVandalism        = "Vandalism"
	CategoryUnknown          = "Unknown"
)

// Detection tags attached to a ClassificationVerdict.
const (
	TagKidnappingOverride = "kidnapping-override"
	TagMinorInvolved      = "minor-involved"
	TagWeaponDetected     = "weapon-detected"
)

// Verification tiers, recorded on every FakeVerdict.
const (
	TierML             = "ml"
	TierLLM            = "llm"
	TierHeuristic      = "heuristic"
	TierSafetyOverride = "safety-override"
)

// ClassificationVerdict is the crime-category answer for a single report.
// Produced exactly once, never mutated.
type ClassificationVerdict struct {
	Category          string   `json:"crime_type"`
	Confidence        float64  `json:"confidence"`
	Reasoning         string   `json:"reasoning"`
	Tags              []string `json:"tags,omitempty"`
	ExtractedLocation string   `json:"extracted_location,omitempty"`
	ExtractedDate     string   `json:"extracted_date,omitempty"`
	ExtractedTime     string   `json:"extracted_time,omitempty"`
}

// HasTag reports whether the verdict carries the given detection tag.
func (v *ClassificationVerdict) HasTag(tag string) bool {
	for _, t := range v.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// FakeVerdict is the fabricated/genuine answer for a single report.
// CredibilityDelta is signed: positive is a penalty, negative a reward,
// bounded to [-25, 25].
type FakeVerdict struct {
	IsFake           bool     `json:"is_fake"`
	Confidence       float64  `json:"confidence"`
	CredibilityDelta int      `json:"credibility_delta"`
	Reasoning        string   `json:"reasoning"`
	Tier             string   `json:"tier"`
	Reasons          []string `json:"reasons,omitempty"`
	CanUpload        bool     `json:"can_upload"`
}

// Risk levels for escalation verdicts.
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)

// BaseRiskPrediction is the three-way classification returned by the external
// escalation risk oracle, before overrides.
type BaseRiskPrediction struct {
	Risk              string             `json:"risk"`
	Confidence        float64            `json:"confidence"`
	Probabilities     map[string]float64 `json:"probabilities"`
	UnknownCategories int                `json:"unknown_categories"`
}

// EscalationVerdict is the final urgency answer after deterministic overrides.
type EscalationVerdict struct {
	Risk          string             `json:"predicted_risk"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities"`
	Reasoning     string             `json:"reasoning"`
	Overridden    bool               `json:"overridden"`
}
