// Package domain defines the core data model shared across the report
// verifier service.
package domain

import "time"

// Submission channels.
const (
	ChannelCitizen = "citizen"
	ChannelOfficer = "officer"
)

// Report statuses within the document store.
const (
	StatusPending  = "Pending"
	StatusVerified = "Verified"
	StatusFlagged  = "Flagged"
)

// Report is a free-text incident report as submitted. It is immutable once
// classified; the verifier only reads it.
type Report struct {
	ID               string     `db:"id"                 json:"id"`
	Text             string     `db:"description"        json:"description"`
	Location         string     `db:"location"           json:"location"`
	TimeOfOccurrence string     `db:"time_of_occurrence" json:"time_of_occurrence"`
	ReporterID       string     `db:"reporter_id"        json:"reporter_id"`
	Channel          string     `db:"channel"            json:"channel"`
	Status           string     `db:"status"             json:"status"`
	SubmittedAt      *time.Time `db:"submitted_at"       json:"submitted_at,omitempty"`
}

// CredibilityRecord tracks a reporter's trustworthiness over time.
// Score is an integer in [0,100]; reporters at 0 are blocked.
type CredibilityRecord struct {
	ReporterID   string    `db:"reporter_id"   json:"reporter_id"`
	Score        int       `db:"score"         json:"score"`
	TotalReports int       `db:"total_reports" json:"total_reports"`
	FakeReports  int       `db:"fake_reports"  json:"fake_reports"`
	UpdatedAt    time.Time `db:"updated_at"    json:"updated_at"`
}

// VerificationRecord is the classification metadata persisted per report.
type VerificationRecord struct {
	ReportID   string    `db:"report_id"  json:"report_id"`
	IsFake     bool      `db:"is_fake"    json:"is_fake"`
	Confidence float64   `db:"confidence" json:"confidence"`
	Reasoning  string    `db:"reasoning"  json:"reasoning"`
	Tier       string    `db:"tier"       json:"tier"`
	VerifiedAt time.Time `db:"verified_at" json:"verified_at"`
}
