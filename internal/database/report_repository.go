package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/guardline/report-verifier/internal/domain"
)

// ReportRepository persists reports, their verification records, and the
// quarantine table confirmed fakes are moved into.
type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Save upserts an incoming report in Pending status.
func (r *ReportRepository) Save(ctx context.Context, report *domain.Report) error {
	submittedAt := time.Now().UTC()
	if report.SubmittedAt != nil {
		submittedAt = *report.SubmittedAt
	}
	status := report.Status
	if status == "" {
		status = domain.StatusPending
	}

	query := r.db.Rebind(`
		INSERT INTO reports (id, description, location, time_of_occurrence, reporter_id, channel, status, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`)
	if _, err := r.db.ExecContext(ctx, query,
		report.ID, report.Text, report.Location, report.TimeOfOccurrence,
		report.ReporterID, report.Channel, status, submittedAt,
	); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

// Get retrieves one report by id, or nil when absent.
func (r *ReportRepository) Get(ctx context.Context, reportID string) (*domain.Report, error) {
	var report domain.Report
	query := r.db.Rebind(`
		SELECT id, description, location, time_of_occurrence, reporter_id, channel, status, submitted_at
		FROM reports
		WHERE id = ?
	`)
	err := r.db.GetContext(ctx, &report, query, reportID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	return &report, nil
}

// SaveVerification upserts the verification record for a report.
func (r *ReportRepository) SaveVerification(ctx context.Context, rec *domain.VerificationRecord) error {
	query := r.db.Rebind(`
		INSERT INTO verifications (report_id, is_fake, confidence, reasoning, tier, verified_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (report_id) DO UPDATE SET
			is_fake = excluded.is_fake,
			confidence = excluded.confidence,
			reasoning = excluded.reasoning,
			tier = excluded.tier,
			verified_at = excluded.verified_at
	`)
	if _, err := r.db.ExecContext(ctx, query,
		rec.ReportID, rec.IsFake, rec.Confidence, rec.Reasoning, rec.Tier, rec.VerifiedAt,
	); err != nil {
		return fmt.Errorf("save verification: %w", err)
	}
	return nil
}

// GetVerification retrieves the verification record for a report, or nil.
func (r *ReportRepository) GetVerification(ctx context.Context, reportID string) (*domain.VerificationRecord, error) {
	var rec domain.VerificationRecord
	query := r.db.Rebind(`
		SELECT report_id, is_fake, confidence, reasoning, tier, verified_at
		FROM verifications
		WHERE report_id = ?
	`)
	err := r.db.GetContext(ctx, &rec, query, reportID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get verification: %w", err)
	}
	return &rec, nil
}

// UpdateClassification writes the rule engine verdict onto a verified report
// and marks it Verified.
func (r *ReportRepository) UpdateClassification(ctx context.Context, reportID string, verdict *domain.ClassificationVerdict) error {
	query := r.db.Rebind(`
		UPDATE reports
		SET crime_type = ?, crime_confidence = ?, crime_reasoning = ?,
		    extracted_location = ?, extracted_date = ?, extracted_time = ?,
		    status = ?
		WHERE id = ?
	`)
	if _, err := r.db.ExecContext(ctx, query,
		verdict.Category, verdict.Confidence, verdict.Reasoning,
		verdict.ExtractedLocation, verdict.ExtractedDate, verdict.ExtractedTime,
		domain.StatusVerified, reportID,
	); err != nil {
		return fmt.Errorf("update classification: %w", err)
	}
	return nil
}

// Quarantine moves a confirmed fake into flagged_reports and removes it from
// the live table. The two statements run in one transaction so a report is
// never visible in both.
func (r *ReportRepository) Quarantine(ctx context.Context, report *domain.Report, verdict *domain.FakeVerdict) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("quarantine begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	insert := tx.Rebind(`
		INSERT INTO flagged_reports (id, description, location, time_of_occurrence, reporter_id, channel, confidence, reasoning, tier, flagged_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`)
	if _, err := tx.ExecContext(ctx, insert,
		report.ID, report.Text, report.Location, report.TimeOfOccurrence,
		report.ReporterID, report.Channel,
		verdict.Confidence, verdict.Reasoning, verdict.Tier, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("quarantine insert: %w", err)
	}

	del := tx.Rebind(`DELETE FROM reports WHERE id = ?`)
	if _, err := tx.ExecContext(ctx, del, report.ID); err != nil {
		return fmt.Errorf("quarantine delete: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("quarantine commit: %w", err)
	}
	return nil
}
