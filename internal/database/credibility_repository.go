package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/guardline/report-verifier/internal/credibility"
	"github.com/guardline/report-verifier/internal/domain"
)

// casAttempts bounds the compare-and-swap retry loop under contention.
const casAttempts = 5

var errCASConflict = errors.New("concurrent credibility update")

// CredibilityRepository persists reporter credibility records. It implements
// credibility.Store with optimistic concurrency: updates only land when the
// score is still the one that was read, so concurrent deltas never lose
// writes.
type CredibilityRepository struct {
	db *sqlx.DB
}

func NewCredibilityRepository(db *sqlx.DB) *CredibilityRepository {
	return &CredibilityRepository{db: db}
}

// Get retrieves the record for reporterID, or nil when unseen.
func (r *CredibilityRepository) Get(ctx context.Context, reporterID string) (*domain.CredibilityRecord, error) {
	var rec domain.CredibilityRecord
	query := r.db.Rebind(`
		SELECT reporter_id, score, total_reports, fake_reports, updated_at
		FROM reporter_credibility
		WHERE reporter_id = ?
	`)

	err := r.db.GetContext(ctx, &rec, query, reporterID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get credibility: %w", err)
	}
	return &rec, nil
}

// ApplyDelta subtracts delta from the reporter's score with clamping,
// creating the record at the initial score first if needed.
func (r *CredibilityRepository) ApplyDelta(ctx context.Context, reporterID string, delta int, fake bool) (*domain.CredibilityRecord, error) {
	for attempt := 0; attempt < casAttempts; attempt++ {
		rec, err := r.applyOnce(ctx, reporterID, delta, fake)
		if errors.Is(err, errCASConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return rec, nil
	}
	return nil, fmt.Errorf("apply credibility delta for %s: %w", reporterID, errCASConflict)
}

func (r *CredibilityRepository) applyOnce(ctx context.Context, reporterID string, delta int, fake bool) (*domain.CredibilityRecord, error) {
	rec, err := r.Get(ctx, reporterID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		if err := r.create(ctx, reporterID); err != nil {
			return nil, err
		}
		rec, err = r.Get(ctx, reporterID)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, fmt.Errorf("credibility record for %s vanished after create", reporterID)
		}
	}

	newScore := credibility.Clamp(rec.Score - delta)
	fakeIncrement := 0
	if fake {
		fakeIncrement = 1
	}
	now := time.Now().UTC()

	query := r.db.Rebind(`
		UPDATE reporter_credibility
		SET score = ?, total_reports = total_reports + 1,
		    fake_reports = fake_reports + ?, updated_at = ?
		WHERE reporter_id = ? AND score = ?
	`)
	res, err := r.db.ExecContext(ctx, query, newScore, fakeIncrement, now, reporterID, rec.Score)
	if err != nil {
		return nil, fmt.Errorf("update credibility: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update credibility: %w", err)
	}
	if affected == 0 {
		// Another writer moved the score between read and write.
		return nil, errCASConflict
	}

	rec.Score = newScore
	rec.TotalReports++
	rec.FakeReports += fakeIncrement
	rec.UpdatedAt = now
	return rec, nil
}

func (r *CredibilityRepository) create(ctx context.Context, reporterID string) error {
	query := r.db.Rebind(`
		INSERT INTO reporter_credibility (reporter_id, score, total_reports, fake_reports, updated_at)
		VALUES (?, ?, 0, 0, ?)
		ON CONFLICT (reporter_id) DO NOTHING
	`)
	if _, err := r.db.ExecContext(ctx, query, reporterID, credibility.InitialScore, time.Now().UTC()); err != nil {
		return fmt.Errorf("create credibility record: %w", err)
	}
	return nil
}
