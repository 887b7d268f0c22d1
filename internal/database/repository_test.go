//nolint:testpackage // repositories are exercised against in-memory SQLite
package database

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/guardline/report-verifier/internal/credibility"
	"github.com/guardline/report-verifier/internal/domain"
)

func testDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Connect("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// One connection keeps the in-memory database alive across queries.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestCredibilityRepository_GetUnseenReturnsNil(t *testing.T) {
	repo := NewCredibilityRepository(testDB(t))

	rec, err := repo.Get(context.Background(), "officer-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec != nil {
		t.Errorf("rec = %+v, want nil for unseen reporter", rec)
	}
}

func TestCredibilityRepository_ApplyDelta(t *testing.T) {
	repo := NewCredibilityRepository(testDB(t))
	ctx := context.Background()

	// First delta creates the record at the initial score.
	rec, err := repo.ApplyDelta(ctx, "officer-1", 22, true)
	if err != nil {
		t.Fatalf("ApplyDelta() error = %v", err)
	}
	if rec.Score != credibility.InitialScore-22 {
		t.Errorf("score = %d, want %d", rec.Score, credibility.InitialScore-22)
	}
	if rec.TotalReports != 1 || rec.FakeReports != 1 {
		t.Errorf("counts = %d/%d, want 1/1", rec.TotalReports, rec.FakeReports)
	}

	// A reward adds back and does not count as fake.
	rec, err = repo.ApplyDelta(ctx, "officer-1", -5, false)
	if err != nil {
		t.Fatalf("ApplyDelta() error = %v", err)
	}
	if rec.Score != credibility.InitialScore-22+5 {
		t.Errorf("score = %d, want %d", rec.Score, credibility.InitialScore-22+5)
	}
	if rec.FakeReports != 1 {
		t.Errorf("fake reports = %d, want 1", rec.FakeReports)
	}

	// Clamping holds at both bounds.
	if rec, err = repo.ApplyDelta(ctx, "officer-1", 100, true); err != nil || rec.Score != 0 {
		t.Errorf("score = %d, err = %v, want clamp at 0", rec.Score, err)
	}
	if rec, err = repo.ApplyDelta(ctx, "officer-1", -500, false); err != nil || rec.Score != 100 {
		t.Errorf("score = %d, err = %v, want clamp at 100", rec.Score, err)
	}
}

func TestCredibilityRepository_ImplementsStore(t *testing.T) {
	var _ credibility.Store = NewCredibilityRepository(testDB(t))
}

func TestReportRepository_SaveAndGet(t *testing.T) {
	repo := NewReportRepository(testDB(t))
	ctx := context.Background()

	rep := &domain.Report{
		ID:         "rep-1",
		Text:       "A man stole a bicycle outside the library",
		Location:   "Main Street",
		ReporterID: "officer-1",
		Channel:    domain.ChannelCitizen,
	}
	if err := repo.Save(ctx, rep); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := repo.Get(ctx, "rep-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil {
		t.Fatal("Get() = nil, want saved report")
	}
	if got.Status != domain.StatusPending {
		t.Errorf("status = %q, want %q", got.Status, domain.StatusPending)
	}
	if got.Text != rep.Text {
		t.Errorf("text = %q, want %q", got.Text, rep.Text)
	}

	// Saving the same id again is a no-op, not an error.
	if err := repo.Save(ctx, rep); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}
}

func TestReportRepository_VerificationUpsert(t *testing.T) {
	repo := NewReportRepository(testDB(t))
	ctx := context.Background()

	rec := &domain.VerificationRecord{
		ReportID:   "rep-1",
		IsFake:     true,
		Confidence: 0.9,
		Reasoning:  "joke indicators",
		Tier:       domain.TierHeuristic,
	}
	if err := repo.SaveVerification(ctx, rec); err != nil {
		t.Fatalf("SaveVerification() error = %v", err)
	}

	rec.IsFake = false
	rec.Tier = domain.TierLLM
	if err := repo.SaveVerification(ctx, rec); err != nil {
		t.Fatalf("upsert SaveVerification() error = %v", err)
	}

	got, err := repo.GetVerification(ctx, "rep-1")
	if err != nil {
		t.Fatalf("GetVerification() error = %v", err)
	}
	if got == nil || got.IsFake || got.Tier != domain.TierLLM {
		t.Errorf("got = %+v, want updated record", got)
	}
}

func TestReportRepository_UpdateClassification(t *testing.T) {
	repo := NewReportRepository(testDB(t))
	ctx := context.Background()

	rep := &domain.Report{ID: "rep-1", Text: "x", ReporterID: "o-1", Channel: domain.ChannelOfficer}
	if err := repo.Save(ctx, rep); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	err := repo.UpdateClassification(ctx, "rep-1", &domain.ClassificationVerdict{
		Category:   domain.CategoryTheft,
		Confidence: 0.89,
		Reasoning:  "theft vocabulary matched",
	})
	if err != nil {
		t.Fatalf("UpdateClassification() error = %v", err)
	}

	got, err := repo.Get(ctx, "rep-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != domain.StatusVerified {
		t.Errorf("status = %q, want %q", got.Status, domain.StatusVerified)
	}
}

func TestReportRepository_QuarantineMovesReport(t *testing.T) {
	db := testDB(t)
	repo := NewReportRepository(db)
	ctx := context.Background()

	rep := &domain.Report{ID: "rep-9", Text: "lol jk", ReporterID: "o-2", Channel: domain.ChannelCitizen}
	if err := repo.Save(ctx, rep); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	verdict := &domain.FakeVerdict{IsFake: true, Confidence: 0.95, Reasoning: "joke", Tier: domain.TierHeuristic}
	if err := repo.Quarantine(ctx, rep, verdict); err != nil {
		t.Fatalf("Quarantine() error = %v", err)
	}

	got, err := repo.Get(ctx, "rep-9")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != nil {
		t.Error("report still present in live table after quarantine")
	}

	var count int
	if err := db.Get(&count, `SELECT COUNT(*) FROM flagged_reports WHERE id = 'rep-9'`); err != nil {
		t.Fatalf("count flagged: %v", err)
	}
	if count != 1 {
		t.Errorf("flagged rows = %d, want 1", count)
	}
}
