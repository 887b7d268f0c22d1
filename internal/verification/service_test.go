//nolint:testpackage // wiring internals are exercised directly
package verification

import (
	"context"
	"errors"
	"testing"

	"github.com/guardline/report-verifier/internal/classifier"
	"github.com/guardline/report-verifier/internal/credibility"
	"github.com/guardline/report-verifier/internal/domain"
	"github.com/guardline/report-verifier/internal/mlclient"
	"github.com/guardline/report-verifier/internal/suspicion"
)

type fakeStore struct {
	verifications   []*domain.VerificationRecord
	classifications map[string]*domain.ClassificationVerdict
	quarantined     []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{classifications: make(map[string]*domain.ClassificationVerdict)}
}

func (f *fakeStore) SaveVerification(_ context.Context, rec *domain.VerificationRecord) error {
	f.verifications = append(f.verifications, rec)
	return nil
}

func (f *fakeStore) UpdateClassification(_ context.Context, reportID string, v *domain.ClassificationVerdict) error {
	f.classifications[reportID] = v
	return nil
}

func (f *fakeStore) Quarantine(_ context.Context, report *domain.Report, _ *domain.FakeVerdict) error {
	f.quarantined = append(f.quarantined, report.ID)
	return nil
}

func newService(ml MLPredictor, store *fakeStore, ledgerStore *credibility.MemoryStore) *Service {
	cascade := NewCascade(ml, nil, suspicion.NewScorer(nil), nil)
	return NewService(
		cascade,
		credibility.NewLedger(ledgerStore, nil),
		classifier.New(nil),
		store,
		nil,
		nil,
		nil,
	)
}

func TestVerifyReport_GenuineReportIsClassifiedAndPersisted(t *testing.T) {
	store := newFakeStore()
	ml := &stubML{resp: &mlclient.PredictResponse{Label: "genuine", FakeProbability: 0.96}}
	svc := newService(ml, store, credibility.NewMemoryStore())

	rep := &domain.Report{
		ID:         "rep-1",
		Text:       "A man with a knife robbed the corner shop on Elm Street this evening",
		ReporterID: "officer-1",
	}
	out, err := svc.VerifyReport(context.Background(), rep)
	if err != nil {
		t.Fatalf("VerifyReport() error = %v", err)
	}

	if out.Verdict.IsFake {
		t.Error("IsFake = true, want false")
	}
	if out.Classification == nil {
		t.Fatal("Classification = nil, want armed robbery verdict")
	}
	if out.Classification.Category != domain.CategoryArmedRobbery {
		t.Errorf("category = %q, want %q", out.Classification.Category, domain.CategoryArmedRobbery)
	}
	if len(store.verifications) != 1 {
		t.Errorf("verification records = %d, want 1", len(store.verifications))
	}
	if store.classifications["rep-1"] == nil {
		t.Error("classification not persisted")
	}
	if len(store.quarantined) != 0 {
		t.Errorf("quarantined = %v, want none", store.quarantined)
	}
}

func TestVerifyReport_FakeReportIsQuarantinedAndPenalized(t *testing.T) {
	store := newFakeStore()
	ml := &stubML{resp: &mlclient.PredictResponse{Label: "fake", FakeProbability: 0.97}}
	ledgerStore := credibility.NewMemoryStore()
	svc := newService(ml, store, ledgerStore)

	rep := &domain.Report{
		ID:         "rep-2",
		Text:       "I saw a thief but honestly nothing happened and nobody was there",
		ReporterID: "officer-2",
	}
	out, err := svc.VerifyReport(context.Background(), rep)
	if err != nil {
		t.Fatalf("VerifyReport() error = %v", err)
	}

	if !out.Verdict.IsFake {
		t.Fatal("IsFake = false, want true")
	}
	if out.NewCredibility != credibility.InitialScore-22 {
		t.Errorf("new credibility = %d, want %d", out.NewCredibility, credibility.InitialScore-22)
	}
	if len(store.quarantined) != 1 || store.quarantined[0] != "rep-2" {
		t.Errorf("quarantined = %v, want [rep-2]", store.quarantined)
	}
	if out.Classification != nil {
		t.Error("fake report must not be auto-classified")
	}
}

func TestVerifyReport_BlockedReporterRejectedBeforeClassification(t *testing.T) {
	store := newFakeStore()
	ml := &stubML{resp: &mlclient.PredictResponse{Label: "genuine", FakeProbability: 0.9}}
	ledgerStore := credibility.NewMemoryStore()
	ledgerStore.Seed("officer-3", 0)
	svc := newService(ml, store, ledgerStore)

	_, err := svc.VerifyReport(context.Background(), &domain.Report{
		ID:         "rep-3",
		Text:       "Someone stole my car from the driveway overnight",
		ReporterID: "officer-3",
	})
	if !errors.Is(err, credibility.ErrReporterBlocked) {
		t.Fatalf("error = %v, want ErrReporterBlocked", err)
	}
	if ml.calls != 0 {
		t.Errorf("ml calls = %d, want 0 (blocked before classification)", ml.calls)
	}
	if len(store.verifications) != 0 {
		t.Error("no verification record should be written for a blocked reporter")
	}
}

type fakeCache struct {
	verdicts map[string]*domain.FakeVerdict
	gets     int
}

func (f *fakeCache) Get(_ context.Context, reportID string) (*domain.FakeVerdict, error) {
	f.gets++
	return f.verdicts[reportID], nil
}

func (f *fakeCache) Set(_ context.Context, reportID string, v *domain.FakeVerdict) error {
	f.verdicts[reportID] = v
	return nil
}

func TestVerifyReport_CachedVerdictShortCircuits(t *testing.T) {
	ml := &stubML{resp: &mlclient.PredictResponse{Label: "genuine", FakeProbability: 0.96}}
	cache := &fakeCache{verdicts: make(map[string]*domain.FakeVerdict)}
	cascade := NewCascade(ml, nil, suspicion.NewScorer(nil), nil)
	svc := NewService(cascade, credibility.NewLedger(credibility.NewMemoryStore(), nil), classifier.New(nil), newFakeStore(), cache, nil, nil)

	rep := &domain.Report{
		ID:         "rep-4",
		Text:       "A man attacked a cyclist near the bridge this morning",
		ReporterID: "officer-4",
	}
	if _, err := svc.VerifyReport(context.Background(), rep); err != nil {
		t.Fatalf("first VerifyReport() error = %v", err)
	}
	if _, err := svc.VerifyReport(context.Background(), rep); err != nil {
		t.Fatalf("second VerifyReport() error = %v", err)
	}

	if ml.calls != 1 {
		t.Errorf("ml calls = %d, want 1 (second pass served from cache)", ml.calls)
	}
}
