package credibility

import (
	"context"
	"sync"
	"time"

	"github.com/guardline/report-verifier/internal/domain"
)

// MemoryStore is an in-process Store for tests and single-node deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*domain.CredibilityRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*domain.CredibilityRecord)}
}

func (m *MemoryStore) Get(_ context.Context, reporterID string) (*domain.CredibilityRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[reporterID]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *MemoryStore) ApplyDelta(_ context.Context, reporterID string, delta int, fake bool) (*domain.CredibilityRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[reporterID]
	if !ok {
		rec = &domain.CredibilityRecord{
			ReporterID: reporterID,
			Score:      InitialScore,
		}
		m.records[reporterID] = rec
	}

	rec.Score = Clamp(rec.Score - delta)
	rec.TotalReports++
	if fake {
		rec.FakeReports++
	}
	rec.UpdatedAt = time.Now().UTC()

	cp := *rec
	return &cp, nil
}

// Seed installs a record directly, bypassing delta arithmetic.
func (m *MemoryStore) Seed(reporterID string, score int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[reporterID] = &domain.CredibilityRecord{
		ReporterID: reporterID,
		Score:      Clamp(score),
		UpdatedAt:  time.Now().UTC(),
	}
}
