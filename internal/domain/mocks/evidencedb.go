package mocks

import (
	"context"

	"github.com/clientpulse/pulse-core/internal/domain/entities"
	"github.com/clientpulse/pulse-core/internal/domain/ports"
)

// EvidenceDB is a mock implementation of ports.EvidenceDB.
type EvidenceDB struct {
	Evidence  []entities.Evidence
	SearchErr error
	UpsertErr error
}

// EnsureCollection is a no-op.
func (m *EvidenceDB) EnsureCollection(ctx context.Context, vectorSize uint64) error { return nil }

// Close is a no-op.
func (m *EvidenceDB) Close() error { return nil }

// Upsert records the evidence or returns the configured error.
func (m *EvidenceDB) Upsert(ctx context.Context, evidence []entities.Evidence) error {
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	m.Evidence = append(m.Evidence, evidence...)
	return nil
}

// Search returns the configured evidence filtered by scope, or the
// configured error.
func (m *EvidenceDB) Search(ctx context.Context, embedding []float32, scope ports.SearchScope, limit int) ([]entities.Evidence, error) {
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	var out []entities.Evidence
	for _, ev := range m.Evidence {
		if scope.TenantID != "" && ev.TenantID != "" && ev.TenantID != scope.TenantID {
			continue
		}
		out = append(out, ev)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// Delete is a no-op or the configured error.
func (m *EvidenceDB) Delete(ctx context.Context, id string) error { return nil }
