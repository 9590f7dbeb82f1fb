package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clientpulse/pulse-core/internal/domain/entities"
	"github.com/clientpulse/pulse-core/internal/domain/mocks"
)

func testSignal() *entities.Signal {
	return &entities.Signal{
		ID:          "sig-1",
		TenantID:    "t1",
		Title:       "Acme expands into APAC",
		Description: "New regional HQ announced",
		SourceType:  entities.SourceNews,
		Themes:      []string{"growth"},
	}
}

func TestEvidenceService_Retrieve(t *testing.T) {
	db := &mocks.EvidenceDB{
		Evidence: []entities.Evidence{
			{ID: "ev-1", TenantID: "t1", Text: "regional hiring spike", Score: 0.9},
			{ID: "ev-2", TenantID: "t1", Text: "APAC partner announcement", Score: 0.8},
		},
	}
	svc := NewEvidenceService(&mocks.Embedder{Embedding: []float32{0.1, 0.2}}, db)

	found := svc.Retrieve(context.Background(), testSignal(), []string{"acct-1"}, 0)

	assert.Len(t, found, 2)
	assert.Equal(t, "ev-1", found[0].ID)
}

func TestEvidenceService_Retrieve_Dedupes(t *testing.T) {
	db := &mocks.EvidenceDB{
		Evidence: []entities.Evidence{
			{ID: "ev-1", TenantID: "t1", Score: 0.9},
			{ID: "ev-1", TenantID: "t1", Score: 0.7},
			{ID: "ev-2", TenantID: "t1", Score: 0.6},
		},
	}
	svc := NewEvidenceService(&mocks.Embedder{Embedding: []float32{0.1}}, db)

	found := svc.Retrieve(context.Background(), testSignal(), nil, 10)

	assert.Len(t, found, 2)
	assert.Equal(t, 0.9, found[0].Score)
}

func TestEvidenceService_Retrieve_EmbedFailureDegrades(t *testing.T) {
	db := &mocks.EvidenceDB{
		Evidence: []entities.Evidence{{ID: "ev-1", TenantID: "t1"}},
	}
	svc := NewEvidenceService(&mocks.Embedder{Err: errors.New("api down")}, db)

	found := svc.Retrieve(context.Background(), testSignal(), nil, 10)

	assert.Empty(t, found)
}

func TestEvidenceService_Retrieve_SearchFailureDegrades(t *testing.T) {
	db := &mocks.EvidenceDB{SearchErr: errors.New("collection missing")}
	svc := NewEvidenceService(&mocks.Embedder{Embedding: []float32{0.1}}, db)

	found := svc.Retrieve(context.Background(), testSignal(), nil, 10)

	assert.Empty(t, found)
}

func TestSignalQueryText(t *testing.T) {
	query := signalQueryText(testSignal())
	assert.Contains(t, query, "Acme expands into APAC")
	assert.Contains(t, query, "New regional HQ announced")
	assert.Contains(t, query, "growth")

	// Untagged signals fall back to the default theme set.
	bare := &entities.Signal{Title: "untitled"}
	assert.Contains(t, signalQueryText(bare), "market")
}
