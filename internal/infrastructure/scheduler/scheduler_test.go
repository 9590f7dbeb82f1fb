package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clientpulse/pulse-core/internal/domain/entities"
	"github.com/clientpulse/pulse-core/internal/domain/mocks"
	"github.com/clientpulse/pulse-core/internal/domain/ports"
	"github.com/clientpulse/pulse-core/internal/domain/services"
	"github.com/clientpulse/pulse-core/internal/workflow"
)

func setupMonitoring(t *testing.T, store *mocks.DocumentStore, search workflow.SourceSearchFunc) *workflow.MonitoringProcess {
	t.Helper()

	engine := workflow.NewEngine()
	evidence := services.NewEvidenceService(&mocks.Embedder{Embedding: []float32{0.1}}, &mocks.EvidenceDB{})
	scoring := services.NewScoringEngine(store)
	narrative := &mocks.NarrativeClient{
		Card: &ports.Card{
			Title:     "Expansion play",
			Breakdown: entities.ScoreBreakdown{Impact: 60, Urgency: 60, Fit: 60, Access: 60, Feasibility: 60, Confidence: 60},
		},
	}
	discovery := workflow.NewDiscoveryProcess(engine, store, evidence, scoring, narrative)
	ingestion := workflow.NewIngestionProcess(engine, store, discovery)
	return workflow.NewMonitoringProcess(engine, store, search, ingestion)
}

func TestSweepAll(t *testing.T) {
	store := mocks.NewDocumentStore()
	ctx := context.Background()

	for _, id := range []string{"acct-1", "acct-2"} {
		require.NoError(t, store.SaveAccount(ctx, &entities.Account{
			ID:        id,
			TenantID:  "t1",
			Name:      "Account " + id,
			CreatedAt: time.Now(),
		}))
	}

	var searched []string
	search := func(ctx context.Context, account *entities.Account, term string) ([]workflow.SourceHit, error) {
		searched = append(searched, account.ID)
		return []workflow.SourceHit{
			{Title: "hit for " + account.ID, URL: "https://example.com/" + account.ID, SourceType: entities.SourceNews},
		}, nil
	}

	s := New(store, setupMonitoring(t, store, search), "t1", "")
	s.SweepAll(ctx)

	assert.ElementsMatch(t, []string{"acct-1", "acct-2"}, searched)

	// Each sweep ingested its hit.
	for _, id := range []string{"acct-1", "acct-2"} {
		signals, err := store.ListSignals(ctx, "t1", id, 0)
		require.NoError(t, err)
		assert.Len(t, signals, 1)
	}
}

func TestSweepAll_ContinuesPastFailedAccount(t *testing.T) {
	store := mocks.NewDocumentStore()
	ctx := context.Background()

	for _, id := range []string{"acct-1", "acct-2"} {
		require.NoError(t, store.SaveAccount(ctx, &entities.Account{
			ID:       id,
			TenantID: "t1",
			Name:     "Account " + id,
		}))
	}

	var searched []string
	search := func(ctx context.Context, account *entities.Account, term string) ([]workflow.SourceHit, error) {
		searched = append(searched, account.ID)
		return nil, assert.AnError
	}

	s := New(store, setupMonitoring(t, store, search), "t1", "expansion")
	s.SweepAll(ctx)

	// Both accounts were attempted despite every search failing.
	assert.Len(t, searched, 2)
}
