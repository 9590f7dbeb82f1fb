package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clientpulse/pulse-core/internal/domain/entities"
	"github.com/clientpulse/pulse-core/internal/domain/mocks"
	"github.com/clientpulse/pulse-core/internal/domain/ports"
	"github.com/clientpulse/pulse-core/internal/domain/services"
)

// fixture wires a full process graph over mocks for workflow tests.
type fixture struct {
	engine    *Engine
	store     *mocks.DocumentStore
	narrative *mocks.NarrativeClient
	notifier  *mocks.Notifier
	scoring   *services.ScoringEngine
	discovery *DiscoveryProcess
	ingestion *IngestionProcess
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := mocks.NewDocumentStore()
	narrative := &mocks.NarrativeClient{
		Card: &ports.Card{
			Title:            "Expansion play at Acme",
			Narrative:        "Acme is expanding into APAC and needs tooling.",
			KeyPoints:        []string{"new regional HQ"},
			ActionItems:      []string{"reach out to the VP of Ops"},
			StakeholderHints: []string{"VP Operations"},
			Breakdown:        entities.ScoreBreakdown{Impact: 80, Urgency: 70, Fit: 75, Access: 60, Feasibility: 85, Confidence: 70},
		},
		Variants: []entities.OutreachVariant{
			{Channel: "email", Tone: "professional", Subject: "APAC expansion", Body: "Congrats on the expansion."},
		},
	}

	engine := NewEngine()
	evidence := services.NewEvidenceService(&mocks.Embedder{Embedding: []float32{0.1, 0.2}}, &mocks.EvidenceDB{})
	scoring := services.NewScoringEngine(store)
	discovery := NewDiscoveryProcess(engine, store, evidence, scoring, narrative)
	ingestion := NewIngestionProcess(engine, store, discovery)

	return &fixture{
		engine:    engine,
		store:     store,
		narrative: narrative,
		notifier:  &mocks.Notifier{},
		scoring:   scoring,
		discovery: discovery,
		ingestion: ingestion,
	}
}

func (f *fixture) seedAccount(t *testing.T) *entities.Account {
	t.Helper()
	account := &entities.Account{
		ID:          "acct-1",
		TenantID:    "t1",
		Name:        "Acme Corp",
		Domain:      "acme.example",
		OwnerUserID: "am-1",
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, f.store.SaveAccount(context.Background(), account))
	return account
}

func (f *fixture) seedSignal(t *testing.T) *entities.Signal {
	t.Helper()
	signal := &entities.Signal{
		ID:             "sig-test00000001",
		TenantID:       "t1",
		AccountID:      "acct-1",
		Title:          "Acme expands into APAC",
		Description:    "New regional HQ announced",
		SourceType:     entities.SourceNews,
		SourceURL:      "https://example.com/news/1",
		Themes:         []string{"growth"},
		WorkflowStatus: entities.SignalIngested,
		CreatedAt:      time.Now().UTC(),
	}
	require.NoError(t, f.store.UpsertSignal(context.Background(), signal))
	return signal
}

func (f *fixture) seedDraftOpportunity(t *testing.T) *entities.Opportunity {
	t.Helper()
	opp := &entities.Opportunity{
		ID:         "opp-test00000001",
		TenantID:   "t1",
		AccountID:  "acct-1",
		SignalID:   "sig-test00000001",
		Title:      "Expansion play at Acme",
		Theme:      "growth",
		Status:     entities.StatusDraft,
		Score:      74.5,
		AssignedTo: "am-1",
		Version:    1,
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, f.store.CreateOpportunity(context.Background(), opp))
	return opp
}
