package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clientpulse/pulse-core/internal/domain/entities"
)

func TestDiscovery_CreatesDraftOpportunity(t *testing.T) {
	f := newFixture(t)
	f.seedAccount(t)
	signal := f.seedSignal(t)

	result := f.discovery.Run(context.Background(), "t1", "acct-1", signal.ID)

	require.Equal(t, StatusCompleted, result.Status)
	require.NotEmpty(t, result.OpportunityID)
	assert.Equal(t, 74.5, result.Score)
	assert.Equal(t, 0.0, result.FeedbackPenalty)

	opp, err := f.store.GetOpportunity(context.Background(), "t1", "acct-1", result.OpportunityID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusDraft, opp.Status)
	assert.Equal(t, "Expansion play at Acme", opp.Title)
	assert.Equal(t, "growth", opp.Theme)
	assert.Equal(t, signal.ID, opp.SignalID)
	assert.Equal(t, "am-1", opp.AssignedTo)
	assert.NotEmpty(t, opp.DraftOutreach)

	stored, err := f.store.GetSignal(context.Background(), "t1", "acct-1", signal.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.SignalProcessed, stored.WorkflowStatus)
}

func TestDiscovery_FeedbackPenaltyLowersScore(t *testing.T) {
	f := newFixture(t)
	f.seedAccount(t)
	signal := f.seedSignal(t)

	require.NoError(t, f.scoring.RecordRejection(context.Background(), "t1", &entities.RejectionRecord{
		AccountID: "acct-1",
		Theme:     "growth",
		UserID:    "am-1",
	}))

	result := f.discovery.Run(context.Background(), "t1", "acct-1", signal.ID)

	require.Equal(t, StatusCompleted, result.Status)
	assert.Greater(t, result.FeedbackPenalty, 0.0)
	assert.Less(t, result.Score, 74.5)
}

func TestDiscovery_MissingSignalFails(t *testing.T) {
	f := newFixture(t)
	f.seedAccount(t)

	result := f.discovery.Run(context.Background(), "t1", "acct-1", "sig-missing")

	assert.Equal(t, StatusFailed, result.Status)
	assert.Empty(t, result.OpportunityID)
}

func TestDiscovery_CardFailureMarksSignalFailed(t *testing.T) {
	f := newFixture(t)
	f.seedAccount(t)
	signal := f.seedSignal(t)
	f.narrative.CardErr = errors.New("model overloaded")

	result := f.discovery.Run(context.Background(), "t1", "acct-1", signal.ID)

	assert.Equal(t, StatusFailed, result.Status)

	stored, err := f.store.GetSignal(context.Background(), "t1", "acct-1", signal.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.SignalFailed, stored.WorkflowStatus)
}

func TestDiscovery_OutreachFailureIsDegradable(t *testing.T) {
	f := newFixture(t)
	f.seedAccount(t)
	signal := f.seedSignal(t)
	f.narrative.OutreachErr = errors.New("model overloaded")

	result := f.discovery.Run(context.Background(), "t1", "acct-1", signal.ID)

	require.Equal(t, StatusCompleted, result.Status)

	opp, err := f.store.GetOpportunity(context.Background(), "t1", "acct-1", result.OpportunityID)
	require.NoError(t, err)
	assert.Empty(t, opp.DraftOutreach)
}

func TestDiscovery_EvidenceReachesCardRequest(t *testing.T) {
	f := newFixture(t)
	f.seedAccount(t)
	signal := f.seedSignal(t)

	result := f.discovery.Run(context.Background(), "t1", "acct-1", signal.ID)

	require.Equal(t, StatusCompleted, result.Status)
	require.Len(t, f.narrative.CardRequests, 1)
	req := f.narrative.CardRequests[0]
	assert.Equal(t, "Acme Corp", req.AccountName)
	assert.Equal(t, signal.Title, req.SignalTitle)
	assert.Equal(t, []string{"growth"}, req.Themes)
}
