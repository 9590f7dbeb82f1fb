package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clientpulse/pulse-core/internal/domain/entities"
)

func newSignalInput() *entities.Signal {
	return &entities.Signal{
		TenantID:    "t1",
		AccountID:   "acct-1",
		Title:       "Acme expands into APAC",
		Description: "New regional HQ announced",
		SourceType:  entities.SourceNews,
		SourceURL:   "https://example.com/news/1",
		Themes:      []string{"growth"},
	}
}

func TestIngestion_EndToEnd(t *testing.T) {
	f := newFixture(t)
	f.seedAccount(t)

	result := f.ingestion.Run(context.Background(), newSignalInput())

	require.Equal(t, StatusCompleted, result.Status)
	require.NotEmpty(t, result.SignalID)
	assert.Equal(t, entities.SourceNews, result.SourceType)

	// Discovery ran as a child and produced a draft opportunity.
	require.NotNil(t, result.Discovery)
	require.Equal(t, StatusCompleted, result.Discovery.Status)
	require.NotEmpty(t, result.Discovery.OpportunityID)

	stored, err := f.store.GetSignal(context.Background(), "t1", "acct-1", result.SignalID)
	require.NoError(t, err)
	assert.Equal(t, entities.SignalProcessed, stored.WorkflowStatus)
}

func TestIngestion_AssignsIDWhenMissing(t *testing.T) {
	f := newFixture(t)
	f.seedAccount(t)

	signal := newSignalInput()
	result := f.ingestion.Run(context.Background(), signal)

	assert.Equal(t, signal.ID, result.SignalID)
	assert.Contains(t, result.SignalID, "sig-")
}

func TestIngestion_StoreFailure(t *testing.T) {
	f := newFixture(t)
	f.seedAccount(t)
	f.store.UpsertSignalErr = errors.New("disk full")

	result := f.ingestion.Run(context.Background(), newSignalInput())

	assert.Equal(t, StatusFailed, result.Status)
	assert.Nil(t, result.Discovery)
}

func TestIngestion_CompletesDespiteDiscoveryFailure(t *testing.T) {
	f := newFixture(t)
	f.seedAccount(t)
	f.narrative.CardErr = errors.New("model overloaded")

	result := f.ingestion.Run(context.Background(), newSignalInput())

	// The signal is durable, so ingestion itself completed; the discovery
	// failure is reported inside the embedded result.
	require.Equal(t, StatusCompleted, result.Status)
	require.NotNil(t, result.Discovery)
	assert.Equal(t, StatusFailed, result.Discovery.Status)
}
