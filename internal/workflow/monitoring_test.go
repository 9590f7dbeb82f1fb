package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clientpulse/pulse-core/internal/domain/entities"
)

func staticSearch(hits []SourceHit, err error) SourceSearchFunc {
	return func(ctx context.Context, account *entities.Account, term string) ([]SourceHit, error) {
		return hits, err
	}
}

func TestMonitoring_IngestsEveryHit(t *testing.T) {
	f := newFixture(t)
	f.seedAccount(t)

	hits := []SourceHit{
		{Title: "Acme expands into APAC", URL: "https://example.com/news/1", SourceType: entities.SourceNews, Themes: []string{"growth"}},
		{Title: "Acme hiring 200 engineers", URL: "https://example.com/jobs/1", SourceType: entities.SourceJobPosting, Themes: []string{"growth"}},
	}
	p := NewMonitoringProcess(f.engine, f.store, staticSearch(hits, nil), f.ingestion)

	result := p.Run(context.Background(), "t1", "acct-1", "Acme expansion")

	require.Equal(t, StatusCompleted, result.Status)
	assert.Equal(t, 2, result.Hits)
	assert.Equal(t, 0, result.Skipped)
	require.Len(t, result.Ingestions, 2)
	for _, ing := range result.Ingestions {
		assert.Equal(t, StatusCompleted, ing.Status)
	}

	signals, err := f.store.ListSignals(context.Background(), "t1", "acct-1", 0)
	require.NoError(t, err)
	assert.Len(t, signals, 2)
	for _, s := range signals {
		assert.Equal(t, "Acme expansion", s.SearchTerm)
	}
}

func TestMonitoring_SkipsAlreadySeenURLs(t *testing.T) {
	f := newFixture(t)
	f.seedAccount(t)

	hits := []SourceHit{
		{Title: "Acme expands into APAC", URL: "https://example.com/news/1", SourceType: entities.SourceNews},
	}
	p := NewMonitoringProcess(f.engine, f.store, staticSearch(hits, nil), f.ingestion)

	first := p.Run(context.Background(), "t1", "acct-1", "Acme")
	require.Equal(t, StatusCompleted, first.Status)
	require.Len(t, first.Ingestions, 1)

	// The same article rediscovered on the next sweep is not re-ingested.
	second := p.Run(context.Background(), "t1", "acct-1", "Acme")
	require.Equal(t, StatusCompleted, second.Status)
	assert.Equal(t, 1, second.Skipped)
	assert.Empty(t, second.Ingestions)
}

func TestMonitoring_SearchFailure(t *testing.T) {
	f := newFixture(t)
	f.seedAccount(t)

	p := NewMonitoringProcess(f.engine, f.store, staticSearch(nil, errors.New("provider down")), f.ingestion)

	result := p.Run(context.Background(), "t1", "acct-1", "Acme")

	assert.Equal(t, StatusFailed, result.Status)
	assert.Empty(t, result.Ingestions)
}

func TestMonitoring_UnknownAccount(t *testing.T) {
	f := newFixture(t)

	p := NewMonitoringProcess(f.engine, f.store, staticSearch(nil, nil), f.ingestion)

	result := p.Run(context.Background(), "t1", "acct-missing", "Acme")

	assert.Equal(t, StatusFailed, result.Status)
}
