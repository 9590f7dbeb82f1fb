package workflow

import (
	"context"
	"errors"
	"log/slog"

	"github.com/clientpulse/pulse-core/internal/domain/entities"
	"github.com/clientpulse/pulse-core/internal/domain/ports"
)

// SourceHit is one candidate signal a source search surfaced for an account.
type SourceHit struct {
	Title       string
	Description string
	URL         string
	SourceType  entities.SourceType
	Themes      []string
}

// SourceSearchFunc searches external sources for fresh activity on one
// account. Implementations are injected so sweeps can run against any
// provider.
type SourceSearchFunc func(ctx context.Context, account *entities.Account, searchTerm string) ([]SourceHit, error)

// MonitoringProcess periodically sweeps external sources for an account and
// ingests every new hit. Hits are keyed by a URL-derived stable id, so a
// rediscovered article is skipped rather than ingested twice.
type MonitoringProcess struct {
	engine    *Engine
	store     ports.DocumentStore
	search    SourceSearchFunc
	ingestion *IngestionProcess
}

// NewMonitoringProcess creates a monitoring process.
func NewMonitoringProcess(engine *Engine, store ports.DocumentStore, search SourceSearchFunc, ingestion *IngestionProcess) *MonitoringProcess {
	return &MonitoringProcess{
		engine:    engine,
		store:     store,
		search:    search,
		ingestion: ingestion,
	}
}

// Run executes one sweep. Hits are ingested sequentially; one bad hit does
// not stop the sweep, and its failure is visible in the embedded results.
func (p *MonitoringProcess) Run(ctx context.Context, tenantID, accountID, searchTerm string) MonitoringResult {
	runID := MonitoringRunID(tenantID, accountID)
	ctx, release := p.engine.Spawn(ctx, runID)
	defer release()

	log := slog.With("run_id", runID, "account_id", accountID)
	log.Info("starting monitoring sweep", "search_term", searchTerm)

	account, err := p.store.GetAccount(ctx, tenantID, accountID)
	if err != nil {
		log.Error("loading account failed", "error", err)
		return MonitoringResult{Result: failed(runID, "loading account: "+err.Error()), AccountID: accountID}
	}

	hits, err := p.search(ctx, account, searchTerm)
	if err != nil {
		log.Error("source search failed", "error", err)
		return MonitoringResult{Result: failed(runID, "searching sources: "+err.Error()), AccountID: accountID}
	}

	result := MonitoringResult{
		Result:    completed(runID),
		AccountID: accountID,
		Hits:      len(hits),
	}

	for _, hit := range hits {
		signalID := StableSignalID(tenantID, accountID, hit.URL)

		_, err := p.store.GetSignal(ctx, tenantID, accountID, signalID)
		if err == nil {
			result.Skipped++
			continue
		}
		if !errors.Is(err, ports.ErrNotFound) {
			log.Warn("checking for existing signal failed", "signal_id", signalID, "error", err)
			continue
		}

		signal := &entities.Signal{
			ID:          signalID,
			TenantID:    tenantID,
			AccountID:   accountID,
			Title:       hit.Title,
			Description: hit.Description,
			SourceType:  hit.SourceType,
			SourceURL:   hit.URL,
			SearchTerm:  searchTerm,
			Themes:      hit.Themes,
		}
		ingested := p.ingestion.Run(ctx, signal)
		result.Ingestions = append(result.Ingestions, ingested)

		if ctx.Err() != nil {
			log.Warn("sweep cancelled mid-run", "error", ctx.Err())
			result.Result = failed(runID, "sweep cancelled: "+ctx.Err().Error())
			break
		}
	}

	log.Info("monitoring sweep finished", "hits", result.Hits, "skipped", result.Skipped, "ingested", len(result.Ingestions))
	return result
}
