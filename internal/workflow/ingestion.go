package workflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/clientpulse/pulse-core/internal/domain/entities"
	"github.com/clientpulse/pulse-core/internal/domain/ports"
)

// IngestionProcess persists a raw signal and hands it to discovery. The
// signal is durable before any downstream work starts, so a discovery crash
// never loses the signal itself.
type IngestionProcess struct {
	engine    *Engine
	store     ports.DocumentStore
	discovery *DiscoveryProcess
}

// NewIngestionProcess creates an ingestion process.
func NewIngestionProcess(engine *Engine, store ports.DocumentStore, discovery *DiscoveryProcess) *IngestionProcess {
	return &IngestionProcess{
		engine:    engine,
		store:     store,
		discovery: discovery,
	}
}

// Run ingests one signal: persist it as pending, move it through processing
// to ingested, then run discovery as a child. A discovery failure does not
// fail ingestion; the signal is already durable and the discovery outcome is
// embedded in the result.
func (p *IngestionProcess) Run(ctx context.Context, signal *entities.Signal) IngestionResult {
	if signal.ID == "" {
		signal.ID = NewSignalID()
	}
	runID := IngestionRunID(signal.ID)
	ctx, release := p.engine.Spawn(ctx, runID)
	defer release()

	log := slog.With("run_id", runID, "signal_id", signal.ID, "account_id", signal.AccountID)
	log.Info("ingesting signal", "source_type", signal.SourceType)

	now := time.Now().UTC()
	if signal.CreatedAt.IsZero() {
		signal.CreatedAt = now
	}
	signal.UpdatedAt = now
	signal.WorkflowStatus = entities.SignalPending

	if err := p.store.UpsertSignal(ctx, signal); err != nil {
		log.Error("persisting signal failed", "error", err)
		return IngestionResult{
			Result:     failed(runID, "persisting signal: "+err.Error()),
			SignalID:   signal.ID,
			SourceType: signal.SourceType,
		}
	}

	if err := p.store.UpdateSignalStatus(ctx, signal.TenantID, signal.AccountID, signal.ID, entities.SignalProcessing); err != nil {
		log.Error("marking signal processing failed", "error", err)
		return IngestionResult{
			Result:     failed(runID, "marking signal processing: "+err.Error()),
			SignalID:   signal.ID,
			SourceType: signal.SourceType,
		}
	}

	if err := p.store.UpdateSignalStatus(ctx, signal.TenantID, signal.AccountID, signal.ID, entities.SignalIngested); err != nil {
		log.Error("marking signal ingested failed", "error", err)
		return IngestionResult{
			Result:     failed(runID, "marking signal ingested: "+err.Error()),
			SignalID:   signal.ID,
			SourceType: signal.SourceType,
		}
	}

	discovery := p.discovery.Run(ctx, signal.TenantID, signal.AccountID, signal.ID)
	if discovery.Status != StatusCompleted {
		log.Warn("discovery did not complete", "discovery_status", discovery.Status, "error", discovery.Err)
	}

	return IngestionResult{
		Result:     completed(runID),
		SignalID:   signal.ID,
		SourceType: signal.SourceType,
		Discovery:  &discovery,
	}
}
