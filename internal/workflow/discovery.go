package workflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/clientpulse/pulse-core/internal/domain/entities"
	"github.com/clientpulse/pulse-core/internal/domain/ports"
	"github.com/clientpulse/pulse-core/internal/domain/services"
)

// Per-step deadlines. Store reads are quick; evidence retrieval embeds and
// searches; narrative generation is the slowest call in the pipeline.
const (
	storeStepTimeout     = 30 * time.Second
	evidenceStepTimeout  = 60 * time.Second
	narrativeStepTimeout = 90 * time.Second
)

// DiscoveryProcess turns one ingested signal into a scored draft
// opportunity: gather evidence, generate the card, score it against the
// account's rejection history, persist the draft and attach outreach.
type DiscoveryProcess struct {
	engine    *Engine
	store     ports.DocumentStore
	evidence  *services.EvidenceService
	scoring   *services.ScoringEngine
	narrative ports.NarrativeClient
}

// NewDiscoveryProcess creates a discovery process.
func NewDiscoveryProcess(
	engine *Engine,
	store ports.DocumentStore,
	evidence *services.EvidenceService,
	scoring *services.ScoringEngine,
	narrative ports.NarrativeClient,
) *DiscoveryProcess {
	return &DiscoveryProcess{
		engine:    engine,
		store:     store,
		evidence:  evidence,
		scoring:   scoring,
		narrative: narrative,
	}
}

// Run executes discovery for one signal. Evidence retrieval and outreach
// generation are degradable; everything else fails the run. On success the
// opportunity exists as a draft at version 1 and the signal is processed.
func (p *DiscoveryProcess) Run(ctx context.Context, tenantID, accountID, signalID string) DiscoveryResult {
	runID := DiscoveryRunID(signalID)
	ctx, release := p.engine.Spawn(ctx, runID)
	defer release()

	log := slog.With("run_id", runID, "signal_id", signalID, "account_id", accountID)
	log.Info("starting discovery")

	signal, account, err := p.loadInputs(ctx, tenantID, accountID, signalID)
	if err != nil {
		log.Error("loading discovery inputs failed", "error", err)
		p.markSignalFailed(tenantID, accountID, signalID)
		return DiscoveryResult{Result: failed(runID, err.Error()), SignalID: signalID}
	}

	evidenceCtx, cancel := context.WithTimeout(ctx, evidenceStepTimeout)
	evidence := p.evidence.Retrieve(evidenceCtx, signal, []string{accountID}, services.DefaultEvidenceLimit)
	cancel()

	cardCtx, cancel := context.WithTimeout(ctx, narrativeStepTimeout)
	card, err := p.narrative.GenerateCard(cardCtx, ports.CardRequest{
		TenantID:      tenantID,
		AccountID:     accountID,
		AccountName:   account.Name,
		SignalID:      signal.ID,
		SignalTitle:   signal.Title,
		SignalSummary: signal.Description,
		SourceType:    signal.SourceType,
		Themes:        signal.EffectiveThemes(),
		Evidence:      evidence,
	})
	cancel()
	if err != nil {
		log.Error("generating opportunity card failed", "error", err)
		p.markSignalFailed(tenantID, accountID, signalID)
		return DiscoveryResult{Result: failed(runID, "generating card: "+err.Error()), SignalID: signalID}
	}

	crossSources := entities.CrossSourceCount(signal, evidence)
	scored := p.scoring.ScoreWithFeedback(ctx, tenantID, accountID, signal.PrimaryTheme(), signal.SourceType, card.Breakdown, crossSources)

	now := time.Now().UTC()
	opp := &entities.Opportunity{
		ID:                NewOpportunityID(),
		TenantID:          tenantID,
		AccountID:         accountID,
		SignalID:          signal.ID,
		Title:             card.Title,
		Description:       signal.Description,
		Narrative:         card.Narrative,
		KeyPoints:         card.KeyPoints,
		ActionItems:       card.ActionItems,
		StakeholderHints:  card.StakeholderHints,
		Theme:             signal.PrimaryTheme(),
		Status:            entities.StatusDraft,
		Score:             scored.Score,
		Breakdown:         scored.Breakdown,
		FeedbackPenalty:   scored.FeedbackPenalty,
		SourceReliability: scored.SourceReliability,
		AssignedTo:        account.OwnerUserID,
		Version:           1,
		WorkflowRunID:     runID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	createCtx, cancel := context.WithTimeout(ctx, storeStepTimeout)
	err = p.store.CreateOpportunity(createCtx, opp)
	cancel()
	if err != nil {
		log.Error("persisting opportunity failed", "error", err)
		p.markSignalFailed(tenantID, accountID, signalID)
		return DiscoveryResult{Result: failed(runID, "persisting opportunity: "+err.Error()), SignalID: signalID}
	}

	p.attachOutreach(ctx, account, opp, log)

	statusCtx, cancel := context.WithTimeout(ctx, storeStepTimeout)
	err = p.store.UpdateSignalStatus(statusCtx, tenantID, accountID, signalID, entities.SignalProcessed)
	cancel()
	if err != nil {
		log.Error("marking signal processed failed", "error", err)
		return DiscoveryResult{Result: failed(runID, "marking signal processed: "+err.Error()), SignalID: signalID, OpportunityID: opp.ID}
	}

	p.logCreation(tenantID, opp)
	log.Info("discovery complete", "opportunity_id", opp.ID, "score", scored.Score, "penalty", scored.FeedbackPenalty)

	return DiscoveryResult{
		Result:          completed(runID),
		SignalID:        signalID,
		OpportunityID:   opp.ID,
		Score:           scored.Score,
		FeedbackPenalty: scored.FeedbackPenalty,
	}
}

func (p *DiscoveryProcess) loadInputs(ctx context.Context, tenantID, accountID, signalID string) (*entities.Signal, *entities.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, storeStepTimeout)
	defer cancel()

	signal, err := p.store.GetSignal(ctx, tenantID, accountID, signalID)
	if err != nil {
		return nil, nil, err
	}
	account, err := p.store.GetAccount(ctx, tenantID, accountID)
	if err != nil {
		return nil, nil, err
	}
	return signal, account, nil
}

// attachOutreach drafts outreach variants and writes them onto the freshly
// created opportunity. Generation and the write are both degradable; a
// version conflict means someone else already moved the opportunity on, in
// which case the draft is simply dropped.
func (p *DiscoveryProcess) attachOutreach(ctx context.Context, account *entities.Account, opp *entities.Opportunity, log *slog.Logger) {
	outreachCtx, cancel := context.WithTimeout(ctx, narrativeStepTimeout)
	defer cancel()

	variants, err := p.narrative.GenerateOutreach(outreachCtx, ports.OutreachRequest{
		AccountName:      account.Name,
		OpportunityTitle: opp.Title,
		Summary:          opp.Narrative,
		StakeholderHints: opp.StakeholderHints,
	})
	if err != nil {
		log.Warn("generating outreach failed, continuing without drafts", "error", err)
		return
	}
	if len(variants) == 0 {
		return
	}

	opp.DraftOutreach = variants
	opp.UpdatedAt = time.Now().UTC()
	if err := p.store.UpdateOpportunity(outreachCtx, opp); err != nil {
		log.Warn("attaching outreach failed", "error", err)
	}
}

// markSignalFailed is best-effort cleanup on a failed run. It uses a fresh
// context because the run context may already be cancelled.
func (p *DiscoveryProcess) markSignalFailed(tenantID, accountID, signalID string) {
	ctx, cancel := context.WithTimeout(context.Background(), storeStepTimeout)
	defer cancel()
	if err := p.store.UpdateSignalStatus(ctx, tenantID, accountID, signalID, entities.SignalFailed); err != nil {
		slog.Warn("marking signal failed errored", "signal_id", signalID, "error", err)
	}
}

func (p *DiscoveryProcess) logCreation(tenantID string, opp *entities.Opportunity) {
	ctx, cancel := context.WithTimeout(context.Background(), storeStepTimeout)
	defer cancel()
	entry := &entities.AuditEntry{
		Action:     "opportunity_created",
		EntityType: "opportunity",
		EntityID:   opp.ID,
		AccountID:  opp.AccountID,
		Details: map[string]any{
			"signal_id": opp.SignalID,
			"score":     opp.Score,
			"theme":     opp.Theme,
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := p.store.LogAction(ctx, entry); err != nil {
		slog.Warn("audit logging failed", "action", entry.Action, "entity_id", entry.EntityID, "error", err)
	}
}
