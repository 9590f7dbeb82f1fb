package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/clientpulse/pulse-core/internal/domain/entities"
	"github.com/clientpulse/pulse-core/internal/domain/ports"
)

// crmCallTimeout bounds each per-system CRM call. Systems have independent
// rate limits, so one slow system must not starve the others.
const crmCallTimeout = 60 * time.Second

// DefaultActivationSystems is used when the caller names no systems.
var DefaultActivationSystems = []string{"salesforce"}

// ActivationProcess fans an approved opportunity out to the configured CRM
// systems. The transition to activation_requested is committed before any
// external call, so a crash mid-fan-out leaves an honest status behind.
type ActivationProcess struct {
	engine   *Engine
	store    ports.DocumentStore
	clients  map[string]ports.CRMClient
	notifier ports.Notifier
}

// NewActivationProcess creates an activation process over the given CRM
// clients, indexed by their system name.
func NewActivationProcess(engine *Engine, store ports.DocumentStore, clients []ports.CRMClient, notifier ports.Notifier) *ActivationProcess {
	indexed := make(map[string]ports.CRMClient, len(clients))
	for _, c := range clients {
		indexed[c.Name()] = c
	}
	return &ActivationProcess{
		engine:   engine,
		store:    store,
		clients:  indexed,
		notifier: notifier,
	}
}

// Run activates one approved opportunity in the named systems. All systems
// succeeding yields activated; any failure yields activation_partial, and
// only the successful systems get CRM records, so a retry targets just the
// failed ones.
func (p *ActivationProcess) Run(ctx context.Context, tenantID, accountID, opportunityID string, systems []string) ActivationResult {
	runID := ActivationRunID(opportunityID)
	ctx, release := p.engine.Spawn(ctx, runID)
	defer release()

	if len(systems) == 0 {
		systems = DefaultActivationSystems
	}

	log := slog.With("run_id", runID, "opportunity_id", opportunityID, "account_id", accountID)
	log.Info("activating opportunity", "systems", systems)

	opp, err := p.store.GetOpportunity(ctx, tenantID, accountID, opportunityID)
	if err != nil {
		log.Error("loading opportunity failed", "error", err)
		return ActivationResult{Result: failed(runID, "loading opportunity: "+err.Error()), OpportunityID: opportunityID}
	}

	if !entities.IsTransitionAllowed(opp.Status, entities.StatusActivationRequested) {
		return ActivationResult{
			Result:        failed(runID, fmt.Sprintf("opportunity is %s, not activatable", opp.Status)),
			OpportunityID: opportunityID,
		}
	}

	opp.Status = entities.StatusActivationRequested
	opp.UpdatedAt = time.Now().UTC()
	if err := p.store.UpdateOpportunity(ctx, opp); err != nil {
		log.Error("requesting activation failed", "error", err)
		return ActivationResult{Result: failed(runID, "requesting activation: "+err.Error()), OpportunityID: opportunityID}
	}

	outcomes := p.fanOut(ctx, opp, systems, log)

	finalStatus := entities.StatusActivated
	for _, outcome := range outcomes {
		if !outcome.OK {
			finalStatus = entities.StatusActivationPartial
			break
		}
	}

	now := time.Now().UTC()
	if opp.CRMRecords == nil {
		opp.CRMRecords = make(map[string]entities.CRMRecord)
	}
	for system, outcome := range outcomes {
		if outcome.OK {
			opp.CRMRecords[system] = entities.CRMRecord{RecordID: outcome.RecordID, ActivatedAt: now}
		}
	}
	opp.Status = finalStatus
	opp.CRMStatus = string(finalStatus)
	opp.UpdatedAt = now
	if err := p.store.UpdateOpportunity(ctx, opp); err != nil {
		log.Error("recording activation outcome failed", "error", err)
		return ActivationResult{
			Result:        failed(runID, "recording activation outcome: "+err.Error()),
			OpportunityID: opportunityID,
			Systems:       outcomes,
		}
	}

	p.audit(ctx, opp, outcomes, log)
	p.notify(ctx, opp, finalStatus, log)

	log.Info("activation finished", "final_status", finalStatus)

	return ActivationResult{
		Result:        completed(runID),
		OpportunityID: opportunityID,
		FinalStatus:   finalStatus,
		Systems:       outcomes,
	}
}

// fanOut calls every requested system concurrently with its own deadline
// and collects per-system outcomes. An unconfigured system is a failure for
// that system, never a panic.
func (p *ActivationProcess) fanOut(ctx context.Context, opp *entities.Opportunity, systems []string, log *slog.Logger) map[string]SystemActivation {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		outcomes = make(map[string]SystemActivation, len(systems))
	)

	payload := ports.TaskPayload{
		Subject:       opp.Title,
		Description:   opp.Narrative,
		OpportunityID: opp.ID,
		AccountID:     opp.AccountID,
	}

	for _, system := range systems {
		client, ok := p.clients[system]
		if !ok {
			outcomes[system] = SystemActivation{Err: "system not configured"}
			continue
		}

		wg.Add(1)
		go func(system string, client ports.CRMClient) {
			defer wg.Done()

			callCtx, cancel := context.WithTimeout(ctx, crmCallTimeout)
			defer cancel()

			record, err := client.CreateTask(callCtx, opp.AccountID, payload)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warn("crm task creation failed", "system", system, "error", err)
				outcomes[system] = SystemActivation{Err: err.Error()}
				return
			}
			outcomes[system] = SystemActivation{OK: true, RecordID: record.TaskID}
		}(system, client)
	}

	wg.Wait()
	return outcomes
}

func (p *ActivationProcess) audit(ctx context.Context, opp *entities.Opportunity, outcomes map[string]SystemActivation, log *slog.Logger) {
	details := map[string]any{"final_status": string(opp.Status)}
	for system, outcome := range outcomes {
		details["system_"+system] = outcome.OK
	}
	entry := &entities.AuditEntry{
		Action:     "opportunity_activated",
		EntityType: "opportunity",
		EntityID:   opp.ID,
		AccountID:  opp.AccountID,
		Details:    details,
		CreatedAt:  time.Now().UTC(),
	}
	if err := p.store.LogAction(ctx, entry); err != nil {
		log.Warn("audit logging failed", "action", entry.Action, "error", err)
	}
}

func (p *ActivationProcess) notify(ctx context.Context, opp *entities.Opportunity, finalStatus entities.OpportunityStatus, log *slog.Logger) {
	if p.notifier == nil || opp.AssignedTo == "" {
		return
	}
	severity := ports.SeveritySuccess
	if finalStatus != entities.StatusActivated {
		severity = ports.SeverityWarning
	}
	n := ports.Notification{
		UserID:   opp.AssignedTo,
		Title:    "CRM activation: " + opp.Title,
		Message:  "Activation finished with status " + string(finalStatus),
		Severity: severity,
	}
	if err := p.notifier.Notify(ctx, n); err != nil {
		log.Warn("notifying activation outcome failed", "error", err)
	}
}
