package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/clientpulse/pulse-core/internal/domain/entities"
	"github.com/clientpulse/pulse-core/internal/domain/ports"
	"github.com/clientpulse/pulse-core/internal/domain/services"
)

// DefaultReviewTimeout bounds how long a review-await holds an opportunity
// in pending_review before giving up without a decision.
const DefaultReviewTimeout = 24 * time.Hour

// casRetries bounds re-read-and-reapply attempts on a version conflict.
const casRetries = 3

// ReviewProcess parks an opportunity in pending_review and blocks until a
// human decision arrives, the timeout elapses or the run is cancelled. A
// timeout mutates nothing; the opportunity stays reviewable.
type ReviewProcess struct {
	engine   *Engine
	store    ports.DocumentStore
	scoring  *services.ScoringEngine
	notifier ports.Notifier
	timeout  time.Duration
}

// NewReviewProcess creates a review process. A non-positive timeout falls
// back to DefaultReviewTimeout.
func NewReviewProcess(engine *Engine, store ports.DocumentStore, scoring *services.ScoringEngine, notifier ports.Notifier, timeout time.Duration) *ReviewProcess {
	if timeout <= 0 {
		timeout = DefaultReviewTimeout
	}
	return &ReviewProcess{
		engine:   engine,
		store:    store,
		scoring:  scoring,
		notifier: notifier,
		timeout:  timeout,
	}
}

// Run moves the opportunity to pending_review and awaits exactly one
// decision. Approve, reject and refine resolve the opportunity; a rejection
// is also appended to the feedback memory so future scoring feels it. An
// unrecognized action still resolves the wait, leaving the opportunity in
// pending_review.
func (p *ReviewProcess) Run(ctx context.Context, tenantID, accountID, opportunityID string) ReviewResult {
	runID := ReviewRunID(tenantID, accountID, opportunityID)
	ctx, release := p.engine.Spawn(ctx, runID)
	defer release()

	log := slog.With("run_id", runID, "opportunity_id", opportunityID, "account_id", accountID)

	opp, err := p.store.GetOpportunity(ctx, tenantID, accountID, opportunityID)
	if err != nil {
		log.Error("loading opportunity failed", "error", err)
		return ReviewResult{Result: failed(runID, "loading opportunity: "+err.Error()), OpportunityID: opportunityID}
	}

	if opp.Status == entities.StatusDraft {
		opp, err = p.transition(ctx, opp, entities.StatusPendingReview, "")
		if err != nil {
			log.Error("entering pending_review failed", "error", err)
			return ReviewResult{Result: failed(runID, "entering pending_review: "+err.Error()), OpportunityID: opportunityID}
		}
	}
	if opp.Status != entities.StatusPendingReview {
		return ReviewResult{
			Result:        failed(runID, fmt.Sprintf("opportunity is %s, not reviewable", opp.Status)),
			OpportunityID: opportunityID,
		}
	}

	decisions := p.engine.awaitDecision(runID)
	defer p.engine.dropDecision(runID)

	log.Info("awaiting review decision", "timeout", p.timeout)

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case decision := <-decisions:
		return p.resolve(ctx, runID, opp, decision, log)
	case <-timer.C:
		log.Warn("review timed out, no decision received")
		return ReviewResult{Result: timedOut(runID), OpportunityID: opportunityID, SignalID: opp.SignalID}
	case <-ctx.Done():
		log.Warn("review cancelled", "error", ctx.Err())
		return ReviewResult{Result: failed(runID, "review cancelled: "+ctx.Err().Error()), OpportunityID: opportunityID, SignalID: opp.SignalID}
	}
}

func (p *ReviewProcess) resolve(ctx context.Context, runID string, opp *entities.Opportunity, decision entities.Decision, log *slog.Logger) ReviewResult {
	if decision.Action == entities.DecisionUnknown {
		// A delivered decision resolves the wait even when unrecognized.
		// The opportunity is untouched and stays reviewable.
		log.Warn("unknown decision action, opportunity stays pending", "user_id", decision.UserID)
		signalStatus := entities.ReviewCompleteStatus(decision.Action)
		if err := p.store.UpdateSignalStatus(ctx, opp.TenantID, opp.AccountID, opp.SignalID, signalStatus); err != nil {
			log.Warn("updating signal review status failed", "signal_id", opp.SignalID, "error", err)
		}
		return ReviewResult{
			Result:         completed(runID),
			OpportunityID:  opp.ID,
			SignalID:       opp.SignalID,
			DecisionAction: decision.Action,
			DecisionReason: decision.Reason,
			ReviewedBy:     decision.UserID,
			NewStatus:      entities.StatusPendingReview,
		}
	}

	newStatus := entities.StatusForDecision(decision.Action)
	updated, err := p.transition(ctx, opp, newStatus, decision.UserID)
	if err != nil {
		log.Error("applying decision failed", "action", decision.Action, "error", err)
		return ReviewResult{
			Result:        failed(runID, "applying decision: "+err.Error()),
			OpportunityID: opp.ID,
			SignalID:      opp.SignalID,
			DecisionAction: decision.Action,
			ReviewedBy:     decision.UserID,
		}
	}

	if decision.Action == entities.DecisionReject {
		rec := &entities.RejectionRecord{
			AccountID:     updated.AccountID,
			OpportunityID: updated.ID,
			Theme:         updated.Theme,
			Reason:        decision.Reason,
			UserID:        decision.UserID,
			RejectedAt:    decision.Timestamp,
		}
		if err := p.scoring.RecordRejection(ctx, updated.TenantID, rec); err != nil {
			log.Error("recording rejection feedback failed", "error", err)
		}
	}

	signalStatus := entities.ReviewCompleteStatus(decision.Action)
	if err := p.store.UpdateSignalStatus(ctx, updated.TenantID, updated.AccountID, updated.SignalID, signalStatus); err != nil {
		log.Warn("updating signal review status failed", "signal_id", updated.SignalID, "error", err)
	}

	p.audit(ctx, updated, decision, log)
	p.notify(ctx, updated, decision, log)

	log.Info("review resolved", "action", decision.Action, "new_status", updated.Status, "user_id", decision.UserID)

	return ReviewResult{
		Result:         completed(runID),
		OpportunityID:  updated.ID,
		SignalID:       updated.SignalID,
		DecisionAction: decision.Action,
		DecisionReason: decision.Reason,
		ReviewedBy:     decision.UserID,
		NewStatus:      updated.Status,
	}
}

// transition applies a status change with CAS, re-reading and reapplying on
// a version conflict up to casRetries times. An invalid transition aborts
// immediately; the state machine never bends for a retry.
func (p *ReviewProcess) transition(ctx context.Context, opp *entities.Opportunity, to entities.OpportunityStatus, userID string) (*entities.Opportunity, error) {
	current := opp
	for attempt := 0; attempt < casRetries; attempt++ {
		if !entities.IsTransitionAllowed(current.Status, to) {
			return nil, fmt.Errorf("transition %s -> %s not allowed", current.Status, to)
		}
		current.Status = to
		current.UpdatedAt = time.Now().UTC()

		err := p.store.UpdateOpportunity(ctx, current)
		if err == nil {
			return current, nil
		}
		if !errors.Is(err, ports.ErrVersionConflict) {
			return nil, err
		}

		fresh, readErr := p.store.GetOpportunity(ctx, opp.TenantID, opp.AccountID, opp.ID)
		if readErr != nil {
			return nil, fmt.Errorf("re-reading after version conflict: %w", readErr)
		}
		current = fresh
	}
	return nil, fmt.Errorf("transition to %s: %w", to, ports.ErrVersionConflict)
}

func (p *ReviewProcess) audit(ctx context.Context, opp *entities.Opportunity, decision entities.Decision, log *slog.Logger) {
	entry := &entities.AuditEntry{
		Action:     "opportunity_reviewed",
		EntityType: "opportunity",
		EntityID:   opp.ID,
		AccountID:  opp.AccountID,
		UserID:     decision.UserID,
		Details: map[string]any{
			"decision":   string(decision.Action),
			"reason":     decision.Reason,
			"new_status": string(opp.Status),
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := p.store.LogAction(ctx, entry); err != nil {
		log.Warn("audit logging failed", "action", entry.Action, "error", err)
	}
}

func (p *ReviewProcess) notify(ctx context.Context, opp *entities.Opportunity, decision entities.Decision, log *slog.Logger) {
	if p.notifier == nil || opp.AssignedTo == "" {
		return
	}
	severity := ports.SeveritySuccess
	if decision.Action == entities.DecisionReject {
		severity = ports.SeverityWarning
	}
	n := ports.Notification{
		UserID:   opp.AssignedTo,
		Title:    fmt.Sprintf("Opportunity %s: %s", decision.Action, opp.Title),
		Message:  fmt.Sprintf("Reviewed by %s, now %s", decision.UserID, opp.Status),
		Severity: severity,
	}
	if err := p.notifier.Notify(ctx, n); err != nil {
		log.Warn("notifying reviewer outcome failed", "error", err)
	}
}
