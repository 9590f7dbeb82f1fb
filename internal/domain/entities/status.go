package entities

import "fmt"

// OpportunityStatus is the primary state-machine field on an Opportunity.
//
// Valid status graph:
//
//	draft ──► pending_review ──► {approved, rejected, needs_more_evidence}
//	              │
//	              └──► draft (refine decision, re-enters discovery)
//	approved ──► activation_requested ──► {activated, activation_partial, activation_failed}
//
// activated, rejected and activation_failed are terminal. Discovery always
// creates draft; nothing may skip pending_review.
type OpportunityStatus string

const (
	StatusDraft               OpportunityStatus = "draft"
	StatusPendingReview       OpportunityStatus = "pending_review"
	StatusApproved            OpportunityStatus = "approved"
	StatusRejected            OpportunityStatus = "rejected"
	StatusNeedsMoreEvidence   OpportunityStatus = "needs_more_evidence"
	StatusActivationRequested OpportunityStatus = "activation_requested"
	StatusActivated           OpportunityStatus = "activated"
	StatusActivationPartial   OpportunityStatus = "activation_partial"
	StatusActivationFailed    OpportunityStatus = "activation_failed"
)

// validTransitions lists every allowed (from → to) pair.
var validTransitions = map[OpportunityStatus][]OpportunityStatus{
	StatusDraft:               {StatusPendingReview},
	StatusPendingReview:       {StatusApproved, StatusRejected, StatusNeedsMoreEvidence, StatusDraft},
	StatusNeedsMoreEvidence:   {StatusDraft},
	StatusApproved:            {StatusActivationRequested},
	StatusActivationRequested: {StatusActivated, StatusActivationPartial, StatusActivationFailed},
	// A later activation attempt is started by an external trigger.
	StatusActivationPartial: {StatusActivationRequested},
	// activated, rejected, activation_failed are terminal
}

// ParseOpportunityStatus converts a raw string to an OpportunityStatus,
// returning an error for unknown values.
func ParseOpportunityStatus(s string) (OpportunityStatus, error) {
	st := OpportunityStatus(s)
	switch st {
	case StatusDraft, StatusPendingReview, StatusApproved, StatusRejected,
		StatusNeedsMoreEvidence, StatusActivationRequested, StatusActivated,
		StatusActivationPartial, StatusActivationFailed:
		return st, nil
	}
	return "", fmt.Errorf("unknown opportunity status %q", s)
}

// IsTransitionAllowed returns true when moving from → to is permitted by the
// state machine.
func IsTransitionAllowed(from, to OpportunityStatus) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false // terminal state, no outgoing transitions
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal returns true when the status has no outgoing transitions.
func IsTerminal(s OpportunityStatus) bool {
	_, ok := validTransitions[s]
	return !ok
}

// StatusForDecision maps a review decision to the resulting opportunity
// status. An unknown action leaves the opportunity in pending_review.
func StatusForDecision(action DecisionAction) OpportunityStatus {
	switch action {
	case DecisionApprove:
		return StatusApproved
	case DecisionReject:
		return StatusRejected
	case DecisionRefine:
		return StatusDraft
	default:
		return StatusPendingReview
	}
}
