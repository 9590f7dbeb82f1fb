package entities

import (
	"strings"
	"time"
)

// DecisionAction is the reviewer's instruction for a pending opportunity.
type DecisionAction string

const (
	DecisionApprove DecisionAction = "approve"
	DecisionReject  DecisionAction = "reject"
	DecisionRefine  DecisionAction = "refine"
	DecisionUnknown DecisionAction = "unknown"
)

// ParseDecisionAction normalizes a raw action string. Anything unrecognized
// maps to DecisionUnknown rather than failing, since a decision has already
// been delivered and the waiting process must resolve either way.
func ParseDecisionAction(s string) DecisionAction {
	switch DecisionAction(strings.ToLower(strings.TrimSpace(s))) {
	case DecisionApprove:
		return DecisionApprove
	case DecisionReject:
		return DecisionReject
	case DecisionRefine:
		return DecisionRefine
	}
	return DecisionUnknown
}

// Decision is a human review instruction delivered exactly once to a waiting
// review process instance. It is transient and never persisted as an entity.
type Decision struct {
	Action    DecisionAction `json:"action"`
	Reason    string         `json:"reason,omitempty"`
	UserID    string         `json:"user_id"`
	Timestamp time.Time      `json:"timestamp"`
}
