package entities

import "time"

// RejectionRecord is the feedback memory coupling human judgment back into
// future scoring. Records are append-only, keyed by (account_id, theme), and
// their influence decays with a 30-day half-life.
type RejectionRecord struct {
	AccountID     string    `json:"account_id"`
	OpportunityID string    `json:"opportunity_id,omitempty"`
	Theme         string    `json:"theme"`
	Reason        string    `json:"reason,omitempty"`
	UserID        string    `json:"user_id"`
	RejectedAt    time.Time `json:"rejected_at"`
}
