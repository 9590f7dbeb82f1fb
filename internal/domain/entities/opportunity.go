package entities

import "time"

// ScoreBreakdown holds the five scored factors plus the derived confidence,
// all on a 0-100 scale. Confidence is informational and never enters the
// final weighted score.
type ScoreBreakdown struct {
	Impact      float64 `json:"impact"`
	Urgency     float64 `json:"urgency"`
	Fit         float64 `json:"fit"`
	Access      float64 `json:"access"`
	Feasibility float64 `json:"feasibility"`
	Confidence  float64 `json:"confidence"`
}

// CRMRecord is the per-system record created by a successful activation.
type CRMRecord struct {
	RecordID    string    `json:"record_id"`
	ActivatedAt time.Time `json:"activated_at"`
}

// OutreachVariant is one generated outreach draft attached to an opportunity.
type OutreachVariant struct {
	Channel      string `json:"channel"`
	Tone         string `json:"tone"`
	Subject      string `json:"subject"`
	Body         string `json:"body"`
	CallToAction string `json:"call_to_action"`
}

// Opportunity is a structured, scored sales lead derived from exactly one
// signal. Status moves through the closed transition set in status.go, and
// Version increments on every status-affecting write; writers must
// compare-and-swap on Version.
type Opportunity struct {
	ID                string               `json:"id"`
	TenantID          string               `json:"tenant_id"`
	AccountID         string               `json:"account_id"`
	SignalID          string               `json:"signal_id"`
	Title             string               `json:"title"`
	Description       string               `json:"description"`
	Narrative         string               `json:"narrative,omitempty"`
	KeyPoints         []string             `json:"key_points,omitempty"`
	ActionItems       []string             `json:"action_items,omitempty"`
	StakeholderHints  []string             `json:"stakeholder_hints,omitempty"`
	Theme             string               `json:"theme"`
	Status            OpportunityStatus    `json:"status"`
	Score             float64              `json:"score"`
	Breakdown         ScoreBreakdown       `json:"score_breakdown"`
	FeedbackPenalty   float64              `json:"feedback_penalty"`
	SourceReliability float64              `json:"source_reliability"`
	DraftOutreach     []OutreachVariant    `json:"draft_outreach,omitempty"`
	CRMStatus         string               `json:"crm_status,omitempty"`
	CRMRecords        map[string]CRMRecord `json:"crm_records,omitempty"`
	AssignedTo        string               `json:"assigned_to,omitempty"`
	Version           int64                `json:"version"`
	WorkflowRunID     string               `json:"workflow_run_id,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
}
