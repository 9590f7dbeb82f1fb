// Package workflow runs the orchestration processes that take a signal from
// ingestion through discovery, human review and CRM activation. Processes
// report outcomes through typed results and never raise errors across
// process boundaries.
package workflow

import (
	"github.com/clientpulse/pulse-core/internal/domain/entities"
)

// Status is the terminal outcome of a process run.
type Status string

const (
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusTimeout   Status = "TIMEOUT"
)

// Result is the common outcome envelope shared by every process. Err carries
// the failure description when Status is FAILED; it is a string, not an
// error, because results cross process boundaries as data.
type Result struct {
	RunID  string `json:"run_id"`
	Status Status `json:"status"`
	Err    string `json:"error,omitempty"`
}

func completed(runID string) Result {
	return Result{RunID: runID, Status: StatusCompleted}
}

func failed(runID, msg string) Result {
	return Result{RunID: runID, Status: StatusFailed, Err: msg}
}

func timedOut(runID string) Result {
	return Result{RunID: runID, Status: StatusTimeout}
}

// IngestionResult is the outcome of persisting one signal and spawning its
// discovery child. Discovery is nil when ingestion failed before spawning.
type IngestionResult struct {
	Result
	SignalID   string              `json:"signal_id"`
	SourceType entities.SourceType `json:"source_type"`
	Discovery  *DiscoveryResult    `json:"discovery,omitempty"`
}

// DiscoveryResult is the outcome of turning an ingested signal into a scored
// draft opportunity.
type DiscoveryResult struct {
	Result
	SignalID        string  `json:"signal_id"`
	OpportunityID   string  `json:"opportunity_id,omitempty"`
	Score           float64 `json:"score,omitempty"`
	FeedbackPenalty float64 `json:"feedback_penalty,omitempty"`
}

// ReviewResult is the outcome of one review-await. On TIMEOUT no decision
// arrived and nothing was mutated.
type ReviewResult struct {
	Result
	OpportunityID  string                     `json:"opportunity_id"`
	SignalID       string                     `json:"signal_id,omitempty"`
	DecisionAction entities.DecisionAction    `json:"decision_action,omitempty"`
	DecisionReason string                     `json:"decision_reason,omitempty"`
	ReviewedBy     string                     `json:"reviewed_by,omitempty"`
	NewStatus      entities.OpportunityStatus `json:"new_status,omitempty"`
}

// SystemActivation is the per-CRM-system outcome of an activation fan-out.
type SystemActivation struct {
	OK       bool   `json:"ok"`
	RecordID string `json:"record_id,omitempty"`
	Err      string `json:"error,omitempty"`
}

// ActivationResult is the outcome of fanning an approved opportunity out to
// the configured CRM systems.
type ActivationResult struct {
	Result
	OpportunityID string                      `json:"opportunity_id"`
	FinalStatus   entities.OpportunityStatus  `json:"final_status,omitempty"`
	Systems       map[string]SystemActivation `json:"systems,omitempty"`
}

// MonitoringResult is the outcome of one scheduled monitoring sweep for an
// account. Each discovered source hit runs as a sequential ingestion child.
type MonitoringResult struct {
	Result
	AccountID  string            `json:"account_id"`
	Hits       int               `json:"hits"`
	Skipped    int               `json:"skipped"`
	Ingestions []IngestionResult `json:"ingestions,omitempty"`
}
