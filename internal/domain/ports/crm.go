package ports

import (
	"context"
	"time"
)

// TaskPayload is the per-system task created during CRM activation.
type TaskPayload struct {
	Subject       string `json:"subject"`
	Description   string `json:"description"`
	OpportunityID string `json:"opportunity_id"`
	AccountID     string `json:"account_id"`
}

// TaskRecord identifies the record a CRM system created.
type TaskRecord struct {
	TaskID    string    `json:"task_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CRMClient defines the interface for one CRM system. Each system has
// independent credentials and rate limits; activation fans out across
// clients and collects per-system outcomes.
type CRMClient interface {
	// Name returns the system identifier, e.g. "salesforce".
	Name() string

	// CreateTask creates an activation task for an account.
	CreateTask(ctx context.Context, accountID string, payload TaskPayload) (*TaskRecord, error)
}
