package entities

import "time"

// Account is a monitored customer account owned by one tenant. Signals and
// opportunities are always scoped to an account.
type Account struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	Name        string    `json:"name"`
	Domain      string    `json:"domain,omitempty"`
	OwnerUserID string    `json:"owner_user_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
