// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/clientpulse/pulse-core/internal/domain/entities"
	"github.com/clientpulse/pulse-core/internal/domain/ports"
)

// DocumentStore is an in-memory implementation of ports.DocumentStore with
// per-operation error injection for failure-path tests.
type DocumentStore struct {
	mu sync.Mutex

	Signals       map[string]*entities.Signal
	Accounts      map[string]*entities.Account
	Opportunities map[string]*entities.Opportunity
	Rejections    []entities.RejectionRecord
	AuditEntries  []entities.AuditEntry

	// Error injection
	UpsertSignalErr      error
	GetSignalErr         error
	UpdateSignalErr      error
	GetAccountErr        error
	CreateOpportunityErr error
	GetOpportunityErr    error
	UpdateOpportunityErr error
	AppendRejectionErr   error
	ListRejectionsErr    error
}

// NewDocumentStore creates an empty in-memory store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		Signals:       make(map[string]*entities.Signal),
		Accounts:      make(map[string]*entities.Account),
		Opportunities: make(map[string]*entities.Opportunity),
	}
}

// EnsureSchema is a no-op.
func (m *DocumentStore) EnsureSchema(ctx context.Context) error { return nil }

// Close is a no-op.
func (m *DocumentStore) Close() error { return nil }

// UpsertSignal inserts the signal, or updates only its status when present.
func (m *DocumentStore) UpsertSignal(ctx context.Context, signal *entities.Signal) error {
	if m.UpsertSignalErr != nil {
		return m.UpsertSignalErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.Signals[signal.ID]; ok {
		existing.WorkflowStatus = signal.WorkflowStatus
		existing.UpdatedAt = signal.UpdatedAt
		return nil
	}
	cp := *signal
	m.Signals[signal.ID] = &cp
	return nil
}

// GetSignal returns a stored signal or ports.ErrNotFound.
func (m *DocumentStore) GetSignal(ctx context.Context, tenantID, accountID, signalID string) (*entities.Signal, error) {
	if m.GetSignalErr != nil {
		return nil, m.GetSignalErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Signals[signalID]
	if !ok || s.TenantID != tenantID || s.AccountID != accountID {
		return nil, ports.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

// UpdateSignalStatus moves a signal's workflow status.
func (m *DocumentStore) UpdateSignalStatus(ctx context.Context, tenantID, accountID, signalID string, status entities.SignalStatus) error {
	if m.UpdateSignalErr != nil {
		return m.UpdateSignalErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Signals[signalID]
	if !ok {
		return ports.ErrNotFound
	}
	s.WorkflowStatus = status
	return nil
}

// ListSignals returns all signals for the account.
func (m *DocumentStore) ListSignals(ctx context.Context, tenantID, accountID string, limit int) ([]*entities.Signal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entities.Signal
	for _, s := range m.Signals {
		if s.TenantID == tenantID && s.AccountID == accountID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

// SaveAccount inserts or replaces an account.
func (m *DocumentStore) SaveAccount(ctx context.Context, account *entities.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *account
	m.Accounts[account.ID] = &cp
	return nil
}

// GetAccount returns a stored account or ports.ErrNotFound.
func (m *DocumentStore) GetAccount(ctx context.Context, tenantID, accountID string) (*entities.Account, error) {
	if m.GetAccountErr != nil {
		return nil, m.GetAccountErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Accounts[accountID]
	if !ok || a.TenantID != tenantID {
		return nil, ports.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

// ListAccounts returns all accounts for a tenant.
func (m *DocumentStore) ListAccounts(ctx context.Context, tenantID string) ([]*entities.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entities.Account
	for _, a := range m.Accounts {
		if a.TenantID == tenantID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

// CreateOpportunity stores a new opportunity at version 1.
func (m *DocumentStore) CreateOpportunity(ctx context.Context, opp *entities.Opportunity) error {
	if m.CreateOpportunityErr != nil {
		return m.CreateOpportunityErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if opp.Version == 0 {
		opp.Version = 1
	}
	cp := *opp
	m.Opportunities[opp.ID] = &cp
	return nil
}

// GetOpportunity returns a stored opportunity or ports.ErrNotFound.
func (m *DocumentStore) GetOpportunity(ctx context.Context, tenantID, accountID, opportunityID string) (*entities.Opportunity, error) {
	if m.GetOpportunityErr != nil {
		return nil, m.GetOpportunityErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.Opportunities[opportunityID]
	if !ok || o.TenantID != tenantID || o.AccountID != accountID {
		return nil, ports.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

// UpdateOpportunity compare-and-swaps on the opportunity version.
func (m *DocumentStore) UpdateOpportunity(ctx context.Context, opp *entities.Opportunity) error {
	if m.UpdateOpportunityErr != nil {
		return m.UpdateOpportunityErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.Opportunities[opp.ID]
	if !ok {
		return ports.ErrNotFound
	}
	if stored.Version != opp.Version {
		return ports.ErrVersionConflict
	}
	opp.Version++
	cp := *opp
	m.Opportunities[opp.ID] = &cp
	return nil
}

// ListOpportunities returns all opportunities for the account.
func (m *DocumentStore) ListOpportunities(ctx context.Context, tenantID, accountID string, limit int) ([]*entities.Opportunity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entities.Opportunity
	for _, o := range m.Opportunities {
		if o.TenantID == tenantID && o.AccountID == accountID {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

// AppendRejection appends a rejection record.
func (m *DocumentStore) AppendRejection(ctx context.Context, tenantID string, rec *entities.RejectionRecord) error {
	if m.AppendRejectionErr != nil {
		return m.AppendRejectionErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Rejections = append(m.Rejections, *rec)
	return nil
}

// ListRejections returns rejections matching (account_id, theme).
func (m *DocumentStore) ListRejections(ctx context.Context, tenantID, accountID, theme string) ([]entities.RejectionRecord, error) {
	if m.ListRejectionsErr != nil {
		return nil, m.ListRejectionsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entities.RejectionRecord
	for _, r := range m.Rejections {
		if r.AccountID == accountID && r.Theme == theme {
			out = append(out, r)
		}
	}
	return out, nil
}

// PruneRejections removes records older than the cutoff.
func (m *DocumentStore) PruneRejections(ctx context.Context, tenantID string, olderThan time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []entities.RejectionRecord
	var removed int64
	for _, r := range m.Rejections {
		if r.RejectedAt.Before(olderThan) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	m.Rejections = kept
	return removed, nil
}

// LogAction appends an audit entry.
func (m *DocumentStore) LogAction(ctx context.Context, entry *entities.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AuditEntries = append(m.AuditEntries, *entry)
	return nil
}

// FindAuditLog returns audit entries for an entity.
func (m *DocumentStore) FindAuditLog(ctx context.Context, entityID string, limit int) ([]entities.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entities.AuditEntry
	for _, e := range m.AuditEntries {
		if e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}
