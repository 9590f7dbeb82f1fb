// Package ports defines interfaces for external service communication.
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/clientpulse/pulse-core/internal/domain/entities"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("document not found")

// ErrVersionConflict is returned when an opportunity write observes a stale
// version. The writer must re-read and retry or abort; a stale write is never
// silently applied.
var ErrVersionConflict = errors.New("opportunity version conflict")

// DocumentStore defines the persistence interface for signals, accounts,
// opportunities, rejection history and the audit log. Opportunity writes use
// optimistic concurrency on the Version field.
type DocumentStore interface {
	// EnsureSchema creates the storage schema if it doesn't exist.
	EnsureSchema(ctx context.Context) error

	// Close closes the underlying connection.
	Close() error

	// Signal operations

	// UpsertSignal inserts a signal or, when the id already exists, updates
	// only its workflow status. Signal content is immutable once written.
	UpsertSignal(ctx context.Context, signal *entities.Signal) error

	// GetSignal returns a signal or ErrNotFound.
	GetSignal(ctx context.Context, tenantID, accountID, signalID string) (*entities.Signal, error)

	// UpdateSignalStatus moves a signal's workflow status.
	UpdateSignalStatus(ctx context.Context, tenantID, accountID, signalID string, status entities.SignalStatus) error

	// ListSignals lists signals for an account, newest first.
	ListSignals(ctx context.Context, tenantID, accountID string, limit int) ([]*entities.Signal, error)

	// Account operations

	// SaveAccount inserts or replaces an account.
	SaveAccount(ctx context.Context, account *entities.Account) error

	// GetAccount returns an account or ErrNotFound.
	GetAccount(ctx context.Context, tenantID, accountID string) (*entities.Account, error)

	// ListAccounts lists all accounts for a tenant.
	ListAccounts(ctx context.Context, tenantID string) ([]*entities.Account, error)

	// Opportunity operations

	// CreateOpportunity persists a new opportunity at version 1.
	CreateOpportunity(ctx context.Context, opp *entities.Opportunity) error

	// GetOpportunity returns an opportunity or ErrNotFound.
	GetOpportunity(ctx context.Context, tenantID, accountID, opportunityID string) (*entities.Opportunity, error)

	// UpdateOpportunity writes an opportunity using compare-and-swap on its
	// Version. On success the stored and in-memory versions increment; when
	// the observed version is stale it returns ErrVersionConflict.
	UpdateOpportunity(ctx context.Context, opp *entities.Opportunity) error

	// ListOpportunities lists opportunities for an account, newest first.
	ListOpportunities(ctx context.Context, tenantID, accountID string, limit int) ([]*entities.Opportunity, error)

	// Rejection history (append-only feedback memory)

	// AppendRejection appends a rejection record. Records are never mutated.
	AppendRejection(ctx context.Context, tenantID string, rec *entities.RejectionRecord) error

	// ListRejections returns all rejection records for (account_id, theme).
	ListRejections(ctx context.Context, tenantID, accountID, theme string) ([]entities.RejectionRecord, error)

	// PruneRejections deletes records older than the cutoff, returning the
	// number removed. Decay is negligible beyond three half-lives (90 days).
	PruneRejections(ctx context.Context, tenantID string, olderThan time.Time) (int64, error)

	// Audit log

	// LogAction appends an audit entry.
	LogAction(ctx context.Context, entry *entities.AuditEntry) error

	// FindAuditLog returns audit entries for an entity, newest first.
	FindAuditLog(ctx context.Context, entityID string, limit int) ([]entities.AuditEntry, error)
}
