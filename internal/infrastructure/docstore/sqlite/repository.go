// Package sqlite provides a SQLite implementation of the DocumentStore interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/clientpulse/pulse-core/internal/domain/entities"
	"github.com/clientpulse/pulse-core/internal/domain/ports"
	"github.com/clientpulse/pulse-core/internal/infrastructure/config"
)

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

// Repository implements ports.DocumentStore using SQLite.
type Repository struct {
	db   *sql.DB
	path string
}

// NewRepository creates a new SQLite repository.
func NewRepository(cfg config.SQLiteConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// Enable foreign keys for referential integrity
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	// Enable WAL mode for better concurrent read/write performance
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Set busy timeout to avoid "database is locked" errors
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return &Repository{
		db:   db,
		path: cfg.Path,
	}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	-- Monitored customer accounts
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		name TEXT NOT NULL,
		domain TEXT,
		owner_user_id TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_accounts_tenant ON accounts(tenant_id);

	-- Raw business signals (content immutable, only workflow_status moves)
	CREATE TABLE IF NOT EXISTS signals (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		account_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		source_type TEXT NOT NULL,
		source_url TEXT,
		search_term TEXT,
		themes TEXT,
		workflow_status TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_signals_account ON signals(tenant_id, account_id);
	CREATE INDEX IF NOT EXISTS idx_signals_status ON signals(workflow_status);

	-- Scored opportunities (writes compare-and-swap on version)
	CREATE TABLE IF NOT EXISTS opportunities (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		account_id TEXT NOT NULL,
		signal_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		narrative TEXT,
		key_points TEXT,
		action_items TEXT,
		stakeholder_hints TEXT,
		theme TEXT NOT NULL,
		status TEXT NOT NULL,
		score REAL NOT NULL DEFAULT 0,
		breakdown TEXT,
		feedback_penalty REAL NOT NULL DEFAULT 0,
		source_reliability REAL NOT NULL DEFAULT 0,
		draft_outreach TEXT,
		crm_status TEXT,
		crm_records TEXT,
		assigned_to TEXT,
		version INTEGER NOT NULL DEFAULT 1,
		workflow_run_id TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_opportunities_account ON opportunities(tenant_id, account_id);
	CREATE INDEX IF NOT EXISTS idx_opportunities_status ON opportunities(status);
	CREATE INDEX IF NOT EXISTS idx_opportunities_signal ON opportunities(signal_id);

	-- Append-only rejection feedback memory
	CREATE TABLE IF NOT EXISTS rejection_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id TEXT NOT NULL,
		account_id TEXT NOT NULL,
		opportunity_id TEXT,
		theme TEXT NOT NULL,
		reason TEXT,
		user_id TEXT,
		rejected_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_rejections_key ON rejection_history(tenant_id, account_id, theme);
	CREATE INDEX IF NOT EXISTS idx_rejections_time ON rejection_history(rejected_at);

	-- Audit log (tracks all actions)
	CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		action TEXT NOT NULL,
		entity_type TEXT NOT NULL,
		entity_id TEXT,
		account_id TEXT,
		user_id TEXT,
		details TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_audit_log_entity ON audit_log(entity_id);
	CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log(action);
	CREATE INDEX IF NOT EXISTS idx_audit_log_created ON audit_log(created_at);
	`

	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// UpsertSignal inserts a signal, or updates only its workflow status when
// the id already exists. Signal content never changes after the first write.
func (r *Repository) UpsertSignal(ctx context.Context, signal *entities.Signal) error {
	themes, err := json.Marshal(signal.Themes)
	if err != nil {
		return fmt.Errorf("marshaling themes: %w", err)
	}

	query := `
		INSERT INTO signals (id, tenant_id, account_id, title, description, source_type, source_url, search_term, themes, workflow_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			workflow_status = excluded.workflow_status,
			updated_at = excluded.updated_at
	`
	_, err = r.db.ExecContext(ctx, query,
		signal.ID, signal.TenantID, signal.AccountID, signal.Title, signal.Description,
		string(signal.SourceType), signal.SourceURL, signal.SearchTerm, string(themes),
		string(signal.WorkflowStatus), signal.CreatedAt, signal.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting signal: %w", err)
	}
	return nil
}

// GetSignal returns a signal or ports.ErrNotFound.
func (r *Repository) GetSignal(ctx context.Context, tenantID, accountID, signalID string) (*entities.Signal, error) {
	query := `
		SELECT id, tenant_id, account_id, title, description, source_type, source_url, search_term, themes, workflow_status, created_at, updated_at
		FROM signals
		WHERE id = ? AND tenant_id = ? AND account_id = ?
	`
	row := r.db.QueryRowContext(ctx, query, signalID, tenantID, accountID)
	signal, err := scanSignal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting signal: %w", err)
	}
	return signal, nil
}

// UpdateSignalStatus moves a signal's workflow status.
func (r *Repository) UpdateSignalStatus(ctx context.Context, tenantID, accountID, signalID string, status entities.SignalStatus) error {
	query := `
		UPDATE signals SET workflow_status = ?, updated_at = ?
		WHERE id = ? AND tenant_id = ? AND account_id = ?
	`
	result, err := r.db.ExecContext(ctx, query, string(status), timeNow().UTC(), signalID, tenantID, accountID)
	if err != nil {
		return fmt.Errorf("updating signal status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// ListSignals lists signals for an account, newest first.
func (r *Repository) ListSignals(ctx context.Context, tenantID, accountID string, limit int) ([]*entities.Signal, error) {
	query := `
		SELECT id, tenant_id, account_id, title, description, source_type, source_url, search_term, themes, workflow_status, created_at, updated_at
		FROM signals
		WHERE tenant_id = ? AND account_id = ?
		ORDER BY created_at DESC
	`
	args := []any{tenantID, accountID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing signals: %w", err)
	}
	defer rows.Close()

	var signals []*entities.Signal
	for rows.Next() {
		signal, err := scanSignal(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning signal: %w", err)
		}
		signals = append(signals, signal)
	}
	return signals, rows.Err()
}

// SaveAccount inserts or replaces an account.
func (r *Repository) SaveAccount(ctx context.Context, account *entities.Account) error {
	if account.CreatedAt.IsZero() {
		account.CreatedAt = timeNow().UTC()
	}
	query := `
		INSERT OR REPLACE INTO accounts (id, tenant_id, name, domain, owner_user_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		account.ID, account.TenantID, account.Name, account.Domain, account.OwnerUserID, account.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving account: %w", err)
	}
	return nil
}

// GetAccount returns an account or ports.ErrNotFound.
func (r *Repository) GetAccount(ctx context.Context, tenantID, accountID string) (*entities.Account, error) {
	query := `
		SELECT id, tenant_id, name, domain, owner_user_id, created_at
		FROM accounts
		WHERE id = ? AND tenant_id = ?
	`
	var account entities.Account
	err := r.db.QueryRowContext(ctx, query, accountID, tenantID).Scan(
		&account.ID, &account.TenantID, &account.Name, &account.Domain, &account.OwnerUserID, &account.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting account: %w", err)
	}
	return &account, nil
}

// ListAccounts lists all accounts for a tenant.
func (r *Repository) ListAccounts(ctx context.Context, tenantID string) ([]*entities.Account, error) {
	query := `
		SELECT id, tenant_id, name, domain, owner_user_id, created_at
		FROM accounts
		WHERE tenant_id = ?
		ORDER BY name
	`
	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*entities.Account
	for rows.Next() {
		var account entities.Account
		if err := rows.Scan(&account.ID, &account.TenantID, &account.Name, &account.Domain, &account.OwnerUserID, &account.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		accounts = append(accounts, &account)
	}
	return accounts, rows.Err()
}

// CreateOpportunity persists a new opportunity at version 1.
func (r *Repository) CreateOpportunity(ctx context.Context, opp *entities.Opportunity) error {
	if opp.Version == 0 {
		opp.Version = 1
	}
	cols, err := marshalOpportunityColumns(opp)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO opportunities (id, tenant_id, account_id, signal_id, title, description, narrative,
			key_points, action_items, stakeholder_hints, theme, status, score, breakdown,
			feedback_penalty, source_reliability, draft_outreach, crm_status, crm_records,
			assigned_to, version, workflow_run_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		opp.ID, opp.TenantID, opp.AccountID, opp.SignalID, opp.Title, opp.Description, opp.Narrative,
		cols.keyPoints, cols.actionItems, cols.stakeholderHints, opp.Theme, string(opp.Status), opp.Score, cols.breakdown,
		opp.FeedbackPenalty, opp.SourceReliability, cols.draftOutreach, opp.CRMStatus, cols.crmRecords,
		opp.AssignedTo, opp.Version, opp.WorkflowRunID, opp.CreatedAt, opp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating opportunity: %w", err)
	}
	return nil
}

// GetOpportunity returns an opportunity or ports.ErrNotFound.
func (r *Repository) GetOpportunity(ctx context.Context, tenantID, accountID, opportunityID string) (*entities.Opportunity, error) {
	query := opportunitySelect + `
		WHERE id = ? AND tenant_id = ? AND account_id = ?
	`
	row := r.db.QueryRowContext(ctx, query, opportunityID, tenantID, accountID)
	opp, err := scanOpportunity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting opportunity: %w", err)
	}
	return opp, nil
}

// UpdateOpportunity writes an opportunity with compare-and-swap on its
// version. A stale version yields ports.ErrVersionConflict; on success the
// stored and in-memory versions both increment.
func (r *Repository) UpdateOpportunity(ctx context.Context, opp *entities.Opportunity) error {
	cols, err := marshalOpportunityColumns(opp)
	if err != nil {
		return err
	}

	query := `
		UPDATE opportunities SET
			title = ?, description = ?, narrative = ?, key_points = ?, action_items = ?,
			stakeholder_hints = ?, theme = ?, status = ?, score = ?, breakdown = ?,
			feedback_penalty = ?, source_reliability = ?, draft_outreach = ?, crm_status = ?,
			crm_records = ?, assigned_to = ?, version = version + 1, workflow_run_id = ?, updated_at = ?
		WHERE id = ? AND tenant_id = ? AND account_id = ? AND version = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		opp.Title, opp.Description, opp.Narrative, cols.keyPoints, cols.actionItems,
		cols.stakeholderHints, opp.Theme, string(opp.Status), opp.Score, cols.breakdown,
		opp.FeedbackPenalty, opp.SourceReliability, cols.draftOutreach, opp.CRMStatus,
		cols.crmRecords, opp.AssignedTo, opp.WorkflowRunID, opp.UpdatedAt,
		opp.ID, opp.TenantID, opp.AccountID, opp.Version)
	if err != nil {
		return fmt.Errorf("updating opportunity: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		// Distinguish a stale version from a missing row.
		var exists int
		err := r.db.QueryRowContext(ctx,
			"SELECT 1 FROM opportunities WHERE id = ? AND tenant_id = ? AND account_id = ?",
			opp.ID, opp.TenantID, opp.AccountID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ports.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("checking opportunity existence: %w", err)
		}
		return ports.ErrVersionConflict
	}

	opp.Version++
	return nil
}

// ListOpportunities lists opportunities for an account, newest first.
func (r *Repository) ListOpportunities(ctx context.Context, tenantID, accountID string, limit int) ([]*entities.Opportunity, error) {
	query := opportunitySelect + `
		WHERE tenant_id = ? AND account_id = ?
		ORDER BY created_at DESC
	`
	args := []any{tenantID, accountID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing opportunities: %w", err)
	}
	defer rows.Close()

	var opps []*entities.Opportunity
	for rows.Next() {
		opp, err := scanOpportunity(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning opportunity: %w", err)
		}
		opps = append(opps, opp)
	}
	return opps, rows.Err()
}

// AppendRejection appends a rejection record. Records are never mutated.
func (r *Repository) AppendRejection(ctx context.Context, tenantID string, rec *entities.RejectionRecord) error {
	query := `
		INSERT INTO rejection_history (tenant_id, account_id, opportunity_id, theme, reason, user_id, rejected_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		tenantID, rec.AccountID, rec.OpportunityID, rec.Theme, rec.Reason, rec.UserID, rec.RejectedAt)
	if err != nil {
		return fmt.Errorf("appending rejection: %w", err)
	}
	return nil
}

// ListRejections returns all rejection records for (account_id, theme).
func (r *Repository) ListRejections(ctx context.Context, tenantID, accountID, theme string) ([]entities.RejectionRecord, error) {
	query := `
		SELECT account_id, opportunity_id, theme, reason, user_id, rejected_at
		FROM rejection_history
		WHERE tenant_id = ? AND account_id = ? AND theme = ?
		ORDER BY rejected_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, tenantID, accountID, theme)
	if err != nil {
		return nil, fmt.Errorf("listing rejections: %w", err)
	}
	defer rows.Close()

	var records []entities.RejectionRecord
	for rows.Next() {
		var rec entities.RejectionRecord
		if err := rows.Scan(&rec.AccountID, &rec.OpportunityID, &rec.Theme, &rec.Reason, &rec.UserID, &rec.RejectedAt); err != nil {
			return nil, fmt.Errorf("scanning rejection: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// PruneRejections deletes records older than the cutoff.
func (r *Repository) PruneRejections(ctx context.Context, tenantID string, olderThan time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM rejection_history WHERE tenant_id = ? AND rejected_at < ?", tenantID, olderThan)
	if err != nil {
		return 0, fmt.Errorf("pruning rejections: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return removed, nil
}

// LogAction appends an audit entry.
func (r *Repository) LogAction(ctx context.Context, entry *entities.AuditEntry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("marshaling audit details: %w", err)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = timeNow().UTC()
	}

	query := `
		INSERT INTO audit_log (action, entity_type, entity_id, account_id, user_id, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		entry.Action, entry.EntityType, entry.EntityID, entry.AccountID, entry.UserID, string(details), entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("logging action: %w", err)
	}
	return nil
}

// FindAuditLog returns audit entries for an entity, newest first.
func (r *Repository) FindAuditLog(ctx context.Context, entityID string, limit int) ([]entities.AuditEntry, error) {
	query := `
		SELECT id, action, entity_type, entity_id, account_id, user_id, details, created_at
		FROM audit_log
		WHERE entity_id = ?
		ORDER BY created_at DESC
	`
	args := []any{entityID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("finding audit log: %w", err)
	}
	defer rows.Close()

	var entries []entities.AuditEntry
	for rows.Next() {
		var entry entities.AuditEntry
		var details string
		if err := rows.Scan(&entry.ID, &entry.Action, &entry.EntityType, &entry.EntityID, &entry.AccountID, &entry.UserID, &details, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}
		if details != "" && details != "null" {
			if err := json.Unmarshal([]byte(details), &entry.Details); err != nil {
				return nil, fmt.Errorf("unmarshaling audit details: %w", err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
