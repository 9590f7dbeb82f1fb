package ports

import (
	"context"

	"github.com/clientpulse/pulse-core/internal/domain/entities"
)

// SearchScope restricts evidence retrieval to what the caller may see.
// TenantID is mandatory; AccountIDs and Themes narrow further when set.
type SearchScope struct {
	TenantID   string
	AccountIDs []string
	Themes     []string
}

// EvidenceDB defines the interface for vector evidence storage and
// permission-scoped semantic search.
type EvidenceDB interface {
	// EnsureCollection creates the evidence collection if it doesn't exist.
	EnsureCollection(ctx context.Context, vectorSize uint64) error

	// Close closes the connection.
	Close() error

	// Upsert stores evidence items with their embeddings.
	Upsert(ctx context.Context, evidence []entities.Evidence) error

	// Search returns the evidence most similar to the embedding within the
	// given scope, best matches first.
	Search(ctx context.Context, embedding []float32, scope SearchScope, limit int) ([]entities.Evidence, error)

	// Delete removes an evidence item by its ID.
	Delete(ctx context.Context, id string) error
}
