package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/clientpulse/pulse-core/internal/domain/entities"
	"github.com/clientpulse/pulse-core/internal/domain/ports"
)

// DefaultEvidenceLimit is the default number of evidence items to retrieve.
const DefaultEvidenceLimit = 10

// EvidenceService retrieves theme-filtered, permission-scoped evidence for a
// signal. Retrieval is degradable: failures produce an empty set, never an
// error, so discovery can proceed on the signal alone.
type EvidenceService struct {
	embedder   ports.Embedder
	evidenceDB ports.EvidenceDB
}

// NewEvidenceService creates a new evidence service.
func NewEvidenceService(embedder ports.Embedder, evidenceDB ports.EvidenceDB) *EvidenceService {
	return &EvidenceService{
		embedder:   embedder,
		evidenceDB: evidenceDB,
	}
}

// Retrieve finds evidence supporting the given signal, scoped to the
// signal's tenant and the given accounts, deduplicated by evidence id.
func (s *EvidenceService) Retrieve(ctx context.Context, signal *entities.Signal, accountIDs []string, limit int) []entities.Evidence {
	if limit <= 0 {
		limit = DefaultEvidenceLimit
	}

	query := signalQueryText(signal)

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		slog.Warn("embedding evidence query failed, continuing without evidence",
			"signal_id", signal.ID, "error", err)
		return nil
	}

	scope := ports.SearchScope{
		TenantID:   signal.TenantID,
		AccountIDs: accountIDs,
		Themes:     signal.EffectiveThemes(),
	}

	found, err := s.evidenceDB.Search(ctx, embedding, scope, limit)
	if err != nil {
		slog.Warn("evidence search failed, continuing without evidence",
			"signal_id", signal.ID, "error", err)
		return nil
	}

	return dedupeEvidence(found)
}

// signalQueryText builds the semantic query from the signal's content.
func signalQueryText(signal *entities.Signal) string {
	parts := []string{signal.Title}
	if signal.Description != "" {
		parts = append(parts, signal.Description)
	}
	parts = append(parts, signal.EffectiveThemes()...)
	return strings.Join(parts, " ")
}

// dedupeEvidence drops duplicate evidence ids, keeping first (best) matches.
func dedupeEvidence(evidence []entities.Evidence) []entities.Evidence {
	seen := make(map[string]bool, len(evidence))
	deduped := make([]entities.Evidence, 0, len(evidence))
	for i := range evidence {
		if evidence[i].ID != "" && seen[evidence[i].ID] {
			continue
		}
		seen[evidence[i].ID] = true
		deduped = append(deduped, evidence[i])
	}
	return deduped
}
