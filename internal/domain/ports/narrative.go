package ports

import (
	"context"

	"github.com/clientpulse/pulse-core/internal/domain/entities"
)

// CardRequest carries everything the narrative service needs to build an
// opportunity card for one signal.
type CardRequest struct {
	TenantID      string
	AccountID     string
	AccountName   string
	SignalID      string
	SignalTitle   string
	SignalSummary string
	SourceType    entities.SourceType
	Themes        []string
	Evidence      []entities.Evidence
}

// Card is the generated opportunity narrative plus the raw score breakdown
// before any reliability or feedback adjustment.
type Card struct {
	Title            string                  `json:"title"`
	Narrative        string                  `json:"narrative"`
	KeyPoints        []string                `json:"key_points,omitempty"`
	ActionItems      []string                `json:"action_items,omitempty"`
	StakeholderHints []string                `json:"stakeholder_hints,omitempty"`
	Breakdown        entities.ScoreBreakdown `json:"score_breakdown"`
}

// OutreachRequest carries the inputs for outreach draft generation.
type OutreachRequest struct {
	AccountName      string
	OpportunityTitle string
	Summary          string
	StakeholderHints []string
}

// NarrativeClient defines the interface for LLM-backed narrative operations.
// Implementations must tolerate malformed model responses by falling back to
// defaults rather than failing the caller.
type NarrativeClient interface {
	// ExtractThemes extracts business themes from free text.
	ExtractThemes(ctx context.Context, text string) ([]string, error)

	// GenerateCard builds an opportunity card from a signal and its evidence.
	GenerateCard(ctx context.Context, req CardRequest) (*Card, error)

	// GenerateOutreach drafts outreach variants for a created opportunity.
	GenerateOutreach(ctx context.Context, req OutreachRequest) ([]entities.OutreachVariant, error)
}
