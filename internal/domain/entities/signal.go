// Package entities contains core domain data structures.
package entities

import "time"

// SourceType categorizes where a signal originated. The scoring engine maps
// each source type to a reliability weight.
type SourceType string

// Known source types.
const (
	SourceSECFiling10K    SourceType = "sec_filing_10k"
	SourceSECFiling8K     SourceType = "sec_filing_8k"
	SourceEarningsCall    SourceType = "earnings_call"
	SourcePressRelease    SourceType = "press_release"
	SourceNews            SourceType = "news"
	SourceJobPosting      SourceType = "job_posting"
	SourceInsiderTrade    SourceType = "insider_trade"
	SourcePatentFiling    SourceType = "patent_filing"
	SourceMergerActivity  SourceType = "m_a"
	SourceSocialMedia     SourceType = "social_media"
	SourceInternalCRM     SourceType = "internal_crm"
	SourceInternalProject SourceType = "internal_project"
)

// SignalStatus tracks a signal's progress through the ingestion pipeline.
type SignalStatus string

// Signal lifecycle statuses. Review completion statuses are derived via
// ReviewCompleteStatus.
const (
	SignalPending    SignalStatus = "pending"
	SignalProcessing SignalStatus = "processing"
	SignalIngested   SignalStatus = "ingested"
	SignalProcessed  SignalStatus = "processed"
	SignalFailed     SignalStatus = "failed"
)

// ReviewCompleteStatus returns the signal status recorded after a review
// decision, e.g. "review_complete_approve".
func ReviewCompleteStatus(action DecisionAction) SignalStatus {
	return SignalStatus("review_complete_" + string(action))
}

// DefaultThemes is the fallback theme set used when a signal carries none.
var DefaultThemes = []string{"market", "growth", "technology", "competitive"}

// Signal is a raw, timestamped indicator of business activity scoped to one
// account. Content is immutable once processed; only WorkflowStatus moves.
type Signal struct {
	ID             string       `json:"id"`
	TenantID       string       `json:"tenant_id"`
	AccountID      string       `json:"account_id"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	SourceType     SourceType   `json:"source_type"`
	SourceURL      string       `json:"source_url"`
	SearchTerm     string       `json:"search_term,omitempty"`
	Themes         []string     `json:"themes,omitempty"`
	WorkflowStatus SignalStatus `json:"workflow_status"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// EffectiveThemes returns the signal's themes, or DefaultThemes when it
// carries none.
func (s *Signal) EffectiveThemes() []string {
	if len(s.Themes) > 0 {
		return s.Themes
	}
	return DefaultThemes
}

// PrimaryTheme returns the first theme, used to key rejection history.
func (s *Signal) PrimaryTheme() string {
	return s.EffectiveThemes()[0]
}
