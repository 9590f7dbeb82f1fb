package entities

import "time"

// Evidence is one semantically retrieved supporting item for an opportunity
// card. Items are permission-scoped by tenant and account at retrieval time.
type Evidence struct {
	ID         string     `json:"id"`
	TenantID   string     `json:"tenant_id"`
	AccountID  string     `json:"account_id"`
	SignalID   string     `json:"signal_id,omitempty"`
	Theme      string     `json:"theme,omitempty"`
	SourceType SourceType `json:"source_type,omitempty"`
	Text       string     `json:"text"`
	Score      float64    `json:"score"`
	Embedding  []float32  `json:"embedding,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// CrossSourceCount counts the independent source types corroborating a
// signal: the signal's own source plus each distinct evidence source type.
func CrossSourceCount(signal *Signal, evidence []Evidence) int {
	seen := map[SourceType]bool{signal.SourceType: true}
	for i := range evidence {
		if evidence[i].SourceType != "" {
			seen[evidence[i].SourceType] = true
		}
	}
	return len(seen)
}
