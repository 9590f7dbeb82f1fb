// Package services contains domain business logic.
package services

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/clientpulse/pulse-core/internal/domain/entities"
	"github.com/clientpulse/pulse-core/internal/domain/ports"
)

// Decay parameters for the rejection feedback loop.
const (
	// DecayHalfLifeDays is the half-life of a rejection's influence.
	DecayHalfLifeDays = 30.0
	// MaxRejectionWeight caps the cumulative feedback penalty at 30%.
	MaxRejectionWeight = 0.30
	// DefaultSourceReliability applies to unrecognized source types.
	DefaultSourceReliability = 0.60
)

// Final-score factor weights. They sum to 1.0, so a breakdown with every
// factor at 50 scores exactly 50.0.
const (
	weightImpact      = 0.25
	weightUrgency     = 0.20
	weightFit         = 0.25
	weightAccess      = 0.15
	weightFeasibility = 0.15
)

// sourceReliability maps each source type to a weight in [0.50, 1.00].
var sourceReliability = map[entities.SourceType]float64{
	entities.SourceSECFiling10K:    0.95,
	entities.SourceSECFiling8K:     0.93,
	entities.SourceEarningsCall:    0.90,
	entities.SourcePressRelease:    0.85,
	entities.SourceNews:            0.70,
	entities.SourceJobPosting:      0.75,
	entities.SourceInsiderTrade:    0.88,
	entities.SourcePatentFiling:    0.80,
	entities.SourceMergerActivity:  0.92,
	entities.SourceSocialMedia:     0.50,
	entities.SourceInternalCRM:     1.0,
	entities.SourceInternalProject: 0.95,
}

// SourceReliability returns the reliability weight for a source type.
func SourceReliability(sourceType entities.SourceType) float64 {
	if w, ok := sourceReliability[sourceType]; ok {
		return w
	}
	return DefaultSourceReliability
}

// CrossSourceBoost returns the confidence multiplier for the number of
// independent confirming sources: 1.0 for one, 1.15 for two, 1.25 for three
// or more.
func CrossSourceBoost(count int) float64 {
	switch {
	case count >= 3:
		return 1.25
	case count == 2:
		return 1.15
	default:
		return 1.0
	}
}

// CalculateDecayFactor returns the decay multiplier in [0, 1] for a
// rejection this many days old: 0.5^(days/30). A record dated in the future
// contributes no penalty at all.
func CalculateDecayFactor(daysSince float64) float64 {
	if daysSince < 0 {
		return 0.0
	}
	decay := math.Pow(0.5, daysSince/DecayHalfLifeDays)
	return math.Max(0.0, math.Min(1.0, decay))
}

// FeedbackPenalty computes the cumulative rejection penalty for a set of
// matching rejection records. Each record contributes decay/N; the total is
// clamped to [0, MaxRejectionWeight]. No records means no penalty.
func FeedbackPenalty(records []entities.RejectionRecord, now time.Time) float64 {
	if len(records) == 0 {
		return 0.0
	}

	total := 0.0
	for i := range records {
		daysSince := now.Sub(records[i].RejectedAt).Hours() / 24
		total += CalculateDecayFactor(daysSince) / float64(len(records))
	}

	return math.Min(total, MaxRejectionWeight)
}

// ApplySourceReliability weights the confidence factor by source reliability
// and the cross-source confirmation boost, capped at 100.
func ApplySourceReliability(b entities.ScoreBreakdown, sourceType entities.SourceType, crossSourceCount int) entities.ScoreBreakdown {
	adjusted := b
	adjusted.Confidence = math.Min(100, b.Confidence*SourceReliability(sourceType)*CrossSourceBoost(crossSourceCount))
	return adjusted
}

// ApplyFeedbackPenalty reduces the customer-alignment factors by the
// feedback penalty. Fit is hit hardest, then access, then confidence; each
// is floored at 0. Reliability weighting must be applied before this.
func ApplyFeedbackPenalty(b entities.ScoreBreakdown, penalty float64) entities.ScoreBreakdown {
	if penalty <= 0 {
		return b
	}

	adjusted := b
	adjusted.Fit = math.Max(0, b.Fit*(1.0-penalty*0.8))
	adjusted.Access = math.Max(0, b.Access*(1.0-penalty*0.6))
	adjusted.Confidence = math.Max(0, b.Confidence*(1.0-penalty*0.3))
	return adjusted
}

// FinalScore computes the weighted opportunity score from a breakdown,
// rounded to one decimal place. Confidence does not enter the score.
func FinalScore(b entities.ScoreBreakdown) float64 {
	score := b.Impact*weightImpact +
		b.Urgency*weightUrgency +
		b.Fit*weightFit +
		b.Access*weightAccess +
		b.Feasibility*weightFeasibility
	return math.Round(score*10) / 10
}

// ScoreResult is the outcome of a full feedback-loop scoring pass.
type ScoreResult struct {
	Score             float64                 `json:"score"`
	Breakdown         entities.ScoreBreakdown `json:"score_breakdown"`
	FeedbackPenalty   float64                 `json:"feedback_penalty"`
	SourceReliability float64                 `json:"source_reliability"`
	CrossSourceCount  int                     `json:"cross_source_count"`
}

// ScoringEngine combines raw factor scores, source reliability, cross-source
// confirmation and decay-weighted rejection history into a final score.
type ScoringEngine struct {
	store ports.DocumentStore
	now   func() time.Time
}

// NewScoringEngine creates a scoring engine backed by the given store.
func NewScoringEngine(store ports.DocumentStore) *ScoringEngine {
	return &ScoringEngine{
		store: store,
		now:   time.Now,
	}
}

// RecordRejection appends a rejection to the feedback memory.
func (e *ScoringEngine) RecordRejection(ctx context.Context, tenantID string, rec *entities.RejectionRecord) error {
	if rec.RejectedAt.IsZero() {
		rec.RejectedAt = e.now()
	}
	return e.store.AppendRejection(ctx, tenantID, rec)
}

// ScoreWithFeedback runs the full scoring pipeline: source reliability
// weighting first, then the decay-weighted rejection penalty, then the
// weighted final score. It never fails: when rejection history cannot be
// read, the unadjusted breakdown scores as-is with a zero penalty.
func (e *ScoringEngine) ScoreWithFeedback(
	ctx context.Context,
	tenantID, accountID, theme string,
	sourceType entities.SourceType,
	base entities.ScoreBreakdown,
	crossSourceCount int,
) ScoreResult {
	if crossSourceCount < 1 {
		crossSourceCount = 1
	}

	adjusted := ApplySourceReliability(base, sourceType, crossSourceCount)

	records, err := e.store.ListRejections(ctx, tenantID, accountID, theme)
	if err != nil {
		slog.Error("fetching rejection history failed, scoring without feedback",
			"account_id", accountID, "theme", theme, "error", err)
		return ScoreResult{
			Score:             FinalScore(base),
			Breakdown:         base,
			FeedbackPenalty:   0,
			SourceReliability: SourceReliability(sourceType),
			CrossSourceCount:  crossSourceCount,
		}
	}

	penalty := FeedbackPenalty(records, e.now())
	adjusted = ApplyFeedbackPenalty(adjusted, penalty)

	if penalty > 0 {
		slog.Debug("applied feedback penalty",
			"account_id", accountID, "theme", theme,
			"penalty", penalty, "rejections", len(records))
	}

	return ScoreResult{
		Score:             FinalScore(adjusted),
		Breakdown:         adjusted,
		FeedbackPenalty:   penalty,
		SourceReliability: SourceReliability(sourceType),
		CrossSourceCount:  crossSourceCount,
	}
}
