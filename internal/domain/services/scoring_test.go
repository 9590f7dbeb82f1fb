package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clientpulse/pulse-core/internal/domain/entities"
	"github.com/clientpulse/pulse-core/internal/domain/mocks"
)

func TestCalculateDecayFactor(t *testing.T) {
	assert.Equal(t, 1.0, CalculateDecayFactor(0))
	assert.InDelta(t, 0.5, CalculateDecayFactor(30), 1e-9)
	assert.InDelta(t, 0.25, CalculateDecayFactor(60), 1e-9)
	assert.Equal(t, 0.0, CalculateDecayFactor(-1))
}

func TestFinalScore_AllFifties(t *testing.T) {
	b := entities.ScoreBreakdown{Impact: 50, Urgency: 50, Fit: 50, Access: 50, Feasibility: 50, Confidence: 50}
	assert.Equal(t, 50.0, FinalScore(b))
}

func TestFinalScore_Weighted(t *testing.T) {
	b := entities.ScoreBreakdown{Impact: 80, Urgency: 70, Fit: 75, Access: 60, Feasibility: 85}
	// 0.25*80 + 0.20*70 + 0.25*75 + 0.15*60 + 0.15*85 = 74.5
	assert.Equal(t, 74.5, FinalScore(b))
}

func TestFeedbackPenalty_NoRecords(t *testing.T) {
	assert.Equal(t, 0.0, FeedbackPenalty(nil, time.Now()))
}

func TestFeedbackPenalty_Bounds(t *testing.T) {
	now := time.Now()

	// Many fresh rejections: each contributes 1/N, sum clamps at 0.30.
	var records []entities.RejectionRecord
	for i := 0; i < 10; i++ {
		records = append(records, entities.RejectionRecord{RejectedAt: now})
	}
	assert.InDelta(t, 0.30, FeedbackPenalty(records, now), 1e-9)

	// Single fresh rejection contributes its full decayed weight, capped.
	one := []entities.RejectionRecord{{RejectedAt: now}}
	assert.InDelta(t, 0.30, FeedbackPenalty(one, now), 1e-9)

	// A future-dated record contributes nothing.
	future := []entities.RejectionRecord{{RejectedAt: now.Add(48 * time.Hour)}}
	assert.Equal(t, 0.0, FeedbackPenalty(future, now))
}

func TestFeedbackPenalty_MonotonicInRecency(t *testing.T) {
	now := time.Now()
	old := []entities.RejectionRecord{
		{RejectedAt: now.AddDate(0, 0, -80)},
		{RejectedAt: now.AddDate(0, 0, -85)},
	}
	recent := []entities.RejectionRecord{
		{RejectedAt: now.AddDate(0, 0, -1)},
		{RejectedAt: now.AddDate(0, 0, -2)},
	}

	pOld := FeedbackPenalty(old, now)
	pRecent := FeedbackPenalty(recent, now)

	assert.GreaterOrEqual(t, pRecent, pOld)
	assert.GreaterOrEqual(t, pOld, 0.0)
	assert.LessOrEqual(t, pRecent, MaxRejectionWeight)
}

func TestApplySourceReliability(t *testing.T) {
	b := entities.ScoreBreakdown{Confidence: 70}

	adjusted := ApplySourceReliability(b, entities.SourceNews, 1)
	assert.InDelta(t, 70*0.70, adjusted.Confidence, 1e-9)

	// Two confirming sources boost confidence by 15%.
	adjusted = ApplySourceReliability(b, entities.SourceNews, 2)
	assert.InDelta(t, 70*0.70*1.15, adjusted.Confidence, 1e-9)

	// Confidence is capped at 100.
	b.Confidence = 100
	adjusted = ApplySourceReliability(b, entities.SourceInternalCRM, 3)
	assert.Equal(t, 100.0, adjusted.Confidence)
}

func TestSourceReliability_UnknownDefaults(t *testing.T) {
	assert.Equal(t, DefaultSourceReliability, SourceReliability("carrier_pigeon"))
	assert.Equal(t, 0.50, SourceReliability(entities.SourceSocialMedia))
	assert.Equal(t, 1.0, SourceReliability(entities.SourceInternalCRM))
}

func TestApplyFeedbackPenalty(t *testing.T) {
	b := entities.ScoreBreakdown{Fit: 80, Access: 60, Confidence: 70}

	adjusted := ApplyFeedbackPenalty(b, 0.30)
	assert.InDelta(t, 80*(1-0.30*0.8), adjusted.Fit, 1e-9)
	assert.InDelta(t, 60*(1-0.30*0.6), adjusted.Access, 1e-9)
	assert.InDelta(t, 70*(1-0.30*0.3), adjusted.Confidence, 1e-9)

	// Zero penalty is a no-op.
	assert.Equal(t, b, ApplyFeedbackPenalty(b, 0))
}

func TestScoringEngine_ScoreWithFeedback_NoHistory(t *testing.T) {
	store := mocks.NewDocumentStore()
	engine := NewScoringEngine(store)

	base := entities.ScoreBreakdown{Impact: 80, Urgency: 70, Fit: 75, Access: 60, Feasibility: 85, Confidence: 70}
	result := engine.ScoreWithFeedback(context.Background(), "t1", "acct-1", "market", entities.SourceNews, base, 1)

	assert.Equal(t, 74.5, result.Score)
	assert.Equal(t, 0.0, result.FeedbackPenalty)
	assert.Equal(t, 0.70, result.SourceReliability)
	// Reliability weighting touched confidence only.
	assert.InDelta(t, 70*0.70, result.Breakdown.Confidence, 1e-9)
	assert.Equal(t, base.Fit, result.Breakdown.Fit)
}

func TestScoringEngine_ScoreWithFeedback_WithRejections(t *testing.T) {
	store := mocks.NewDocumentStore()
	engine := NewScoringEngine(store)
	ctx := context.Background()

	require.NoError(t, engine.RecordRejection(ctx, "t1", &entities.RejectionRecord{
		AccountID: "acct-1",
		Theme:     "market",
		UserID:    "am-1",
	}))

	base := entities.ScoreBreakdown{Impact: 80, Urgency: 70, Fit: 75, Access: 60, Feasibility: 85, Confidence: 70}
	result := engine.ScoreWithFeedback(ctx, "t1", "acct-1", "market", entities.SourceNews, base, 1)

	// One fresh rejection drives the maximum 30% penalty.
	assert.InDelta(t, 0.30, result.FeedbackPenalty, 1e-6)
	assert.Less(t, result.Score, 74.5)
	assert.Less(t, result.Breakdown.Fit, base.Fit)
	assert.Less(t, result.Breakdown.Access, base.Access)

	// A different theme is unaffected.
	other := engine.ScoreWithFeedback(ctx, "t1", "acct-1", "growth", entities.SourceNews, base, 1)
	assert.Equal(t, 0.0, other.FeedbackPenalty)
	assert.Equal(t, 74.5, other.Score)
}

func TestScoringEngine_ScoreWithFeedback_StoreErrorFallsBack(t *testing.T) {
	store := mocks.NewDocumentStore()
	store.ListRejectionsErr = errors.New("store unavailable")
	engine := NewScoringEngine(store)

	base := entities.ScoreBreakdown{Impact: 80, Urgency: 70, Fit: 75, Access: 60, Feasibility: 85, Confidence: 70}
	result := engine.ScoreWithFeedback(context.Background(), "t1", "acct-1", "market", entities.SourceNews, base, 2)

	// The engine never fails: the unadjusted breakdown scores as-is.
	assert.Equal(t, 74.5, result.Score)
	assert.Equal(t, 0.0, result.FeedbackPenalty)
	assert.Equal(t, base, result.Breakdown)
}

func TestCrossSourceBoost(t *testing.T) {
	assert.Equal(t, 1.0, CrossSourceBoost(0))
	assert.Equal(t, 1.0, CrossSourceBoost(1))
	assert.Equal(t, 1.15, CrossSourceBoost(2))
	assert.Equal(t, 1.25, CrossSourceBoost(3))
	assert.Equal(t, 1.25, CrossSourceBoost(7))
}
