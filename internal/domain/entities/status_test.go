package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTransitionAllowed(t *testing.T) {
	allowed := []struct{ from, to OpportunityStatus }{
		{StatusDraft, StatusPendingReview},
		{StatusPendingReview, StatusApproved},
		{StatusPendingReview, StatusRejected},
		{StatusPendingReview, StatusNeedsMoreEvidence},
		{StatusPendingReview, StatusDraft},
		{StatusNeedsMoreEvidence, StatusDraft},
		{StatusApproved, StatusActivationRequested},
		{StatusActivationRequested, StatusActivated},
		{StatusActivationRequested, StatusActivationPartial},
		{StatusActivationRequested, StatusActivationFailed},
		{StatusActivationPartial, StatusActivationRequested},
	}
	for _, tc := range allowed {
		assert.True(t, IsTransitionAllowed(tc.from, tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}
}

func TestIsTransitionAllowed_NoSkippingReview(t *testing.T) {
	// Nothing may reach approved or activation without passing pending_review.
	assert.False(t, IsTransitionAllowed(StatusDraft, StatusApproved))
	assert.False(t, IsTransitionAllowed(StatusDraft, StatusActivationRequested))
	assert.False(t, IsTransitionAllowed(StatusDraft, StatusActivated))
	assert.False(t, IsTransitionAllowed(StatusApproved, StatusActivated))
}

func TestIsTransitionAllowed_TerminalStates(t *testing.T) {
	for _, terminal := range []OpportunityStatus{StatusActivated, StatusRejected, StatusActivationFailed} {
		assert.True(t, IsTerminal(terminal), "%s should be terminal", terminal)
		for _, to := range []OpportunityStatus{StatusDraft, StatusPendingReview, StatusApproved, StatusActivationRequested} {
			assert.False(t, IsTransitionAllowed(terminal, to), "%s -> %s should be rejected", terminal, to)
		}
	}
	assert.False(t, IsTerminal(StatusActivationPartial))
	assert.False(t, IsTerminal(StatusPendingReview))
}

func TestParseOpportunityStatus(t *testing.T) {
	st, err := ParseOpportunityStatus("pending_review")
	require.NoError(t, err)
	assert.Equal(t, StatusPendingReview, st)

	_, err = ParseOpportunityStatus("cancelled")
	require.Error(t, err)
}

func TestStatusForDecision(t *testing.T) {
	assert.Equal(t, StatusApproved, StatusForDecision(DecisionApprove))
	assert.Equal(t, StatusRejected, StatusForDecision(DecisionReject))
	assert.Equal(t, StatusDraft, StatusForDecision(DecisionRefine))
	assert.Equal(t, StatusPendingReview, StatusForDecision(DecisionUnknown))
}

func TestParseDecisionAction(t *testing.T) {
	assert.Equal(t, DecisionApprove, ParseDecisionAction("Approve"))
	assert.Equal(t, DecisionReject, ParseDecisionAction(" reject "))
	assert.Equal(t, DecisionRefine, ParseDecisionAction("refine"))
	assert.Equal(t, DecisionUnknown, ParseDecisionAction("maybe later"))
}

func TestSignalEffectiveThemes(t *testing.T) {
	s := &Signal{}
	assert.Equal(t, DefaultThemes, s.EffectiveThemes())
	assert.Equal(t, "market", s.PrimaryTheme())

	s.Themes = []string{"expansion", "hiring"}
	assert.Equal(t, []string{"expansion", "hiring"}, s.EffectiveThemes())
	assert.Equal(t, "expansion", s.PrimaryTheme())
}

func TestCrossSourceCount(t *testing.T) {
	signal := &Signal{SourceType: SourceNews}
	assert.Equal(t, 1, CrossSourceCount(signal, nil))

	evidence := []Evidence{
		{SourceType: SourceNews},
		{SourceType: SourceJobPosting},
		{SourceType: SourceJobPosting},
		{SourceType: ""},
	}
	assert.Equal(t, 2, CrossSourceCount(signal, evidence))
}
