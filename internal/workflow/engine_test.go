package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clientpulse/pulse-core/internal/domain/entities"
)

func TestEngine_SpawnAndRelease(t *testing.T) {
	e := NewEngine()

	ctx, release := e.Spawn(context.Background(), "run-1")
	assert.True(t, e.Running("run-1"))
	assert.NoError(t, ctx.Err())

	release()
	assert.False(t, e.Running("run-1"))
	assert.Error(t, ctx.Err())

	// Release is idempotent.
	release()
}

func TestEngine_CancelPropagatesToChildren(t *testing.T) {
	e := NewEngine()

	parentCtx, parentRelease := e.Spawn(context.Background(), "parent")
	defer parentRelease()
	childCtx, childRelease := e.Spawn(parentCtx, "child")
	defer childRelease()
	grandCtx, grandRelease := e.Spawn(childCtx, "grandchild")
	defer grandRelease()

	unrelatedCtx, unrelatedRelease := e.Spawn(context.Background(), "other")
	defer unrelatedRelease()

	e.Cancel("parent")

	assert.Error(t, parentCtx.Err())
	assert.Error(t, childCtx.Err())
	assert.Error(t, grandCtx.Err())
	assert.NoError(t, unrelatedCtx.Err())
}

func TestEngine_SubmitDecision_NoWaiter(t *testing.T) {
	e := NewEngine()

	err := e.SubmitDecision("missing", entities.Decision{Action: entities.DecisionApprove})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoWaitingInstance)
}

func TestEngine_SubmitDecision_ExactlyOnce(t *testing.T) {
	e := NewEngine()
	ch := e.awaitDecision("run-1")
	defer e.dropDecision("run-1")

	first := entities.Decision{Action: entities.DecisionApprove, UserID: "am-1", Timestamp: time.Now()}
	require.NoError(t, e.SubmitDecision("run-1", first))

	// Second submission before the waiter drains is rejected.
	err := e.SubmitDecision("run-1", entities.Decision{Action: entities.DecisionReject})
	assert.ErrorIs(t, err, ErrDecisionAlreadySubmitted)

	got := <-ch
	assert.Equal(t, entities.DecisionApprove, got.Action)
	assert.Equal(t, "am-1", got.UserID)
}

func TestEngine_SubmitDecision_AfterDrop(t *testing.T) {
	e := NewEngine()
	e.awaitDecision("run-1")
	e.dropDecision("run-1")

	err := e.SubmitDecision("run-1", entities.Decision{Action: entities.DecisionApprove})
	assert.ErrorIs(t, err, ErrNoWaitingInstance)
}

func TestStableSignalID_Deterministic(t *testing.T) {
	a := StableSignalID("t1", "acct-1", "https://example.com/news/1")
	b := StableSignalID("t1", "acct-1", "https://example.com/news/1")
	c := StableSignalID("t1", "acct-1", "https://example.com/news/2")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, "sig-")
}
