package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/clientpulse/pulse-core/internal/domain/entities"
)

// ErrNoWaitingInstance is returned when a decision targets a run that is not
// currently waiting for one.
var ErrNoWaitingInstance = errors.New("no process instance waiting for a decision")

// ErrDecisionAlreadySubmitted is returned when a second decision arrives for
// a run that already received one. Decisions are delivered exactly once.
var ErrDecisionAlreadySubmitted = errors.New("decision already submitted for this run")

type ctxKey int

const runIDKey ctxKey = iota

// Engine tracks running process instances and routes review decisions to
// them. Instances form a tree: cancelling a run cancels every descendant.
type Engine struct {
	mu        sync.Mutex
	instances map[string]*instance
	decisions map[string]chan entities.Decision
}

type instance struct {
	id       string
	parentID string
	cancel   context.CancelFunc
}

// NewEngine creates an empty engine.
func NewEngine() *Engine {
	return &Engine{
		instances: make(map[string]*instance),
		decisions: make(map[string]chan entities.Decision),
	}
}

// Spawn registers a process instance under the given run id and returns its
// context plus a release function. The parent run id, if any, is taken from
// the caller's context so cancellation propagates down the tree. Release is
// idempotent and must be called when the run finishes.
func (e *Engine) Spawn(ctx context.Context, id string) (context.Context, func()) {
	childCtx, cancel := context.WithCancel(ctx)
	childCtx = context.WithValue(childCtx, runIDKey, id)

	e.mu.Lock()
	e.instances[id] = &instance{
		id:       id,
		parentID: parentRunID(ctx),
		cancel:   cancel,
	}
	e.mu.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			cancel()
			e.mu.Lock()
			delete(e.instances, id)
			e.mu.Unlock()
		})
	}
	return childCtx, release
}

// Cancel cancels the run with the given id and every descendant run.
func (e *Engine) Cancel(id string) {
	e.mu.Lock()
	doomed := map[string]bool{id: true}
	// Walk until the descendant set stops growing.
	for {
		grew := false
		for _, inst := range e.instances {
			if doomed[inst.parentID] && !doomed[inst.id] {
				doomed[inst.id] = true
				grew = true
			}
		}
		if !grew {
			break
		}
	}
	var cancels []context.CancelFunc
	for runID := range doomed {
		if inst, ok := e.instances[runID]; ok {
			cancels = append(cancels, inst.cancel)
		}
	}
	e.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// Running reports whether a run with the given id is currently registered.
func (e *Engine) Running(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.instances[id]
	return ok
}

// SubmitDecision delivers a review decision to the run waiting under the
// given id. The first decision wins; a late or duplicate submission is
// rejected so the caller can surface it.
func (e *Engine) SubmitDecision(id string, d entities.Decision) error {
	e.mu.Lock()
	ch, ok := e.decisions[id]
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("submitting decision for run %s: %w", id, ErrNoWaitingInstance)
	}

	select {
	case ch <- d:
		return nil
	default:
		slog.Warn("duplicate decision dropped", "run_id", id, "action", d.Action, "user_id", d.UserID)
		return fmt.Errorf("submitting decision for run %s: %w", id, ErrDecisionAlreadySubmitted)
	}
}

// awaitDecision registers a buffered decision channel for the run. The
// buffer of one lets SubmitDecision hand off without blocking even when the
// waiter is between select iterations.
func (e *Engine) awaitDecision(id string) chan entities.Decision {
	ch := make(chan entities.Decision, 1)
	e.mu.Lock()
	e.decisions[id] = ch
	e.mu.Unlock()
	return ch
}

// dropDecision removes the run's decision channel. Decisions arriving after
// this point get ErrNoWaitingInstance.
func (e *Engine) dropDecision(id string) {
	e.mu.Lock()
	delete(e.decisions, id)
	e.mu.Unlock()
}

// parentRunID extracts the run id stamped into the context by Spawn, or ""
// when the caller is not running inside a process.
func parentRunID(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey).(string); ok {
		return id
	}
	return ""
}
