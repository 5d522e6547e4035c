package browser

import (
	"context"
	"fmt"
	"log/slog"
)

// Persistence is the durable-storage contract the engine calls once per
// successful dispatch, synchronously, with the complete post-mutation state.
// Implementations own serialization; full-state (not incremental) semantics.
type Persistence interface {
	Commit(ctx context.Context, state *State) error
}

// NoopPersistence discards commits. Used for ephemeral and test runs.
type NoopPersistence struct{}

var _ Persistence = NoopPersistence{}

// Commit implements Persistence by doing nothing.
func (NoopPersistence) Commit(context.Context, *State) error { return nil }

// Engine sequences reduction, persistence, and revision bookkeeping. It owns
// its State exclusively and assumes one caller drives all dispatches
// serially; it holds no locks of its own.
type Engine struct {
	state       *State
	revision    uint64
	persistence Persistence
	logger      *slog.Logger
}

// NewEngine wraps an empty state. Callers that need a guaranteed-usable
// state should Bootstrap it first.
func NewEngine(persistence Persistence, logger *slog.Logger) *Engine {
	return NewEngineWithState(persistence, NewState(), 0, logger)
}

// NewEngineWithState wraps a previously loaded state and revision. The engine
// takes ownership of the state.
func NewEngineWithState(persistence Persistence, state *State, revision uint64, logger *slog.Logger) *Engine {
	return &Engine{
		state:       state,
		revision:    revision,
		persistence: persistence,
		logger:      logger,
	}
}

// Revision returns the current revision counter.
func (e *Engine) Revision() uint64 {
	return e.revision
}

// State returns the engine-owned state. Callers must not retain it across
// dispatches or hand it to other goroutines; use Snapshot for that.
func (e *Engine) State() *State {
	return e.state
}

// Snapshot is a detached copy of the engine's state at one revision.
type Snapshot struct {
	State    *State
	Revision uint64
}

// Snapshot clones the current state so the copy can outlive later dispatches.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{State: e.state.Clone(), Revision: e.revision}
}

// Dispatch applies one intent. On a reducer error nothing was mutated and no
// patch is produced. On success the new state is committed to persistence
// before the patch is returned: persisted state must never lag behind a
// revision the caller has already observed, because the caller uses the
// patch to materialize live resources.
//
// A commit failure aborts the dispatch after the in-memory mutation has
// already been applied; the mutation is not rolled back and the revision does
// not advance. The next successful dispatch re-commits the full state, which
// makes the failure recoverable by retrying any intent.
func (e *Engine) Dispatch(ctx context.Context, intent Intent) (Patch, error) {
	fromRevision := e.revision

	ops, err := Apply(e.state, intent)
	if err != nil {
		return Patch{}, fmt.Errorf("reducing intent: %w", err)
	}

	if err := e.persistence.Commit(ctx, e.state); err != nil {
		e.logger.Error("state commit failed, in-memory state retained",
			"revision", fromRevision, "error", err)
		return Patch{}, fmt.Errorf("persisting state: %w", err)
	}

	toRevision := fromRevision
	if len(ops) > 0 {
		toRevision = fromRevision + 1
	}
	e.revision = toRevision

	return Patch{Ops: ops, FromRevision: fromRevision, ToRevision: toRevision}, nil
}
