package browser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/switchboard/testutil"
)

// recordingPersistence keeps a detached clone of every committed state so
// tests can assert on commit ordering and content.
type recordingPersistence struct {
	commits []*State
}

var _ Persistence = (*recordingPersistence)(nil)

func (p *recordingPersistence) Commit(_ context.Context, state *State) error {
	p.commits = append(p.commits, state.Clone())
	return nil
}

type failingPersistence struct {
	err error
}

var _ Persistence = failingPersistence{}

func (p failingPersistence) Commit(context.Context, *State) error {
	return p.err
}

func seededEngine(t *testing.T, persistence Persistence) (*Engine, WorkspaceID) {
	t.Helper()

	state, workspaceID := seededState(t)
	engine := NewEngineWithState(persistence, state, 0, testutil.Logger(t))

	return engine, workspaceID
}

func TestDispatchAdvancesRevisionByOne(t *testing.T) {
	t.Parallel()
	engine, workspaceID := seededEngine(t, NoopPersistence{})

	patch, err := engine.Dispatch(context.Background(), NewTab{
		WorkspaceID: workspaceID,
		URL:         "https://example.com",
		MakeActive:  true,
	})

	require.NoError(t, err)
	require.Equal(t, uint64(0), patch.FromRevision)
	require.Equal(t, uint64(1), patch.ToRevision)
	require.Equal(t, uint64(1), engine.Revision())

	active := 0
	for _, tab := range engine.State().Tabs {
		if tab.RuntimeState == TabActive {
			active++
		}
	}
	require.Equal(t, 1, active, "exactly one tab must be Active")
}

func TestNoOpDispatchKeepsRevision(t *testing.T) {
	t.Parallel()
	engine, workspaceID := seededEngine(t, NoopPersistence{})
	ctx := context.Background()

	_, err := engine.Dispatch(ctx, NewTab{WorkspaceID: workspaceID, MakeActive: true})
	require.NoError(t, err)
	tabID := engine.State().Workspaces[workspaceID].TabOrder[0]
	before := engine.Revision()

	patch, err := engine.Dispatch(ctx, ActivateTab{TabID: tabID})

	require.NoError(t, err)
	require.Empty(t, patch.Ops)
	require.Equal(t, before, patch.FromRevision)
	require.Equal(t, before, patch.ToRevision)
	require.Equal(t, before, engine.Revision())
}

func TestCommitObservesPostMutationState(t *testing.T) {
	t.Parallel()
	persistence := &recordingPersistence{}
	engine, workspaceID := seededEngine(t, persistence)

	_, err := engine.Dispatch(context.Background(), NewTab{
		WorkspaceID: workspaceID,
		URL:         "https://example.com",
		MakeActive:  true,
	})

	require.NoError(t, err)
	require.Len(t, persistence.commits, 1)
	require.Len(t, persistence.commits[0].Tabs, 1,
		"the commit must already contain the new tab")
}

func TestReduceErrorSkipsCommit(t *testing.T) {
	t.Parallel()
	persistence := &recordingPersistence{}
	engine, _ := seededEngine(t, persistence)

	_, err := engine.Dispatch(context.Background(), CloseTab{TabID: 99})

	require.ErrorIs(t, err, ErrTabNotFound)
	require.Empty(t, persistence.commits, "a rejected intent must not reach persistence")
}

func TestCommitFailureKeepsMutationAndRevision(t *testing.T) {
	t.Parallel()
	commitErr := errors.New("disk full")
	engine, workspaceID := seededEngine(t, failingPersistence{err: commitErr})

	_, err := engine.Dispatch(context.Background(), NewTab{
		WorkspaceID: workspaceID,
		URL:         "https://example.com",
		MakeActive:  true,
	})

	require.ErrorIs(t, err, commitErr)
	require.Equal(t, uint64(0), engine.Revision(),
		"a failed commit must not advance the revision")
	require.Len(t, engine.State().Tabs, 1,
		"the in-memory mutation is kept on commit failure")
}

func TestSnapshotIsDetached(t *testing.T) {
	t.Parallel()
	engine, workspaceID := seededEngine(t, NoopPersistence{})
	ctx := context.Background()

	snapshot := engine.Snapshot()

	_, err := engine.Dispatch(ctx, NewTab{WorkspaceID: workspaceID, MakeActive: true})
	require.NoError(t, err)

	require.Empty(t, snapshot.State.Tabs, "snapshot must not see later dispatches")
	require.Equal(t, uint64(0), snapshot.Revision)
	require.Equal(t, uint64(1), engine.Revision())
}

func TestUiReadyIsRevisionStable(t *testing.T) {
	t.Parallel()
	engine, _ := seededEngine(t, NoopPersistence{})

	patch, err := engine.Dispatch(context.Background(), UiReady{})

	require.NoError(t, err)
	require.Empty(t, patch.Ops)
	require.Equal(t, patch.FromRevision, patch.ToRevision)
}
