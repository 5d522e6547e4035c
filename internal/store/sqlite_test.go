package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/switchboard/internal/browser"
	"github.com/tonimelisma/switchboard/testutil"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := New(":memory:", testutil.Logger(t))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func buildState(t *testing.T) *browser.State {
	t.Helper()

	state := browser.NewState()
	browser.Bootstrap(state)
	workspaceID := state.ActiveWorkspaceID()

	apply := func(intent browser.Intent) {
		t.Helper()
		_, err := browser.Apply(state, intent)
		require.NoError(t, err)
	}
	apply(browser.NewTab{WorkspaceID: workspaceID, URL: "https://one.example", MakeActive: true})
	apply(browser.NewTab{WorkspaceID: workspaceID, URL: "https://two.example", MakeActive: true})
	apply(browser.SettingSet{Key: "window.width", Value: browser.IntSetting(1280)})
	apply(browser.SettingSet{Key: "theme", Value: browser.TextSetting("dark")})
	apply(browser.SettingSet{Key: "tabs.mute_by_default", Value: browser.BoolSetting(true)})

	return state
}

func TestEmptyDatabaseLoadsAsNil(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	state, err := s.Load(context.Background())

	require.NoError(t, err)
	require.Nil(t, state, "a database with no profiles is a first run")
}

func TestCommitLoadRoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	committed := buildState(t)

	require.NoError(t, s.Commit(ctx, committed))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)

	require.Equal(t, committed.ActiveProfileID, loaded.ActiveProfileID)
	require.Len(t, loaded.Profiles, len(committed.Profiles))
	require.Len(t, loaded.Workspaces, len(committed.Workspaces))
	require.Len(t, loaded.Tabs, len(committed.Tabs))
	require.Equal(t, committed.Settings, loaded.Settings)

	workspaceID := committed.ActiveWorkspaceID()
	require.Equal(t, committed.Workspaces[workspaceID].TabOrder,
		loaded.Workspaces[workspaceID].TabOrder)

	activeTab := loaded.Tabs[loaded.ActiveTabID()]
	require.Equal(t, "https://two.example", activeTab.URL)
	require.Equal(t, browser.TabActive, activeTab.RuntimeState)
}

func TestCommitIsFullRewrite(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	state := buildState(t)
	require.NoError(t, s.Commit(ctx, state))

	closing := state.Workspaces[state.ActiveWorkspaceID()].TabOrder[0]
	_, err := browser.Apply(state, browser.CloseTab{TabID: closing})
	require.NoError(t, err)
	require.NoError(t, s.Commit(ctx, state))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	require.NotContains(t, loaded.Tabs, closing,
		"rows for removed entities must not survive the rewrite")
	require.Len(t, loaded.Tabs, 1)
}

func TestLoadNormalizesOrphans(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Commit(ctx, buildState(t)))

	// Simulate an out-of-band edit: a tab pointing at a workspace that
	// does not exist.
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tabs (id, profile_id, workspace_id, url) VALUES (999, 1, 888, 'https://orphan')`)
	require.NoError(t, err)

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	require.NotContains(t, loaded.Tabs, browser.TabID(999),
		"orphaned tabs are dropped on load")
}

func TestLoadRejectsUnsupportedRuntimeState(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Commit(ctx, buildState(t)))

	_, err := s.db.ExecContext(ctx, `UPDATE tabs SET runtime_state = 42`)
	require.NoError(t, err)

	_, err = s.Load(ctx)
	require.Error(t, err)
}

func TestStoreDrivesEngine(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	state := browser.NewState()
	browser.Bootstrap(state)
	engine := browser.NewEngineWithState(s, state, 0, testutil.Logger(t))

	_, err := engine.Dispatch(ctx, browser.NewTab{
		WorkspaceID: state.ActiveWorkspaceID(),
		URL:         "https://example.com",
		MakeActive:  true,
	})
	require.NoError(t, err)

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded.Tabs, 1)
}
