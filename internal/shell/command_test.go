package shell

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/switchboard/internal/browser"
)

func seededState(t *testing.T) *browser.State {
	t.Helper()

	state := browser.NewState()
	browser.Bootstrap(state)

	return state
}

func TestDecodeCommandNormalizesText(t *testing.T) {
	t.Parallel()

	// The combining sequence e + U+0301 must collapse to the composed
	// form U+00E9.
	cmd, err := DecodeCommand([]byte("{\"type\":\"new_profile\",\"name\":\"Cafe\u0301\"}"))

	require.NoError(t, err)
	require.Equal(t, "Caf\u00e9", cmd.Name)
}

func TestCommandResolution(t *testing.T) {
	t.Parallel()
	state := seededState(t)

	cases := []struct {
		name string
		wire string
		want browser.Intent
	}{
		{
			name: "new tab",
			wire: `{"type":"new_tab","workspace_id":1,"url":"https://x","make_active":true}`,
			want: browser.NewTab{WorkspaceID: 1, URL: "https://x", MakeActive: true},
		},
		{
			name: "close tab",
			wire: `{"type":"close_tab","tab_id":4}`,
			want: browser.CloseTab{TabID: 4},
		},
		{
			name: "move tab",
			wire: `{"type":"move_tab","tab_id":4,"workspace_id":2,"index":1}`,
			want: browser.MoveTab{TabID: 4, WorkspaceID: 2, Index: 1},
		},
		{
			name: "new workspace resolves active profile",
			wire: `{"type":"new_workspace","name":"Research"}`,
			want: browser.NewWorkspace{ProfileID: state.ActiveProfileID, Name: "Research"},
		},
		{
			name: "setting set",
			wire: `{"type":"setting_set","key":"theme","value":{"kind":"text","value":"dark"}}`,
			want: browser.SettingSet{Key: "theme", Value: browser.TextSetting("dark")},
		},
		{
			name: "observe loading",
			wire: `{"type":"observe_loading","tab_id":4,"loading":true}`,
			want: browser.ObserveTabLoading{TabID: 4, Loading: true},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd, err := DecodeCommand([]byte(tc.wire))
			require.NoError(t, err)

			intent, err := cmd.Intent(state)
			require.NoError(t, err)
			require.Equal(t, tc.want, intent)
		})
	}
}

func TestNavigateActiveWithActiveTab(t *testing.T) {
	t.Parallel()
	state := seededState(t)
	workspaceID := state.ActiveWorkspaceID()
	_, err := browser.Apply(state, browser.NewTab{WorkspaceID: workspaceID, MakeActive: true})
	require.NoError(t, err)
	tabID := state.ActiveTabID()
	require.NotZero(t, tabID)

	cmd, err := DecodeCommand([]byte(`{"type":"navigate_active","url":"https://x"}`))
	require.NoError(t, err)

	intent, err := cmd.Intent(state)

	require.NoError(t, err)
	require.Equal(t, browser.Navigate{TabID: tabID, URL: "https://x"}, intent)
}

func TestNavigateActiveWithoutActiveTabCreatesOne(t *testing.T) {
	t.Parallel()
	state := seededState(t)
	workspaceID := state.ActiveWorkspaceID()

	cmd, err := DecodeCommand([]byte(`{"type":"navigate_active","url":"https://x"}`))
	require.NoError(t, err)

	intent, err := cmd.Intent(state)

	require.NoError(t, err)
	require.Equal(t, browser.NewTab{WorkspaceID: workspaceID, URL: "https://x", MakeActive: true}, intent)
}

func TestNavigationToInternalURLBlocked(t *testing.T) {
	t.Parallel()
	state := seededState(t)

	for _, wire := range []string{
		`{"type":"navigate","tab_id":1,"url":"app://ui/settings"}`,
		`{"type":"navigate_active","url":"app://ui/settings"}`,
	} {
		cmd, err := DecodeCommand([]byte(wire))
		require.NoError(t, err)

		_, err = cmd.Intent(state)
		require.ErrorIs(t, err, ErrBlockedNavigation)
	}
}

func TestUnknownCommandRejected(t *testing.T) {
	t.Parallel()
	state := seededState(t)

	cmd, err := DecodeCommand([]byte(`{"type":"self_destruct"}`))
	require.NoError(t, err)

	_, err = cmd.Intent(state)

	require.ErrorIs(t, err, ErrUnknownCommand)
}
