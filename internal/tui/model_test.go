package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/switchboard/internal/browser"
	"github.com/tonimelisma/switchboard/testutil"
)

func newTestModel(t *testing.T) Model {
	t.Helper()

	state := browser.NewState()
	browser.Bootstrap(state)
	engine := browser.NewEngineWithState(browser.NoopPersistence{}, state, 0, testutil.Logger(t))

	return New(engine, testutil.Logger(t))
}

func press(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()

	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func runes(s string) []tea.Msg {
	msgs := make([]tea.Msg, 0, len(s))
	for _, r := range s {
		msgs = append(msgs, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return msgs
}

func keyMsg(t tea.KeyType) tea.Msg {
	return tea.KeyMsg{Type: t}
}

func TestNewTabFlowCreatesActiveTab(t *testing.T) {
	t.Parallel()
	m := newTestModel(t)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	m = press(t, m, runes("https://example.com")...)
	m = press(t, m, keyMsg(tea.KeyEnter))

	state := m.engine.State()
	tabID := state.ActiveTabID()
	require.NotZero(t, tabID)
	require.Equal(t, "https://example.com", state.Tabs[tabID].URL)
	require.Equal(t, browser.TabActive, state.Tabs[tabID].RuntimeState)
}

func TestEscapeAbandonsTextEntry(t *testing.T) {
	t.Parallel()
	m := newTestModel(t)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	m = press(t, m, runes("https://half-typed")...)
	m = press(t, m, keyMsg(tea.KeyEsc))

	require.Equal(t, modeBrowse, m.mode)
	require.Empty(t, m.engine.State().Tabs)
}

func TestCloseTabUnderCursor(t *testing.T) {
	t.Parallel()
	m := newTestModel(t)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	m = press(t, m, runes("https://example.com")...)
	m = press(t, m, keyMsg(tea.KeyEnter))
	require.Len(t, m.engine.State().Tabs, 1)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})

	require.Empty(t, m.engine.State().Tabs)
}

func TestWorkspaceCycling(t *testing.T) {
	t.Parallel()
	m := newTestModel(t)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'w'}})
	m = press(t, m, runes("Research")...)
	m = press(t, m, keyMsg(tea.KeyEnter))

	state := m.engine.State()
	require.Len(t, state.Workspaces, 2)
	first := state.ActiveWorkspaceID()

	m = press(t, m, keyMsg(tea.KeyTab))
	require.NotEqual(t, first, m.engine.State().ActiveWorkspaceID())

	m = press(t, m, keyMsg(tea.KeyTab))
	require.Equal(t, first, m.engine.State().ActiveWorkspaceID())
}

func TestDiscardingActiveTabShowsError(t *testing.T) {
	t.Parallel()
	m := newTestModel(t)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	m = press(t, m, runes("https://example.com")...)
	m = press(t, m, keyMsg(tea.KeyEnter))

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})

	require.Contains(t, m.lastErr, "active tab")
	require.Contains(t, m.View(), "active tab")
}

func TestSwitcherActivatesPickedTab(t *testing.T) {
	t.Parallel()
	m := newTestModel(t)
	state := m.engine.State()
	workspaceID := state.ActiveWorkspaceID()

	for _, url := range []string{"https://a.example", "https://b.example"} {
		_, err := browser.Apply(state, browser.NewTab{WorkspaceID: workspaceID, URL: url})
		require.NoError(t, err)
	}
	ids := state.Workspaces[workspaceID].TabOrder
	_, err := browser.Apply(state, browser.ObserveTabTitle{TabID: ids[0], Title: "Alpha"})
	require.NoError(t, err)
	_, err = browser.Apply(state, browser.ObserveTabTitle{TabID: ids[1], Title: "Beta"})
	require.NoError(t, err)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	require.Equal(t, modeSwitcher, m.mode)
	m = press(t, m, runes("beta")...)
	m = press(t, m, keyMsg(tea.KeyEnter))

	require.Equal(t, modeBrowse, m.mode)
	require.Equal(t, ids[1], m.engine.State().ActiveTabID())
}

func TestViewRendersWorkspaceAndTabs(t *testing.T) {
	t.Parallel()
	m := newTestModel(t)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	m = press(t, m, runes("https://example.com")...)
	m = press(t, m, keyMsg(tea.KeyEnter))

	view := m.View()

	require.Contains(t, view, "Default")
	require.Contains(t, view, "Workspace 1")
	require.Contains(t, view, "https://example.com")
	require.True(t, strings.Contains(view, "switchboard"))
}
