// Package tui is a terminal front-end for a switchboard engine. It drives the
// engine in-process: every keystroke that means something becomes an intent,
// and the view re-renders from the mutated state. Patches are ignored here
// since the model reads the authoritative state directly.
package tui

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tonimelisma/switchboard/internal/browser"
)

type mode int

const (
	modeBrowse mode = iota
	modeNewTab
	modeNewWorkspace
	modeSwitcher
)

// Model implements tea.Model over an engine.
type Model struct {
	engine *browser.Engine
	logger *slog.Logger
	keys   keyMap

	width  int
	height int

	mode    mode
	cursor  int
	input   textinput.Model
	matches []tabMatch
	picked  int

	status  string
	lastErr string
}

// New builds a model around engine. The engine must not be shared with a
// concurrently dispatching owner; the TUI assumes it is the only writer.
func New(engine *browser.Engine, logger *slog.Logger) Model {
	input := textinput.New()
	input.CharLimit = 256

	return Model{
		engine: engine,
		logger: logger,
		keys:   newKeyMap(),
		input:  input,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		switch m.mode {
		case modeBrowse:
			return m.updateBrowse(msg)
		case modeNewTab, modeNewWorkspace:
			return m.updateTextEntry(msg)
		case modeSwitcher:
			return m.updateSwitcher(msg)
		}
	}

	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	state := m.engine.State()
	workspace := activeWorkspace(state)

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.UpDown):
		if workspace == nil {
			return m, nil
		}
		switch msg.String() {
		case "up", "k":
			m.cursor--
		default:
			m.cursor++
		}
		m.cursor = clampCursor(m.cursor, len(workspace.TabOrder))
		return m, nil

	case key.Matches(msg, m.keys.Activate):
		if tabID, ok := m.cursorTab(workspace); ok {
			m.dispatch(browser.ActivateTab{TabID: tabID})
		}
		return m, nil

	case key.Matches(msg, m.keys.NewTab):
		m.mode = modeNewTab
		m.input.Placeholder = "https://"
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.CloseTab):
		if tabID, ok := m.cursorTab(workspace); ok {
			m.dispatch(browser.CloseTab{TabID: tabID})
			if after := activeWorkspace(m.engine.State()); after != nil {
				m.cursor = clampCursor(m.cursor, len(after.TabOrder))
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.PinTab):
		if tabID, ok := m.cursorTab(workspace); ok {
			tab := state.Tabs[tabID]
			m.dispatch(browser.PinTab{TabID: tabID, Pinned: !tab.Pinned})
		}
		return m, nil

	case key.Matches(msg, m.keys.DiscardTab):
		if tabID, ok := m.cursorTab(workspace); ok {
			m.dispatch(browser.DiscardTab{TabID: tabID})
		}
		return m, nil

	case key.Matches(msg, m.keys.NextWorkspace):
		m.switchWorkspace(1)
		return m, nil

	case key.Matches(msg, m.keys.PrevWorkspace):
		m.switchWorkspace(-1)
		return m, nil

	case key.Matches(msg, m.keys.NewWorkspace):
		m.mode = modeNewWorkspace
		m.input.Placeholder = "workspace name"
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.NextProfile):
		m.switchProfile()
		return m, nil

	case key.Matches(msg, m.keys.Switcher):
		m.mode = modeSwitcher
		m.input.Placeholder = "find tab"
		m.input.SetValue("")
		m.input.Focus()
		m.matches = rankTabs(state, "")
		m.picked = 0
		return m, textinput.Blink
	}

	return m, nil
}

func (m Model) updateTextEntry(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Activate):
		value := m.input.Value()
		entered := m.mode
		m.mode = modeBrowse
		m.input.Blur()

		state := m.engine.State()
		switch entered {
		case modeNewTab:
			workspaceID := state.ActiveWorkspaceID()
			if workspaceID == 0 {
				m.lastErr = "no active workspace"
				return m, nil
			}
			m.dispatch(browser.NewTab{WorkspaceID: workspaceID, URL: value, MakeActive: true})
		case modeNewWorkspace:
			if value == "" {
				return m, nil
			}
			m.dispatch(browser.NewWorkspace{ProfileID: state.ActiveProfileID, Name: value})
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateSwitcher(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Activate):
		m.mode = modeBrowse
		m.input.Blur()
		if m.picked < len(m.matches) {
			m.dispatch(browser.ActivateTab{TabID: m.matches[m.picked].TabID})
		}
		return m, nil

	case msg.String() == "up":
		if m.picked > 0 {
			m.picked--
		}
		return m, nil

	case msg.String() == "down":
		if m.picked < len(m.matches)-1 {
			m.picked++
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.matches = rankTabs(m.engine.State(), m.input.Value())
	m.picked = 0
	return m, cmd
}

// dispatch applies one intent, recording any rejection for the status line.
func (m *Model) dispatch(intent browser.Intent) {
	if _, err := m.engine.Dispatch(context.Background(), intent); err != nil {
		m.lastErr = err.Error()
		return
	}
	m.lastErr = ""
}

func (m *Model) switchWorkspace(direction int) {
	state := m.engine.State()
	profile := state.Profiles[state.ActiveProfileID]
	if profile == nil || len(profile.WorkspaceOrder) < 2 {
		return
	}

	current := 0
	for i, id := range profile.WorkspaceOrder {
		if id == profile.ActiveWorkspaceID {
			current = i
			break
		}
	}

	next := (current + direction + len(profile.WorkspaceOrder)) % len(profile.WorkspaceOrder)
	m.dispatch(browser.SwitchWorkspace{WorkspaceID: profile.WorkspaceOrder[next]})
	m.cursor = 0
}

func (m *Model) switchProfile() {
	state := m.engine.State()
	ids := state.ProfileIDsInOrder()
	if len(ids) < 2 {
		return
	}

	current := 0
	for i, id := range ids {
		if id == state.ActiveProfileID {
			current = i
			break
		}
	}

	m.dispatch(browser.SwitchProfile{ProfileID: ids[(current+1)%len(ids)]})
	m.cursor = 0
}

func (m Model) cursorTab(workspace *browser.Workspace) (browser.TabID, bool) {
	if workspace == nil || len(workspace.TabOrder) == 0 {
		return 0, false
	}
	return workspace.TabOrder[clampCursor(m.cursor, len(workspace.TabOrder))], true
}

func activeWorkspace(state *browser.State) *browser.Workspace {
	return state.Workspaces[state.ActiveWorkspaceID()]
}

func clampCursor(cursor, length int) int {
	if length == 0 {
		return 0
	}
	if cursor < 0 {
		return 0
	}
	if cursor >= length {
		return length - 1
	}
	return cursor
}
