package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tonimelisma/switchboard/internal/browser"
)

func (m Model) View() string {
	state := m.engine.State()

	var b strings.Builder
	b.WriteString(m.renderHeader(state))
	b.WriteString("\n")
	b.WriteString(m.renderWorkspaceBar(state))
	b.WriteString("\n\n")
	b.WriteString(m.renderTabs(state))
	b.WriteString("\n")

	if m.mode == modeSwitcher {
		b.WriteString(m.renderSwitcher(state))
		b.WriteString("\n")
	}
	if m.mode == modeNewTab || m.mode == modeNewWorkspace {
		b.WriteString(switcherBoxStyle.Render(m.input.View()))
		b.WriteString("\n")
	}

	b.WriteString(m.renderFooter())

	return b.String()
}

func (m Model) renderHeader(state *browser.State) string {
	profile := state.Profiles[state.ActiveProfileID]
	name := "(no profile)"
	if profile != nil {
		name = profile.Name
	}

	left := fmt.Sprintf("switchboard  %s  rev %d",
		profileStyle.Render(name), m.engine.Revision())

	return headerStyle.Width(max(m.width, lipgloss.Width(left))).Render(left)
}

func (m Model) renderWorkspaceBar(state *browser.State) string {
	profile := state.Profiles[state.ActiveProfileID]
	if profile == nil {
		return ""
	}

	parts := make([]string, 0, len(profile.WorkspaceOrder))
	for _, id := range profile.WorkspaceOrder {
		workspace := state.Workspaces[id]
		if workspace == nil {
			continue
		}
		label := fmt.Sprintf("%s (%d)", workspace.Name, len(workspace.TabOrder))
		if id == profile.ActiveWorkspaceID {
			parts = append(parts, activeWorkspaceStyle.Render(label))
		} else {
			parts = append(parts, inactiveWorkspaceStyle.Render(label))
		}
	}

	return strings.Join(parts, " ")
}

func (m Model) renderTabs(state *browser.State) string {
	workspace := activeWorkspace(state)
	if workspace == nil || len(workspace.TabOrder) == 0 {
		return statusStyle.Render("  no tabs — press n to open one")
	}

	cursor := clampCursor(m.cursor, len(workspace.TabOrder))

	var b strings.Builder
	for i, tabID := range workspace.TabOrder {
		tab := state.Tabs[tabID]
		if tab == nil {
			continue
		}

		prefix := "  "
		if i == cursor {
			prefix = cursorStyle.Render("> ")
		}

		b.WriteString(prefix)
		b.WriteString(renderTabLine(tab, tabID == workspace.ActiveTabID))
		b.WriteString("\n")
	}

	return b.String()
}

func renderTabLine(tab *browser.Tab, active bool) string {
	title := tab.Title
	if title == "" {
		title = tab.URL
	}

	style := discardedTabStyle
	marker := " "
	switch tab.RuntimeState {
	case browser.TabActive:
		style = activeTabStyle
		marker = "●"
	case browser.TabWarm, browser.TabRestoring:
		style = warmTabStyle
		marker = "○"
	}
	if active && tab.RuntimeState != browser.TabActive {
		marker = "●"
	}

	line := fmt.Sprintf("%s %s", marker, style.Render(title))
	if tab.Pinned {
		line += " " + pinStyle.Render("⁎")
	}
	if tab.Loading {
		line += " " + statusStyle.Render("…")
	}
	if tab.Title != "" && tab.URL != "" {
		line += "  " + urlStyle.Render(tab.URL)
	}

	return line
}

func (m Model) renderSwitcher(state *browser.State) string {
	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n")

	for i, match := range m.matches {
		tab := state.Tabs[match.TabID]
		if tab == nil {
			continue
		}
		title := tab.Title
		if title == "" {
			title = tab.URL
		}

		prefix := "  "
		if i == m.picked {
			prefix = cursorStyle.Render("> ")
		}
		b.WriteString(fmt.Sprintf("%s%s\n", prefix, title))
	}
	if len(m.matches) == 0 {
		b.WriteString(statusStyle.Render("  no matches"))
	}

	return switcherBoxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderFooter() string {
	if m.lastErr != "" {
		return footerStyle.Render(errorStyle.Render(m.lastErr))
	}

	var parts []string
	for _, binding := range m.keys.ShortHelp() {
		help := binding.Help()
		parts = append(parts, fmt.Sprintf("%s %s", cursorStyle.Render(help.Key), help.Desc))
	}

	return footerStyle.Render(strings.Join(parts, "  "))
}
