// Package shell is the UI transport boundary: it turns JSON commands from
// connected shells into intents, streams snapshots and patches back, and
// carries the handful of policies that sit outside the state core (implicit
// target resolution, internal-URL blocking, thumbnail retention, window
// geometry persistence).
package shell

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/tonimelisma/switchboard/internal/browser"
)

// Shell-boundary errors. Reducer errors pass through untouched; these cover
// what goes wrong before an intent exists.
var (
	ErrUnknownCommand = errors.New("unknown command type")

	// ErrBlockedNavigation rejects navigation into the shell's own app://
	// surface; content tabs never render internal chrome.
	ErrBlockedNavigation = errors.New("navigation to internal url blocked")

	// ErrNoActiveWorkspace means navigate_active could not create a tab
	// because no workspace is active.
	ErrNoActiveWorkspace = errors.New("no active workspace")

	// ErrNoActiveProfile means new_workspace could not resolve its target
	// profile.
	ErrNoActiveProfile = errors.New("no active profile")
)

const internalURLScheme = "app://"

// Command is the JSON wire form of a shell request. Type selects the
// variant; the remaining fields are read per type. The vocabulary maps
// near-1:1 onto the intent set, with navigate_active and new_workspace
// requiring target resolution against the current state.
type Command struct {
	Type string `json:"type"`

	ProfileID   uint64 `json:"profile_id,omitempty"`
	WorkspaceID uint64 `json:"workspace_id,omitempty"`
	TabID       uint64 `json:"tab_id,omitempty"`

	Name       string                `json:"name,omitempty"`
	URL        string                `json:"url,omitempty"`
	Title      string                `json:"title,omitempty"`
	MakeActive bool                  `json:"make_active,omitempty"`
	Index      int                   `json:"index,omitempty"`
	Pinned     bool                  `json:"pinned,omitempty"`
	Loading    bool                  `json:"loading,omitempty"`
	DataURL    string                `json:"data_url,omitempty"`
	Key        string                `json:"key,omitempty"`
	Value      *browser.SettingValue `json:"value,omitempty"`
	Width      int64                 `json:"width,omitempty"`
	Height     int64                 `json:"height,omitempty"`
}

// DecodeCommand parses a wire message and NFC-normalizes its user-entered
// text. Different platforms' input methods emit different Unicode
// compositions for the same visible text; normalizing at the boundary keeps
// stored names and URLs comparable.
func DecodeCommand(data []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return Command{}, fmt.Errorf("decoding command: %w", err)
	}

	cmd.Name = norm.NFC.String(cmd.Name)
	cmd.URL = norm.NFC.String(cmd.URL)
	cmd.Title = norm.NFC.String(cmd.Title)
	cmd.Key = norm.NFC.String(cmd.Key)
	if cmd.Value != nil && cmd.Value.Kind == browser.SettingText {
		cmd.Value.Text = norm.NFC.String(cmd.Value.Text)
	}

	return cmd, nil
}

// Intent resolves the command into an intent against the given state. The
// state is only read, never mutated; it supplies the "current" targets the
// engine itself has no notion of.
func (c Command) Intent(state *browser.State) (browser.Intent, error) {
	switch c.Type {
	case "ui_ready":
		return browser.UiReady{}, nil
	case "frame_committed":
		return browser.FrameCommitted{}, nil
	case "new_profile":
		return browser.NewProfile{Name: c.Name}, nil
	case "rename_profile":
		return browser.RenameProfile{ProfileID: browser.ProfileID(c.ProfileID), Name: c.Name}, nil
	case "delete_profile":
		return browser.DeleteProfile{ProfileID: browser.ProfileID(c.ProfileID)}, nil
	case "switch_profile":
		return browser.SwitchProfile{ProfileID: browser.ProfileID(c.ProfileID)}, nil
	case "new_workspace":
		// Implicit target: the active profile.
		if _, ok := state.Profiles[state.ActiveProfileID]; !ok {
			return nil, ErrNoActiveProfile
		}
		return browser.NewWorkspace{ProfileID: state.ActiveProfileID, Name: c.Name}, nil
	case "rename_workspace":
		return browser.RenameWorkspace{WorkspaceID: browser.WorkspaceID(c.WorkspaceID), Name: c.Name}, nil
	case "delete_workspace":
		return browser.DeleteWorkspace{WorkspaceID: browser.WorkspaceID(c.WorkspaceID)}, nil
	case "switch_workspace":
		return browser.SwitchWorkspace{WorkspaceID: browser.WorkspaceID(c.WorkspaceID)}, nil
	case "new_tab":
		return browser.NewTab{
			WorkspaceID: browser.WorkspaceID(c.WorkspaceID),
			URL:         c.URL,
			MakeActive:  c.MakeActive,
		}, nil
	case "close_tab":
		return browser.CloseTab{TabID: browser.TabID(c.TabID)}, nil
	case "activate_tab":
		return browser.ActivateTab{TabID: browser.TabID(c.TabID)}, nil
	case "move_tab":
		return browser.MoveTab{
			TabID:       browser.TabID(c.TabID),
			WorkspaceID: browser.WorkspaceID(c.WorkspaceID),
			Index:       c.Index,
		}, nil
	case "pin_tab":
		return browser.PinTab{TabID: browser.TabID(c.TabID), Pinned: c.Pinned}, nil
	case "discard_tab":
		return browser.DiscardTab{TabID: browser.TabID(c.TabID)}, nil
	case "navigate":
		if err := checkNavigable(c.URL); err != nil {
			return nil, err
		}
		return browser.Navigate{TabID: browser.TabID(c.TabID), URL: c.URL}, nil
	case "navigate_active":
		// Implicit target: the active tab, or a new active tab in the
		// active workspace when none exists.
		if err := checkNavigable(c.URL); err != nil {
			return nil, err
		}
		if tabID := state.ActiveTabID(); tabID != 0 {
			return browser.Navigate{TabID: tabID, URL: c.URL}, nil
		}
		workspaceID := state.ActiveWorkspaceID()
		if workspaceID == 0 {
			return nil, ErrNoActiveWorkspace
		}
		return browser.NewTab{WorkspaceID: workspaceID, URL: c.URL, MakeActive: true}, nil
	case "observe_url":
		return browser.ObserveTabURL{TabID: browser.TabID(c.TabID), URL: c.URL}, nil
	case "observe_title":
		return browser.ObserveTabTitle{TabID: browser.TabID(c.TabID), Title: c.Title}, nil
	case "observe_loading":
		return browser.ObserveTabLoading{TabID: browser.TabID(c.TabID), Loading: c.Loading}, nil
	case "observe_thumbnail":
		return browser.ObserveTabThumbnail{TabID: browser.TabID(c.TabID), DataURL: c.DataURL}, nil
	case "setting_set":
		if c.Value == nil {
			return nil, fmt.Errorf("setting_set for %q carries no value", c.Key)
		}
		return browser.SettingSet{Key: c.Key, Value: *c.Value}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, c.Type)
	}
}

func checkNavigable(url string) error {
	if strings.HasPrefix(url, internalURLScheme) {
		return fmt.Errorf("%w: %s", ErrBlockedNavigation, url)
	}
	return nil
}
