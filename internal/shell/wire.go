package shell

import (
	"encoding/json"
	"fmt"

	"github.com/tonimelisma/switchboard/internal/browser"
)

// Outbound wire messages. A connecting shell receives one snapshot and then
// a stream of patches; both carry a "type" discriminator so a single client
// read loop can demultiplex.

type snapshotMessage struct {
	Type            string                          `json:"type"`
	Revision        uint64                          `json:"revision"`
	ActiveProfileID browser.ProfileID               `json:"active_profile_id,omitempty"`
	Profiles        []browser.Profile               `json:"profiles"`
	Workspaces      []browser.Workspace             `json:"workspaces"`
	Tabs            []browser.Tab                   `json:"tabs"`
	Settings        map[string]browser.SettingValue `json:"settings"`
}

// EncodeSnapshot renders a full-state message for a newly connected shell.
// Entities are emitted in ascending id order so identical states always
// produce identical bytes.
func EncodeSnapshot(snapshot browser.Snapshot) ([]byte, error) {
	state := snapshot.State
	msg := snapshotMessage{
		Type:            "snapshot",
		Revision:        snapshot.Revision,
		ActiveProfileID: state.ActiveProfileID,
		Profiles:        make([]browser.Profile, 0, len(state.Profiles)),
		Workspaces:      make([]browser.Workspace, 0, len(state.Workspaces)),
		Tabs:            make([]browser.Tab, 0, len(state.Tabs)),
		Settings:        state.Settings,
	}

	for _, id := range state.ProfileIDsInOrder() {
		msg.Profiles = append(msg.Profiles, *state.Profiles[id])
	}
	for _, id := range state.WorkspaceIDsInOrder() {
		msg.Workspaces = append(msg.Workspaces, *state.Workspaces[id])
	}
	for _, id := range state.TabIDsInOrder() {
		msg.Tabs = append(msg.Tabs, *state.Tabs[id])
	}

	encoded, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}

	return encoded, nil
}

type patchMessage struct {
	Type         string   `json:"type"`
	FromRevision uint64   `json:"from_revision"`
	ToRevision   uint64   `json:"to_revision"`
	Ops          []wireOp `json:"ops"`
}

type wireOp struct {
	Op string `json:"op"`

	Profile   *browser.Profile   `json:"profile,omitempty"`
	Workspace *browser.Workspace `json:"workspace,omitempty"`
	Tab       *browser.Tab       `json:"tab,omitempty"`

	ProfileID   browser.ProfileID   `json:"profile_id,omitempty"`
	WorkspaceID browser.WorkspaceID `json:"workspace_id,omitempty"`

	// TabID is a pointer: set_active_tab clears a workspace's pointer by
	// carrying tab id zero, which omitempty would silently drop.
	TabID *browser.TabID `json:"tab_id,omitempty"`

	Key   string                `json:"key,omitempty"`
	Value *browser.SettingValue `json:"value,omitempty"`
}

// EncodePatch renders a dispatch result for broadcast.
func EncodePatch(patch browser.Patch) ([]byte, error) {
	msg := patchMessage{
		Type:         "patch",
		FromRevision: patch.FromRevision,
		ToRevision:   patch.ToRevision,
		Ops:          make([]wireOp, 0, len(patch.Ops)),
	}

	for _, op := range patch.Ops {
		switch op := op.(type) {
		case browser.UpsertProfile:
			profile := op.Profile
			msg.Ops = append(msg.Ops, wireOp{Op: "upsert_profile", Profile: &profile})
		case browser.UpsertWorkspace:
			workspace := op.Workspace
			msg.Ops = append(msg.Ops, wireOp{Op: "upsert_workspace", Workspace: &workspace})
		case browser.UpsertTab:
			tab := op.Tab
			msg.Ops = append(msg.Ops, wireOp{Op: "upsert_tab", Tab: &tab})
		case browser.RemoveTab:
			tabID := op.TabID
			msg.Ops = append(msg.Ops, wireOp{Op: "remove_tab", TabID: &tabID, WorkspaceID: op.WorkspaceID})
		case browser.RemoveWorkspace:
			msg.Ops = append(msg.Ops, wireOp{Op: "remove_workspace", WorkspaceID: op.WorkspaceID, ProfileID: op.ProfileID})
		case browser.RemoveProfile:
			msg.Ops = append(msg.Ops, wireOp{Op: "remove_profile", ProfileID: op.ProfileID})
		case browser.SetActiveProfile:
			msg.Ops = append(msg.Ops, wireOp{Op: "set_active_profile", ProfileID: op.ProfileID})
		case browser.SetActiveWorkspace:
			msg.Ops = append(msg.Ops, wireOp{Op: "set_active_workspace", ProfileID: op.ProfileID, WorkspaceID: op.WorkspaceID})
		case browser.SetActiveTab:
			tabID := op.TabID
			msg.Ops = append(msg.Ops, wireOp{Op: "set_active_tab", WorkspaceID: op.WorkspaceID, TabID: &tabID})
		case browser.SettingChanged:
			value := op.Value
			msg.Ops = append(msg.Ops, wireOp{Op: "setting_changed", Key: op.Key, Value: &value})
		default:
			return nil, fmt.Errorf("encoding patch: unhandled op %T", op)
		}
	}

	encoded, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encoding patch: %w", err)
	}

	return encoded, nil
}
