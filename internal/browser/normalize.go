package browser

// Bootstrap guarantees a usable state: an empty state is seeded with one
// "Default" profile holding one "Workspace 1" workspace. Non-empty states get
// their active-profile pointer repaired if it dangles. Returns the active
// profile's active workspace id. Runs before an engine takes ownership, so it
// emits no ops.
func Bootstrap(state *State) WorkspaceID {
	if len(state.Profiles) == 0 {
		profileID := state.AddProfile("Default")
		workspaceID, _ := state.AddWorkspace(profileID, "Workspace 1")
		state.RecomputeNextIDs()
		return workspaceID
	}

	state.RecomputeNextIDs()

	if _, ok := state.Profiles[state.ActiveProfileID]; !ok {
		state.ActiveProfileID = state.ProfileIDsInOrder()[0]
	}

	return state.ActiveWorkspaceID()
}

// Normalize repairs a freshly loaded state so the data-model invariants hold
// before the first dispatch: orphaned entities are dropped, containment lists
// are rebuilt in both directions, active pointers are re-anchored, and the id
// allocators are recomputed. Persisted databases written by older builds or
// edited out-of-band must not be able to wedge the reducer.
func Normalize(state *State) {
	for workspaceID, workspace := range state.Workspaces {
		if _, ok := state.Profiles[workspace.ProfileID]; !ok {
			delete(state.Workspaces, workspaceID)
		}
	}

	for tabID, tab := range state.Tabs {
		workspace, ok := state.Workspaces[tab.WorkspaceID]
		if !ok || workspace.ProfileID != tab.ProfileID {
			delete(state.Tabs, tabID)
			continue
		}
		if _, ok := state.Profiles[tab.ProfileID]; !ok {
			delete(state.Tabs, tabID)
		}
	}

	// Containment, forward direction: drop order entries that point at
	// missing or re-parented children.
	for profileID, profile := range state.Profiles {
		kept := profile.WorkspaceOrder[:0]
		for _, workspaceID := range profile.WorkspaceOrder {
			if workspace, ok := state.Workspaces[workspaceID]; ok && workspace.ProfileID == profileID {
				kept = append(kept, workspaceID)
			}
		}
		profile.WorkspaceOrder = kept
	}
	for workspaceID, workspace := range state.Workspaces {
		kept := workspace.TabOrder[:0]
		for _, tabID := range workspace.TabOrder {
			if tab, ok := state.Tabs[tabID]; ok && tab.WorkspaceID == workspaceID {
				kept = append(kept, tabID)
			}
		}
		workspace.TabOrder = kept
	}

	// Containment, reverse direction: children the order lists forgot are
	// appended in ascending id order for determinism.
	for _, workspaceID := range state.WorkspaceIDsInOrder() {
		workspace := state.Workspaces[workspaceID]
		profile := state.Profiles[workspace.ProfileID]
		if !containsWorkspaceID(profile.WorkspaceOrder, workspaceID) {
			profile.WorkspaceOrder = append(profile.WorkspaceOrder, workspaceID)
		}
	}
	for _, tabID := range state.TabIDsInOrder() {
		tab := state.Tabs[tabID]
		workspace := state.Workspaces[tab.WorkspaceID]
		if !containsTabID(workspace.TabOrder, tabID) {
			workspace.TabOrder = append(workspace.TabOrder, tabID)
		}
	}

	for _, profile := range state.Profiles {
		if profile.ActiveWorkspaceID != 0 && !containsWorkspaceID(profile.WorkspaceOrder, profile.ActiveWorkspaceID) {
			profile.ActiveWorkspaceID = 0
		}
		if profile.ActiveWorkspaceID == 0 {
			profile.ActiveWorkspaceID = firstWorkspaceID(profile.WorkspaceOrder)
		}
	}
	for _, workspace := range state.Workspaces {
		if workspace.ActiveTabID != 0 && !containsTabID(workspace.TabOrder, workspace.ActiveTabID) {
			workspace.ActiveTabID = 0
		}
		if workspace.ActiveTabID == 0 {
			workspace.ActiveTabID = firstTabID(workspace.TabOrder)
		}
	}

	if _, ok := state.Profiles[state.ActiveProfileID]; !ok {
		state.ActiveProfileID = 0
		if ids := state.ProfileIDsInOrder(); len(ids) > 0 {
			state.ActiveProfileID = ids[0]
		}
	}

	// Runtime states are advisory after a restart: the host holds no live
	// surfaces yet, so only the resolved active tab keeps Active and
	// everything else drops to Discarded. The warm pool refills as the
	// user touches tabs.
	activeTabID := state.ActiveTabID()
	for _, tab := range state.Tabs {
		if tab.ID == activeTabID {
			tab.RuntimeState = TabActive
		} else {
			tab.RuntimeState = TabDiscarded
		}
	}

	state.pruneWarmLRU()
	state.RecomputeNextIDs()
}

func containsWorkspaceID(order []WorkspaceID, id WorkspaceID) bool {
	for _, candidate := range order {
		if candidate == id {
			return true
		}
	}
	return false
}

func containsTabID(order []TabID, id TabID) bool {
	for _, candidate := range order {
		if candidate == id {
			return true
		}
	}
	return false
}
