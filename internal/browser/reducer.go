package browser

// Apply is the pure transition function: it validates the intent against the
// current state, mutates the state in place, and returns the diff ops a
// consumer needs to catch up. A returned error guarantees zero mutation; all
// validation happens before the first write.
//
// After every successfully reduced intent the warm-pool lifecycle policy
// re-runs and appends its own ops (it is change-detecting, so intents that
// cannot move the active pointer or the budget append nothing).
func Apply(state *State, intent Intent) ([]PatchOp, error) {
	var ops []PatchOp
	var err error

	switch in := intent.(type) {
	case UiReady, FrameCommitted:
		// Lifecycle signals from the shell; no state change of their own.
	case NewProfile:
		ops = applyNewProfile(state, in)
	case RenameProfile:
		ops, err = applyRenameProfile(state, in)
	case DeleteProfile:
		ops, err = applyDeleteProfile(state, in)
	case SwitchProfile:
		ops, err = applySwitchProfile(state, in)
	case NewWorkspace:
		ops, err = applyNewWorkspace(state, in)
	case RenameWorkspace:
		ops, err = applyRenameWorkspace(state, in)
	case DeleteWorkspace:
		ops, err = applyDeleteWorkspace(state, in)
	case SwitchWorkspace:
		ops, err = applySwitchWorkspace(state, in)
	case NewTab:
		ops, err = applyNewTab(state, in)
	case CloseTab:
		ops, err = applyCloseTab(state, in)
	case ActivateTab:
		ops, err = applyActivateTab(state, in)
	case MoveTab:
		ops, err = applyMoveTab(state, in)
	case PinTab:
		ops, err = applyPinTab(state, in)
	case DiscardTab:
		ops, err = applyDiscardTab(state, in)
	case Navigate:
		ops, err = applySetTabURL(state, in.TabID, in.URL)
	case ObserveTabURL:
		ops, err = applySetTabURL(state, in.TabID, in.URL)
	case ObserveTabTitle:
		ops, err = applyObserveTitle(state, in)
	case ObserveTabLoading:
		ops, err = applyObserveLoading(state, in)
	case ObserveTabThumbnail:
		ops, err = applyObserveThumbnail(state, in)
	case SettingSet:
		state.Settings[in.Key] = in.Value
		ops = append(ops, SettingChanged{Key: in.Key, Value: in.Value})
	}
	if err != nil {
		return nil, err
	}

	ops = append(ops, applyLifecycle(state)...)

	return ops, nil
}

func applyNewProfile(state *State, in NewProfile) []PatchOp {
	var ops []PatchOp

	profileID := state.allocateProfileID()
	profile := &Profile{ID: profileID, Name: in.Name}
	state.Profiles[profileID] = profile

	workspaceID := state.allocateWorkspaceID()
	workspace := &Workspace{ID: workspaceID, ProfileID: profileID, Name: "Workspace 1"}
	state.Workspaces[workspaceID] = workspace

	profile.WorkspaceOrder = append(profile.WorkspaceOrder, workspaceID)
	profile.ActiveWorkspaceID = workspaceID
	state.ActiveProfileID = profileID

	ops = append(ops,
		UpsertWorkspace{Workspace: workspace.snapshot()},
		UpsertProfile{Profile: profile.snapshot()},
		SetActiveProfile{ProfileID: profileID},
		SetActiveWorkspace{ProfileID: profileID, WorkspaceID: workspaceID},
	)

	return ops
}

func applyRenameProfile(state *State, in RenameProfile) ([]PatchOp, error) {
	profile, ok := state.Profiles[in.ProfileID]
	if !ok {
		return nil, wrapProfileNotFound(in.ProfileID)
	}

	profile.Name = in.Name

	return []PatchOp{UpsertProfile{Profile: profile.snapshot()}}, nil
}

func applyDeleteProfile(state *State, in DeleteProfile) ([]PatchOp, error) {
	profile, ok := state.Profiles[in.ProfileID]
	if !ok {
		return nil, wrapProfileNotFound(in.ProfileID)
	}
	if len(state.Profiles) == 1 {
		return nil, wrapLastProfile(in.ProfileID)
	}

	var ops []PatchOp

	for _, workspaceID := range profile.WorkspaceOrder {
		workspace, ok := state.Workspaces[workspaceID]
		if !ok {
			continue
		}
		for _, tabID := range workspace.TabOrder {
			if _, ok := state.Tabs[tabID]; ok {
				delete(state.Tabs, tabID)
				ops = append(ops, RemoveTab{TabID: tabID, WorkspaceID: workspaceID})
			}
		}
		delete(state.Workspaces, workspaceID)
		ops = append(ops, RemoveWorkspace{WorkspaceID: workspaceID, ProfileID: in.ProfileID})
	}

	delete(state.Profiles, in.ProfileID)
	delete(state.warmLRU, in.ProfileID)
	ops = append(ops, RemoveProfile{ProfileID: in.ProfileID})

	if state.ActiveProfileID == in.ProfileID {
		// Lowest remaining id keeps the promotion deterministic.
		state.ActiveProfileID = state.ProfileIDsInOrder()[0]
		ops = append(ops, SetActiveProfile{ProfileID: state.ActiveProfileID})
	}

	return ops, nil
}

func applySwitchProfile(state *State, in SwitchProfile) ([]PatchOp, error) {
	if _, ok := state.Profiles[in.ProfileID]; !ok {
		return nil, wrapProfileNotFound(in.ProfileID)
	}
	if state.ActiveProfileID == in.ProfileID {
		return nil, nil
	}

	state.ActiveProfileID = in.ProfileID

	return []PatchOp{SetActiveProfile{ProfileID: in.ProfileID}}, nil
}

func applyNewWorkspace(state *State, in NewWorkspace) ([]PatchOp, error) {
	profile, ok := state.Profiles[in.ProfileID]
	if !ok {
		return nil, wrapProfileNotFound(in.ProfileID)
	}

	var ops []PatchOp

	workspaceID := state.allocateWorkspaceID()
	workspace := &Workspace{ID: workspaceID, ProfileID: in.ProfileID, Name: in.Name}
	state.Workspaces[workspaceID] = workspace

	profile.WorkspaceOrder = append(profile.WorkspaceOrder, workspaceID)
	if profile.ActiveWorkspaceID == 0 {
		profile.ActiveWorkspaceID = workspaceID
		ops = append(ops, SetActiveWorkspace{ProfileID: in.ProfileID, WorkspaceID: workspaceID})
	}
	if state.ActiveProfileID == 0 {
		state.ActiveProfileID = in.ProfileID
		ops = append(ops, SetActiveProfile{ProfileID: in.ProfileID})
	}

	ops = append(ops,
		UpsertWorkspace{Workspace: workspace.snapshot()},
		UpsertProfile{Profile: profile.snapshot()},
	)

	return ops, nil
}

func applyRenameWorkspace(state *State, in RenameWorkspace) ([]PatchOp, error) {
	workspace, ok := state.Workspaces[in.WorkspaceID]
	if !ok {
		return nil, wrapWorkspaceNotFound(in.WorkspaceID)
	}

	workspace.Name = in.Name

	return []PatchOp{UpsertWorkspace{Workspace: workspace.snapshot()}}, nil
}

func applyDeleteWorkspace(state *State, in DeleteWorkspace) ([]PatchOp, error) {
	workspace, ok := state.Workspaces[in.WorkspaceID]
	if !ok {
		return nil, wrapWorkspaceNotFound(in.WorkspaceID)
	}
	profile, ok := state.Profiles[workspace.ProfileID]
	if !ok {
		return nil, wrapProfileNotFound(workspace.ProfileID)
	}
	if len(profile.WorkspaceOrder) <= 1 {
		return nil, wrapLastWorkspace(in.WorkspaceID)
	}

	var ops []PatchOp

	profile.WorkspaceOrder = removeWorkspaceID(profile.WorkspaceOrder, in.WorkspaceID)
	activeWorkspaceChanged := profile.ActiveWorkspaceID == in.WorkspaceID
	if activeWorkspaceChanged {
		profile.ActiveWorkspaceID = firstWorkspaceID(profile.WorkspaceOrder)
	}

	for _, tabID := range workspace.TabOrder {
		if _, ok := state.Tabs[tabID]; ok {
			delete(state.Tabs, tabID)
			state.removeFromWarmLRU(workspace.ProfileID, tabID)
			ops = append(ops, RemoveTab{TabID: tabID, WorkspaceID: in.WorkspaceID})
		}
	}
	delete(state.Workspaces, in.WorkspaceID)

	ops = append(ops,
		RemoveWorkspace{WorkspaceID: in.WorkspaceID, ProfileID: workspace.ProfileID},
		UpsertProfile{Profile: profile.snapshot()},
	)
	if activeWorkspaceChanged && profile.ActiveWorkspaceID != 0 {
		ops = append(ops, SetActiveWorkspace{
			ProfileID:   workspace.ProfileID,
			WorkspaceID: profile.ActiveWorkspaceID,
		})
	}

	return ops, nil
}

func applySwitchWorkspace(state *State, in SwitchWorkspace) ([]PatchOp, error) {
	workspace, ok := state.Workspaces[in.WorkspaceID]
	if !ok {
		return nil, wrapWorkspaceNotFound(in.WorkspaceID)
	}
	profile, ok := state.Profiles[workspace.ProfileID]
	if !ok {
		return nil, wrapProfileNotFound(workspace.ProfileID)
	}
	if state.ActiveProfileID == workspace.ProfileID && profile.ActiveWorkspaceID == in.WorkspaceID {
		return nil, nil
	}

	var ops []PatchOp

	if profile.ActiveWorkspaceID != in.WorkspaceID {
		profile.ActiveWorkspaceID = in.WorkspaceID
		ops = append(ops, UpsertProfile{Profile: profile.snapshot()})
	}
	state.ActiveProfileID = workspace.ProfileID

	ops = append(ops,
		SetActiveProfile{ProfileID: workspace.ProfileID},
		SetActiveWorkspace{ProfileID: workspace.ProfileID, WorkspaceID: in.WorkspaceID},
	)

	return ops, nil
}

func applyNewTab(state *State, in NewTab) ([]PatchOp, error) {
	workspace, ok := state.Workspaces[in.WorkspaceID]
	if !ok {
		return nil, wrapWorkspaceNotFound(in.WorkspaceID)
	}
	profile, ok := state.Profiles[workspace.ProfileID]
	if !ok {
		return nil, wrapProfileNotFound(workspace.ProfileID)
	}

	var ops []PatchOp

	if in.MakeActive {
		if previous, ok := state.Tabs[workspace.ActiveTabID]; ok {
			previous.RuntimeState = TabWarm
			ops = append(ops, UpsertTab{Tab: *previous})
		}
	}

	url := in.URL
	if url == "" {
		url = "about:blank"
	}

	tabID := state.allocateTabID()
	tab := &Tab{
		ID:          tabID,
		ProfileID:   workspace.ProfileID,
		WorkspaceID: in.WorkspaceID,
		URL:         url,
	}
	if in.MakeActive {
		tab.RuntimeState = TabActive
	}
	state.Tabs[tabID] = tab

	workspace.TabOrder = append(workspace.TabOrder, tabID)
	if in.MakeActive {
		workspace.ActiveTabID = tabID
	}
	ops = append(ops, UpsertWorkspace{Workspace: workspace.snapshot()})
	if in.MakeActive {
		ops = append(ops, SetActiveTab{WorkspaceID: in.WorkspaceID, TabID: tabID})

		profile.ActiveWorkspaceID = in.WorkspaceID
		state.ActiveProfileID = workspace.ProfileID
		ops = append(ops,
			UpsertProfile{Profile: profile.snapshot()},
			SetActiveProfile{ProfileID: workspace.ProfileID},
			SetActiveWorkspace{ProfileID: workspace.ProfileID, WorkspaceID: in.WorkspaceID},
		)
	}

	ops = append(ops, UpsertTab{Tab: *tab})

	return ops, nil
}

func applyCloseTab(state *State, in CloseTab) ([]PatchOp, error) {
	tab, ok := state.Tabs[in.TabID]
	if !ok {
		return nil, wrapTabNotFound(in.TabID)
	}
	workspace, ok := state.Workspaces[tab.WorkspaceID]
	if !ok {
		return nil, wrapWorkspaceNotFound(tab.WorkspaceID)
	}

	var ops []PatchOp

	delete(state.Tabs, in.TabID)
	state.removeFromWarmLRU(tab.ProfileID, in.TabID)
	workspace.TabOrder = removeTabID(workspace.TabOrder, in.TabID)

	activeChanged := workspace.ActiveTabID == in.TabID
	if activeChanged {
		workspace.ActiveTabID = firstTabID(workspace.TabOrder)
	}
	ops = append(ops, UpsertWorkspace{Workspace: workspace.snapshot()})

	if activeChanged {
		if promoted, ok := state.Tabs[workspace.ActiveTabID]; ok {
			promoted.RuntimeState = TabActive
			ops = append(ops, UpsertTab{Tab: *promoted})
		}
		ops = append(ops, SetActiveTab{WorkspaceID: tab.WorkspaceID, TabID: workspace.ActiveTabID})
	}

	ops = append(ops, RemoveTab{TabID: in.TabID, WorkspaceID: tab.WorkspaceID})

	return ops, nil
}

func applyActivateTab(state *State, in ActivateTab) ([]PatchOp, error) {
	tab, ok := state.Tabs[in.TabID]
	if !ok {
		return nil, wrapTabNotFound(in.TabID)
	}
	workspace, ok := state.Workspaces[tab.WorkspaceID]
	if !ok {
		return nil, wrapWorkspaceNotFound(tab.WorkspaceID)
	}
	profile, ok := state.Profiles[tab.ProfileID]
	if !ok {
		return nil, wrapProfileNotFound(tab.ProfileID)
	}

	fullyActive := workspace.ActiveTabID == in.TabID &&
		profile.ActiveWorkspaceID == tab.WorkspaceID &&
		state.ActiveProfileID == tab.ProfileID &&
		tab.RuntimeState == TabActive
	if fullyActive {
		return nil, nil
	}

	var ops []PatchOp

	if previous, ok := state.Tabs[workspace.ActiveTabID]; ok && workspace.ActiveTabID != in.TabID {
		previous.RuntimeState = TabWarm
		ops = append(ops, UpsertTab{Tab: *previous})
	}

	tab.RuntimeState = TabActive
	ops = append(ops, UpsertTab{Tab: *tab})

	workspace.ActiveTabID = in.TabID
	ops = append(ops, UpsertWorkspace{Workspace: workspace.snapshot()})

	profile.ActiveWorkspaceID = tab.WorkspaceID
	ops = append(ops, UpsertProfile{Profile: profile.snapshot()})

	state.ActiveProfileID = tab.ProfileID

	ops = append(ops,
		SetActiveProfile{ProfileID: tab.ProfileID},
		SetActiveWorkspace{ProfileID: tab.ProfileID, WorkspaceID: tab.WorkspaceID},
		SetActiveTab{WorkspaceID: tab.WorkspaceID, TabID: in.TabID},
	)

	return ops, nil
}

func applyMoveTab(state *State, in MoveTab) ([]PatchOp, error) {
	tab, ok := state.Tabs[in.TabID]
	if !ok {
		return nil, wrapTabNotFound(in.TabID)
	}
	target, ok := state.Workspaces[in.WorkspaceID]
	if !ok {
		return nil, wrapWorkspaceNotFound(in.WorkspaceID)
	}
	if tab.ProfileID != target.ProfileID {
		return nil, wrapCrossProfileMove(in.TabID, tab.ProfileID, target.ProfileID)
	}
	source, ok := state.Workspaces[tab.WorkspaceID]
	if !ok {
		return nil, wrapWorkspaceNotFound(tab.WorkspaceID)
	}

	var ops []PatchOp

	if source.ID == target.ID {
		target.TabOrder = removeTabID(target.TabOrder, in.TabID)
		target.TabOrder = insertTabID(target.TabOrder, in.TabID, in.Index)
		ops = append(ops, UpsertWorkspace{Workspace: target.snapshot()})
		return ops, nil
	}

	source.TabOrder = removeTabID(source.TabOrder, in.TabID)
	sourceActiveChanged := source.ActiveTabID == in.TabID
	if sourceActiveChanged {
		source.ActiveTabID = firstTabID(source.TabOrder)
	}
	ops = append(ops, UpsertWorkspace{Workspace: source.snapshot()})

	target.TabOrder = insertTabID(target.TabOrder, in.TabID, in.Index)
	ops = append(ops, UpsertWorkspace{Workspace: target.snapshot()})

	tab.WorkspaceID = in.WorkspaceID
	if sourceActiveChanged {
		// A demoted active tab must be reactivated explicitly in its new home.
		tab.RuntimeState = TabDiscarded
	}
	ops = append(ops, UpsertTab{Tab: *tab})

	if sourceActiveChanged {
		if promoted, ok := state.Tabs[source.ActiveTabID]; ok {
			promoted.RuntimeState = TabActive
			ops = append(ops, UpsertTab{Tab: *promoted})
		}
		ops = append(ops, SetActiveTab{WorkspaceID: source.ID, TabID: source.ActiveTabID})
	}

	return ops, nil
}

func applyPinTab(state *State, in PinTab) ([]PatchOp, error) {
	tab, ok := state.Tabs[in.TabID]
	if !ok {
		return nil, wrapTabNotFound(in.TabID)
	}

	tab.Pinned = in.Pinned

	return []PatchOp{UpsertTab{Tab: *tab}}, nil
}

func applyDiscardTab(state *State, in DiscardTab) ([]PatchOp, error) {
	tab, ok := state.Tabs[in.TabID]
	if !ok {
		return nil, wrapTabNotFound(in.TabID)
	}
	workspace, ok := state.Workspaces[tab.WorkspaceID]
	if !ok {
		return nil, wrapWorkspaceNotFound(tab.WorkspaceID)
	}
	if workspace.ActiveTabID == in.TabID {
		return nil, wrapActiveTabDiscard(in.TabID)
	}

	tab.RuntimeState = TabDiscarded
	state.removeFromWarmLRU(tab.ProfileID, in.TabID)

	return []PatchOp{UpsertTab{Tab: *tab}}, nil
}

// applySetTabURL backs both Navigate and ObserveTabURL. Host-originated
// observation events arrive in bursts, so an unchanged value is a no-op to
// avoid patch and revision churn.
func applySetTabURL(state *State, tabID TabID, url string) ([]PatchOp, error) {
	tab, ok := state.Tabs[tabID]
	if !ok {
		return nil, wrapTabNotFound(tabID)
	}
	if tab.URL == url {
		return nil, nil
	}

	tab.URL = url

	return []PatchOp{UpsertTab{Tab: *tab}}, nil
}

func applyObserveTitle(state *State, in ObserveTabTitle) ([]PatchOp, error) {
	tab, ok := state.Tabs[in.TabID]
	if !ok {
		return nil, wrapTabNotFound(in.TabID)
	}
	if tab.Title == in.Title {
		return nil, nil
	}

	tab.Title = in.Title

	return []PatchOp{UpsertTab{Tab: *tab}}, nil
}

func applyObserveLoading(state *State, in ObserveTabLoading) ([]PatchOp, error) {
	tab, ok := state.Tabs[in.TabID]
	if !ok {
		return nil, wrapTabNotFound(in.TabID)
	}
	if tab.Loading == in.Loading {
		return nil, nil
	}

	tab.Loading = in.Loading

	return []PatchOp{UpsertTab{Tab: *tab}}, nil
}

func applyObserveThumbnail(state *State, in ObserveTabThumbnail) ([]PatchOp, error) {
	tab, ok := state.Tabs[in.TabID]
	if !ok {
		return nil, wrapTabNotFound(in.TabID)
	}
	if tab.ThumbnailDataURL == in.DataURL {
		return nil, nil
	}

	tab.ThumbnailDataURL = in.DataURL

	return []PatchOp{UpsertTab{Tab: *tab}}, nil
}

func removeTabID(order []TabID, id TabID) []TabID {
	out := order[:0]
	for _, candidate := range order {
		if candidate != id {
			out = append(out, candidate)
		}
	}
	return out
}

func insertTabID(order []TabID, id TabID, index int) []TabID {
	if index < 0 {
		index = 0
	}
	if index > len(order) {
		index = len(order)
	}
	order = append(order, 0)
	copy(order[index+1:], order[index:])
	order[index] = id
	return order
}

func removeWorkspaceID(order []WorkspaceID, id WorkspaceID) []WorkspaceID {
	out := order[:0]
	for _, candidate := range order {
		if candidate != id {
			out = append(out, candidate)
		}
	}
	return out
}

func firstTabID(order []TabID) TabID {
	if len(order) == 0 {
		return 0
	}
	return order[0]
}

func firstWorkspaceID(order []WorkspaceID) WorkspaceID {
	if len(order) == 0 {
		return 0
	}
	return order[0]
}
