package browser

// PatchOp is one element of the diff protocol surfaced to external consumers.
// Upserts carry full entity values captured at emission time, never live
// aliases. Removals carry the parent id so a consumer can update containment
// indices without a second lookup. Active-pointer ops are decoupled from
// entity upserts so a consumer can re-point selection without re-rendering.
//
// Consumers must apply ops as idempotent upserts/removals, not as an ordered
// transaction log: an UpsertTab for an unknown id creates it.
type PatchOp interface {
	isPatchOp()
}

// UpsertProfile replaces or creates the profile with the carried value.
type UpsertProfile struct {
	Profile Profile
}

// UpsertWorkspace replaces or creates the workspace with the carried value.
type UpsertWorkspace struct {
	Workspace Workspace
}

// UpsertTab replaces or creates the tab with the carried value.
type UpsertTab struct {
	Tab Tab
}

// RemoveTab drops a tab; WorkspaceID names the workspace that contained it.
type RemoveTab struct {
	TabID       TabID
	WorkspaceID WorkspaceID
}

// RemoveWorkspace drops a workspace; ProfileID names its former owner.
type RemoveWorkspace struct {
	WorkspaceID WorkspaceID
	ProfileID   ProfileID
}

// RemoveProfile drops a profile after its workspaces and tabs were removed.
type RemoveProfile struct {
	ProfileID ProfileID
}

// SetActiveProfile re-points the global active-profile pointer.
type SetActiveProfile struct {
	ProfileID ProfileID
}

// SetActiveWorkspace re-points a profile's active-workspace pointer.
type SetActiveWorkspace struct {
	ProfileID   ProfileID
	WorkspaceID WorkspaceID
}

// SetActiveTab re-points a workspace's active-tab pointer. A zero TabID
// clears the pointer (the workspace became empty).
type SetActiveTab struct {
	WorkspaceID WorkspaceID
	TabID       TabID
}

// SettingChanged reports a setting upsert.
type SettingChanged struct {
	Key   string
	Value SettingValue
}

func (UpsertProfile) isPatchOp()      {}
func (UpsertWorkspace) isPatchOp()    {}
func (UpsertTab) isPatchOp()          {}
func (RemoveTab) isPatchOp()          {}
func (RemoveWorkspace) isPatchOp()    {}
func (RemoveProfile) isPatchOp()      {}
func (SetActiveProfile) isPatchOp()   {}
func (SetActiveWorkspace) isPatchOp() {}
func (SetActiveTab) isPatchOp()       {}
func (SettingChanged) isPatchOp()     {}

// Patch is the result of one dispatch: the op list plus the revision range it
// moved the state across. An empty op list leaves FromRevision == ToRevision;
// any non-empty list advances the revision by exactly one, so a consumer can
// detect "nothing changed" purely from revision equality.
type Patch struct {
	Ops          []PatchOp
	FromRevision uint64
	ToRevision   uint64
}
