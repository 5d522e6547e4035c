package browser

// Intent is the closed command vocabulary the reducer accepts. Implementations
// are value structs; the unexported marker keeps the set closed to this
// package. The engine has no notion of "current" beyond what is encoded in
// state, so convenience commands like "navigate the current tab" must be
// resolved into explicit ids by the calling layer before dispatch.
type Intent interface {
	isIntent()
}

// UiReady signals that a UI shell connected and finished its initial render.
// Carries no state change; dispatched so the caller gets a revision-stable
// patch and the lifecycle pass runs once at startup.
type UiReady struct{}

// FrameCommitted signals that the host presented a rendered frame. No state
// change.
type FrameCommitted struct{}

// NewProfile creates a profile with one default workspace and makes the new
// profile active.
type NewProfile struct {
	Name string
}

// RenameProfile sets a profile's display name.
type RenameProfile struct {
	ProfileID ProfileID
	Name      string
}

// DeleteProfile removes a profile and cascades removal of its workspaces and
// tabs. Fails with ErrLastProfile when the target is the only profile.
type DeleteProfile struct {
	ProfileID ProfileID
}

// SwitchProfile re-points the active-profile pointer. Idempotent: switching
// to the already-active profile emits no ops.
type SwitchProfile struct {
	ProfileID ProfileID
}

// NewWorkspace creates an empty workspace in the given profile.
type NewWorkspace struct {
	ProfileID ProfileID
	Name      string
}

// RenameWorkspace sets a workspace's display name.
type RenameWorkspace struct {
	WorkspaceID WorkspaceID
	Name        string
}

// DeleteWorkspace removes a workspace and its tabs. Fails with
// ErrLastWorkspace when the target is its profile's only workspace.
type DeleteWorkspace struct {
	WorkspaceID WorkspaceID
}

// SwitchWorkspace makes the workspace (and its owning profile) active.
// Idempotent when the full pointer chain already matches.
type SwitchWorkspace struct {
	WorkspaceID WorkspaceID
}

// NewTab creates a tab in the given workspace. An empty URL defaults to
// about:blank. When MakeActive is set the tab becomes the active tab of the
// full profile→workspace→tab chain; otherwise it starts Discarded.
type NewTab struct {
	WorkspaceID WorkspaceID
	URL         string
	MakeActive  bool
}

// CloseTab removes a tab. Closing the workspace's active tab promotes the
// first remaining tab in tab order.
type CloseTab struct {
	TabID TabID
}

// ActivateTab makes the tab active along the full pointer chain. Idempotent
// when the tab is already fully active.
type ActivateTab struct {
	TabID TabID
}

// MoveTab places a tab at Index within the target workspace, which must
// belong to the same profile. Same-workspace moves are pure reorders.
type MoveTab struct {
	TabID       TabID
	WorkspaceID WorkspaceID
	Index       int
}

// PinTab sets a tab's pinned flag.
type PinTab struct {
	TabID  TabID
	Pinned bool
}

// DiscardTab drops a tab to the Discarded tier. Fails with
// ErrActiveTabDiscard when the tab is its workspace's active tab.
type DiscardTab struct {
	TabID TabID
}

// Navigate sets a tab's URL from a user gesture. No-op when the URL is
// unchanged.
type Navigate struct {
	TabID TabID
	URL   string
}

// ObserveTabURL reports a host-observed URL change (redirects, pushState).
// No-op when unchanged.
type ObserveTabURL struct {
	TabID TabID
	URL   string
}

// ObserveTabTitle reports a host-observed title change. No-op when unchanged.
type ObserveTabTitle struct {
	TabID TabID
	Title string
}

// ObserveTabLoading reports a host-observed loading-flag change. No-op when
// unchanged.
type ObserveTabLoading struct {
	TabID   TabID
	Loading bool
}

// ObserveTabThumbnail reports a host-captured thumbnail. Empty DataURL clears
// the thumbnail. No-op when unchanged.
type ObserveTabThumbnail struct {
	TabID   TabID
	DataURL string
}

// SettingSet upserts a setting unconditionally. Setting the warm-pool budget
// key re-runs the lifecycle policy.
type SettingSet struct {
	Key   string
	Value SettingValue
}

func (UiReady) isIntent()             {}
func (FrameCommitted) isIntent()      {}
func (NewProfile) isIntent()          {}
func (RenameProfile) isIntent()       {}
func (DeleteProfile) isIntent()       {}
func (SwitchProfile) isIntent()       {}
func (NewWorkspace) isIntent()        {}
func (RenameWorkspace) isIntent()     {}
func (DeleteWorkspace) isIntent()     {}
func (SwitchWorkspace) isIntent()     {}
func (NewTab) isIntent()              {}
func (CloseTab) isIntent()            {}
func (ActivateTab) isIntent()         {}
func (MoveTab) isIntent()             {}
func (PinTab) isIntent()              {}
func (DiscardTab) isIntent()          {}
func (Navigate) isIntent()            {}
func (ObserveTabURL) isIntent()       {}
func (ObserveTabTitle) isIntent()     {}
func (ObserveTabLoading) isIntent()   {}
func (ObserveTabThumbnail) isIntent() {}
func (SettingSet) isIntent()          {}
