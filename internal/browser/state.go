// Package browser implements the state core of the switchboard shell: a pure,
// deterministic state machine that turns UI commands into validated state
// transitions, emits a diff for UI synchronization, and enforces a bounded
// live-content budget over open tabs.
//
// The package deals exclusively in metadata (URLs, titles, loading flags,
// thumbnails as opaque strings). It never fetches or renders anything; the
// surrounding application materializes live rendering surfaces from the
// runtime states the reducer resolves.
package browser

import (
	"sort"
)

// TabRuntimeState is a tab's residency tier. Each Active or Warm tab
// corresponds to one live, resource-expensive rendering surface held by the
// external host; Discarded tabs are metadata only.
type TabRuntimeState int

// Runtime states as stored in the tabs.runtime_state column. The zero value
// is Discarded so that freshly decoded tabs default to the cheapest tier.
const (
	TabDiscarded TabRuntimeState = iota
	TabWarm
	TabActive
	// TabRestoring is reserved for hosts that rebuild surfaces asynchronously.
	// The reducer never assigns it.
	TabRestoring
)

// String returns the lowercase name used in logs and wire encodings.
func (s TabRuntimeState) String() string {
	switch s {
	case TabDiscarded:
		return "discarded"
	case TabWarm:
		return "warm"
	case TabActive:
		return "active"
	case TabRestoring:
		return "restoring"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so runtime states serialize
// as their names in JSON snapshots and patches.
func (s TabRuntimeState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Profile is an isolated browsing identity: its own workspaces, tabs, and
// live-content budget. ActiveWorkspaceID is zero when the profile has no
// workspaces yet.
type Profile struct {
	ID                ProfileID     `json:"id"`
	Name              string        `json:"name"`
	WorkspaceOrder    []WorkspaceID `json:"workspace_order"`
	ActiveWorkspaceID WorkspaceID   `json:"active_workspace_id,omitempty"`
}

// snapshot returns a value copy safe to embed in a PatchOp. Ops must capture
// the entity's value at emission time because later steps of the same intent
// (the lifecycle pass in particular) may mutate the entity again.
func (p *Profile) snapshot() Profile {
	out := *p
	out.WorkspaceOrder = append([]WorkspaceID(nil), p.WorkspaceOrder...)
	return out
}

// Workspace is a named group of tabs within a profile. ActiveTabID is zero
// when the workspace is empty.
type Workspace struct {
	ID          WorkspaceID `json:"id"`
	ProfileID   ProfileID   `json:"profile_id"`
	Name        string      `json:"name"`
	TabOrder    []TabID     `json:"tab_order"`
	ActiveTabID TabID       `json:"active_tab_id,omitempty"`
}

func (w *Workspace) snapshot() Workspace {
	out := *w
	out.TabOrder = append([]TabID(nil), w.TabOrder...)
	return out
}

// Tab is a single page's metadata. ThumbnailDataURL is an opaque string owned
// by the host; empty means no thumbnail.
type Tab struct {
	ID               TabID           `json:"id"`
	ProfileID        ProfileID       `json:"profile_id"`
	WorkspaceID      WorkspaceID     `json:"workspace_id"`
	URL              string          `json:"url"`
	Title            string          `json:"title"`
	Loading          bool            `json:"loading"`
	ThumbnailDataURL string          `json:"thumbnail_data_url,omitempty"`
	Pinned           bool            `json:"pinned"`
	Muted            bool            `json:"muted"`
	RuntimeState     TabRuntimeState `json:"runtime_state"`
}

// State is the aggregate the reducer operates on. It is owned exclusively by
// one Engine; there is no shared-mutable access from elsewhere.
//
// The per-profile warm LRU lists and the id allocators are private
// implementation state: they are not part of the diff protocol and are
// rebuilt (LRU) or recomputed (allocators) after a load.
type State struct {
	Profiles        map[ProfileID]*Profile
	Workspaces      map[WorkspaceID]*Workspace
	Tabs            map[TabID]*Tab
	Settings        map[string]SettingValue
	ActiveProfileID ProfileID

	// warmLRU tracks per-profile tab recency, least-recent first. Touched
	// only inside the reducer's lifecycle pass.
	warmLRU map[ProfileID][]TabID

	nextProfileID   uint64
	nextWorkspaceID uint64
	nextTabID       uint64
}

// NewState returns an empty state with id allocation starting at 1.
func NewState() *State {
	return &State{
		Profiles:        make(map[ProfileID]*Profile),
		Workspaces:      make(map[WorkspaceID]*Workspace),
		Tabs:            make(map[TabID]*Tab),
		Settings:        make(map[string]SettingValue),
		warmLRU:         make(map[ProfileID][]TabID),
		nextProfileID:   1,
		nextWorkspaceID: 1,
		nextTabID:       1,
	}
}

func (s *State) allocateProfileID() ProfileID {
	id := ProfileID(s.nextProfileID)
	s.nextProfileID++
	return id
}

func (s *State) allocateWorkspaceID() WorkspaceID {
	id := WorkspaceID(s.nextWorkspaceID)
	s.nextWorkspaceID++
	return id
}

func (s *State) allocateTabID() TabID {
	id := TabID(s.nextTabID)
	s.nextTabID++
	return id
}

// AddProfile creates a profile outside the reducer. Used for seeding and
// bootstrap; dispatched state changes go through the NewProfile intent.
// The first profile added becomes active.
func (s *State) AddProfile(name string) ProfileID {
	id := s.allocateProfileID()
	s.Profiles[id] = &Profile{ID: id, Name: name}

	if s.ActiveProfileID == 0 {
		s.ActiveProfileID = id
	}

	return id
}

// AddWorkspace creates a workspace in the given profile outside the reducer.
// The profile's first workspace becomes its active workspace.
func (s *State) AddWorkspace(profileID ProfileID, name string) (WorkspaceID, error) {
	profile, ok := s.Profiles[profileID]
	if !ok {
		return 0, wrapProfileNotFound(profileID)
	}

	id := s.allocateWorkspaceID()
	s.Workspaces[id] = &Workspace{ID: id, ProfileID: profileID, Name: name}

	profile.WorkspaceOrder = append(profile.WorkspaceOrder, id)
	if profile.ActiveWorkspaceID == 0 {
		profile.ActiveWorkspaceID = id
	}

	return id, nil
}

// ActiveWorkspaceID resolves the active profile's active workspace.
// Returns zero when any link of the chain is unset.
func (s *State) ActiveWorkspaceID() WorkspaceID {
	profile, ok := s.Profiles[s.ActiveProfileID]
	if !ok {
		return 0
	}

	return profile.ActiveWorkspaceID
}

// ActiveTabID resolves the full active chain: active profile, its active
// workspace, that workspace's active tab. Returns zero when any link is unset.
func (s *State) ActiveTabID() TabID {
	workspace, ok := s.Workspaces[s.ActiveWorkspaceID()]
	if !ok {
		return 0
	}

	return workspace.ActiveTabID
}

// --- Deterministic iteration ---
// The entity maps are plain Go maps; all snapshot and patch emission iterates
// through these sorted-key helpers so that identical states always produce
// identical output.

// ProfileIDsInOrder returns all profile ids in ascending order.
func (s *State) ProfileIDsInOrder() []ProfileID {
	ids := make([]ProfileID, 0, len(s.Profiles))
	for id := range s.Profiles {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}

// WorkspaceIDsInOrder returns all workspace ids in ascending order.
func (s *State) WorkspaceIDsInOrder() []WorkspaceID {
	ids := make([]WorkspaceID, 0, len(s.Workspaces))
	for id := range s.Workspaces {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}

// TabIDsInOrder returns all tab ids in ascending order.
func (s *State) TabIDsInOrder() []TabID {
	ids := make([]TabID, 0, len(s.Tabs))
	for id := range s.Tabs {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}

// SettingKeysInOrder returns all setting keys in ascending order.
func (s *State) SettingKeysInOrder() []string {
	keys := make([]string, 0, len(s.Settings))
	for key := range s.Settings {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// Clone returns a deep copy of the state, allocators included. Used by
// Engine.Snapshot so callers can hand the copy to other goroutines without
// aliasing the engine-owned original.
func (s *State) Clone() *State {
	out := NewState()
	out.ActiveProfileID = s.ActiveProfileID
	out.nextProfileID = s.nextProfileID
	out.nextWorkspaceID = s.nextWorkspaceID
	out.nextTabID = s.nextTabID

	for id, profile := range s.Profiles {
		copied := profile.snapshot()
		out.Profiles[id] = &copied
	}

	for id, workspace := range s.Workspaces {
		copied := workspace.snapshot()
		out.Workspaces[id] = &copied
	}

	for id, tab := range s.Tabs {
		copied := *tab
		out.Tabs[id] = &copied
	}

	for key, value := range s.Settings {
		out.Settings[key] = value
	}

	for profileID, lru := range s.warmLRU {
		out.warmLRU[profileID] = append([]TabID(nil), lru...)
	}

	return out
}

// RecomputeNextIDs restores the monotonic allocators after a load: each
// counter resumes above the highest id present so ids are never reused.
func (s *State) RecomputeNextIDs() {
	s.nextProfileID = 1
	for id := range s.Profiles {
		if uint64(id) >= s.nextProfileID {
			s.nextProfileID = uint64(id) + 1
		}
	}

	s.nextWorkspaceID = 1
	for id := range s.Workspaces {
		if uint64(id) >= s.nextWorkspaceID {
			s.nextWorkspaceID = uint64(id) + 1
		}
	}

	s.nextTabID = 1
	for id := range s.Tabs {
		if uint64(id) >= s.nextTabID {
			s.nextTabID = uint64(id) + 1
		}
	}
}
