package browser

import "fmt"

// ProfileID identifies a browsing profile. Ids are allocated monotonically
// by the owning State and are never reused within a state's lifetime.
// The zero value means "no profile".
type ProfileID uint64

// String renders the id in the canonical "profile:N" form used in logs.
func (id ProfileID) String() string {
	return fmt.Sprintf("profile:%d", uint64(id))
}

// WorkspaceID identifies a workspace within a profile. The zero value means
// "no workspace".
type WorkspaceID uint64

// String renders the id in the canonical "workspace:N" form used in logs.
func (id WorkspaceID) String() string {
	return fmt.Sprintf("workspace:%d", uint64(id))
}

// TabID identifies a tab. The zero value means "no tab".
type TabID uint64

// String renders the id in the canonical "tab:N" form used in logs.
func (id TabID) String() string {
	return fmt.Sprintf("tab:%d", uint64(id))
}
