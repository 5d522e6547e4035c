package browser

import (
	"errors"
	"fmt"
)

// Reducer errors. All are local and recoverable: a failing intent is rejected
// with zero state mutation, and the caller may retry with corrected input.
// Match with errors.Is; the wrapped form carries the offending id.
var (
	// ErrProfileNotFound is returned when an intent references a profile id
	// that does not exist.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrWorkspaceNotFound is returned when an intent references a workspace
	// id that does not exist.
	ErrWorkspaceNotFound = errors.New("workspace not found")

	// ErrTabNotFound is returned when an intent references a tab id that
	// does not exist.
	ErrTabNotFound = errors.New("tab not found")

	// ErrLastProfile is returned by DeleteProfile when the target is the
	// only remaining profile. At least one profile always exists.
	ErrLastProfile = errors.New("cannot delete the last profile")

	// ErrLastWorkspace is returned by DeleteWorkspace when the target is its
	// profile's only workspace. Every profile keeps at least one workspace.
	ErrLastWorkspace = errors.New("cannot delete a profile's last workspace")

	// ErrCrossProfileMove is returned by MoveTab when the target workspace
	// belongs to a different profile. Tabs never change profile ownership.
	ErrCrossProfileMove = errors.New("cannot move tab across profiles")

	// ErrActiveTabDiscard is returned by DiscardTab when the target is the
	// currently active tab. Callers must activate another tab first.
	ErrActiveTabDiscard = errors.New("cannot discard the active tab")
)

func wrapProfileNotFound(id ProfileID) error {
	return fmt.Errorf("%w: %s", ErrProfileNotFound, id)
}

func wrapWorkspaceNotFound(id WorkspaceID) error {
	return fmt.Errorf("%w: %s", ErrWorkspaceNotFound, id)
}

func wrapTabNotFound(id TabID) error {
	return fmt.Errorf("%w: %s", ErrTabNotFound, id)
}

func wrapLastProfile(id ProfileID) error {
	return fmt.Errorf("%w: %s", ErrLastProfile, id)
}

func wrapLastWorkspace(id WorkspaceID) error {
	return fmt.Errorf("%w: %s", ErrLastWorkspace, id)
}

func wrapCrossProfileMove(id TabID, from, to ProfileID) error {
	return fmt.Errorf("%w: %s from %s to %s", ErrCrossProfileMove, id, from, to)
}

func wrapActiveTabDiscard(id TabID) error {
	return fmt.Errorf("%w: %s", ErrActiveTabDiscard, id)
}
