package schema

import "errors"

var (
	// ErrInvalidName indicates an empty or malformed window/tab name.
	ErrInvalidName = errors.New("invalid name")
	// ErrWindowNotFound indicates a requested window does not exist.
	ErrWindowNotFound = errors.New("window not found")
	// ErrDuplicateWindow indicates a window name is already in use.
	ErrDuplicateWindow = errors.New("window already exists")
	// ErrTabNotFound indicates a requested tab could not be found.
	ErrTabNotFound = errors.New("tab not found")
	// ErrDuplicateTab indicates a tab name is already used in the window.
	ErrDuplicateTab = errors.New("tab already exists")
	// ErrNotTabbed indicates a tab operation on a window without tabs.
	ErrNotTabbed = errors.New("window has no tabs")
	// ErrInvalidOrder indicates a reorder that is not a permutation of the tabs.
	ErrInvalidOrder = errors.New("invalid tab order")
	// ErrTabIndex indicates a tab index outside the window's tab list.
	ErrTabIndex = errors.New("tab index out of range")
	// ErrDestinationNotFound indicates a stale or unknown destination handle.
	ErrDestinationNotFound = errors.New("destination not found")
)
