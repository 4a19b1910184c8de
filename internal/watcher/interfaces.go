package watcher

import "context"

// ChangeKind classifies a module file event.
type ChangeKind int

const (
	// Modified means the module file was written.
	Modified ChangeKind = iota
	// Created means a new module file appeared. Resolution results may flip to found.
	Created
	// Removed means the module file was deleted or renamed away. Resolution results may flip to not found.
	Removed
)

func (k ChangeKind) String() string {
	switch k {
	case Created:
		return "created"
	case Removed:
		return "removed"
	default:
		return "modified"
	}
}

// Change is one debounced module file event. When a path sees several events inside one
// debounce window only the last kind is kept.
type Change struct {
	Path string
	Kind ChangeKind
}

// ModuleWatcher monitors workspace trees for Jac module changes with debouncing and pause/resume support.
type ModuleWatcher interface {
	// Start begins watching, calling callback with each debounced batch of changes.
	Start(ctx context.Context, callback func(changes []Change)) error

	// Stop stops the watcher and releases the underlying fsnotify handle.
	Stop() error

	// Pause stops firing callbacks but continues accumulating events.
	Pause()

	// Resume resumes firing callbacks. If events accumulated during pause, fires immediately.
	Resume()
}
