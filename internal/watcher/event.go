// Package watcher turns filesystem notifications under a vault into
// debounced note events and maps them onto sync engine changes.
//
// Usage:
//
//	w, err := watcher.New(vault, watcher.Options{Debounce: 500 * time.Millisecond})
//	if err != nil {
//	    return err
//	}
//	go w.Run(ctx)
//	changes := watcher.Bridge(ctx, w.Events(), vault, state.Snapshot)
//	return dispatcher.Run(ctx, changes)
package watcher

import "time"

// Op is the kind of change observed for a path.
type Op int

const (
	// OpCreated means a note appeared.
	OpCreated Op = iota
	// OpModified means an existing note was written.
	OpModified
	// OpDeleted means a note, or a directory when Event.Dir is set, is gone.
	// Renames are reported as a delete of the old path.
	OpDeleted
)

func (op Op) String() string {
	switch op {
	case OpCreated:
		return "CREATED"
	case OpModified:
		return "MODIFIED"
	case OpDeleted:
		return "DELETED"
	default:
		return "UNKNOWN"
	}
}

// Event is one debounced change. Path is absolute.
type Event struct {
	Op   Op
	Path string
	// Dir marks the removal of a watched directory; every note below Path is gone.
	Dir  bool
	Time time.Time
}

// DefaultDebounce is the coalescing window used when Options.Debounce is zero.
const DefaultDebounce = 500 * time.Millisecond
