package platform

import "context"

// ProcessWatcher observes one process's exit. Darwin has a native kqueue
// facility for this (EVFILT_PROC/NOTE_EXIT); other platforms fall back to
// polling IsAlive.
type ProcessWatcher interface {
	// WaitExit blocks until pid exits, ctx is cancelled, or an error occurs.
	// A nil return means the process was observed to exit.
	WaitExit(ctx context.Context, pid int32) error
}
