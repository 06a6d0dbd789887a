//go:build darwin

package platform

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// kqueueProcessWatcher uses a kqueue EVFILT_PROC/NOTE_EXIT registration to
// block until a specific pid exits, instead of polling liveness on a timer.
// pollInterval is accepted for signature parity with the non-darwin fallback
// and unused here.
type kqueueProcessWatcher struct{}

// NewProcessWatcher returns the darwin kqueue-backed ProcessWatcher.
func NewProcessWatcher(_ ProcessDiscovery, _ time.Duration) ProcessWatcher {
	return kqueueProcessWatcher{}
}

func (kqueueProcessWatcher) WaitExit(ctx context.Context, pid int32) error {
	kq, err := unix.Kqueue()
	if err != nil {
		return fmt.Errorf("kqueue: %w", err)
	}
	defer unix.Close(kq)

	changes := []unix.Kevent_t{{
		Ident:  uint64(pid),
		Filter: unix.EVFILT_PROC,
		Flags:  unix.EV_ADD | unix.EV_ENABLE | unix.EV_ONESHOT,
		Fflags: unix.NOTE_EXIT,
	}}
	if _, err := unix.Kevent(kq, changes, nil, nil); err != nil {
		// ESRCH means the process is already gone.
		if err == unix.ESRCH {
			return nil
		}
		return fmt.Errorf("kevent register: %w", err)
	}

	events := make([]unix.Kevent_t, 1)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		timeout := &unix.Timespec{Sec: 1}
		n, err := unix.Kevent(kq, nil, events, timeout)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("kevent wait: %w", err)
		}
		if n > 0 {
			return nil
		}
	}
}
