//go:build !darwin

package platform

import (
	"context"
	"time"
)

// pollingProcessWatcher is the non-darwin fallback: it has no kqueue
// equivalent wired, so it polls IsAlive through a ProcessDiscovery port.
type pollingProcessWatcher struct {
	proc     ProcessDiscovery
	interval time.Duration
}

// NewProcessWatcher returns a polling ProcessWatcher backed by proc,
// checking every interval.
func NewProcessWatcher(proc ProcessDiscovery, interval time.Duration) ProcessWatcher {
	return pollingProcessWatcher{proc: proc, interval: interval}
}

func (w pollingProcessWatcher) WaitExit(ctx context.Context, pid int32) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !w.proc.IsAlive(pid) {
				return nil
			}
		}
	}
}
