// Package waitloop implements axd's bounded polling subsystem (§4.3): repeated
// evaluation of an accessibility query against a WaitCondition, with a
// timeout and poll-interval discipline. A timeout is a reported outcome, not
// a transport error (§9 design notes).
package waitloop

import (
	"context"
	"fmt"
	"time"

	"axd/internal/action"
	"axd/internal/element"
	"axd/internal/platform"
)

// Result is the outcome of a Run call.
type Result struct {
	ConditionMet bool
	WaitedMs     int64
	Matched      *element.Info // last-seen match, present on success or to aid debugging on timeout
	TimeoutError string        // set iff the loop ended unmet (timeout or ctx cancellation)
}

// Params bundles a wait request's parameters, already validated by the
// caller (timeout/poll-interval bounds are §3's invariant, enforced before
// Run is called so this package stays free of HTTP-layer concerns).
type Params struct {
	PID             int32
	Query           element.Query
	Condition       action.WaitCondition
	TimeoutMs       int
	PollIntervalMs  int
}

// Run evaluates Query repeatedly against access, sleeping PollIntervalMs
// between attempts, until Condition is satisfied or TimeoutMs elapses.
func Run(ctx context.Context, access platform.Accessibility, p Params) Result {
	deadline := time.Duration(p.TimeoutMs) * time.Millisecond
	interval := time.Duration(p.PollIntervalMs) * time.Millisecond
	start := time.Now()

	var lastMatch *element.Info

	for {
		matches, err := access.Find(p.PID, nil, p.Query, 1)
		var first *element.Info
		if err == nil && len(matches) > 0 {
			m := matches[0]
			first = &m
			lastMatch = &m
		}

		met := evaluate(p.Condition, first)
		if met {
			return Result{
				ConditionMet: true,
				WaitedMs:     time.Since(start).Milliseconds(),
				Matched:      first,
			}
		}

		elapsed := time.Since(start)
		if elapsed >= deadline {
			return Result{
				ConditionMet: false,
				WaitedMs:     elapsed.Milliseconds(),
				Matched:      lastMatch,
				TimeoutError: fmt.Sprintf("Timeout: condition %q not met after %dms", p.Condition, p.TimeoutMs),
			}
		}

		select {
		case <-ctx.Done():
			return Result{
				ConditionMet: false,
				WaitedMs:     time.Since(start).Milliseconds(),
				Matched:      lastMatch,
				TimeoutError: fmt.Sprintf("Timeout: condition %q not met after %dms", p.Condition, p.TimeoutMs),
			}
		case <-time.After(interval):
		}
	}
}

func evaluate(cond action.WaitCondition, first *element.Info) bool {
	switch cond {
	case action.ConditionExists:
		return first != nil
	case action.ConditionNotExists:
		return first == nil
	case action.ConditionEnabled:
		return first != nil && first.IsEnabled
	case action.ConditionFocused:
		return first != nil && first.IsFocused
	default:
		return false
	}
}
