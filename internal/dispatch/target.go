package dispatch

import "axd/internal/platform"

// boundTarget holds the optional TargetApp a server instance is scoped to.
// It is set once by the lifecycle coordinator during the run flow and is
// read-only for the server's life thereafter (§5, "Shared resources").
type boundTarget struct {
	info  platform.ProcessInfo
	bound bool
}

// resolvePID implements the scoping policy from §4.5: every endpoint that
// accepts a pid and omits one falls back to the bound TargetApp, then to the
// frontmost application.
func (s *Server) resolvePID(requested int32) (int32, error) {
	if requested != 0 {
		return requested, nil
	}
	if s.target.bound {
		return s.target.info.PID, nil
	}
	front, err := s.adapters.Process.Frontmost()
	if err != nil {
		return 0, err
	}
	return front.PID, nil
}
