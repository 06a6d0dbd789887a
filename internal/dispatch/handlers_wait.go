package dispatch

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"axd/internal/action"
	"axd/internal/element"
	"axd/internal/waitloop"
)

func (s *Server) handleWait(c *gin.Context) {
	body, _ := io.ReadAll(c.Request.Body)
	if err := validateAgainst(s.schemas.wait, body); err != nil {
		respondValidation(c, "%v", err)
		return
	}

	var req waitRequest
	if err := decodeJSON(body, &req); err != nil {
		respondValidation(c, "invalid JSON: %v", err)
		return
	}

	if req.TimeoutMs == 0 {
		req.TimeoutMs = s.cfg.DefaultWaitTimeoutMs
	}
	if req.PollIntervalMs == 0 {
		req.PollIntervalMs = s.cfg.DefaultPollIntervalMs
	}
	if req.TimeoutMs < 1 || req.TimeoutMs > 60000 {
		respondValidation(c, "timeout_ms must be in [1, 60000]")
		return
	}
	if req.PollIntervalMs < 1 || req.PollIntervalMs > 5000 {
		respondValidation(c, "poll_interval_ms must be in [1, 5000]")
		return
	}

	condition, err := action.ParseWaitCondition(req.Condition)
	if err != nil {
		respondValidation(c, "%v", err)
		return
	}

	pid, perr := s.resolvePID(req.PID)
	if perr != nil {
		respondErr(c, notFound("could not resolve target process: %v", perr))
		return
	}

	query := element.Query{Role: req.Role, Title: req.Title, TitleContains: req.TitleContains, LabelContains: req.Label}
	if query.Empty() {
		respondValidation(c, "at least one of title, title_contains, role, label is required")
		return
	}

	result := waitloop.Run(c.Request.Context(), s.adapters.Accessible, waitloop.Params{
		PID:            pid,
		Query:          query,
		Condition:      condition,
		TimeoutMs:      req.TimeoutMs,
		PollIntervalMs: req.PollIntervalMs,
	})

	fields := gin.H{
		"condition_met": result.ConditionMet,
		"waited_ms":     result.WaitedMs,
	}
	if result.Matched != nil {
		fields["element"] = toElementResponse(*result.Matched)
	}
	if result.TimeoutError != "" {
		fields["error"] = result.TimeoutError
	}
	respondOK(c, http.StatusOK, fields)
}
