package dispatch

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"axd/internal/action"
)

// handleKey implements §4.1's /key targeting table.
func (s *Server) handleKey(c *gin.Context) {
	body, _ := io.ReadAll(c.Request.Body)
	if err := validateAgainst(s.schemas.key, body); err != nil {
		respondValidation(c, "%v", err)
		return
	}

	var req keyRequest
	if err := decodeJSON(body, &req); err != nil {
		respondValidation(c, "invalid JSON: %v", err)
		return
	}

	ctx := c.Request.Context()

	if req.Path != nil {
		act, ok := action.KeyToAction[req.Key]
		if !ok {
			respondErr(c, notFound("key %q has no accessibility-action mapping for a path target; supported keys are return, enter, escape, space — use pid for arbitrary keys", req.Key))
			return
		}
		_, err := s.adapters.Executor.Submit(ctx, func() (any, error) {
			return nil, s.adapters.Accessible.Invoke(req.Path.PID, req.Path.Path, act, "")
		})
		if err != nil {
			respondErr(c, asErrOr(err, string(act)))
			return
		}
		respondOK(c, http.StatusOK, gin.H{"action": string(act)})
		return
	}

	mods, err := action.ParseModifiers(req.Modifiers)
	if err != nil {
		respondValidation(c, "%v", err)
		return
	}

	if req.PID != 0 {
		_, err := s.adapters.Executor.Submit(ctx, func() (any, error) {
			return nil, s.adapters.Targeted.KeyEvent(req.PID, req.Key, mods)
		})
		if err != nil {
			respondErr(c, adapterErr("key", err))
			return
		}
		respondOK(c, http.StatusOK, nil)
		return
	}

	_, err = s.adapters.Executor.Submit(ctx, func() (any, error) {
		return nil, s.adapters.Global.KeyEvent(req.Key, mods)
	})
	if err != nil {
		respondErr(c, adapterErr("key", err))
		return
	}
	respondOK(c, http.StatusOK, nil)
}
