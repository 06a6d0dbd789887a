package dispatch

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// handleScroll implements §4.1's /scroll targeting table.
func (s *Server) handleScroll(c *gin.Context) {
	body, _ := io.ReadAll(c.Request.Body)
	if err := validateAgainst(s.schemas.scroll, body); err != nil {
		respondValidation(c, "%v", err)
		return
	}

	var req scrollRequest
	if err := decodeJSON(body, &req); err != nil {
		respondValidation(c, "invalid JSON: %v", err)
		return
	}
	if req.DeltaX == 0 && req.DeltaY == 0 {
		respondValidation(c, "delta_x or delta_y must be non-zero")
		return
	}

	ctx := c.Request.Context()

	if req.Path != nil {
		info, err := s.adapters.Accessible.Resolve(req.Path.PID, req.Path.Path)
		if err != nil {
			respondErr(c, asErrOr(err, "resolve"))
			return
		}
		cx, cy := info.Frame.Center()
		_, err = s.adapters.Executor.Submit(ctx, func() (any, error) {
			return nil, s.adapters.Targeted.Scroll(req.Path.PID, cx, cy, req.DeltaX, req.DeltaY)
		})
		if err != nil {
			respondErr(c, adapterErr("scroll", err))
			return
		}
		respondOK(c, http.StatusOK, nil)
		return
	}

	if req.X == nil || req.Y == nil {
		respondValidation(c, "x and y are required when path is not given")
		return
	}

	if req.PID != 0 {
		_, err := s.adapters.Executor.Submit(ctx, func() (any, error) {
			return nil, s.adapters.Targeted.Scroll(req.PID, *req.X, *req.Y, req.DeltaX, req.DeltaY)
		})
		if err != nil {
			respondErr(c, adapterErr("scroll", err))
			return
		}
		respondOK(c, http.StatusOK, nil)
		return
	}

	_, err := s.adapters.Executor.Submit(ctx, func() (any, error) {
		return nil, s.adapters.Global.Scroll(*req.X, *req.Y, req.DeltaX, req.DeltaY)
	})
	if err != nil {
		respondErr(c, adapterErr("scroll", err))
		return
	}
	respondOK(c, http.StatusOK, nil)
}
