package dispatch

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"axd/internal/action"
	"axd/internal/element"
)

func (s *Server) handleClick(c *gin.Context) {
	body, _ := io.ReadAll(c.Request.Body)
	if err := validateAgainst(s.schemas.click, body); err != nil {
		respondValidation(c, "%v", err)
		return
	}

	var req clickRequest
	if err := decodeJSON(body, &req); err != nil {
		respondValidation(c, "invalid JSON: %v", err)
		return
	}
	if req.X < 0 || req.Y < 0 {
		respondValidation(c, "x and y must be non-negative")
		return
	}

	button, err := action.ParseMouseButton(req.Button)
	if err != nil {
		respondValidation(c, "%v", err)
		return
	}
	mods, err := action.ParseModifiers(req.Modifiers)
	if err != nil {
		respondValidation(c, "%v", err)
		return
	}
	clickCount := req.ClickCount
	if clickCount == 0 {
		clickCount = 1
	}

	_, err = s.adapters.Executor.Submit(c.Request.Context(), func() (any, error) {
		return nil, s.adapters.Global.Click(req.X, req.Y, button, clickCount, mods)
	})
	if err != nil {
		respondErr(c, adapterErr("click", err))
		return
	}

	respondOK(c, http.StatusOK, gin.H{"clicked_at": gin.H{"x": req.X, "y": req.Y}})
}

func (s *Server) handleClickElement(c *gin.Context) {
	body, _ := io.ReadAll(c.Request.Body)
	var req clickElementRequest
	if err := decodeJSON(body, &req); err != nil {
		respondValidation(c, "invalid JSON: %v", err)
		return
	}

	query := element.Query{Role: req.Role, Title: req.Title, TitleContains: req.TitleContains, LabelContains: req.Label}
	if query.Empty() {
		respondValidation(c, "at least one of title, title_contains, role, label is required")
		return
	}

	pid, err := s.resolvePID(req.PID)
	if err != nil {
		respondErr(c, notFound("could not resolve target process: %v", err))
		return
	}

	matches, err := s.adapters.Accessible.Find(pid, nil, query, 1)
	if err != nil {
		respondErr(c, adapterErr("click/element lookup", err))
		return
	}
	if len(matches) == 0 {
		respondErr(c, notFound("no element matched the query"))
		return
	}
	match := matches[0]

	if req.UseAccessibilityAction {
		_, err := s.adapters.Executor.Submit(c.Request.Context(), func() (any, error) {
			return nil, s.adapters.Accessible.Invoke(pid, match.Path.Index, action.Press, "")
		})
		if err != nil {
			respondErr(c, adapterErr("press", err))
			return
		}
		respondOK(c, http.StatusOK, gin.H{"element": toElementResponse(match)})
		return
	}

	button, err := action.ParseMouseButton(req.Button)
	if err != nil {
		respondValidation(c, "%v", err)
		return
	}
	cx, cy := match.Frame.Center()

	_, err = s.adapters.Executor.Submit(c.Request.Context(), func() (any, error) {
		return nil, s.adapters.Global.Click(cx, cy, button, 1, nil)
	})
	if err != nil {
		respondErr(c, adapterErr("click", err))
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"element":    toElementResponse(match),
		"clicked_at": gin.H{"x": cx, "y": cy},
	})
}
