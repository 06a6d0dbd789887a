package dispatch

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"axd/internal/action"
	"axd/internal/apperrors"
	"axd/internal/element"
)

// handleType implements §4.1's mode-resolution policy table for /type.
func (s *Server) handleType(c *gin.Context) {
	body, _ := io.ReadAll(c.Request.Body)

	var req typeRequest
	if err := decodeJSON(body, &req); err != nil {
		respondValidation(c, "invalid JSON: %v", err)
		return
	}
	if req.Text == "" {
		respondValidation(c, "text must be non-empty")
		return
	}
	if err := validateAgainst(s.schemas.typeReq, body); err != nil {
		respondValidation(c, "%v", err)
		return
	}
	mode, err := action.ParseTypeMode(req.Mode)
	if err != nil {
		respondValidation(c, "%v", err)
		return
	}

	query := element.Query{Role: req.Role, Title: req.Title, TitleContains: req.TitleContains}
	hasQuery := !query.Empty()
	hasPath := req.Path != nil

	ctx := c.Request.Context()

	switch mode {
	case action.ModeReplace:
		switch {
		case hasPath:
			if err := s.setValueAt(ctx, req.Path.PID, req.Path.Path, req.Text); err != nil {
				respondErr(c, asErrOr(err, "setValue"))
				return
			}
		case hasQuery:
			pid, perr := s.resolvePID(req.PID)
			if perr != nil {
				respondErr(c, notFound("could not resolve target process: %v", perr))
				return
			}
			match, ferr := s.findOne(pid, query)
			if ferr != nil {
				respondErr(c, ferr)
				return
			}
			if err := s.setValueAt(ctx, pid, match.Path.Index, req.Text); err != nil {
				respondErr(c, asErrOr(err, "setValue"))
				return
			}
		default:
			_, err := s.adapters.Executor.Submit(ctx, func() (any, error) {
				return nil, s.adapters.Global.TypeText(req.Text, req.DelayMs)
			})
			if err != nil {
				respondErr(c, adapterErr("type", err))
				return
			}
		}

	case action.ModeKeys:
		switch {
		case req.PID != 0 || hasPath || hasQuery:
			pid := req.PID
			if hasPath {
				pid = req.Path.PID
			}
			if pid == 0 {
				resolved, perr := s.resolvePID(req.PID)
				if perr != nil {
					respondErr(c, notFound("could not resolve target process: %v", perr))
					return
				}
				pid = resolved
			}

			if hasQuery {
				match, ferr := s.findOne(pid, query)
				if ferr != nil {
					respondErr(c, ferr)
					return
				}
				_, err := s.adapters.Executor.Submit(ctx, func() (any, error) {
					return nil, s.adapters.Accessible.Invoke(pid, match.Path.Index, action.Focus, "")
				})
				if err != nil {
					respondErr(c, adapterErr("focus", err))
					return
				}
			}

			_, err := s.adapters.Executor.Submit(ctx, func() (any, error) {
				return nil, s.adapters.Targeted.TypeText(pid, req.Text, req.DelayMs)
			})
			if err != nil {
				respondErr(c, adapterErr("type", err))
				return
			}
		default:
			_, err := s.adapters.Executor.Submit(ctx, func() (any, error) {
				return nil, s.adapters.Global.TypeText(req.Text, req.DelayMs)
			})
			if err != nil {
				respondErr(c, adapterErr("type", err))
				return
			}
		}
	}

	respondOK(c, http.StatusOK, gin.H{"characters_typed": len([]rune(req.Text))})
}

func (s *Server) setValueAt(ctx context.Context, pid int32, path []int, value string) error {
	_, err := s.adapters.Executor.Submit(ctx, func() (any, error) {
		return nil, s.adapters.Accessible.Invoke(pid, path, action.SetValue, value)
	})
	return err
}

// findOne resolves a single query match or returns a Resolution-kind error.
func (s *Server) findOne(pid int32, q element.Query) (element.Info, *apperrors.Error) {
	matches, err := s.adapters.Accessible.Find(pid, nil, q, 1)
	if err != nil {
		return element.Info{}, adapterErr("element lookup", err)
	}
	if len(matches) == 0 {
		return element.Info{}, notFound("no element matched the query")
	}
	return matches[0], nil
}

// asErrOr recovers an *apperrors.Error from err, or wraps it as an adapter
// failure tagged with op.
func asErrOr(err error, op string) *apperrors.Error {
	if ae, ok := apperrors.As(err); ok {
		return ae
	}
	return adapterErr(op, err)
}
