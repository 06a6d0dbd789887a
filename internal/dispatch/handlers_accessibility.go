package dispatch

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"axd/internal/action"
	"axd/internal/element"
)

// compactEntry is one flattened row of a compact-format tree response.
type compactEntry struct {
	Path        pathDTO  `json:"path"`
	Role        string   `json:"role"`
	Title       string   `json:"title,omitempty"`
	Label       string   `json:"label,omitempty"`
	Value       string   `json:"value,omitempty"`
	Depth       int      `json:"depth"`
	IsEnabled   bool     `json:"is_enabled"`
	IsFocused   bool     `json:"is_focused"`
	Actions     []string `json:"actions,omitempty"`
}

func flattenCompact(info element.Info, includeActions bool, out *[]compactEntry) {
	if element.IsMeaningful(info) {
		entry := compactEntry{
			Path:      pathDTO{PID: info.Path.PID, Path: info.Path.Index},
			Role:      info.Role,
			Title:     info.Title,
			Label:     info.Label,
			Value:     info.Value,
			Depth:     info.Depth,
			IsEnabled: info.IsEnabled,
			IsFocused: info.IsFocused,
		}
		if includeActions {
			entry.Actions = info.Actions
		}
		*out = append(*out, entry)
	}
	for _, child := range info.Children {
		flattenCompact(child, includeActions, out)
	}
}

func parseRootPath(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	return element.ParseIndexList(s)
}

func (s *Server) handleAccessibilityTree(c *gin.Context) {
	pidParam, _ := strconv.ParseInt(c.Query("pid"), 10, 32)
	pid, err := s.resolvePID(int32(pidParam))
	if err != nil {
		respondErr(c, notFound("could not resolve target process: %v", err))
		return
	}

	maxDepth := 5
	if v := c.Query("maxDepth"); v != "" {
		if n, perr := strconv.Atoi(v); perr == nil {
			maxDepth = n
		}
	}
	if maxDepth > 10 {
		maxDepth = 10
	}
	if maxDepth < 0 {
		maxDepth = 0
	}

	rootPath, rerr := parseRootPath(c.Query("rootPath"))
	if rerr != nil {
		respondValidation(c, "invalid rootPath: %v", rerr)
		return
	}

	format := c.DefaultQuery("format", "tree")
	includeActions := c.Query("includeActions") == "true"

	root, werr := s.adapters.Accessible.Walk(pid, rootPath, maxDepth)
	if werr != nil {
		respondErr(c, asErrOr(werr, "walk"))
		return
	}

	switch format {
	case "compact":
		var entries []compactEntry
		flattenCompact(root, includeActions, &entries)
		if entries == nil {
			entries = []compactEntry{}
		}
		respondOK(c, http.StatusOK, gin.H{"elements": entries})
	case "tree", "":
		respondOK(c, http.StatusOK, gin.H{"tree": toElementResponse(root)})
	default:
		respondValidation(c, "format must be one of tree, compact")
	}
}

func (s *Server) handleAccessibilityElement(c *gin.Context) {
	pidParam, perr := strconv.ParseInt(c.Query("pid"), 10, 32)
	if perr != nil || pidParam == 0 {
		respondValidation(c, "pid is required")
		return
	}
	pathParam := c.Query("path")
	if pathParam == "" {
		respondValidation(c, "path is required")
		return
	}
	path, ierr := element.ParseIndexList(pathParam)
	if ierr != nil {
		respondValidation(c, "invalid path: %v", ierr)
		return
	}

	childDepth := 0
	if v := c.Query("childDepth"); v != "" {
		if n, nerr := strconv.Atoi(v); nerr == nil {
			childDepth = n
		}
	}

	pid := int32(pidParam)
	var info element.Info
	var werr error
	if childDepth > 0 {
		info, werr = s.adapters.Accessible.Walk(pid, path, childDepth)
	} else {
		info, werr = s.adapters.Accessible.Resolve(pid, path)
	}
	if werr != nil {
		respondErr(c, asErrOr(werr, "resolve"))
		return
	}
	respondOK(c, http.StatusOK, gin.H{"element": toElementResponse(info)})
}

func (s *Server) handleAccessibilityElements(c *gin.Context) {
	query := element.Query{
		Role:          c.Query("role"),
		Title:         c.Query("title"),
		TitleContains: c.Query("titleContains"),
		LabelContains: c.Query("labelContains"),
		ValueContains: c.Query("valueContains"),
	}
	if query.Empty() {
		respondValidation(c, "at least one query criteria is required (role, title, titleContains, labelContains, valueContains)")
		return
	}

	maxResults := 50
	if v := c.Query("maxResults"); v != "" {
		if n, nerr := strconv.Atoi(v); nerr == nil && n > 0 {
			maxResults = n
		}
	}

	pidParam, _ := strconv.ParseInt(c.Query("pid"), 10, 32)
	pid, rerr := s.resolvePID(int32(pidParam))
	if rerr != nil {
		respondErr(c, notFound("could not resolve target process: %v", rerr))
		return
	}

	matches, err := s.adapters.Accessible.Find(pid, nil, query, maxResults)
	if err != nil {
		respondErr(c, asErrOr(err, "find"))
		return
	}

	resp := make([]elementResponse, 0, len(matches))
	for _, m := range matches {
		resp = append(resp, toElementResponse(m))
	}
	respondOK(c, http.StatusOK, gin.H{"elements": resp})
}

func (s *Server) handleAccessibilityFocused(c *gin.Context) {
	pidParam, _ := strconv.ParseInt(c.Query("pid"), 10, 32)
	pid, rerr := s.resolvePID(int32(pidParam))
	if rerr != nil {
		respondErr(c, notFound("could not resolve target process: %v", rerr))
		return
	}

	info, err := s.adapters.Accessible.Focused(pid)
	if err != nil {
		respondErr(c, asErrOr(err, "focused"))
		return
	}
	respondOK(c, http.StatusOK, gin.H{"element": toElementResponse(info)})
}

func (s *Server) handleAccessibilityAction(c *gin.Context) {
	body, _ := io.ReadAll(c.Request.Body)
	if err := validateAgainst(s.schemas.accessibilityAction, body); err != nil {
		respondValidation(c, "%v", err)
		return
	}

	var req accessibilityActionRequest
	if err := decodeJSON(body, &req); err != nil {
		respondValidation(c, "invalid JSON: %v", err)
		return
	}

	kind, kerr := action.ParseKind(req.Action)
	if kerr != nil {
		respondValidation(c, "%v", kerr)
		return
	}
	if kind == action.SetValue && strings.TrimSpace(req.Value) == "" {
		respondValidation(c, "value is required when action is setValue")
		return
	}

	ctx := c.Request.Context()
	_, err := s.adapters.Executor.Submit(ctx, func() (any, error) {
		return nil, s.adapters.Accessible.Invoke(req.Path.PID, req.Path.Path, kind, req.Value)
	})
	if err != nil {
		respondErr(c, asErrOr(err, string(kind)))
		return
	}
	respondOK(c, http.StatusOK, gin.H{"action": string(kind)})
}
