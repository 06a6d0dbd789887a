package dispatch

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"axd/internal/action"
	"axd/internal/platform"
)

const menuTriggerSearchDepth = 10

func (s *Server) handleMenuGet(c *gin.Context) {
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

	menu, err := s.adapters.Accessible.MenuTree(pid, maxDepth)
	if err != nil {
		respondErr(c, asErrOr(err, "menuTree"))
		return
	}
	respondOK(c, http.StatusOK, gin.H{"menu": menu})
}

func (s *Server) handleMenuPost(c *gin.Context) {
	body, _ := io.ReadAll(c.Request.Body)
	var req menuTriggerRequest
	if err := decodeJSON(body, &req); err != nil {
		respondValidation(c, "invalid JSON: %v", err)
		return
	}
	if len(req.Titles) == 0 {
		respondValidation(c, "titles must be a non-empty ordered list")
		return
	}

	pid, err := s.resolvePID(0)
	if err != nil {
		respondErr(c, notFound("could not resolve target process: %v", err))
		return
	}

	root, err := s.adapters.Accessible.MenuTree(pid, menuTriggerSearchDepth)
	if err != nil {
		respondErr(c, asErrOr(err, "menuTree"))
		return
	}

	item, found := matchMenuPath(root.Children, req.Titles)
	if !found {
		respondErr(c, notFound("menu path %q unresolved", strings.Join(req.Titles, " > ")))
		return
	}

	ctx := c.Request.Context()
	_, perr := s.adapters.Executor.Submit(ctx, func() (any, error) {
		return nil, s.adapters.Accessible.Invoke(item.Path.PID, item.Path.Index, action.Press, "")
	})
	if perr != nil {
		respondErr(c, adapterErr("press", perr))
		return
	}
	respondOK(c, http.StatusOK, gin.H{"pressed": req.Titles})
}

// matchMenuPath descends siblings title-by-title, case-insensitive substring
// match, first depth-first match wins on ambiguity (§7 open question).
func matchMenuPath(siblings []platform.MenuItemInfo, titles []string) (platform.MenuItemInfo, bool) {
	if len(titles) == 0 {
		return platform.MenuItemInfo{}, false
	}
	want := strings.ToLower(titles[0])
	for _, item := range siblings {
		if !strings.Contains(strings.ToLower(item.Title), want) {
			continue
		}
		if len(titles) == 1 {
			return item, true
		}
		return matchMenuPath(item.Children, titles[1:])
	}
	return platform.MenuItemInfo{}, false
}
