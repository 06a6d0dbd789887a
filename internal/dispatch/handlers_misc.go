package dispatch

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    "axd",
		"version": Version,
		"routes": []string{
			"/status", "/metrics", "/screenshot", "/click", "/click/element", "/type", "/key", "/scroll",
			"/wait", "/accessibility/tree", "/accessibility/element", "/accessibility/elements",
			"/accessibility/focused", "/accessibility/action", "/menu", "/quit", "/health",
		},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleMetrics exposes axd's request counters/histograms in Prometheus text
// exposition format, for operators scraping a long-running agent (no other
// endpoint depends on it).
func (s *Server) handleMetrics(c *gin.Context) {
	c.Header("Content-Type", "text/plain; version=0.0.4")
	c.Status(http.StatusOK)
	_ = s.metrics.Registry.WritePrometheus(c.Writer)
}

func (s *Server) handleStatus(c *gin.Context) {
	permissions := gin.H{
		"accessibility":    s.adapters.Permissions.AccessibilityGranted(),
		"screen_recording": s.adapters.Permissions.ScreenRecordingGranted(),
	}

	front, err := s.adapters.Process.Frontmost()
	var frontmost gin.H
	if err == nil {
		frontmost = gin.H{"name": front.Name, "bundle_id": front.BundleID, "pid": front.PID}
	}

	var displayWidth, displayHeight int
	if displays, derr := s.adapters.Capture.ListDisplays(); derr == nil {
		for _, d := range displays {
			if d.Main {
				displayWidth, displayHeight = d.Width, d.Height
			}
		}
	}

	resp := gin.H{
		"version":          Version,
		"running":          true,
		"permissions":      permissions,
		"frontmost_app":    frontmost,
		"screen_size":      gin.H{"width": displayWidth, "height": displayHeight},
		"log_level":        s.cfg.LogLevel,
		"watchdog_last_ok": s.watchdogLastOK.UTC().Format(time.RFC3339),
		"metrics":          s.metrics.Registry.Snapshot(),
	}

	if target, bound := s.TargetApp(); bound {
		resp["target_app"] = gin.H{
			"processIdentifier": target.PID,
			"name":              target.Name,
			"bundle_id":         target.BundleID,
		}
	}

	respondOK(c, http.StatusOK, resp)
}

func (s *Server) handleQuit(c *gin.Context) {
	respondOK(c, http.StatusOK, nil)
	go func() {
		time.Sleep(200 * time.Millisecond)
		os.Exit(0)
	}()
}
