package dispatch

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"axd/internal/platform"
)

// handleScreenshot implements §4.1's selection order: app substring match
// first, then windowId, then full display.
func (s *Server) handleScreenshot(c *gin.Context) {
	format := strings.ToLower(c.Query("format"))
	if format == "" {
		format = "base64"
	}
	if format != "png" && format != "base64" && format != "jpeg" {
		respondValidation(c, "format must be one of png, base64, jpeg")
		return
	}

	app := c.Query("app")
	if app == "" {
		if target, bound := s.TargetApp(); bound {
			app = target.Name
		}
	}

	encodeFormat := format
	if encodeFormat == "base64" {
		encodeFormat = "png"
	}

	var img platform.Image
	var windowMeta gin.H
	var err error

	switch {
	case app != "":
		img, windowMeta, err = s.captureByApp(app, encodeFormat)
	case c.Query("windowId") != "":
		windowID, convErr := strconv.Atoi(c.Query("windowId"))
		if convErr != nil {
			respondValidation(c, "windowId must be an integer")
			return
		}
		img, windowMeta, err = s.captureByWindowID(windowID, encodeFormat)
	default:
		displayID := 0
		if d := c.Query("display"); d != "" {
			displayID, err = strconv.Atoi(d)
			if err != nil {
				respondValidation(c, "display must be an integer")
				return
			}
		} else {
			displays, derr := s.adapters.Capture.ListDisplays()
			if derr == nil {
				for _, d := range displays {
					if d.Main {
						displayID = d.ID
					}
				}
			}
		}
		img, err = s.adapters.Capture.CaptureDisplay(displayID, encodeFormat)
	}

	if err != nil {
		if ae, ok := asAppErr(err); ok {
			respondErr(c, ae)
		} else {
			respondErr(c, adapterErr("screenshot", err))
		}
		return
	}

	if format == "base64" {
		fields := gin.H{
			"format": img.Format,
			"width":  img.Width,
			"height": img.Height,
			"data":   base64.StdEncoding.EncodeToString(img.Bytes),
		}
		if windowMeta != nil {
			fields["window"] = windowMeta
		}
		respondOK(c, http.StatusOK, fields)
		return
	}

	contentType := "image/png"
	if format == "jpeg" {
		contentType = "image/jpeg"
	}
	c.Data(http.StatusOK, contentType, img.Bytes)
}

func (s *Server) captureByApp(app, format string) (platform.Image, gin.H, error) {
	windows, err := s.adapters.Capture.ListWindows()
	if err != nil {
		return platform.Image{}, nil, err
	}

	var chosen *platform.WindowInfo
	for i := range windows {
		w := windows[i]
		if strings.Contains(strings.ToLower(w.OwnerName), strings.ToLower(app)) {
			if w.IsOnScreen {
				chosen = &w
				break
			}
			if chosen == nil {
				chosen = &w
			}
		}
	}
	if chosen == nil {
		return platform.Image{}, nil, notFound("no window owned by %q", app)
	}

	img, err := s.adapters.Capture.CaptureWindow(chosen.ID, format)
	if err != nil {
		return platform.Image{}, nil, err
	}
	return img, gin.H{"id": chosen.ID, "title": chosen.Title, "owner": chosen.OwnerName}, nil
}

func (s *Server) captureByWindowID(windowID int, format string) (platform.Image, gin.H, error) {
	img, err := s.adapters.Capture.CaptureWindow(windowID, format)
	if err != nil {
		return platform.Image{}, nil, err
	}
	return img, gin.H{"id": windowID}, nil
}
