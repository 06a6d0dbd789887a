// Package dispatch implements axd's HTTP surface: routing, the per-endpoint
// handlers, request-body schema validation, and the middleware chain. It is
// the "what does this parameter combination mean" policy engine described in
// SPEC_FULL.md §4.1.
package dispatch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"axd/internal/config"
	"axd/internal/health"
	"axd/internal/logging"
	"axd/internal/metrics"
	"axd/internal/platform"
)

// Version is axd's reported build version. A single constant is enough for
// this exercise; a real release would stamp this via -ldflags.
const Version = "0.1.0"

// Server owns the HTTP listener and every handler's dependencies: the
// platform adapters, the bound target (if any), and the ambient config/log
// stack.
type Server struct {
	engine   *gin.Engine
	httpSrv  *http.Server
	adapters platform.Adapters
	cfg      *config.Config
	logger   *logging.Logger
	schemas  *schemaSet
	checker  *health.Checker
	metrics  *metrics.RequestMetrics

	target         boundTarget
	watchdogLastOK time.Time

	listener net.Listener
}

// New builds a Server wired to adapters. It does not bind a listener yet —
// call Start for that, so the lifecycle coordinator can first resolve a
// port.
func New(cfg *config.Config, logger *logging.Logger, adapters platform.Adapters, checker *health.Checker) (*Server, error) {
	schemas, err := compileSchemas()
	if err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	s := &Server{
		engine:   engine,
		adapters: adapters,
		cfg:      cfg,
		logger:   logger,
		schemas:  schemas,
		checker:  checker,
		metrics:  metrics.NewRequestMetrics(),
	}

	engine.Use(errorTrapMiddleware(logger), requestLogMiddleware(logger, s.metrics))
	s.routes()
	return s, nil
}

// Metrics returns the request-metrics registry, for /status's snapshot.
func (s *Server) Metrics() *metrics.RequestMetrics {
	return s.metrics
}

// SetTarget binds the server to a TargetApp, per the run flow (§4.5). It is
// called at most once, before Start.
func (s *Server) SetTarget(info platform.ProcessInfo) {
	s.target = boundTarget{info: info, bound: true}
	s.metrics.TargetAlive.Set(1)
}

// TargetApp returns the bound TargetApp, if any.
func (s *Server) TargetApp() (platform.ProcessInfo, bool) {
	return s.target.info, s.target.bound
}

// NoteWatchdogCheck records the watchdog's last liveness observation, for
// /status (§4's supplemented-features addition).
func (s *Server) NoteWatchdogCheck(t time.Time) {
	s.watchdogLastOK = t
}

// Start binds to host:port. When port is 0, a free ephemeral port is chosen
// and BoundPort reports it back (§4.4).
func (s *Server) Start(host string, port int) error {
	ln, err := net.Listen("tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return fmt.Errorf("bind %s:%d: %w", host, port, err)
	}
	s.listener = ln

	s.httpSrv = &http.Server{Handler: s.engine}
	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("server stopped unexpectedly")
		}
	}()
	return nil
}

// BoundPort reports the port the listener ended up on.
func (s *Server) BoundPort() int {
	if s.listener == nil {
		return 0
	}
	return s.listener.Addr().(*net.TCPAddr).Port
}

// Shutdown gracefully stops the HTTP listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) routes() {
	r := s.engine

	r.GET("/", s.handleRoot)
	r.GET("/health", s.handleHealth)
	r.GET("/status", s.handleStatus)
	r.GET("/metrics", s.handleMetrics)
	r.GET("/screenshot", s.handleScreenshot)

	defaultCap := bodySizeLimit(s.cfg.BodySizeCapBytes)
	typeCap := bodySizeLimit(s.cfg.TypeBodySizeCapBytes)

	r.POST("/click", defaultCap, s.handleClick)
	r.POST("/click/element", defaultCap, s.handleClickElement)
	r.POST("/type", typeCap, s.handleType)
	r.POST("/key", defaultCap, s.handleKey)
	r.POST("/scroll", defaultCap, s.handleScroll)
	r.POST("/wait", defaultCap, s.handleWait)

	r.GET("/accessibility/tree", s.handleAccessibilityTree)
	r.GET("/accessibility/element", s.handleAccessibilityElement)
	r.GET("/accessibility/elements", s.handleAccessibilityElements)
	r.GET("/accessibility/focused", s.handleAccessibilityFocused)
	r.POST("/accessibility/action", defaultCap, s.handleAccessibilityAction)

	r.GET("/menu", s.handleMenuGet)
	r.POST("/menu", defaultCap, s.handleMenuPost)

	r.POST("/quit", defaultCap, s.handleQuit)
}
