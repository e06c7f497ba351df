package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/atikulmunna/logtally/internal/aggregator"
	"github.com/atikulmunna/logtally/internal/hub"
	"github.com/atikulmunna/logtally/internal/parser"
	"github.com/atikulmunna/logtally/internal/pipeline"
	"github.com/atikulmunna/logtally/internal/source"
	"github.com/gin-gonic/gin"
)

// Server exposes reports for one location over HTTP.
type Server struct {
	engine   *gin.Engine
	hub      *hub.Hub
	pipeline *pipeline.Pipeline
	location string
	order    aggregator.Order
	addr     string
	logger   *slog.Logger
}

// New creates a web server. Every /api/report request runs a fresh pipeline
// over location; /ws streams the snapshots published through h.
func New(p *pipeline.Pipeline, h *hub.Hub, location string, order aggregator.Order, addr string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	// Disable automatic redirects that cause 301 issues.
	engine.RedirectTrailingSlash = false
	engine.RedirectFixedPath = false

	s := &Server{
		engine:   engine,
		hub:      h,
		pipeline: p,
		location: location,
		order:    order,
		addr:     addr,
		logger:   logger,
	}

	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) setupRoutes() {
	s.engine.GET("/healthz", s.handleHealth)
	s.engine.GET("/api/report", s.handleReport)
	s.engine.GET("/ws", s.handleWebSocket)

	// pprof profiling endpoints.
	s.engine.GET("/debug/pprof/", gin.WrapF(pprof.Index))
	s.engine.GET("/debug/pprof/profile", gin.WrapF(pprof.Profile))
	s.engine.GET("/debug/pprof/heap", gin.WrapH(pprof.Handler("heap")))
	s.engine.GET("/debug/pprof/goroutine", gin.WrapH(pprof.Handler("goroutine")))
}

func (s *Server) handleHealth(c *gin.Context) {
	files, err := source.Resolve(s.location)
	body := gin.H{
		"status":      "ok",
		"location":    s.location,
		"files":       len(files),
		"subscribers": s.hub.Subscribers(),
		"dropped":     s.hub.Dropped(),
	}
	if err != nil {
		body["status"] = "degraded"
		body["error"] = err.Error()
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleReport(c *gin.Context) {
	order := s.order
	if q := c.Query("sort"); q != "" {
		var err error
		if order, err = aggregator.ParseOrder(q); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	rep, err := s.pipeline.Run(c.Request.Context(), s.location, pipeline.Options{
		Level: c.Query("level"),
		Order: order,
	})
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("report failed", "location", s.location, "error", err)
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rep)
}

// statusFor maps a pipeline error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, source.ErrResourceNotFound):
		return http.StatusNotFound
	case errors.Is(err, parser.ErrMalformedLine):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Start runs the server until ctx is cancelled, then shuts it down.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
