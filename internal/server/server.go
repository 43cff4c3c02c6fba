// Package server exposes live portfolio pages over HTTP.
package server

import (
	"bytes"
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/dom"
	"github.com/Zachkp/portfolio/internal/logging"
	"github.com/Zachkp/portfolio/internal/page"
	"github.com/Zachkp/portfolio/internal/tracking"
)

// Options configure a Server.
type Options struct {
	// Skeleton is the page HTML every visitor's page is built from.
	Skeleton []byte
	PageDeps page.Deps
	Pages    *page.Store
	// Tracker is optional.
	Tracker *tracking.Tracker
	// AdminToken enables the admin routes when non-empty.
	AdminToken string
	// SiteRoot holds the static, images and data directories.
	SiteRoot string
	Logger   *zap.Logger
}

// Server owns the gin engine.
type Server struct {
	opts   Options
	engine *gin.Engine
	logger *zap.Logger
}

// New builds the engine and its routes.
func New(opts Options) *Server {
	s := &Server{
		opts:   opts,
		engine: gin.New(),
		logger: logging.OrNop(opts.Logger),
	}
	s.engine.Use(gin.Recovery(), requestLogger(s.logger))
	if opts.Tracker != nil {
		s.engine.Use(opts.Tracker.Middleware())
	}
	s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() {
	r := s.engine

	root := s.opts.SiteRoot
	r.Static("/static", filepath.Join(root, "static"))
	r.Static("/images", filepath.Join(root, "images"))
	r.Static("/data", filepath.Join(root, "data"))

	r.GET("/", s.handleIndex)
	r.POST("/live/:page/events", s.handleEvent)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "pages": s.opts.Pages.Len()})
	})

	if s.opts.AdminToken != "" && s.opts.Tracker != nil {
		admin := r.Group("/admin")
		admin.Use(s.adminAuth())
		admin.GET("/api/stats", s.handleStats)
	}
}

func (s *Server) handleIndex(c *gin.Context) {
	p, err := page.New(c.Request.Context(), s.opts.Skeleton, s.opts.PageDeps)
	if err != nil {
		s.logger.Error("Error building page", zap.Error(err))
		c.String(http.StatusInternalServerError, "Sorry, the page could not be built.")
		return
	}
	s.opts.Pages.Put(p)

	var buf bytes.Buffer
	if err := p.Render(&buf); err != nil {
		s.logger.Error("Error rendering page", zap.Error(err))
		c.String(http.StatusInternalServerError, "Sorry, the page could not be rendered.")
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) handleEvent(c *gin.Context) {
	p, err := s.opts.Pages.Get(c.Param("page"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "page expired"})
		return
	}

	var ev page.Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	update, err := p.HandleEvent(ev)
	if errors.Is(err, dom.ErrUnknownTarget) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown event target"})
		return
	}
	if err != nil {
		s.logger.Error("Error handling event", zap.String("page", p.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "event failed"})
		return
	}
	c.JSON(http.StatusOK, update)
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.opts.Tracker.Stats(c.Request.Context())
	if err != nil {
		s.logger.Error("Error loading admin stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// adminAuth accepts the token as a bearer token or an admin_token cookie.
func (s *Server) adminAuth() gin.HandlerFunc {
	want := []byte(s.opts.AdminToken)
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			token, _ = c.Cookie("admin_token")
		}
		if subtle.ConstantTimeCompare([]byte(token), want) != 1 {
			s.logger.Warn("Rejected admin request", zap.String("visitor", s.visitor(c)))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

func (s *Server) visitor(c *gin.Context) string {
	if s.opts.Tracker == nil {
		return ""
	}
	return s.opts.Tracker.HashIP(c.ClientIP())
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
