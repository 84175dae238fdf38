// Package server exposes wizard sessions over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"application-wizard/internal/common/logger"
	"application-wizard/internal/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker func(ctx context.Context) error

type Server struct {
	config   *Config
	registry *session.Registry
	checks   map[string]HealthChecker
	logger   logger.Logger
	engine   *gin.Engine
	http     *http.Server
}

func NewServer(config *Config, registry *session.Registry, checks map[string]HealthChecker, log logger.Logger) *Server {
	if config == nil {
		config = LoadConfig()
	}
	s := &Server{
		config:   config,
		registry: registry,
		checks:   checks,
		logger:   logger.ForComponent(log, "server"),
	}
	s.engine = s.routes()
	s.http = &http.Server{
		Addr:              config.Address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the router, e.g. for httptest.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	corsConfig := cors.DefaultConfig()
	if len(s.config.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = s.config.AllowedOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		api.POST("/sessions", s.createSession)
		api.GET("/sessions/:id", s.getSession)
		api.DELETE("/sessions/:id", s.deleteSession)

		api.POST("/sessions/:id/next", s.next)
		api.POST("/sessions/:id/back", s.back)
		api.POST("/sessions/:id/submit", s.submit)

		api.POST("/sessions/:id/profile/retry", s.retryProfile)

		api.POST("/sessions/:id/resume/library", s.selectResume)
		api.POST("/sessions/:id/resume/upload", s.uploadResume)
		api.DELETE("/sessions/:id/resume/upload", s.removeUpload)
		api.PUT("/sessions/:id/resume/portfolio", s.setPortfolio)

		api.PUT("/sessions/:id/questions/:qid", s.answer)
		api.POST("/sessions/:id/questions/draft", s.saveDraft)

		api.PUT("/sessions/:id/consent", s.setConsent)
	}
	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := map[string]interface{}{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			s.logger.Error("request failed", fields)
			return
		}
		s.logger.Debug("request handled", fields)
	}
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", map[string]interface{}{"address": s.config.Address})
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()
	return s.http.Shutdown(ctx)
}
