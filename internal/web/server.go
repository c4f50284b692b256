// Package web serves the dashboard's JSON API over gin.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"linkdesk/internal/auth"
	"linkdesk/internal/scraper"
	"linkdesk/internal/service"
)

const (
	readTimeout     = 10 * time.Second
	writeTimeout    = 60 * time.Second
	idleTimeout     = 120 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Deps are the components the HTTP surface is wired to.
type Deps struct {
	Domains    *service.DomainService
	Publishers *service.PublisherService
	Auth       auth.Authenticator
	Sessions   *auth.JWTManager
	Previewer  *scraper.Previewer
	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	// SecureCookies marks the session cookie Secure.
	SecureCookies bool
}

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	server *http.Server
	log    logrus.FieldLogger
}

type handlers struct {
	Deps
	log logrus.FieldLogger
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(deps Deps, logger logrus.FieldLogger) *gin.Engine {
	log := logger.WithField("component", "web")
	h := &handlers{Deps: deps, log: log}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}
	router.POST("/login", h.login)

	private := router.Group("/", auth.Middleware(deps.Sessions))
	private.POST("/logout", h.logout)

	publishers := private.Group("/publishers")
	publishers.GET("", h.listPublishers)
	publishers.GET("/facets", h.publisherFacets)
	publishers.GET("/:id", h.getPublisher)
	publishers.POST("", h.createPublisher)
	publishers.PUT("/:id", h.updatePublisher)
	publishers.DELETE("/:id", h.deletePublisher)

	clients := private.Group("/clients")
	clients.GET("/domains", h.listDomains)
	clients.GET("/domains/facets", h.domainFacets)
	clients.GET("/domains/:id", h.getDomain)
	clients.POST("/domains", h.createDomain)
	clients.PUT("/domains/:id", h.updateDomain)
	clients.POST("/domains/:id/archive", h.archiveDomain(true))
	clients.POST("/domains/:id/restore", h.archiveDomain(false))
	clients.DELETE("/domains/:id", h.deleteDomain)
	clients.GET("/find-publishers", h.findPublishers)

	private.GET("/sites/:host/preview", h.preview)

	return router
}

// NewServer creates a new HTTP server listening on addr.
func NewServer(addr string, deps Deps, logger logrus.FieldLogger) *Server {
	router := NewRouter(deps, logger)
	return &Server{
		router: router,
		server: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			IdleTimeout:  idleTimeout,
		},
		log: logger.WithField("component", "web"),
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.server.Addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"client":   c.ClientIP(),
		})
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Error("Request failed")
		case status >= http.StatusBadRequest:
			entry.Warn("Request rejected")
		default:
			entry.Info("Request served")
		}
	}
}
