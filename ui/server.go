// Package ui serves the JSON HTTP API.
package ui

import (
	"context"
	"net/http"

	"gotasks/app"
	"gotasks/internal"
	"gotasks/internal/metrics"
	"gotasks/ui/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options configures a Server
type Options struct {
	Imports        *app.ImportService
	Tasks          *app.TaskService
	Users          *app.UserService       // nil disables /users/me
	Sheets         *app.SheetFetchService // nil disables /imports/fetch
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer // nil disables /metrics
	HealthCheck    func(ctx context.Context) error
	SingleUserMode bool
	MaxUploadMB    int
	Logger         *internal.Logger
}

// Server represents the HTTP server
type Server struct {
	router      *gin.Engine
	imports     *app.ImportService
	tasks       *app.TaskService
	users       *app.UserService
	sheets      *app.SheetFetchService
	healthCheck func(ctx context.Context) error
	maxUpload   int64
	maxUploadMB int
	logger      *internal.Logger
}

// NewServer creates a server with its routes and middleware installed
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = internal.DefaultLogger
	}
	if opts.MaxUploadMB <= 0 {
		opts.MaxUploadMB = 20
	}

	s := &Server{
		router:      gin.New(),
		imports:     opts.Imports,
		tasks:       opts.Tasks,
		users:       opts.Users,
		sheets:      opts.Sheets,
		healthCheck: opts.HealthCheck,
		maxUpload:   int64(opts.MaxUploadMB) << 20,
		maxUploadMB: opts.MaxUploadMB,
		logger:      opts.Logger,
	}

	s.router.Use(gin.Recovery())
	s.router.Use(middleware.RequestLogger(opts.Logger))
	s.router.Use(middleware.Metrics(opts.Metrics))

	s.setupRoutes(opts)
	return s
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes(opts Options) {
	s.router.GET("/healthz", s.handleHealth)
	if opts.Gatherer != nil {
		s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	api := s.router.Group("/api/v1")
	api.Use(middleware.RequireUser(opts.SingleUserMode))

	imports := api.Group("/imports")
	imports.GET("/fields", s.handleImportFields)
	imports.POST("/analyze", s.handleAnalyze)
	imports.POST("", s.handleImport)
	if s.sheets != nil {
		imports.POST("/fetch", s.handleFetchSheet)
	}

	tasks := api.Group("/tasks")
	tasks.GET("", s.handleListTasks)
	tasks.POST("", s.handleCreateTask)
	tasks.DELETE("", s.handleDeleteTasks)
	tasks.GET("/:id", s.handleGetTask)

	if s.users != nil {
		api.GET("/users/me", s.handleCurrentUser)
	}
}

// Handler exposes the router for tests and custom listeners
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	s.logger.Info("[Server] listening on %s", addr)
	return s.router.Run(addr)
}

func (s *Server) handleHealth(c *gin.Context) {
	if s.healthCheck != nil {
		if err := s.healthCheck(c.Request.Context()); err != nil {
			s.logger.Error("[Health] check failed: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
