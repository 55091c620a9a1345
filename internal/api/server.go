package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AI2HU/bookapp/internal/auth"
	"github.com/AI2HU/bookapp/internal/config"
	"github.com/AI2HU/bookapp/internal/db"
	"github.com/AI2HU/bookapp/internal/logger"
	"github.com/AI2HU/bookapp/internal/models"
	"github.com/AI2HU/bookapp/internal/services"
)

// Version is reported by the health endpoint. Overridden at build time.
var Version = "dev"

// ProbeStatus reports the outcome of the last scheduled backend probe
type ProbeStatus interface {
	Status() map[string]bool
}

// Server represents the book API server
type Server struct {
	router         *gin.Engine
	database       *db.Hybrid
	bookService    *services.BookService
	gate           *auth.Gate
	metrics        *Metrics
	registry       *prometheus.Registry
	backendTimeout time.Duration
	probe          ProbeStatus

	mu         sync.Mutex
	httpServer *http.Server
}

// NewServer creates a new API server over both stores.
// Request metrics are registered on registry and exposed on /metrics.
func NewServer(database *db.Hybrid, cfg *config.Config, registry *prometheus.Registry) *Server {
	router := gin.New()
	_ = router.SetTrustedProxies(nil)

	s := &Server{
		router:         router,
		database:       database,
		bookService:    services.NewBookService(database.SQL, database.NoSQL, cfg.Server.BackendTimeout, cfg.SQLDatabase.StrictNotFound),
		gate:           auth.NewGate(cfg.Auth),
		metrics:        NewMetrics(registry),
		registry:       registry,
		backendTimeout: cfg.Server.BackendTimeout,
	}

	s.setupRoutes()
	return s
}

// SetProbe makes /health report the last scheduled probe as well
func (s *Server) SetProbe(probe ProbeStatus) {
	s.probe = probe
}

// setupRoutes registers every route on the router
func (s *Server) setupRoutes() {
	s.router.Use(requestID())
	s.router.Use(requestLogger())
	s.router.Use(s.metrics.Middleware())
	s.router.Use(gin.CustomRecovery(s.recoverPanic))

	s.router.NoRoute(func(c *gin.Context) {
		s.errorResponse(c, http.StatusNotFound, "Not Found")
	})
	s.router.NoMethod(func(c *gin.Context) {
		s.errorResponse(c, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	s.router.HandleMethodNotAllowed = true

	// Unauthenticated operational endpoints
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	books := s.router.Group("/book_app", s.gate.Middleware())
	{
		// Relational store
		books.POST("", s.createBook)
		books.GET("/:id", s.getBook)
		books.PUT("/:id", s.updateBook)
		books.DELETE("/:id", s.deleteBook)

		// Document store
		books.POST("/mongodb", s.createBookDocument)
		books.GET("/mongodb/:id", s.getBookDocument)
		books.PUT("/mongodb/:id", s.updateBookDocument)
		books.DELETE("/mongodb/:id", s.deleteBookDocument)
	}
}

// Handler exposes the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the HTTP server and blocks until it is shut down
func (s *Server) Run(address string) error {
	s.mu.Lock()
	s.httpServer = &http.Server{
		Addr:              address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	logger.Info("HTTP server listening on %s", address)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// errorResponse aborts the request with a {"detail": ...} body
func (s *Server) errorResponse(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{Detail: detail})
}

// successResponse writes a 200 with the given body
func (s *Server) successResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// storeError maps a store failure onto the response. Only not-found is
// surfaced to the client; anything else is logged and reported as a 500.
func (s *Server) storeError(c *gin.Context, err error, op string) {
	if errors.Is(err, db.ErrNotFound) {
		s.errorResponse(c, http.StatusNotFound, "Item not found")
		return
	}

	logger.Error("%s failed (request %s): %v", op, c.GetString(requestIDKey), err)
	s.errorResponse(c, http.StatusInternalServerError, "Internal server error")
}

func (s *Server) recoverPanic(c *gin.Context, recovered interface{}) {
	logger.Error("Panic serving %s %s (request %s): %v", c.Request.Method, c.Request.URL.Path, c.GetString(requestIDKey), recovered)
	s.errorResponse(c, http.StatusInternalServerError, "Internal server error")
}
