// Package api provides the HTTP API server and handlers for the Shelfmark
// reconciliation service.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/shelfmark/shelfmark-server/internal/coerce"
	"github.com/shelfmark/shelfmark-server/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store          *store.Store
	services       *Services
	coercer        *coerce.Coercer
	router         *chi.Mux
	api            huma.API
	requestLimiter *RateLimiter
	logger         *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st *store.Store, services *Services, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	humaConfig := huma.DefaultConfig("Shelfmark API", "1.0.0")
	humaAPI := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:          st,
		services:       services,
		coercer:        coerce.New(),
		router:         router,
		api:            humaAPI,
		requestLimiter: NewRateLimiter(600, time.Minute, 100),
		logger:         logger,
	}

	s.setupMiddleware()
	s.registerHealthRoutes()
	s.registerSessionRoutes()
	s.registerMappingRoutes()
	s.registerCoerceRoutes()
	s.registerCategoryRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	s.router.Use(RateLimitMiddleware(s.requestLimiter, s.logger))
}

// Close releases server resources.
func (s *Server) Close() {
	s.requestLimiter.Stop()
}
