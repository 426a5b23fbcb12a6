package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/personaforge"
	"github.com/soundprediction/personaforge/pkg/config"
	"github.com/soundprediction/personaforge/pkg/server/handlers"
)

// Server represents the HTTP server
type Server struct {
	config *config.Config
	router *gin.Engine
	forge  personaforge.PersonaForge
	server *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, forge personaforge.PersonaForge) *Server {
	return &Server{
		config: cfg,
		forge:  forge,
	}
}

// Setup sets up the server routes and middleware
func (s *Server) Setup() {
	gin.SetMode(s.config.Server.Mode)

	s.router = gin.New()
	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())
	s.router.Use(corsMiddleware())

	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
}

// setupRoutes sets up all the routes
func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler(s.forge)
	ingestHandler := handlers.NewIngestHandler(s.forge)
	queryHandler := handlers.NewQueryHandler(s.forge)

	// Health endpoints
	s.router.GET("/health", healthHandler.HealthCheck)
	s.router.GET("/ready", healthHandler.ReadinessCheck)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		ingest := v1.Group("/ingest")
		{
			ingest.POST("/master", ingestHandler.IngestMaster)
		}

		v1.POST("/search", queryHandler.Search)
		v1.GET("/qa/:qa_id", queryHandler.QAPairDetails)
		v1.GET("/clients/:client_id/history", queryHandler.ClientHistory)

		sessions := v1.Group("/sessions/:session_id")
		{
			sessions.GET("/statistics", queryHandler.SessionStatistics)
			sessions.GET("/extremes", queryHandler.SessionExtremes)
			sessions.GET("/summary", queryHandler.PersonalitySummary)
			sessions.GET("/plans", queryHandler.SessionPlans)
			sessions.GET("/subjectives", queryHandler.SessionSubjectives)
		}
	}
}

// Router returns the configured router, for tests and embedding.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start starts the server
func (s *Server) Start() error {
	fmt.Printf("Starting server on %s\n", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	fmt.Println("Stopping server...")
	return s.server.Shutdown(ctx)
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
