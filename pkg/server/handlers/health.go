package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/personaforge"
)

// Build information - can be set at build time using ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// HealthHandler handles health check requests
type HealthHandler struct {
	forge personaforge.PersonaForge
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(f personaforge.PersonaForge) *HealthHandler {
	return &HealthHandler{forge: f}
}

// HealthCheck handles GET /health - basic liveness check
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "personaforge",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
	})
}

// ReadinessCheck handles GET /ready - verifies the graph store answers.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	status := "ready"
	code := http.StatusOK
	checks := gin.H{}

	if h.forge != nil {
		start := time.Now()
		// A lookup of a QA pair that cannot exist exercises the store path
		// without side effects.
		_, err := h.forge.QAPairDetails(c.Request.Context(), "readiness-check-non-existent-id")
		duration := time.Since(start)

		if err != nil {
			checks["store"] = gin.H{"status": "unhealthy", "error": err.Error(), "duration": duration.String()}
			status = "not_ready"
			code = http.StatusServiceUnavailable
		} else {
			checks["store"] = gin.H{"status": "healthy", "duration": duration.String()}
		}
	}

	c.JSON(code, gin.H{
		"status":    status,
		"service":   "personaforge",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}
