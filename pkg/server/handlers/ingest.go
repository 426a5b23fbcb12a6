package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/personaforge"
	"github.com/soundprediction/personaforge/pkg/server/dto"
)

// IngestHandler handles ingestion requests
type IngestHandler struct {
	forge personaforge.PersonaForge
}

// NewIngestHandler creates a new ingest handler
func NewIngestHandler(f personaforge.PersonaForge) *IngestHandler {
	return &IngestHandler{forge: f}
}

// IngestMaster handles POST /api/v1/ingest/master. The whole master analysis
// file rides in the request body; per-entry failures come back inside the
// batch result, not as an HTTP error.
func (h *IngestHandler) IngestMaster(c *gin.Context) {
	var req dto.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	result, err := h.forge.Ingest(c.Request.Context(), req.Content)
	if err != nil {
		writeDomainError(c, "ingest_failed", err)
		return
	}
	c.JSON(http.StatusOK, result)
}
