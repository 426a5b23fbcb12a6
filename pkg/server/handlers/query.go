package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/personaforge"
	"github.com/soundprediction/personaforge/pkg/server/dto"
	"github.com/soundprediction/personaforge/pkg/types"
)

// QueryHandler handles retrieval and analytics requests
type QueryHandler struct {
	forge personaforge.PersonaForge
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(f personaforge.PersonaForge) *QueryHandler {
	return &QueryHandler{forge: f}
}

// Search handles POST /api/v1/search
func (h *QueryHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	results, err := h.forge.Search(c.Request.Context(), req.Query, req.Limit)
	if err != nil {
		writeDomainError(c, "search_failed", err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// SessionStatistics handles GET /api/v1/sessions/:session_id/statistics
func (h *QueryHandler) SessionStatistics(c *gin.Context) {
	stats, err := h.forge.SessionStatistics(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		writeDomainError(c, "statistics_failed", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// SessionExtremes handles GET /api/v1/sessions/:session_id/extremes
func (h *QueryHandler) SessionExtremes(c *gin.Context) {
	property := c.Query("property")
	if property == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: "property query parameter is required"})
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: "limit must be an integer"})
			return
		}
		limit = n
	}

	extremes, err := h.forge.SessionExtremes(c.Request.Context(), c.Param("session_id"), property, limit)
	if err != nil {
		writeDomainError(c, "extremes_failed", err)
		return
	}
	c.JSON(http.StatusOK, extremes)
}

// PersonalitySummary handles GET /api/v1/sessions/:session_id/summary
func (h *QueryHandler) PersonalitySummary(c *gin.Context) {
	summary, err := h.forge.PersonalitySummary(c.Request.Context(), c.Param("session_id"), c.Query("focus"))
	if err != nil {
		writeDomainError(c, "summary_failed", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// SessionPlans handles GET /api/v1/sessions/:session_id/plans
func (h *QueryHandler) SessionPlans(c *gin.Context) {
	plans, err := h.forge.SessionPlans(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		writeDomainError(c, "plans_failed", err)
		return
	}
	c.JSON(http.StatusOK, plans)
}

// SessionSubjectives handles GET /api/v1/sessions/:session_id/subjectives
func (h *QueryHandler) SessionSubjectives(c *gin.Context) {
	subjectives, err := h.forge.SessionSubjectives(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		writeDomainError(c, "subjectives_failed", err)
		return
	}
	c.JSON(http.StatusOK, subjectives)
}

// ClientHistory handles GET /api/v1/clients/:client_id/history
func (h *QueryHandler) ClientHistory(c *gin.Context) {
	history, err := h.forge.ClientHistory(c.Request.Context(), c.Param("client_id"))
	if err != nil {
		writeDomainError(c, "history_failed", err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// QAPairDetails handles GET /api/v1/qa/:qa_id
func (h *QueryHandler) QAPairDetails(c *gin.Context) {
	details, err := h.forge.QAPairDetails(c.Request.Context(), c.Param("qa_id"))
	if err != nil {
		writeDomainError(c, "qa_lookup_failed", err)
		return
	}
	if !details.Found {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "not_found", Message: "qa pair not found"})
		return
	}
	c.JSON(http.StatusOK, details)
}

// writeDomainError maps domain sentinel errors to HTTP status codes.
func writeDomainError(c *gin.Context, code string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, types.ErrEmptyInput),
		errors.Is(err, types.ErrMalformedEntry),
		errors.Is(err, types.ErrUnknownProperty):
		status = http.StatusBadRequest
	case errors.Is(err, types.ErrNotFound):
		status = http.StatusNotFound
	}
	c.JSON(status, dto.ErrorResponse{Error: code, Message: err.Error()})
}
