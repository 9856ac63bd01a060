// internal/interfaces/http/handlers/anomaly.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/branchops-backend/internal/config"
	"github.com/your-org/branchops-backend/internal/domain/anomaly"
	"github.com/your-org/branchops-backend/internal/domain/request"
	"github.com/your-org/branchops-backend/internal/interfaces/http/middleware"
)

// AnomalyHandler handles anomaly query endpoints
type AnomalyHandler struct {
	anomalyService *anomaly.Service
	config         *config.Config
}

// NewAnomalyHandler creates a new anomaly handler
func NewAnomalyHandler(anomalyService *anomaly.Service, cfg *config.Config) *AnomalyHandler {
	return &AnomalyHandler{
		anomalyService: anomalyService,
		config:         cfg,
	}
}

// CreateQuery handles POST /queries
func (h *AnomalyHandler) CreateQuery(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	var req anomaly.CreateQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	query, err := h.anomalyService.CreateQuery(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, request.ErrRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": err.Error(),
			})
		case errors.Is(err, anomaly.ErrFindingNotFound):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": err.Error(),
			})
		case errors.Is(err, anomaly.ErrQuerySystemDisabled):
			c.JSON(http.StatusForbidden, gin.H{
				"error": err.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to create anomaly query",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Anomaly query created successfully",
		"data":    query,
	})
}

// ListQueries handles GET /queries
func (h *AnomalyHandler) ListQueries(c *gin.Context) {
	var req anomaly.ListQueriesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
		})
		return
	}

	// Branch staff see their own branch only
	if branchID, ok := middleware.GetBranchIDFromContext(c); ok {
		req.BranchID = branchID
	}

	result, err := h.anomalyService.ListQueries(&req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve anomaly queries",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Anomaly queries retrieved successfully",
		"data":    result,
	})
}

// GetQuery handles GET /queries/:id
func (h *AnomalyHandler) GetQuery(c *gin.Context) {
	queryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	query, err := h.anomalyService.GetQuery(queryID)
	if err != nil {
		if errors.Is(err, anomaly.ErrQueryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve anomaly query",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Anomaly query retrieved successfully",
		"data":    query,
	})
}

// Respond handles POST /queries/:id/respond
func (h *AnomalyHandler) Respond(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	queryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req anomaly.RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	query, err := h.anomalyService.Respond(queryID, userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, anomaly.ErrQueryNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": err.Error(),
			})
		case errors.Is(err, anomaly.ErrQueryAlreadyResponded):
			c.JSON(http.StatusConflict, gin.H{
				"error": err.Error(),
			})
		case errors.Is(err, anomaly.ErrQuerySystemDisabled):
			c.JSON(http.StatusForbidden, gin.H{
				"error": err.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to respond to anomaly query",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Anomaly query responded successfully",
		"data":    query,
	})
}
