// internal/interfaces/http/handlers/request.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/branchops-backend/internal/config"
	"github.com/your-org/branchops-backend/internal/domain/anomaly"
	"github.com/your-org/branchops-backend/internal/domain/branch"
	"github.com/your-org/branchops-backend/internal/domain/inventory"
	"github.com/your-org/branchops-backend/internal/domain/request"
	"github.com/your-org/branchops-backend/internal/interfaces/http/middleware"
	"github.com/your-org/branchops-backend/internal/pkg/pdf"
)

// RequestHandler handles stock request endpoints
type RequestHandler struct {
	requestService *request.Service
	anomalyService *anomaly.Service
	branchService  *branch.Service
	pdfService     *pdf.Service
	config         *config.Config
}

// NewRequestHandler creates a new stock request handler
func NewRequestHandler(requestService *request.Service, anomalyService *anomaly.Service, branchService *branch.Service, pdfService *pdf.Service, cfg *config.Config) *RequestHandler {
	return &RequestHandler{
		requestService: requestService,
		anomalyService: anomalyService,
		branchService:  branchService,
		pdfService:     pdfService,
		config:         cfg,
	}
}

// Submit handles POST /requests
func (h *RequestHandler) Submit(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	var req request.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	// Branch staff can only submit for their own branch
	if branchID, ok := middleware.GetBranchIDFromContext(c); ok && branchID != req.BranchID {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Cannot submit a request for another branch",
		})
		return
	}

	stockRequest, err := h.requestService.Submit(userID, &req)
	if err != nil {
		if errors.Is(err, inventory.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": err.Error(),
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	// Evaluate anomalies right away so the report is ready for review
	if h.anomalyService != nil {
		go h.anomalyService.EvaluateRequest(c.Copy(), stockRequest.ID)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Stock request submitted successfully",
		"data":    stockRequest,
	})
}

// List handles GET /requests
func (h *RequestHandler) List(c *gin.Context) {
	var req request.ListRequest
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

	result, err := h.requestService.List(&req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve stock requests",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock requests retrieved successfully",
		"data":    result,
	})
}

// Get handles GET /requests/:id
func (h *RequestHandler) Get(c *gin.Context) {
	requestID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	stockRequest, err := h.requestService.Get(requestID)
	if err != nil {
		if errors.Is(err, request.ErrRequestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve stock request",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock request retrieved successfully",
		"data":    stockRequest,
	})
}

// Review handles POST /requests/:id/review
func (h *RequestHandler) Review(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	requestID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input request.ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	stockRequest, err := h.requestService.Review(requestID, userID, &input)
	if err != nil {
		respondReviewError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock request reviewed successfully",
		"data":    stockRequest,
	})
}

// GetAnomalies handles GET /requests/:id/anomalies
func (h *RequestHandler) GetAnomalies(c *gin.Context) {
	requestID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	report, err := h.anomalyService.GetReport(c.Request.Context(), requestID)
	if err != nil {
		switch {
		case errors.Is(err, request.ErrRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": err.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to evaluate anomalies",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Anomaly report retrieved successfully",
		"data":    report,
	})
}

// GetSummaryPDF handles GET /requests/:id/summary.pdf
func (h *RequestHandler) GetSummaryPDF(c *gin.Context) {
	requestID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	stockRequest, err := h.requestService.Get(requestID)
	if err != nil {
		if errors.Is(err, request.ErrRequestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve stock request",
		})
		return
	}

	branchName := fmt.Sprintf("Branch %d", stockRequest.BranchID)
	if b, err := h.branchService.GetBranch(stockRequest.BranchID); err == nil {
		branchName = b.Name
	}

	buf, err := h.pdfService.GenerateRequestSummary(stockRequest, branchName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate PDF",
		})
		return
	}

	filename := fmt.Sprintf("%s.pdf", stockRequest.RequestNumber)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// respondReviewError maps review failures onto HTTP status codes. Conflicts
// (lost races) are 409, business rule violations are 422.
func respondReviewError(c *gin.Context, err error) {
	var (
		insufficientStock *inventory.InsufficientStockError
		invalidPartial    *request.InvalidPartialQuantityError
		missingRestock    *request.MissingRestockDateError
		missingDecision   *request.MissingDecisionError
		duplicateDecision *request.DuplicateDecisionError
		unknownItem       *request.UnknownItemDecisionError
		invalidAvail      *request.InvalidAvailabilityError
	)

	switch {
	case errors.Is(err, request.ErrRequestNotFound),
		errors.Is(err, inventory.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})

	case errors.Is(err, request.ErrAlreadyReviewed):
		c.JSON(http.StatusConflict, gin.H{
			"error": err.Error(),
		})

	case errors.As(err, &insufficientStock):
		c.JSON(http.StatusConflict, gin.H{
			"error": err.Error(),
			"details": gin.H{
				"product_id": insufficientStock.ProductID,
				"available":  insufficientStock.Available,
				"requested":  insufficientStock.Requested,
			},
		})

	case errors.Is(err, request.ErrMissingDeliveryDate),
		errors.As(err, &invalidPartial),
		errors.As(err, &missingRestock),
		errors.As(err, &missingDecision),
		errors.As(err, &duplicateDecision),
		errors.As(err, &unknownItem),
		errors.As(err, &invalidAvail):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": err.Error(),
		})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to review stock request",
		})
	}
}

// parseIDParam parses a numeric path parameter, responding 400 on failure
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Invalid %s parameter", name),
		})
		return 0, false
	}
	return uint(id), true
}
