// internal/interfaces/http/handlers/branch.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/branchops-backend/internal/config"
	"github.com/your-org/branchops-backend/internal/domain/branch"
)

// BranchHandler handles branch endpoints
type BranchHandler struct {
	branchService *branch.Service
	config        *config.Config
}

// NewBranchHandler creates a new branch handler
func NewBranchHandler(branchService *branch.Service, cfg *config.Config) *BranchHandler {
	return &BranchHandler{
		branchService: branchService,
		config:        cfg,
	}
}

// CreateBranch handles POST /branches
func (h *BranchHandler) CreateBranch(c *gin.Context) {
	var req branch.CreateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	created, err := h.branchService.CreateBranch(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Branch created successfully",
		"data":    created,
	})
}

// GetBranches handles GET /branches
func (h *BranchHandler) GetBranches(c *gin.Context) {
	branches, err := h.branchService.GetBranches()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve branches",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Branches retrieved successfully",
		"data":    branches,
	})
}

// GetBranch handles GET /branches/:id
func (h *BranchHandler) GetBranch(c *gin.Context) {
	branchID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	b, err := h.branchService.GetBranch(branchID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Branch retrieved successfully",
		"data":    b,
	})
}
