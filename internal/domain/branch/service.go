// internal/domain/branch/service.go
package branch

import (
	"fmt"

	"github.com/your-org/branchops-backend/internal/config"
	"gorm.io/gorm"
)

// Service handles branch registry business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new branch service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateBranchRequest represents branch creation data
type CreateBranchRequest struct {
	Name    string `json:"name" binding:"required"`
	Code    string `json:"code" binding:"required"`
	Address string `json:"address"`
	City    string `json:"city"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// CreateBranch creates a new branch
func (s *Service) CreateBranch(req *CreateBranchRequest) (*Branch, error) {
	// Check if code already exists
	var existing Branch
	if err := s.db.Where("code = ?", req.Code).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("branch with code '%s' already exists", req.Code)
	}

	branch := &Branch{
		Name:     req.Name,
		Code:     req.Code,
		Address:  req.Address,
		City:     req.City,
		Phone:    req.Phone,
		Email:    req.Email,
		IsActive: true,
	}

	if err := s.db.Create(branch).Error; err != nil {
		return nil, fmt.Errorf("failed to create branch: %w", err)
	}

	return branch, nil
}

// GetBranches retrieves all active branches
func (s *Service) GetBranches() ([]Branch, error) {
	var branches []Branch
	if err := s.db.Where("is_active = ?", true).Order("name").Find(&branches).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve branches: %w", err)
	}
	return branches, nil
}

// GetBranch retrieves a single branch by ID
func (s *Service) GetBranch(id uint) (*Branch, error) {
	var branch Branch
	if err := s.db.Where("id = ?", id).First(&branch).Error; err != nil {
		return nil, fmt.Errorf("branch not found")
	}
	return &branch, nil
}
