// internal/domain/request/service.go
package request

import (
	"errors"
	"fmt"

	"github.com/your-org/branchops-backend/internal/config"
	"github.com/your-org/branchops-backend/internal/domain/inventory"
	"github.com/your-org/branchops-backend/internal/domain/user"
	"gorm.io/gorm"
)

// Notifier receives structured events emitted by the request workflows.
// Delivery is the notifier's concern; callers fire and forget.
type Notifier interface {
	Notify(recipientID uint, eventKind string, title, message string, payload map[string]interface{})
}

// Service handles stock request business logic
type Service struct {
	db           *gorm.DB
	config       *config.Config
	inventorySvc *inventory.Service
	notifier     Notifier
}

// NewService creates a new stock request service
func NewService(db *gorm.DB, cfg *config.Config, inventorySvc *inventory.Service, notifier Notifier) *Service {
	return &Service{
		db:           db,
		config:       cfg,
		inventorySvc: inventorySvc,
		notifier:     notifier,
	}
}

// SubmitItemInput represents one requested line at submission time
type SubmitItemInput struct {
	ProductID         uint `json:"product_id" binding:"required"`
	RequestedQuantity int  `json:"requested_quantity" binding:"required,gt=0"`
	CurrentStock      int  `json:"current_stock"`
}

// SubmitRequest represents stock request submission data
type SubmitRequest struct {
	BranchID uint              `json:"branch_id" binding:"required"`
	Items    []SubmitItemInput `json:"items" binding:"required,min=1,dive"`
	Remarks  string            `json:"remarks,omitempty"`
}

// ListRequest represents stock request list query parameters
type ListRequest struct {
	Page     int           `form:"page,default=1"`
	Limit    int           `form:"limit,default=20"`
	BranchID uint          `form:"branch_id"`
	Status   RequestStatus `form:"status"`
}

// ListResponse represents a page of stock requests
type ListResponse struct {
	Requests   []StockRequest `json:"requests"`
	Pagination Pagination     `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// Submit creates a new pending stock request for a branch
func (s *Service) Submit(userID uint, req *SubmitRequest) (*StockRequest, error) {
	seen := make(map[uint]bool, len(req.Items))
	items := make([]RequestItem, 0, len(req.Items))

	for i, in := range req.Items {
		if seen[in.ProductID] {
			return nil, fmt.Errorf("duplicate product %d in request", in.ProductID)
		}
		seen[in.ProductID] = true

		product, err := s.inventorySvc.GetProduct(in.ProductID)
		if err != nil {
			return nil, err
		}

		items = append(items, RequestItem{
			Position:          i,
			ProductID:         product.ID,
			ProductName:       product.Name,
			RequestedQuantity: in.RequestedQuantity,
			CurrentStock:      in.CurrentStock,
		})
	}

	stockRequest := &StockRequest{
		RequestNumber:  GenerateRequestNumber(),
		BranchID:       req.BranchID,
		RequestedBy:    userID,
		Status:         StatusPending,
		GeneralRemarks: req.Remarks,
		Items:          items,
	}

	if err := s.db.Create(stockRequest).Error; err != nil {
		return nil, fmt.Errorf("failed to create stock request: %w", err)
	}

	if s.notifier != nil {
		go s.notifySubmitted(stockRequest)
	}

	return stockRequest, nil
}

// notifySubmitted alerts active warehouse managers that a new request is
// awaiting review
func (s *Service) notifySubmitted(stockRequest *StockRequest) {
	var managers []user.User
	err := s.db.Where("role = ? AND is_active = ?", user.RoleWarehouseManager, true).Find(&managers).Error
	if err != nil {
		return
	}

	title := fmt.Sprintf("Request %s awaiting review", stockRequest.RequestNumber)
	message := fmt.Sprintf("Branch %d requested %d items", stockRequest.BranchID, len(stockRequest.Items))

	for _, manager := range managers {
		s.notifier.Notify(manager.ID, EventRequestSubmitted, title, message, map[string]interface{}{
			"request_id":     stockRequest.ID,
			"request_number": stockRequest.RequestNumber,
			"branch_id":      stockRequest.BranchID,
		})
	}
}

// Get retrieves a stock request with its items in submission order
func (s *Service) Get(id uint) (*StockRequest, error) {
	var stockRequest StockRequest
	err := s.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("id = ?", id).First(&stockRequest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to retrieve stock request: %w", err)
	}
	return &stockRequest, nil
}

// List retrieves a page of stock requests, newest first
func (s *Service) List(req *ListRequest) (*ListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.Model(&StockRequest{})
	if req.BranchID != 0 {
		query = query.Where("branch_id = ?", req.BranchID)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count stock requests: %w", err)
	}

	var requests []StockRequest
	err := query.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Order("created_at DESC").
		Offset((req.Page - 1) * req.Limit).
		Limit(req.Limit).
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve stock requests: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))

	return &ListResponse{
		Requests: requests,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}
