// internal/domain/inventory/service.go
package inventory

import (
	"errors"
	"fmt"

	"github.com/your-org/branchops-backend/internal/config"
	"gorm.io/gorm"
)

// Service handles inventory business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new inventory service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateProductRequest represents product creation data
type CreateProductRequest struct {
	Name     string `json:"name" binding:"required"`
	SKU      string `json:"sku" binding:"required"`
	Quantity int    `json:"quantity"`
	Unit     string `json:"unit"`
	Price    int64  `json:"price"` // In cents
}

// RestockRequest represents stock replenishment data
type RestockRequest struct {
	Quantity int    `json:"quantity" binding:"required,gt=0"`
	Notes    string `json:"notes,omitempty"`
}

// PRODUCT MANAGEMENT

// CreateProduct creates a new product
func (s *Service) CreateProduct(req *CreateProductRequest) (*Product, error) {
	// Check if SKU already exists
	var existing Product
	if err := s.db.Where("sku = ?", req.SKU).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("product with SKU '%s' already exists", req.SKU)
	}

	if req.Quantity < 0 {
		return nil, fmt.Errorf("initial quantity cannot be negative")
	}

	product := &Product{
		Name:     req.Name,
		SKU:      req.SKU,
		Quantity: req.Quantity,
		Unit:     req.Unit,
		Price:    req.Price,
		IsActive: true,
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// GetProducts retrieves all active products
func (s *Service) GetProducts() ([]Product, error) {
	var products []Product
	if err := s.db.Where("is_active = ?", true).Order("name").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}
	return products, nil
}

// GetProduct retrieves a single product by ID
func (s *Service) GetProduct(id uint) (*Product, error) {
	var product Product
	if err := s.db.Where("id = ?", id).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}
	return &product, nil
}

// GetMovements retrieves the movement ledger for a product, newest first
func (s *Service) GetMovements(productID uint, limit int) ([]StockMovement, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var movements []StockMovement
	if err := s.db.Where("product_id = ?", productID).
		Order("created_at DESC").
		Limit(limit).
		Find(&movements).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve stock movements: %w", err)
	}
	return movements, nil
}

// STOCK MUTATIONS

// DeductTx performs a conditional stock deduction inside the caller's
// transaction. The decrement only applies when the live quantity covers the
// amount; otherwise an InsufficientStockError carrying the current level is
// returned and nothing is written. This is the single guarded write that
// keeps concurrent reviews from overselling a product.
func (s *Service) DeductTx(tx *gorm.DB, productID uint, amount int) (*StockMovement, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("deduction amount must be positive, got %d", amount)
	}

	res := tx.Model(&Product{}).
		Where("id = ? AND quantity >= ?", productID, amount).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", amount))
	if res.Error != nil {
		return nil, fmt.Errorf("failed to deduct stock: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		// Either the product is missing or the stock does not cover the
		// amount. Re-read to tell the two apart and report live numbers.
		var product Product
		if err := tx.Where("id = ?", productID).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProductNotFound
			}
			return nil, fmt.Errorf("failed to load product %d: %w", productID, err)
		}
		return nil, &InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Available:   product.Quantity,
			Requested:   amount,
		}
	}

	// Reload for the post-deduction level recorded in the ledger
	var product Product
	if err := tx.Where("id = ?", productID).First(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to reload product %d: %w", productID, err)
	}

	movement := &StockMovement{
		ProductID:        productID,
		MovementType:     MovementTypeOutbound,
		Reason:           ReasonRequestFulfillment,
		Quantity:         amount,
		PreviousQuantity: product.Quantity + amount,
		NewQuantity:      product.Quantity,
	}

	return movement, nil
}

// Restock increases a product's stock level and records the movement
func (s *Service) Restock(productID uint, req *RestockRequest, userID uint) (*StockMovement, error) {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var product Product
	if err := tx.Where("id = ?", productID).First(&product).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	previousQuantity := product.Quantity
	if err := tx.Model(&Product{}).
		Where("id = ?", productID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", req.Quantity)).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to restock product: %w", err)
	}

	movement := &StockMovement{
		ProductID:        productID,
		MovementType:     MovementTypeInbound,
		Reason:           ReasonRestock,
		Quantity:         req.Quantity,
		PreviousQuantity: previousQuantity,
		NewQuantity:      previousQuantity + req.Quantity,
		ReferenceType:    "manual",
		Notes:            req.Notes,
		CreatedBy:        userID,
	}

	if err := tx.Create(movement).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to record movement: %w", err)
	}

	tx.Commit()
	return movement, nil
}
