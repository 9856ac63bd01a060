// internal/domain/inventory/entity.go
package inventory

import (
	"time"

	"gorm.io/gorm"
)

// MovementType represents the type of stock movement
type MovementType string

const (
	MovementTypeInbound  MovementType = "inbound"  // Restock, adjustment increase
	MovementTypeOutbound MovementType = "outbound" // Approved request deduction, adjustment decrease
)

// MovementReason represents the reason for a stock movement
type MovementReason string

const (
	ReasonRequestFulfillment MovementReason = "request_fulfillment"
	ReasonRestock            MovementReason = "restock"
	ReasonAdjustment         MovementReason = "adjustment"
)

// Product represents a warehouse product with its live stock level
type Product struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null;size:255" json:"name"`
	SKU       string         `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	Quantity  int            `gorm:"not null;default:0" json:"quantity"`
	Unit      string         `gorm:"size:20" json:"unit"`
	Price     int64          `gorm:"default:0" json:"price"` // In cents
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// StockMovement represents a record of a stock level change
type StockMovement struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	ProductID        uint           `gorm:"not null;index" json:"product_id"`
	MovementType     MovementType   `gorm:"not null" json:"movement_type"`
	Reason           MovementReason `gorm:"not null" json:"reason"`
	Quantity         int            `gorm:"not null" json:"quantity"`
	PreviousQuantity int            `gorm:"not null" json:"previous_quantity"`
	NewQuantity      int            `gorm:"not null" json:"new_quantity"`
	ReferenceType    string         `gorm:"size:50" json:"reference_type"` // "stock_request", "manual", etc.
	ReferenceID      uint           `json:"reference_id"`
	Notes            string         `gorm:"type:text" json:"notes"`
	CreatedBy        uint           `gorm:"index" json:"created_by"`
	CreatedAt        time.Time      `json:"created_at"`

	// Relationships
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName overrides
func (Product) TableName() string       { return "products" }
func (StockMovement) TableName() string { return "stock_movements" }

// HasStock checks if there's enough stock to cover a quantity
func (p *Product) HasStock(quantity int) bool {
	return p.Quantity >= quantity
}
