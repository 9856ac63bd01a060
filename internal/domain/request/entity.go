// internal/domain/request/entity.go
package request

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestStatus represents the stock request status
type RequestStatus string

const (
	StatusPending           RequestStatus = "pending"
	StatusApproved          RequestStatus = "approved"
	StatusRejected          RequestStatus = "rejected"
	StatusPartiallyApproved RequestStatus = "partially_approved"
)

// Availability represents the warehouse decision for a single item
type Availability string

const (
	AvailabilityAvailable    Availability = "available"
	AvailabilityPartial      Availability = "partially_available"
	AvailabilityNotAvailable Availability = "not_available"
)

// StockRequest represents a branch's submitted stock request
type StockRequest struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	RequestNumber string        `gorm:"uniqueIndex;not null;size:50" json:"request_number"`
	BranchID      uint          `gorm:"not null;index" json:"branch_id"`
	RequestedBy   uint          `gorm:"not null;index" json:"requested_by"`
	Status        RequestStatus `gorm:"not null;default:'pending';index" json:"status"`

	// Review metadata, set exactly once
	ReviewedBy     *uint      `gorm:"index" json:"reviewed_by"`
	ReviewedAt     *time.Time `json:"reviewed_at"`
	DeliveryDate   *time.Time `json:"delivery_date"`
	GeneralRemarks string     `gorm:"type:text" json:"general_remarks"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items []RequestItem `gorm:"foreignKey:RequestID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// RequestItem represents a single line of a stock request. Items have no
// identity outside their request; position preserves submission order.
type RequestItem struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	RequestID         uint   `gorm:"not null;index" json:"request_id"`
	Position          int    `gorm:"not null" json:"position"`
	ProductID         uint   `gorm:"not null;index" json:"product_id"`
	ProductName       string `gorm:"size:255" json:"product_name"`
	RequestedQuantity int    `gorm:"not null" json:"requested_quantity"`
	// CurrentStock is the branch-reported stock at submission time.
	// Informational only; never consulted by the review engine.
	CurrentStock int `gorm:"default:0" json:"current_stock"`

	// Decision fields, frozen by the review
	Availability           Availability `gorm:"size:30" json:"availability,omitempty"`
	ApprovedQuantity       int          `gorm:"default:0" json:"approved_quantity"`
	ItemRemarks            string       `gorm:"type:text" json:"item_remarks"`
	RestockDate            *time.Time   `json:"restock_date,omitempty"`
	CanFulfillAfterRestock bool         `gorm:"default:false" json:"can_fulfill_after_restock"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides
func (StockRequest) TableName() string { return "stock_requests" }
func (RequestItem) TableName() string  { return "stock_request_items" }

// GenerateRequestNumber generates a unique human-readable request number.
// Format: SR-YYYYMMDD-XXXXXXXX
func GenerateRequestNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:8]
	return fmt.Sprintf("SR-%s-%s", time.Now().UTC().Format("20060102"), suffix)
}

// IsReviewed checks if the request has reached a terminal state
func (r *StockRequest) IsReviewed() bool {
	return r.Status != StatusPending
}

// RequiresDeduction checks whether an item's decision deducts stock
func (i *RequestItem) RequiresDeduction() bool {
	return i.Availability == AvailabilityAvailable || i.Availability == AvailabilityPartial
}
