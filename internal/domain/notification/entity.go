// internal/domain/notification/entity.go
package notification

import (
	"time"

	"gorm.io/gorm"
)

// Notification represents an in-app message delivered to a user
type Notification struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	RecipientID uint   `gorm:"not null;index" json:"recipient_id"`
	EventKind   string `gorm:"size:50;not null;index" json:"event_kind"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Message     string `gorm:"type:text" json:"message"`
	Payload     string `gorm:"type:text" json:"payload,omitempty"`
	IsRead      bool   `gorm:"default:false;index" json:"is_read"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Notification) TableName() string {
	return "notifications"
}
