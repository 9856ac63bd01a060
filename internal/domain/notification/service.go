// internal/domain/notification/service.go
package notification

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Service persists notifications and satisfies the Notifier interfaces of
// the request and anomaly domains
type Service struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewService creates a new notification service
func NewService(db *gorm.DB, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger,
	}
}

// Notify stores a notification for the recipient. Callers fire and forget;
// failures are logged and swallowed so a delivery problem never surfaces
// into the workflow that emitted the event.
func (s *Service) Notify(recipientID uint, eventKind string, title, message string, payload map[string]interface{}) {
	var encoded string
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			s.logger.WithError(err).WithField("event_kind", eventKind).
				Warn("Failed to encode notification payload")
		} else {
			encoded = string(data)
		}
	}

	n := &Notification{
		RecipientID: recipientID,
		EventKind:   eventKind,
		Title:       title,
		Message:     message,
		Payload:     encoded,
	}

	if err := s.db.Create(n).Error; err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"recipient_id": recipientID,
			"event_kind":   eventKind,
		}).Error("Failed to store notification")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"recipient_id": recipientID,
		"event_kind":   eventKind,
	}).Info("Notification delivered")
}

// List retrieves a user's notifications, newest first
func (s *Service) List(recipientID uint, unreadOnly bool, limit int) ([]Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := s.db.Where("recipient_id = ?", recipientID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var notifications []Notification
	if err := query.Order("created_at DESC").Limit(limit).Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead marks a single notification as read. Scoped to the recipient so
// a user cannot touch someone else's inbox.
func (s *Service) MarkRead(recipientID, notificationID uint) error {
	res := s.db.Model(&Notification{}).
		Where("id = ? AND recipient_id = ?", notificationID, recipientID).
		Update("is_read", true)
	if res.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("notification %d not found", notificationID)
	}
	return nil
}

// MarkAllRead marks all of a user's notifications as read
func (s *Service) MarkAllRead(recipientID uint) error {
	err := s.db.Model(&Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}
