package notification

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Store provides access to in-app notification storage.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new notification store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Create saves a notification.
func (s *Store) Create(ctx context.Context, n *Notification) error {
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListByRecipient retrieves a recipient's notifications, newest first.
func (s *Store) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool, limit int) ([]*Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	q := s.db.WithContext(ctx).Where("recipient_id = ?", recipientID)
	if unreadOnly {
		q = q.Where("read = ?", false)
	}

	var notifications []*Notification
	if err := q.Order("created_at DESC").Limit(limit).Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead marks a recipient's notification as read.
func (s *Store) MarkRead(ctx context.Context, recipientID, id string) error {
	result := s.db.WithContext(ctx).
		Model(&Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("read", true)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteOlderThan removes notifications created before cutoff. Returns the
// number removed.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&Notification{})
	if err := result.Error; err != nil {
		return 0, fmt.Errorf("failed to purge notifications: %w", err)
	}
	return result.RowsAffected, nil
}
