package notification

import (
	"context"

	domain "github.com/FahimSaki/Momentum/domain/notification"
)

// ListRequest is the request for listing a recipient's notifications.
type ListRequest struct {
	RecipientID string `json:"recipient_id"`
	UnreadOnly  bool   `json:"unread_only,omitempty"`
	Limit       int    `json:"limit,omitempty"`
}

// ListResponse is the response for listing notifications.
type ListResponse struct {
	Notifications []*domain.Notification `json:"notifications"`
	Total         int                    `json:"total"`
}

// MarkReadRequest is the request for marking a notification read.
type MarkReadRequest struct {
	RecipientID    string `json:"recipient_id"`
	NotificationID string `json:"notification_id"`
}

// MarkReadResponse is the response for marking a notification read.
type MarkReadResponse struct {
	Updated bool `json:"updated"`
}

// NotificationPort defines the interface for notification operations
// (hexagonal port).
type NotificationPort interface {
	List(ctx context.Context, req *ListRequest) (*ListResponse, error)
	MarkRead(ctx context.Context, recipientID, notificationID string) error
}
