package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// notificationAdapter wraps ServiceContainer for type-safe cross-module
// communication.
type notificationAdapter struct {
	container mono.ServiceContainer
}

// NewNotificationAdapter creates a new adapter for notification services.
func NewNotificationAdapter(container mono.ServiceContainer) NotificationPort {
	if container == nil {
		panic("notification adapter requires non-nil ServiceContainer")
	}
	return &notificationAdapter{container: container}
}

// List fetches a recipient's notifications via the list service.
func (a *notificationAdapter) List(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	var resp ListResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "list", json.Marshal, json.Unmarshal, req, &resp,
	); err != nil {
		return nil, fmt.Errorf("list service call failed: %w", err)
	}
	return &resp, nil
}

// MarkRead marks a notification read via the mark-read service.
func (a *notificationAdapter) MarkRead(ctx context.Context, recipientID, notificationID string) error {
	req := MarkReadRequest{RecipientID: recipientID, NotificationID: notificationID}
	var resp MarkReadResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "mark-read", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return fmt.Errorf("mark-read service call failed: %w", err)
	}
	return nil
}
