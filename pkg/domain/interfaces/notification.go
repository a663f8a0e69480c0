package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/auditflow/pkg/domain/model"
)

// NotificationRepository is the durable notification store
type NotificationRepository interface {
	// Create stores a notification. ID must be set by the caller.
	Create(ctx context.Context, n *model.Notification) (*model.Notification, error)

	// Get retrieves a notification by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, tenantID string, id model.NotificationID) (*model.Notification, error)

	// ListByUser retrieves notifications targeted at a user, newest first
	ListByUser(ctx context.Context, tenantID string, userID model.UserID, limit int) ([]*model.Notification, error)

	// MarkRead sets ReadAt if the notification is unread
	MarkRead(ctx context.Context, tenantID string, id model.NotificationID, at time.Time) (*model.Notification, error)
}
