package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/auditflow/pkg/domain/types"
)

// NotificationID is a UUID-based identifier for Notification
type NotificationID string

// NewNotificationID generates a new UUID v4 NotificationID
func NewNotificationID() NotificationID {
	return NotificationID(uuid.New().String())
}

// Notification is the durable record of a message to one user.
// It is written before any realtime push is attempted.
type Notification struct {
	ID           NotificationID
	TenantID     string
	Type         types.NotificationType
	Title        string
	Message      string
	TargetUserID UserID
	Link         string
	Metadata     map[string]string
	ReadAt       *time.Time
	CreatedAt    time.Time
}

// IsRead reports whether the target user has read the notification
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}
