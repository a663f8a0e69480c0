package interfaces

import (
	"context"

	"github.com/secmon-lab/auditflow/pkg/domain/model"
)

// Pusher delivers a stored notification to a user through a realtime channel.
// Delivery is best-effort; an error never invalidates the stored record.
type Pusher interface {
	Push(ctx context.Context, user *model.User, n *model.Notification) error
}
