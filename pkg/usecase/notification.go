package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/auditflow/pkg/domain/interfaces"
	"github.com/secmon-lab/auditflow/pkg/domain/model"
)

// DefaultNotificationLimit caps ListNotifications when no limit is given
const DefaultNotificationLimit = 50

// NotificationUseCase exposes the durable notification inbox of a user
type NotificationUseCase struct {
	repo  interfaces.Repository
	clock func() time.Time
}

func NewNotificationUseCase(repo interfaces.Repository, clock func() time.Time) *NotificationUseCase {
	return &NotificationUseCase{repo: repo, clock: clock}
}

func (uc *NotificationUseCase) ListNotifications(ctx context.Context, tenantID string, userID model.UserID, limit int) ([]*model.Notification, error) {
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}

	list, err := uc.repo.Notification().ListByUser(ctx, tenantID, userID, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list notifications", goerr.V(ActorIDKey, userID))
	}
	return list, nil
}

// GetNotification returns a notification addressed to userID
func (uc *NotificationUseCase) GetNotification(ctx context.Context, tenantID string, id model.NotificationID, userID model.UserID) (*model.Notification, error) {
	n, err := uc.repo.Notification().Get(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrNotFound, "notification not found", goerr.V(NotificationIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get notification", goerr.V(NotificationIDKey, id))
	}

	if n.TargetUserID != userID {
		return nil, goerr.Wrap(ErrAccessDenied, "notification belongs to another user",
			goerr.V(NotificationIDKey, id), goerr.V(ActorIDKey, userID))
	}
	return n, nil
}

// MarkRead marks a notification addressed to userID as read
func (uc *NotificationUseCase) MarkRead(ctx context.Context, tenantID string, id model.NotificationID, userID model.UserID) (*model.Notification, error) {
	if _, err := uc.GetNotification(ctx, tenantID, id, userID); err != nil {
		return nil, err
	}

	n, err := uc.repo.Notification().MarkRead(ctx, tenantID, id, uc.clock())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to mark notification read", goerr.V(NotificationIDKey, id))
	}
	return n, nil
}
