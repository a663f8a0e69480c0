package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/auditflow/pkg/domain/interfaces"
	"github.com/secmon-lab/auditflow/pkg/domain/model"
)

type notificationRepository struct {
	mu            sync.RWMutex
	notifications map[string]map[model.NotificationID]*model.Notification
}

func newNotificationRepository() *notificationRepository {
	return &notificationRepository{
		notifications: make(map[string]map[model.NotificationID]*model.Notification),
	}
}

func copyNotification(n *model.Notification) *model.Notification {
	copied := *n
	if n.Metadata != nil {
		copied.Metadata = make(map[string]string, len(n.Metadata))
		for k, v := range n.Metadata {
			copied.Metadata[k] = v
		}
	}
	if n.ReadAt != nil {
		readAt := *n.ReadAt
		copied.ReadAt = &readAt
	}
	return &copied
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	if n.ID == "" {
		return nil, goerr.New("notification ID is required")
	}
	if n.TenantID == "" {
		return nil, goerr.New("notification tenant ID is required", goerr.V("id", n.ID))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.notifications[n.TenantID]; !exists {
		r.notifications[n.TenantID] = make(map[model.NotificationID]*model.Notification)
	}
	if _, exists := r.notifications[n.TenantID][n.ID]; exists {
		return nil, goerr.Wrap(interfaces.ErrAlreadyExists, "notification already exists", goerr.V("id", n.ID))
	}

	created := copyNotification(n)
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	r.notifications[n.TenantID][created.ID] = created
	return copyNotification(created), nil
}

func (r *notificationRepository) Get(ctx context.Context, tenantID string, id model.NotificationID) (*model.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, exists := r.notifications[tenantID][id]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "notification not found", goerr.V("id", id))
	}

	return copyNotification(n), nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, tenantID string, userID model.UserID, limit int) ([]*model.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Notification
	for _, n := range r.notifications[tenantID] {
		if n.TargetUserID == userID {
			result = append(result, copyNotification(n))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, tenantID string, id model.NotificationID, at time.Time) (*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, exists := r.notifications[tenantID][id]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "notification not found", goerr.V("id", id))
	}

	if n.ReadAt == nil {
		readAt := at
		n.ReadAt = &readAt
	}

	return copyNotification(n), nil
}
