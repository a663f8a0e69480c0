package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/auditflow/pkg/domain/interfaces"
	"github.com/secmon-lab/auditflow/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type notificationRepository struct {
	client *firestore.Client
	paths  *paths
}

func (r *notificationRepository) notificationsCollection(tenantID string) *firestore.CollectionRef {
	return r.paths.collection(tenantID, CollectionNotifications)
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	if n.ID == "" {
		return nil, goerr.New("notification ID is required")
	}
	if n.TenantID == "" {
		return nil, goerr.New("notification tenant ID is required", goerr.V("id", n.ID))
	}

	created := *n
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	docRef := r.notificationsCollection(n.TenantID).Doc(string(created.ID))
	if _, err := docRef.Create(ctx, &created); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(interfaces.ErrAlreadyExists, "notification already exists", goerr.V("id", n.ID))
		}
		return nil, goerr.Wrap(err, "failed to create notification", goerr.V("id", n.ID))
	}

	return &created, nil
}

func (r *notificationRepository) Get(ctx context.Context, tenantID string, id model.NotificationID) (*model.Notification, error) {
	doc, err := r.notificationsCollection(tenantID).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "notification not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get notification", goerr.V("id", id))
	}

	var n model.Notification
	if err := doc.DataTo(&n); err != nil {
		return nil, goerr.Wrap(err, "failed to decode notification", goerr.V("id", id))
	}
	return &n, nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, tenantID string, userID model.UserID, limit int) ([]*model.Notification, error) {
	query := r.notificationsCollection(tenantID).
		Where("TargetUserID", "==", string(userID)).
		OrderBy("CreatedAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var result []*model.Notification
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate notifications", goerr.V("user_id", userID))
		}

		var n model.Notification
		if err := doc.DataTo(&n); err != nil {
			return nil, goerr.Wrap(err, "failed to decode notification", goerr.V("doc_id", doc.Ref.ID))
		}
		result = append(result, &n)
	}

	return result, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, tenantID string, id model.NotificationID, at time.Time) (*model.Notification, error) {
	docRef := r.notificationsCollection(tenantID).Doc(string(id))

	var result *model.Notification
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(interfaces.ErrNotFound, "notification not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get notification", goerr.V("id", id))
		}

		var n model.Notification
		if err := doc.DataTo(&n); err != nil {
			return goerr.Wrap(err, "failed to decode notification", goerr.V("id", id))
		}

		if n.ReadAt == nil {
			readAt := at
			n.ReadAt = &readAt
			if err := tx.Update(docRef, []firestore.Update{{Path: "ReadAt", Value: readAt}}); err != nil {
				return goerr.Wrap(err, "failed to mark notification read", goerr.V("id", id))
			}
		}

		result = &n
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
