package firestore

import (
	"context"
	"sort"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/auditflow/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// userDoc flattens department-scoped role names into ScopedRoles so that
// role lookup can use array-contains on both role fields.
type userDoc struct {
	ID              model.UserID           `firestore:"ID"`
	Name            string                 `firestore:"Name"`
	Email           string                 `firestore:"Email"`
	SlackUserID     string                 `firestore:"SlackUserID"`
	Active          bool                   `firestore:"Active"`
	Roles           []string               `firestore:"Roles"`
	DepartmentRoles []model.DepartmentRole `firestore:"DepartmentRoles"`
	ScopedRoles     []string               `firestore:"ScopedRoles"`
}

func toUserDoc(u *model.User) *userDoc {
	return &userDoc{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		SlackUserID:     u.SlackUserID,
		Active:          u.Active,
		Roles:           u.Roles,
		DepartmentRoles: u.DepartmentRoles,
		ScopedRoles:     u.DepartmentRoleNames(),
	}
}

func (d *userDoc) toModel() *model.User {
	return &model.User{
		ID:              d.ID,
		Name:            d.Name,
		Email:           d.Email,
		SlackUserID:     d.SlackUserID,
		Active:          d.Active,
		Roles:           d.Roles,
		DepartmentRoles: d.DepartmentRoles,
	}
}

type directoryRepository struct {
	client *firestore.Client
	paths  *paths
}

func (r *directoryRepository) GetUser(ctx context.Context, tenantID string, id model.UserID) (*model.User, error) {
	doc, err := r.paths.collection(tenantID, CollectionUsers).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("id", id))
	}

	var d userDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to decode user", goerr.V("id", id))
	}
	return d.toModel(), nil
}

func (r *directoryRepository) GetDepartment(ctx context.Context, tenantID string, name string) (*model.Department, error) {
	doc, err := r.paths.collection(tenantID, CollectionDepartments).Doc(name).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get department", goerr.V("name", name))
	}

	var d model.Department
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to decode department", goerr.V("name", name))
	}
	return &d, nil
}

func (r *directoryRepository) ListUsersByRole(ctx context.Context, tenantID string, role string) ([]*model.User, error) {
	users := make(map[model.UserID]*model.User)

	// Firestore has no OR across array-contains on different fields
	for _, field := range []string{"Roles", "ScopedRoles"} {
		iter := r.paths.collection(tenantID, CollectionUsers).
			Where(field, "array-contains", role).
			Documents(ctx)

		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				iter.Stop()
				return nil, goerr.Wrap(err, "failed to iterate users", goerr.V("role", role), goerr.V("field", field))
			}

			var d userDoc
			if err := doc.DataTo(&d); err != nil {
				iter.Stop()
				return nil, goerr.Wrap(err, "failed to decode user", goerr.V("doc_id", doc.Ref.ID))
			}
			users[d.ID] = d.toModel()
		}
		iter.Stop()
	}

	result := make([]*model.User, 0, len(users))
	for _, u := range users {
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result, nil
}

func (r *directoryRepository) PutUser(ctx context.Context, tenantID string, user *model.User) error {
	if user.ID == "" {
		return goerr.New("user ID is required")
	}

	docRef := r.paths.collection(tenantID, CollectionUsers).Doc(string(user.ID))
	if _, err := docRef.Set(ctx, toUserDoc(user)); err != nil {
		return goerr.Wrap(err, "failed to put user", goerr.V("id", user.ID))
	}
	return nil
}

func (r *directoryRepository) PutDepartment(ctx context.Context, tenantID string, dept *model.Department) error {
	if dept.Name == "" {
		return goerr.New("department name is required")
	}

	docRef := r.paths.collection(tenantID, CollectionDepartments).Doc(dept.Name)
	if _, err := docRef.Set(ctx, dept); err != nil {
		return goerr.Wrap(err, "failed to put department", goerr.V("name", dept.Name))
	}
	return nil
}
