package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/auditflow/pkg/domain/interfaces"
	"github.com/secmon-lab/auditflow/pkg/domain/model"
)

// Target is one recipient of a dispatch. User is nil when the recipient
// could not be resolved; Err then carries the reason.
type Target struct {
	User *model.User
	Err  error
}

// RecipientResolver resolves actors and notification recipients through the
// directory collaborator. Only active users qualify.
type RecipientResolver struct {
	directory interfaces.DirectoryRepository
}

func NewRecipientResolver(directory interfaces.DirectoryRepository) *RecipientResolver {
	return &RecipientResolver{directory: directory}
}

// Actor returns the acting user, or ErrNotFound when the ID does not belong
// to an active user of the tenant.
func (r *RecipientResolver) Actor(ctx context.Context, tenantID string, actorID model.UserID) (*model.User, error) {
	if actorID == "" {
		return nil, goerr.Wrap(ErrValidation, "actor is required")
	}

	user, err := r.directory.GetUser(ctx, tenantID, actorID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to look up actor", goerr.V(ActorIDKey, actorID))
	}
	if user == nil || !user.Active {
		return nil, goerr.Wrap(ErrNotFound, "actor not found",
			goerr.V(ActorIDKey, actorID), goerr.V(TenantIDKey, tenantID))
	}
	return user, nil
}

// Department returns the department, or ErrNotFound if it does not exist
func (r *RecipientResolver) Department(ctx context.Context, tenantID, name string) (*model.Department, error) {
	dept, err := r.directory.GetDepartment(ctx, tenantID, name)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to look up department", goerr.V(DepartmentKey, name))
	}
	if dept == nil {
		return nil, goerr.Wrap(ErrNotFound, "department not found",
			goerr.V(DepartmentKey, name), goerr.V(TenantIDKey, tenantID))
	}
	return dept, nil
}

// DepartmentHead resolves the head of the department. A missing department
// is an error; a missing or inactive head is an unresolved Target.
func (r *RecipientResolver) DepartmentHead(ctx context.Context, tenantID, department string) (Target, error) {
	dept, err := r.Department(ctx, tenantID, department)
	if err != nil {
		return Target{}, err
	}

	if dept.HeadID == "" {
		return Target{Err: goerr.Wrap(ErrNoResponsibleParty, "department has no head",
			goerr.V(DepartmentKey, department))}, nil
	}

	return r.User(ctx, tenantID, dept.HeadID)
}

// User resolves a user by ID as a Target
func (r *RecipientResolver) User(ctx context.Context, tenantID string, userID model.UserID) (Target, error) {
	if userID == "" {
		return Target{Err: goerr.Wrap(ErrNoResponsibleParty, "recipient is not set")}, nil
	}

	user, err := r.directory.GetUser(ctx, tenantID, userID)
	if err != nil {
		return Target{}, goerr.Wrap(err, "failed to look up recipient", goerr.V(RecipientKey, userID))
	}
	if user == nil || !user.Active {
		return Target{Err: goerr.Wrap(ErrNoResponsibleParty, "recipient is not an active user",
			goerr.V(RecipientKey, userID))}, nil
	}
	return Target{User: user}, nil
}

// UsersByRole resolves active users holding the role tenant-wide or through
// a department-scoped assignment. Returns ErrNotFound if none qualify.
func (r *RecipientResolver) UsersByRole(ctx context.Context, tenantID, role string) ([]Target, error) {
	users, err := r.directory.ListUsersByRole(ctx, tenantID, role)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to look up users by role", goerr.V(RoleKey, role))
	}

	var targets []Target
	for _, u := range users {
		if u.Active && u.HasRole(role) {
			targets = append(targets, Target{User: u})
		}
	}

	if len(targets) == 0 {
		return nil, goerr.Wrap(ErrNotFound, "no active user holds the role",
			goerr.V(RoleKey, role), goerr.V(TenantIDKey, tenantID))
	}
	return targets, nil
}
