package interfaces

import (
	"context"

	"github.com/secmon-lab/auditflow/pkg/domain/model"
)

// DirectoryRepository is the read side of user, role and department
// storage owned by the surrounding system. Lookups return nil, nil when the
// entry does not exist.
type DirectoryRepository interface {
	GetUser(ctx context.Context, tenantID string, id model.UserID) (*model.User, error)
	GetDepartment(ctx context.Context, tenantID string, name string) (*model.Department, error)

	// ListUsersByRole returns users holding the role tenant-wide OR through a
	// department-scoped assignment.
	ListUsersByRole(ctx context.Context, tenantID string, role string) ([]*model.User, error)

	PutUser(ctx context.Context, tenantID string, user *model.User) error
	PutDepartment(ctx context.Context, tenantID string, dept *model.Department) error
}
