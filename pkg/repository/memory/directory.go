package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/auditflow/pkg/domain/model"
)

type directoryRepository struct {
	mu          sync.RWMutex
	users       map[string]map[model.UserID]*model.User
	departments map[string]map[string]*model.Department
}

func newDirectoryRepository() *directoryRepository {
	return &directoryRepository{
		users:       make(map[string]map[model.UserID]*model.User),
		departments: make(map[string]map[string]*model.Department),
	}
}

func copyUser(u *model.User) *model.User {
	copied := *u
	if u.Roles != nil {
		copied.Roles = make([]string, len(u.Roles))
		copy(copied.Roles, u.Roles)
	}
	if u.DepartmentRoles != nil {
		copied.DepartmentRoles = make([]model.DepartmentRole, len(u.DepartmentRoles))
		copy(copied.DepartmentRoles, u.DepartmentRoles)
	}
	return &copied
}

func (r *directoryRepository) GetUser(ctx context.Context, tenantID string, id model.UserID) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, exists := r.users[tenantID][id]
	if !exists {
		return nil, nil
	}
	return copyUser(u), nil
}

func (r *directoryRepository) GetDepartment(ctx context.Context, tenantID string, name string) (*model.Department, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, exists := r.departments[tenantID][name]
	if !exists {
		return nil, nil
	}
	copied := *d
	return &copied, nil
}

func (r *directoryRepository) ListUsersByRole(ctx context.Context, tenantID string, role string) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var users []*model.User
	for _, u := range r.users[tenantID] {
		if u.HasRole(role) {
			users = append(users, copyUser(u))
		}
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].ID < users[j].ID
	})

	return users, nil
}

func (r *directoryRepository) PutUser(ctx context.Context, tenantID string, user *model.User) error {
	if user.ID == "" {
		return goerr.New("user ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[tenantID]; !exists {
		r.users[tenantID] = make(map[model.UserID]*model.User)
	}
	r.users[tenantID][user.ID] = copyUser(user)
	return nil
}

func (r *directoryRepository) PutDepartment(ctx context.Context, tenantID string, dept *model.Department) error {
	if dept.Name == "" {
		return goerr.New("department name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.departments[tenantID]; !exists {
		r.departments[tenantID] = make(map[string]*model.Department)
	}
	copied := *dept
	r.departments[tenantID][dept.Name] = &copied
	return nil
}
