package model

import "slices"

// UserID identifies a user of a tenant
type UserID string

// String returns the string representation of the user ID
func (id UserID) String() string {
	return string(id)
}

// User is a directory entry as seen by the workflow engine
type User struct {
	ID              UserID
	Name            string
	Email           string
	SlackUserID     string
	Active          bool
	Roles           []string         // tenant-wide role names
	DepartmentRoles []DepartmentRole // department-scoped role assignments
}

// DepartmentRole is a role granted to a user within a single department
type DepartmentRole struct {
	Department string
	Role       string
}

// HasRole reports whether the user holds the role either tenant-wide or
// through any department-scoped assignment.
func (u *User) HasRole(role string) bool {
	if slices.Contains(u.Roles, role) {
		return true
	}
	for _, dr := range u.DepartmentRoles {
		if dr.Role == role {
			return true
		}
	}
	return false
}

// DepartmentRoleNames returns the role names of department-scoped assignments
func (u *User) DepartmentRoleNames() []string {
	names := make([]string, 0, len(u.DepartmentRoles))
	for _, dr := range u.DepartmentRoles {
		if !slices.Contains(names, dr.Role) {
			names = append(names, dr.Role)
		}
	}
	return names
}

// Department holds the 1:1 head pointer used to route remediation work
type Department struct {
	Name   string
	HeadID UserID // empty when no head is assigned
}
