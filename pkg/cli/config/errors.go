package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrInvalidConfig = goerr.New("invalid configuration")
	ErrMissingName   = goerr.New("name is required")
	ErrDuplicateID   = goerr.New("duplicate ID")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	TenantIDKey   = "tenant_id"
	UserIDKey     = "user_id"
	DepartmentKey = "department"
	BackendKey    = "backend"
)
