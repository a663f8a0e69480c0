package interfaces

import "github.com/secmon-lab/auditflow/pkg/domain/types"

// ListCAPAOption is a functional option for filtering cases in List
type ListCAPAOption func(*listCAPAConfig)

type listCAPAConfig struct {
	status *types.CAPAStatus
	kind   *types.CAPAKind
}

// WithStatus filters cases by status
func WithStatus(status types.CAPAStatus) ListCAPAOption {
	return func(c *listCAPAConfig) {
		c.status = &status
	}
}

// WithKind filters cases by kind
func WithKind(kind types.CAPAKind) ListCAPAOption {
	return func(c *listCAPAConfig) {
		c.kind = &kind
	}
}

// BuildListCAPAConfig builds a listCAPAConfig from options
func BuildListCAPAConfig(opts ...ListCAPAOption) *listCAPAConfig {
	cfg := &listCAPAConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Status returns the status filter value, or nil if not set
func (c *listCAPAConfig) Status() *types.CAPAStatus {
	return c.status
}

// Kind returns the kind filter value, or nil if not set
func (c *listCAPAConfig) Kind() *types.CAPAKind {
	return c.kind
}
