package interfaces

import (
	"context"

	"github.com/secmon-lab/auditflow/pkg/domain/model"
)

// UpdateCAPAFunc mutates a case inside the update transaction. Returning an
// error aborts the update and leaves the stored case untouched.
// It may be invoked more than once if the transaction is retried.
type UpdateCAPAFunc func(c *model.CAPA) error

// CAPARepository defines the interface for CAPA case data access.
// Cases are only created through FindingRepository.Categorize.
type CAPARepository interface {
	// Get retrieves a case by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, tenantID string, id model.CAPAID) (*model.CAPA, error)

	// List retrieves cases with optional filtering
	List(ctx context.Context, tenantID string, opts ...ListCAPAOption) ([]*model.CAPA, error)

	// Update performs an atomic read-modify-write of a case
	Update(ctx context.Context, tenantID string, id model.CAPAID, fn UpdateCAPAFunc) (*model.CAPA, error)
}
