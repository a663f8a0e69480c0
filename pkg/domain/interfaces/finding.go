package interfaces

import (
	"context"

	"github.com/secmon-lab/auditflow/pkg/domain/model"
)

// CategorizeFunc mutates a finding inside the categorize transaction and
// returns the case to create with it, or nil when no case is needed.
// It may be invoked more than once if the transaction is retried.
type CategorizeFunc func(f *model.Finding) (*model.CAPA, error)

// FindingRepository defines the interface for Finding data access
type FindingRepository interface {
	// Create stores a new finding. ID must be set by the caller.
	Create(ctx context.Context, tenantID string, f *model.Finding) (*model.Finding, error)

	// Get retrieves a finding by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, tenantID string, id model.FindingID) (*model.Finding, error)

	// List retrieves all findings of the tenant
	List(ctx context.Context, tenantID string) ([]*model.Finding, error)

	// Categorize atomically updates the finding with fn and creates the
	// returned case in the same transaction. Either both writes happen or
	// neither does. Returns ErrAlreadyExists if the case already exists.
	Categorize(ctx context.Context, tenantID string, id model.FindingID, fn CategorizeFunc) (*model.Finding, error)
}
