package usecase

import (
	"errors"

	"github.com/secmon-lab/auditflow/pkg/domain/model"
)

// Sentinel errors for use case layer
var (
	// ErrValidation marks bad or missing input. Rejected before any mutation.
	ErrValidation = model.ErrValidation

	// ErrNotFound marks a case, finding, department, actor or role that does
	// not resolve. Rejected before any mutation.
	ErrNotFound = errors.New("not found")

	// ErrNoResponsibleParty marks a recipient that cannot be resolved. It never
	// aborts a transition and surfaces as a FAILED dispatch outcome.
	ErrNoResponsibleParty = errors.New("no responsible party")

	// ErrDelivery marks a durable write or realtime push failure. It is
	// captured in the dispatch outcome and never returned by a transition.
	ErrDelivery = errors.New("notification delivery failed")

	// ErrAccessDenied marks an actor not allowed to perform the operation
	ErrAccessDenied = errors.New("access denied")
)

// Context keys for error values
const (
	CAPAIDKey         = "capa_id"
	FindingIDKey      = "finding_id"
	TenantIDKey       = "tenant_id"
	ActorIDKey        = "actor_id"
	DepartmentKey     = "department"
	RoleKey           = "role"
	NotificationIDKey = "notification_id"
	RecipientKey      = "recipient"
)
