package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/auditflow/pkg/domain/types"
)

// FindingID is a UUID-based identifier for Finding
type FindingID string

// NewFindingID generates a new UUID v4 FindingID
func NewFindingID() FindingID {
	return FindingID(uuid.New().String())
}

// Finding is an observation recorded during audit execution.
// Category stays nil until the finding is categorized.
type Finding struct {
	ID          FindingID
	AuditID     string
	Department  string
	Category    *types.FindingCategory
	Status      types.FindingStatus
	Title       string
	Description string
	CAPAID      CAPAID // set when Category requires a CAPA case
	CreatedByID UserID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsCategorized reports whether a category has been assigned
func (f *Finding) IsCategorized() bool {
	return f.Category != nil
}

// IsUncased reports the broken state where a finding is categorized as
// requiring a CAPA case but no case is linked.
func (f *Finding) IsUncased() bool {
	return f.Category != nil && f.Category.RequiresCAPA() && f.CAPAID == ""
}
