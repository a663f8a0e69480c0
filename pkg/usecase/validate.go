package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/auditflow/pkg/domain/model"
)

// ValidationIssue represents a single validation issue found during DB consistency check
type ValidationIssue struct {
	TenantID  string
	FindingID model.FindingID
	Message   string
	Expected  string
	Actual    string
}

// ValidationResult holds the results of DB validation
type ValidationResult struct {
	Checked int
	Issues  []ValidationIssue
}

// HasIssues returns true if there are any validation issues
func (r *ValidationResult) HasIssues() bool {
	return len(r.Issues) > 0
}

// AddIssue adds a validation issue to the result
func (r *ValidationResult) AddIssue(issue ValidationIssue) {
	r.Issues = append(r.Issues, issue)
}

// ValidateDB checks that every finding categorized as requiring a case is
// linked to an existing case of the matching kind. It does NOT modify any data.
func (uc *UseCases) ValidateDB(ctx context.Context, tenantIDs []string) (*ValidationResult, error) {
	result := &ValidationResult{}

	for _, tenantID := range tenantIDs {
		findings, err := uc.Finding.ListFindings(ctx, tenantID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list findings", goerr.V(TenantIDKey, tenantID))
		}

		for _, f := range findings {
			result.Checked++
			if f.Category == nil {
				continue
			}

			kind, requiresCase := f.Category.CAPAKind()
			if !requiresCase {
				continue
			}

			if f.IsUncased() {
				result.AddIssue(ValidationIssue{
					TenantID:  tenantID,
					FindingID: f.ID,
					Message:   fmt.Sprintf("finding categorized as %s has no case", *f.Category),
					Expected:  kind.String() + " case",
					Actual:    "<none>",
				})
				continue
			}

			capa, err := uc.CAPA.GetCAPA(ctx, tenantID, f.CAPAID)
			if errors.Is(err, ErrNotFound) {
				result.AddIssue(ValidationIssue{
					TenantID:  tenantID,
					FindingID: f.ID,
					Message:   "linked case does not exist",
					Expected:  f.CAPAID.String(),
					Actual:    "<missing>",
				})
				continue
			}
			if err != nil {
				return nil, err
			}

			if capa.Kind != kind {
				result.AddIssue(ValidationIssue{
					TenantID:  tenantID,
					FindingID: f.ID,
					Message:   "linked case has the wrong kind",
					Expected:  kind.String(),
					Actual:    capa.Kind.String(),
				})
			}
		}
	}

	return result, nil
}
