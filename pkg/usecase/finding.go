package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/auditflow/pkg/domain/interfaces"
	"github.com/secmon-lab/auditflow/pkg/domain/model"
	"github.com/secmon-lab/auditflow/pkg/domain/types"
	"github.com/secmon-lab/auditflow/pkg/service/metrics"
	"github.com/secmon-lab/auditflow/pkg/utils/logging"
)

// errAlreadyCategorized aborts the categorize transaction without writing
// when the finding already carries the requested category.
var errAlreadyCategorized = errors.New("finding already categorized")

type FindingUseCase struct {
	repo     interfaces.Repository
	resolver *RecipientResolver
	metrics  *metrics.Metrics
	clock    func() time.Time
}

func NewFindingUseCase(repo interfaces.Repository, resolver *RecipientResolver, m *metrics.Metrics, clock func() time.Time) *FindingUseCase {
	return &FindingUseCase{
		repo:     repo,
		resolver: resolver,
		metrics:  m,
		clock:    clock,
	}
}

// FindingInput is a finding recorded by audit execution
type FindingInput struct {
	AuditID     string
	Department  string
	Title       string
	Description string
}

// CategorizeResult is the categorized finding and the case it anchors, if any
type CategorizeResult struct {
	Finding *model.Finding
	CAPA    *model.CAPA
}

func (uc *FindingUseCase) CreateFinding(ctx context.Context, tenantID string, input FindingInput, actorID model.UserID) (*model.Finding, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, goerr.Wrap(ErrValidation, "finding title is required")
	}
	if strings.TrimSpace(input.Department) == "" {
		return nil, goerr.Wrap(ErrValidation, "finding department is required")
	}

	actor, err := uc.resolver.Actor(ctx, tenantID, actorID)
	if err != nil {
		return nil, err
	}

	now := uc.clock()
	f := &model.Finding{
		ID:          model.NewFindingID(),
		AuditID:     input.AuditID,
		Department:  input.Department,
		Status:      types.FindingStatusOpen,
		Title:       input.Title,
		Description: input.Description,
		CreatedByID: actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := uc.repo.Finding().Create(ctx, tenantID, f)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create finding", goerr.V(TenantIDKey, tenantID))
	}
	return created, nil
}

func (uc *FindingUseCase) GetFinding(ctx context.Context, tenantID string, id model.FindingID) (*model.Finding, error) {
	f, err := uc.repo.Finding().Get(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrNotFound, "finding not found", goerr.V(FindingIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get finding", goerr.V(FindingIDKey, id))
	}
	return f, nil
}

func (uc *FindingUseCase) ListFindings(ctx context.Context, tenantID string) ([]*model.Finding, error) {
	findings, err := uc.repo.Finding().List(ctx, tenantID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list findings", goerr.V(TenantIDKey, tenantID))
	}
	return findings, nil
}

// CategorizeFinding assigns the category and, for NON_CONFORMITY and
// IMPROVEMENT, creates the companion case in the same transaction.
// Repeating the same category returns the existing state; changing the
// category of a categorized finding is rejected.
func (uc *FindingUseCase) CategorizeFinding(ctx context.Context, tenantID string, id model.FindingID, category types.FindingCategory, actorID model.UserID) (*CategorizeResult, error) {
	if !category.IsValid() {
		return nil, goerr.Wrap(ErrValidation, "invalid finding category",
			goerr.V(FindingIDKey, id), goerr.V("category", category))
	}

	actor, err := uc.resolver.Actor(ctx, tenantID, actorID)
	if err != nil {
		return nil, err
	}

	var created *model.CAPA
	finding, err := uc.repo.Finding().Categorize(ctx, tenantID, id, func(f *model.Finding) (*model.CAPA, error) {
		created = nil

		if f.Category != nil {
			if *f.Category == category {
				return nil, errAlreadyCategorized
			}
			return nil, goerr.Wrap(ErrValidation, "finding is already categorized",
				goerr.V(FindingIDKey, id),
				goerr.V("current", *f.Category),
				goerr.V("requested", category))
		}

		now := uc.clock()
		f.Category = &category
		f.Status = types.FindingStatusCategorized
		f.UpdatedAt = now

		kind, ok := category.CAPAKind()
		if !ok {
			return nil, nil
		}

		capa := model.NewCAPA(kind, f, actor.ID)
		capa.CreatedAt = now
		capa.UpdatedAt = now
		f.CAPAID = capa.ID
		created = capa
		return capa, nil
	})

	switch {
	case errors.Is(err, errAlreadyCategorized):
		return uc.currentCategorization(ctx, tenantID, id)
	case errors.Is(err, interfaces.ErrNotFound):
		return nil, goerr.Wrap(ErrNotFound, "finding not found", goerr.V(FindingIDKey, id))
	case errors.Is(err, interfaces.ErrAlreadyExists):
		return nil, goerr.Wrap(ErrValidation, "a case already exists for the finding", goerr.V(FindingIDKey, id))
	case err != nil:
		return nil, goerr.Wrap(err, "failed to categorize finding", goerr.V(FindingIDKey, id))
	}

	if created != nil {
		uc.metrics.IncrementCaseCreated(created.Kind.String())
		logging.From(ctx).Info("CAPA case created",
			"tenant_id", tenantID,
			"finding_id", id,
			"capa_id", created.ID,
			"kind", created.Kind,
		)
	}

	return &CategorizeResult{Finding: finding, CAPA: created}, nil
}

func (uc *FindingUseCase) currentCategorization(ctx context.Context, tenantID string, id model.FindingID) (*CategorizeResult, error) {
	finding, err := uc.GetFinding(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	result := &CategorizeResult{Finding: finding}
	if finding.CAPAID == "" {
		return result, nil
	}

	capa, err := uc.repo.CAPA().Get(ctx, tenantID, finding.CAPAID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get case of categorized finding",
			goerr.V(FindingIDKey, id), goerr.V(CAPAIDKey, finding.CAPAID))
	}
	result.CAPA = capa
	return result, nil
}

// FindUncasedFindings returns findings categorized as requiring a case but
// with no case ID recorded. Categorization never produces them; they can only
// come from data written outside this service. A finding whose case ID points
// at a missing case or a case of the wrong kind is not reported here; use
// ValidateDB for the full consistency check.
func (uc *FindingUseCase) FindUncasedFindings(ctx context.Context, tenantID string) ([]*model.Finding, error) {
	findings, err := uc.ListFindings(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	var uncased []*model.Finding
	for _, f := range findings {
		if f.IsUncased() {
			uncased = append(uncased, f)
		}
	}
	return uncased, nil
}
