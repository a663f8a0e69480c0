package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/auditflow/pkg/domain/interfaces"
	"github.com/secmon-lab/auditflow/pkg/domain/model"
	"github.com/secmon-lab/auditflow/pkg/domain/types"
	"github.com/secmon-lab/auditflow/pkg/service/metrics"
	"github.com/secmon-lab/auditflow/pkg/utils/logging"
)

// Operation names used in logs and metrics
const (
	OpCommitRequirement    = "commit_requirement"
	OpSubmitProposedAction = "submit_proposed_action"
	OpSubmitReview         = "submit_appropriateness_review"
	OpSubmitFollowUpAction = "submit_follow_up_action"
	OpSubmitEffectiveness  = "submit_action_effectiveness"
	OpNotifyManagementRep  = "notify_management_representative"
)

// TransitionResult is the committed case plus the dispatch summary of the
// notifications it triggered. Dispatch is nil when nothing was dispatched.
type TransitionResult struct {
	CAPA     *model.CAPA
	Dispatch *model.DispatchSummary
}

// Verdict returns the caller-visible status of the transition
func (r *TransitionResult) Verdict() (types.ResponseStatus, string) {
	return r.Dispatch.Verdict()
}

// CAPAUseCase drives cases through their stages. Each operation validates
// and checks references first, then applies the mutation atomically, then
// dispatches notifications. Dispatch failures never fail the operation.
type CAPAUseCase struct {
	repo        interfaces.Repository
	resolver    *RecipientResolver
	dispatcher  *Dispatcher
	mrRole      string
	auditorRole string
	metrics     *metrics.Metrics
	clock       func() time.Time
}

func NewCAPAUseCase(repo interfaces.Repository, resolver *RecipientResolver, dispatcher *Dispatcher, mrRole, auditorRole string, m *metrics.Metrics, clock func() time.Time) *CAPAUseCase {
	return &CAPAUseCase{
		repo:        repo,
		resolver:    resolver,
		dispatcher:  dispatcher,
		mrRole:      mrRole,
		auditorRole: auditorRole,
		metrics:     m,
		clock:       clock,
	}
}

// authorizeAuditor rejects actors without the auditor role and the head of
// the case's own department, who may not review their own remediation.
func (uc *CAPAUseCase) authorizeAuditor(ctx context.Context, tenantID string, c *model.CAPA, actor *model.User) error {
	if !actor.HasRole(uc.auditorRole) {
		return goerr.Wrap(ErrAccessDenied, "actor is not an auditor",
			goerr.V(CAPAIDKey, c.ID), goerr.V(ActorIDKey, actor.ID), goerr.V(RoleKey, uc.auditorRole))
	}

	dept, err := uc.resolver.Department(ctx, tenantID, c.Department)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if dept.HeadID == actor.ID {
		return goerr.Wrap(ErrAccessDenied, "department head cannot audit their own case",
			goerr.V(CAPAIDKey, c.ID), goerr.V(ActorIDKey, actor.ID), goerr.V(DepartmentKey, dept.Name))
	}
	return nil
}

func (uc *CAPAUseCase) GetCAPA(ctx context.Context, tenantID string, id model.CAPAID) (*model.CAPA, error) {
	c, err := uc.repo.CAPA().Get(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrNotFound, "case not found", goerr.V(CAPAIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get case", goerr.V(CAPAIDKey, id))
	}
	return c, nil
}

func (uc *CAPAUseCase) ListCAPAs(ctx context.Context, tenantID string, opts ...interfaces.ListCAPAOption) ([]*model.CAPA, error) {
	capas, err := uc.repo.CAPA().List(ctx, tenantID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list cases", goerr.V(TenantIDKey, tenantID))
	}
	return capas, nil
}

// CommitRequirement records the auditor's requirement, moves the case to
// IN_PROGRESS and notifies the head of the case's department. The actor must
// hold the auditor role and must not head the case's department.
func (uc *CAPAUseCase) CommitRequirement(ctx context.Context, tenantID string, id model.CAPAID, input model.RequirementInput, actorID model.UserID) (*TransitionResult, error) {
	if err := input.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid requirement", goerr.V(CAPAIDKey, id))
	}

	actor, err := uc.resolver.Actor(ctx, tenantID, actorID)
	if err != nil {
		return nil, err
	}

	current, err := uc.GetCAPA(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if current.Requirement != nil {
		return nil, goerr.Wrap(model.ErrInvalidState, "requirement is already committed", goerr.V(CAPAIDKey, id))
	}
	if err := uc.authorizeAuditor(ctx, tenantID, current, actor); err != nil {
		return nil, err
	}

	head, err := uc.resolver.DepartmentHead(ctx, tenantID, current.Department)
	if err != nil {
		return nil, err
	}

	now := uc.clock()
	updated, err := uc.transition(ctx, tenantID, id, OpCommitRequirement, func(c *model.CAPA) error {
		if err := c.CommitRequirement(model.Requirement{
			Area:          input.Area,
			Requirement:   input.Requirement,
			Category:      input.Category,
			CommittedByID: actor.ID,
			CommittedBy:   actor.Name,
			CommittedAt:   now,
		}); err != nil {
			return err
		}
		if head.User != nil {
			c.AssignedToID = head.User.ID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	summary := uc.dispatcher.Dispatch(ctx, tenantID, Message{
		Type:     types.NotificationTypeRequirementCommitted,
		Title:    fmt.Sprintf("%s requirement committed", updated.Kind.Label()),
		Message:  fmt.Sprintf("%s committed a requirement on \"%s\". Please submit a proposed action.", actor.Name, updated.Companion.Title),
		Link:     capaLink(updated.ID),
		Metadata: capaMetadata(updated),
	}, []Target{head})

	return &TransitionResult{CAPA: updated, Dispatch: summary}, nil
}

// SubmitProposedAction records the department head's remediation plan and
// notifies the auditor who created the case. Resubmission is allowed and
// discards any earlier appropriateness review.
func (uc *CAPAUseCase) SubmitProposedAction(ctx context.Context, tenantID string, id model.CAPAID, input model.ProposedActionInput, actorID model.UserID) (*TransitionResult, error) {
	if err := input.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid proposed action", goerr.V(CAPAIDKey, id))
	}

	actor, err := uc.resolver.Actor(ctx, tenantID, actorID)
	if err != nil {
		return nil, err
	}

	current, err := uc.GetCAPA(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	dept, err := uc.resolver.Department(ctx, tenantID, current.Department)
	if err != nil {
		return nil, err
	}
	if dept.HeadID != actor.ID {
		return nil, goerr.Wrap(ErrAccessDenied, "only the department head can submit a proposed action",
			goerr.V(CAPAIDKey, id), goerr.V(ActorIDKey, actor.ID), goerr.V(DepartmentKey, dept.Name))
	}

	creator, err := uc.resolver.User(ctx, tenantID, current.CreatedByID)
	if err != nil {
		return nil, err
	}

	now := uc.clock()
	updated, err := uc.transition(ctx, tenantID, id, OpSubmitProposedAction, func(c *model.CAPA) error {
		c.ProposeAction(model.ProposedAction{
			RootCause:            input.RootCause,
			Correction:           input.Correction,
			Action:               input.Action,
			TargetCompletionDate: input.TargetCompletionDate,
			Auditee:              input.Auditee,
			SubmittedByID:        actor.ID,
			SubmittedAt:          now,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	summary := uc.dispatcher.Dispatch(ctx, tenantID, Message{
		Type:     types.NotificationTypeActionProposed,
		Title:    fmt.Sprintf("%s proposed", updated.Kind.Label()),
		Message:  fmt.Sprintf("%s submitted a proposed action for \"%s\". Please review its appropriateness.", actor.Name, updated.Companion.Title),
		Link:     capaLink(updated.ID),
		Metadata: capaMetadata(updated),
	}, []Target{creator})

	return &TransitionResult{CAPA: updated, Dispatch: summary}, nil
}

// SubmitAppropriatenessReview records the auditor's verdict on the proposed
// action. When input.Commit is set the department head is notified. A case
// without a proposed action cannot be reviewed.
func (uc *CAPAUseCase) SubmitAppropriatenessReview(ctx context.Context, tenantID string, id model.CAPAID, input model.ReviewInput, actorID model.UserID) (*TransitionResult, error) {
	if err := input.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid appropriateness review", goerr.V(CAPAIDKey, id))
	}

	actor, err := uc.resolver.Actor(ctx, tenantID, actorID)
	if err != nil {
		return nil, err
	}

	current, err := uc.GetCAPA(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := uc.authorizeAuditor(ctx, tenantID, current, actor); err != nil {
		return nil, err
	}

	var head Target
	if input.Commit {
		head, err = uc.resolver.DepartmentHead(ctx, tenantID, current.Department)
		if err != nil {
			return nil, err
		}
	}

	now := uc.clock()
	updated, err := uc.transition(ctx, tenantID, id, OpSubmitReview, func(c *model.CAPA) error {
		return c.ReviewAppropriateness(model.AppropriatenessReview{
			ReviewerID:  actor.ID,
			Response:    input.Response,
			Comment:     input.Comment,
			RespondedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	result := &TransitionResult{CAPA: updated}
	if !input.Commit {
		return result, nil
	}

	text := fmt.Sprintf("%s found the proposed action for \"%s\" appropriate.", actor.Name, updated.Companion.Title)
	if input.Response == types.ReviewResponseNo {
		text = fmt.Sprintf("%s rejected the proposed action for \"%s\": %s", actor.Name, updated.Companion.Title, input.Comment)
	}
	result.Dispatch = uc.dispatcher.Dispatch(ctx, tenantID, Message{
		Type:     types.NotificationTypeReviewCommitted,
		Title:    "Appropriateness review committed",
		Message:  text,
		Link:     capaLink(updated.ID),
		Metadata: capaMetadata(updated),
	}, []Target{head})

	return result, nil
}

// SubmitFollowUpAction records remediation progress and derives the case
// status from it. No notification is sent.
func (uc *CAPAUseCase) SubmitFollowUpAction(ctx context.Context, tenantID string, id model.CAPAID, action types.FollowUpAction, actorID model.UserID) (*model.CAPA, error) {
	if !action.IsValid() {
		return nil, goerr.Wrap(model.ErrInvalidValue, "invalid follow-up action",
			goerr.V(CAPAIDKey, id), goerr.V(model.ValueKey, action))
	}

	actor, err := uc.resolver.Actor(ctx, tenantID, actorID)
	if err != nil {
		return nil, err
	}

	current, err := uc.GetCAPA(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := uc.authorizeAuditor(ctx, tenantID, current, actor); err != nil {
		return nil, err
	}

	now := uc.clock()
	return uc.transition(ctx, tenantID, id, OpSubmitFollowUpAction, func(c *model.CAPA) error {
		c.RecordFollowUp(model.FollowUp{
			Action:      action,
			UpdatedByID: actor.ID,
			UpdatedAt:   now,
		})
		return nil
	})
}

// SubmitActionEffectiveness records whether the remediation was effective.
// YES verifies the case; NO re-opens it. No notification is sent.
func (uc *CAPAUseCase) SubmitActionEffectiveness(ctx context.Context, tenantID string, id model.CAPAID, input model.EffectivenessInput, actorID model.UserID) (*model.CAPA, error) {
	if err := input.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid action effectiveness", goerr.V(CAPAIDKey, id))
	}

	actor, err := uc.resolver.Actor(ctx, tenantID, actorID)
	if err != nil {
		return nil, err
	}

	current, err := uc.GetCAPA(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := uc.authorizeAuditor(ctx, tenantID, current, actor); err != nil {
		return nil, err
	}

	now := uc.clock()
	return uc.transition(ctx, tenantID, id, OpSubmitEffectiveness, func(c *model.CAPA) error {
		c.RecordEffectiveness(model.Effectiveness{
			Response:   input.Response,
			Details:    input.Details,
			ReviewerID: actor.ID,
			ReviewedAt: now,
		})
		return nil
	})
}

// NotifyManagementRepresentative escalates the case to the management
// representative and flags the case. The role must resolve to exactly one
// active user; an ambiguous role is rejected like a missing one.
func (uc *CAPAUseCase) NotifyManagementRepresentative(ctx context.Context, tenantID string, id model.CAPAID, comment string, actorID model.UserID) (*model.DispatchSummary, error) {
	actor, err := uc.resolver.Actor(ctx, tenantID, actorID)
	if err != nil {
		return nil, err
	}

	if _, err := uc.GetCAPA(ctx, tenantID, id); err != nil {
		return nil, err
	}

	representatives, err := uc.resolver.UsersByRole(ctx, tenantID, uc.mrRole)
	if err != nil {
		return nil, err
	}
	if len(representatives) > 1 {
		ids := make([]model.UserID, len(representatives))
		for i, r := range representatives {
			ids[i] = r.User.ID
		}
		return nil, goerr.Wrap(ErrNotFound, "management representative role resolves to more than one active user",
			goerr.V(RoleKey, uc.mrRole), goerr.V("candidates", ids))
	}

	updated, err := uc.transition(ctx, tenantID, id, OpNotifyManagementRep, func(c *model.CAPA) error {
		c.MarkMRNotified()
		return nil
	})
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf("%s escalated \"%s\" (%s, %s).", actor.Name, updated.Companion.Title, updated.Department, updated.Status)
	if comment != "" {
		text += "\n" + comment
	}

	metadata := capaMetadata(updated)
	if comment != "" {
		metadata["comment"] = comment
	}

	return uc.dispatcher.Dispatch(ctx, tenantID, Message{
		Type:     types.NotificationTypeMREscalation,
		Title:    fmt.Sprintf("%s escalated to management representative", updated.Kind.Label()),
		Message:  text,
		Link:     capaLink(updated.ID),
		Metadata: metadata,
	}, representatives), nil
}

// transition applies fn to the case atomically. Any error from fn leaves the
// stored case untouched.
func (uc *CAPAUseCase) transition(ctx context.Context, tenantID string, id model.CAPAID, operation string, fn func(c *model.CAPA) error) (*model.CAPA, error) {
	updated, err := uc.repo.CAPA().Update(ctx, tenantID, id, func(c *model.CAPA) error {
		if err := fn(c); err != nil {
			return err
		}
		c.UpdatedAt = uc.clock()
		return nil
	})
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrNotFound, "case not found", goerr.V(CAPAIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to apply transition",
			goerr.V(CAPAIDKey, id), goerr.V("operation", operation))
	}

	uc.metrics.IncrementTransition(operation, updated.Status.String())
	logging.From(ctx).Info("CAPA transition committed",
		"tenant_id", tenantID,
		"capa_id", id,
		"operation", operation,
		"status", updated.Status,
	)
	return updated, nil
}

func capaLink(id model.CAPAID) string {
	return "/capas/" + id.String()
}

func capaMetadata(c *model.CAPA) map[string]string {
	return map[string]string{
		"capa_id":    c.ID.String(),
		"finding_id": string(c.FindingID),
		"kind":       c.Kind.String(),
		"department": c.Department,
		"status":     c.Status.String(),
	}
}
