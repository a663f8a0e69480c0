package model

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/auditflow/pkg/domain/types"
)

// CAPAID identifies a CAPA case. It is derived from the anchoring finding so
// that a finding can never own more than one case.
type CAPAID string

// CAPAIDForFinding returns the case ID owned by the given finding
func CAPAIDForFinding(findingID FindingID) CAPAID {
	return CAPAID("capa-" + string(findingID))
}

// String returns the string representation of the case ID
func (id CAPAID) String() string {
	return string(id)
}

// Companion is the NonConformity or ImprovementOpportunity record created
// when a finding is categorized. It anchors exactly one CAPA case.
type Companion struct {
	Kind        types.CompanionKind
	Title       string
	Description string
}

// CAPA is a corrective or preventive action case. Both kinds share the same
// lifecycle and differ only in the companion record they anchor.
type CAPA struct {
	ID           CAPAID
	Kind         types.CAPAKind
	FindingID    FindingID
	AuditID      string
	Department   string
	Companion    Companion
	CreatedByID  UserID
	AssignedToID UserID
	Status       types.CAPAStatus

	Requirement           *Requirement
	ProposedAction        *ProposedAction
	AppropriatenessReview *AppropriatenessReview
	FollowUp              *FollowUp
	Effectiveness         *Effectiveness
	MRNotified            bool

	// History keeps a snapshot of every remediation cycle that ended with an
	// ineffective verdict.
	History []RemediationCycle

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Requirement is the correction (or observation) requirement committed by the auditor.
// It is immutable once set.
type Requirement struct {
	Area          string
	Requirement   string
	Category      string
	CommittedByID UserID
	CommittedBy   string
	CommittedAt   time.Time
}

// ProposedAction is the remediation plan submitted by the department head
type ProposedAction struct {
	RootCause            string
	Correction           string
	Action               string
	TargetCompletionDate time.Time
	Auditee              string
	SubmittedByID        UserID
	SubmittedAt          time.Time
}

// AppropriatenessReview is the auditor's verdict on a proposed action
type AppropriatenessReview struct {
	ReviewerID  UserID
	Response    types.ReviewResponse
	Comment     string
	RespondedAt time.Time
}

// FollowUp records the auditor's assessment of remediation progress
type FollowUp struct {
	Action      types.FollowUpAction
	Status      types.StageStatus
	UpdatedByID UserID
	UpdatedAt   time.Time
}

// Effectiveness records whether the completed remediation was effective
type Effectiveness struct {
	Response   types.ReviewResponse
	Details    string
	Status     types.StageStatus
	ReviewerID UserID
	ReviewedAt time.Time
}

// RemediationCycle is a snapshot of one remediation attempt judged ineffective
type RemediationCycle struct {
	ProposedAction        *ProposedAction
	AppropriatenessReview *AppropriatenessReview
	FollowUp              *FollowUp
	Effectiveness         *Effectiveness
	ClosedAt              time.Time
}

// NewCAPA builds the case anchored by a freshly categorized finding
func NewCAPA(kind types.CAPAKind, finding *Finding, createdBy UserID) *CAPA {
	return &CAPA{
		ID:         CAPAIDForFinding(finding.ID),
		Kind:       kind,
		FindingID:  finding.ID,
		AuditID:    finding.AuditID,
		Department: finding.Department,
		Companion: Companion{
			Kind:        kind.CompanionKind(),
			Title:       finding.Title,
			Description: finding.Description,
		},
		CreatedByID: createdBy,
		Status:      types.CAPAStatusOpen,
	}
}

// CommitRequirement sets the requirement and moves the case to IN_PROGRESS.
func (c *CAPA) CommitRequirement(req Requirement) error {
	if c.Requirement != nil {
		return goerr.Wrap(ErrInvalidState, "requirement is already committed",
			goerr.V(StatusKey, c.Status))
	}
	c.Requirement = &req
	c.Status = types.CAPAStatusInProgress
	return nil
}

// ProposeAction sets the proposed action. Any earlier appropriateness review
// refers to a previous proposal and is discarded.
func (c *CAPA) ProposeAction(p ProposedAction) {
	c.ProposedAction = &p
	c.AppropriatenessReview = nil
}

// ReviewAppropriateness records the auditor's review of the proposed action
func (c *CAPA) ReviewAppropriateness(r AppropriatenessReview) error {
	if c.ProposedAction == nil {
		return goerr.Wrap(ErrInvalidState, "no proposed action to review",
			goerr.V(StatusKey, c.Status))
	}
	c.AppropriatenessReview = &r
	return nil
}

// RecordFollowUp records the follow-up and derives the case status from it
func (c *CAPA) RecordFollowUp(f FollowUp) {
	f.Status = f.Action.StageStatus()
	c.FollowUp = &f
	c.Status = f.Action.CAPAStatus()
}

// RecordEffectiveness records the effectiveness verdict. YES verifies the
// case; NO re-opens it and archives the finished cycle into History.
func (c *CAPA) RecordEffectiveness(e Effectiveness) {
	if e.Response == types.ReviewResponseYes {
		e.Status = types.StageStatusClosed
		c.Effectiveness = &e
		c.Status = types.CAPAStatusVerified
		return
	}

	e.Status = types.StageStatusOpen
	c.Effectiveness = &e
	c.Status = types.CAPAStatusInProgress
	if c.ProposedAction == nil && c.AppropriatenessReview == nil && c.FollowUp == nil {
		return
	}
	c.History = append(c.History, RemediationCycle{
		ProposedAction:        c.ProposedAction,
		AppropriatenessReview: c.AppropriatenessReview,
		FollowUp:              c.FollowUp,
		Effectiveness:         c.Effectiveness,
		ClosedAt:              e.ReviewedAt,
	})
}

// MarkMRNotified flags that the management representative was escalated to
func (c *CAPA) MarkMRNotified() {
	c.MRNotified = true
}

// RequirementInput is the auditor's requirement submission
type RequirementInput struct {
	Area        string
	Requirement string
	Category    string
}

// Validate checks required requirement fields
func (x RequirementInput) Validate() error {
	if strings.TrimSpace(x.Requirement) == "" {
		return goerr.Wrap(ErrMissingRequired, "requirement is required", goerr.V(FieldKey, "requirement"))
	}
	if strings.TrimSpace(x.Area) == "" {
		return goerr.Wrap(ErrMissingRequired, "area is required", goerr.V(FieldKey, "area"))
	}
	return nil
}

// ProposedActionInput is the department head's remediation plan submission
type ProposedActionInput struct {
	RootCause            string
	Correction           string
	Action               string
	TargetCompletionDate time.Time
	Auditee              string
}

// Validate checks required proposed action fields
func (x ProposedActionInput) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"root_cause", x.RootCause},
		{"correction", x.Correction},
		{"action", x.Action},
		{"auditee", x.Auditee},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return goerr.Wrap(ErrMissingRequired, "proposed action field is required", goerr.V(FieldKey, r.name))
		}
	}
	if x.TargetCompletionDate.IsZero() {
		return goerr.Wrap(ErrMissingRequired, "target completion date is required",
			goerr.V(FieldKey, "target_completion_date"))
	}
	return nil
}

// ReviewInput is the auditor's appropriateness review submission.
// Commit asks for the department head to be notified of the review.
type ReviewInput struct {
	Response types.ReviewResponse
	Comment  string
	Commit   bool
}

// Validate checks the response and the comment required on rejection
func (x ReviewInput) Validate() error {
	if !x.Response.IsValid() {
		return goerr.Wrap(ErrInvalidValue, "response must be YES or NO",
			goerr.V(FieldKey, "response"), goerr.V(ValueKey, x.Response))
	}
	if x.Response == types.ReviewResponseNo && strings.TrimSpace(x.Comment) == "" {
		return goerr.Wrap(ErrMissingRequired, "comment is required when response is NO",
			goerr.V(FieldKey, "comment"))
	}
	return nil
}

// EffectivenessInput is the auditor's effectiveness verdict submission
type EffectivenessInput struct {
	Response types.ReviewResponse
	Details  string
}

// Validate checks the response and the always-required details
func (x EffectivenessInput) Validate() error {
	if !x.Response.IsValid() {
		return goerr.Wrap(ErrInvalidValue, "response must be YES or NO",
			goerr.V(FieldKey, "response"), goerr.V(ValueKey, x.Response))
	}
	if strings.TrimSpace(x.Details) == "" {
		return goerr.Wrap(ErrMissingRequired, "details are required", goerr.V(FieldKey, "details"))
	}
	return nil
}
