package http

import (
	"time"

	"github.com/secmon-lab/auditflow/pkg/domain/model"
	"github.com/secmon-lab/auditflow/pkg/usecase"
)

type findingResponse struct {
	ID          string    `json:"id"`
	AuditID     string    `json:"audit_id,omitempty"`
	Department  string    `json:"department"`
	Category    string    `json:"category,omitempty"`
	Status      string    `json:"status"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CAPAID      string    `json:"capa_id,omitempty"`
	CreatedByID string    `json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toFindingResponse(f *model.Finding) *findingResponse {
	resp := &findingResponse{
		ID:          string(f.ID),
		AuditID:     f.AuditID,
		Department:  f.Department,
		Status:      f.Status.Normalize().String(),
		Title:       f.Title,
		Description: f.Description,
		CAPAID:      f.CAPAID.String(),
		CreatedByID: f.CreatedByID.String(),
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
	if f.Category != nil {
		resp.Category = f.Category.String()
	}
	return resp
}

type companionResponse struct {
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type requirementResponse struct {
	Area          string    `json:"area"`
	Requirement   string    `json:"requirement"`
	Category      string    `json:"category,omitempty"`
	CommittedByID string    `json:"committed_by_id"`
	CommittedBy   string    `json:"committed_by"`
	CommittedAt   time.Time `json:"committed_at"`
}

type proposedActionResponse struct {
	RootCause            string    `json:"root_cause"`
	Correction           string    `json:"correction"`
	Action               string    `json:"action"`
	TargetCompletionDate time.Time `json:"target_completion_date"`
	Auditee              string    `json:"auditee"`
	SubmittedByID        string    `json:"submitted_by_id"`
	SubmittedAt          time.Time `json:"submitted_at"`
}

type reviewResponse struct {
	ReviewerID  string    `json:"reviewer_id"`
	Response    string    `json:"response"`
	Comment     string    `json:"comment,omitempty"`
	RespondedAt time.Time `json:"responded_at"`
}

type followUpResponse struct {
	Action      string    `json:"action"`
	Status      string    `json:"status"`
	UpdatedByID string    `json:"updated_by_id"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type effectivenessResponse struct {
	Response   string    `json:"response"`
	Details    string    `json:"details"`
	Status     string    `json:"status"`
	ReviewerID string    `json:"reviewer_id"`
	ReviewedAt time.Time `json:"reviewed_at"`
}

type remediationCycleResponse struct {
	ProposedAction        *proposedActionResponse `json:"proposed_action,omitempty"`
	AppropriatenessReview *reviewResponse         `json:"appropriateness_review,omitempty"`
	FollowUp              *followUpResponse       `json:"follow_up,omitempty"`
	Effectiveness         *effectivenessResponse  `json:"effectiveness,omitempty"`
	ClosedAt              time.Time               `json:"closed_at"`
}

type capaResponse struct {
	ID                    string                     `json:"id"`
	Kind                  string                     `json:"kind"`
	FindingID             string                     `json:"finding_id"`
	AuditID               string                     `json:"audit_id,omitempty"`
	Department            string                     `json:"department"`
	Companion             companionResponse          `json:"companion"`
	CreatedByID           string                     `json:"created_by_id"`
	AssignedToID          string                     `json:"assigned_to_id,omitempty"`
	Status                string                     `json:"status"`
	Requirement           *requirementResponse       `json:"requirement,omitempty"`
	ProposedAction        *proposedActionResponse    `json:"proposed_action,omitempty"`
	AppropriatenessReview *reviewResponse            `json:"appropriateness_review,omitempty"`
	FollowUp              *followUpResponse          `json:"follow_up,omitempty"`
	Effectiveness         *effectivenessResponse     `json:"effectiveness,omitempty"`
	MRNotified            bool                       `json:"mr_notified"`
	History               []remediationCycleResponse `json:"history,omitempty"`
	CreatedAt             time.Time                  `json:"created_at"`
	UpdatedAt             time.Time                  `json:"updated_at"`
}

func toCAPAResponse(c *model.CAPA) *capaResponse {
	if c == nil {
		return nil
	}
	resp := &capaResponse{
		ID:         c.ID.String(),
		Kind:       c.Kind.String(),
		FindingID:  string(c.FindingID),
		AuditID:    c.AuditID,
		Department: c.Department,
		Companion: companionResponse{
			Kind:        c.Companion.Kind.String(),
			Title:       c.Companion.Title,
			Description: c.Companion.Description,
		},
		CreatedByID:           c.CreatedByID.String(),
		AssignedToID:          c.AssignedToID.String(),
		Status:                c.Status.Normalize().String(),
		ProposedAction:        toProposedActionResponse(c.ProposedAction),
		AppropriatenessReview: toReviewResponse(c.AppropriatenessReview),
		FollowUp:              toFollowUpResponse(c.FollowUp),
		Effectiveness:         toEffectivenessResponse(c.Effectiveness),
		MRNotified:            c.MRNotified,
		CreatedAt:             c.CreatedAt,
		UpdatedAt:             c.UpdatedAt,
	}
	if r := c.Requirement; r != nil {
		resp.Requirement = &requirementResponse{
			Area:          r.Area,
			Requirement:   r.Requirement,
			Category:      r.Category,
			CommittedByID: r.CommittedByID.String(),
			CommittedBy:   r.CommittedBy,
			CommittedAt:   r.CommittedAt,
		}
	}
	for _, h := range c.History {
		resp.History = append(resp.History, remediationCycleResponse{
			ProposedAction:        toProposedActionResponse(h.ProposedAction),
			AppropriatenessReview: toReviewResponse(h.AppropriatenessReview),
			FollowUp:              toFollowUpResponse(h.FollowUp),
			Effectiveness:         toEffectivenessResponse(h.Effectiveness),
			ClosedAt:              h.ClosedAt,
		})
	}
	return resp
}

func toProposedActionResponse(p *model.ProposedAction) *proposedActionResponse {
	if p == nil {
		return nil
	}
	return &proposedActionResponse{
		RootCause:            p.RootCause,
		Correction:           p.Correction,
		Action:               p.Action,
		TargetCompletionDate: p.TargetCompletionDate,
		Auditee:              p.Auditee,
		SubmittedByID:        p.SubmittedByID.String(),
		SubmittedAt:          p.SubmittedAt,
	}
}

func toReviewResponse(r *model.AppropriatenessReview) *reviewResponse {
	if r == nil {
		return nil
	}
	return &reviewResponse{
		ReviewerID:  r.ReviewerID.String(),
		Response:    r.Response.String(),
		Comment:     r.Comment,
		RespondedAt: r.RespondedAt,
	}
}

func toFollowUpResponse(f *model.FollowUp) *followUpResponse {
	if f == nil {
		return nil
	}
	return &followUpResponse{
		Action:      f.Action.String(),
		Status:      f.Status.String(),
		UpdatedByID: f.UpdatedByID.String(),
		UpdatedAt:   f.UpdatedAt,
	}
}

func toEffectivenessResponse(e *model.Effectiveness) *effectivenessResponse {
	if e == nil {
		return nil
	}
	return &effectivenessResponse{
		Response:   e.Response.String(),
		Details:    e.Details,
		Status:     e.Status.String(),
		ReviewerID: e.ReviewerID.String(),
		ReviewedAt: e.ReviewedAt,
	}
}

type outcomeResponse struct {
	Recipient      string `json:"recipient,omitempty"`
	RecipientName  string `json:"recipient_name,omitempty"`
	Status         string `json:"status"`
	NotificationID string `json:"notification_id,omitempty"`
	Reason         string `json:"reason,omitempty"`
}

type dispatchResponse struct {
	Total                      int               `json:"total"`
	Successful                 int               `json:"successful"`
	PartialSuccess             int               `json:"partial_success"`
	Failed                     int               `json:"failed"`
	HasSuccessfulNotifications bool              `json:"has_successful_notifications"`
	Outcomes                   []outcomeResponse `json:"outcomes"`
}

func toDispatchResponse(s *model.DispatchSummary) *dispatchResponse {
	if s == nil {
		return nil
	}
	resp := &dispatchResponse{
		Total:                      s.Total,
		Successful:                 s.Successful,
		PartialSuccess:             s.PartialSuccess,
		Failed:                     s.Failed,
		HasSuccessfulNotifications: s.HasSuccessfulNotifications,
		Outcomes:                   make([]outcomeResponse, len(s.Outcomes)),
	}
	for i, o := range s.Outcomes {
		resp.Outcomes[i] = outcomeResponse{
			Recipient:      o.Recipient.String(),
			RecipientName:  o.RecipientName,
			Status:         o.Status.String(),
			NotificationID: string(o.NotificationID),
			Reason:         o.Reason,
		}
	}
	return resp
}

// transitionResponse is the body of every workflow transition
type transitionResponse struct {
	Status   string            `json:"status"`
	CAPA     *capaResponse     `json:"capa,omitempty"`
	Dispatch *dispatchResponse `json:"dispatch,omitempty"`
	Hint     string            `json:"hint,omitempty"`
}

type categorizeResponse struct {
	Finding *findingResponse `json:"finding"`
	CAPA    *capaResponse    `json:"capa,omitempty"`
}

func toCategorizeResponse(r *usecase.CategorizeResult) *categorizeResponse {
	return &categorizeResponse{
		Finding: toFindingResponse(r.Finding),
		CAPA:    toCAPAResponse(r.CAPA),
	}
}

type notificationResponse struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Link      string            `json:"link,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Read      bool              `json:"read"`
	ReadAt    *time.Time        `json:"read_at,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

func toNotificationResponse(n *model.Notification) *notificationResponse {
	return &notificationResponse{
		ID:        string(n.ID),
		Type:      n.Type.String(),
		Title:     n.Title,
		Message:   n.Message,
		Link:      n.Link,
		Metadata:  n.Metadata,
		Read:      n.IsRead(),
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}
