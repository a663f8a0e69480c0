package model

import "github.com/secmon-lab/auditflow/pkg/domain/types"

// HintCheckDepartmentConfiguration is returned when nobody could be told about a transition
const HintCheckDepartmentConfiguration = "No notification could be delivered; check department configuration"

// DispatchOutcome is the delivery result for one recipient of one transition
type DispatchOutcome struct {
	Recipient      UserID // empty when the recipient could not be resolved
	RecipientName  string
	Status         types.DispatchStatus
	NotificationID NotificationID // set when the durable record was created
	Reason         string
}

// DispatchSummary aggregates the outcomes of one transition
type DispatchSummary struct {
	Total                      int
	Successful                 int
	PartialSuccess             int
	Failed                     int
	HasSuccessfulNotifications bool
	Outcomes                   []DispatchOutcome
}

// Summarize folds per-recipient outcomes into a summary
func Summarize(outcomes []DispatchOutcome) *DispatchSummary {
	s := &DispatchSummary{
		Total:    len(outcomes),
		Outcomes: outcomes,
	}
	for _, o := range outcomes {
		switch o.Status {
		case types.DispatchStatusSuccess:
			s.Successful++
		case types.DispatchStatusPartialSuccess:
			s.PartialSuccess++
		default:
			s.Failed++
		}
	}
	s.HasSuccessfulNotifications = s.Successful+s.PartialSuccess > 0
	return s
}

// Verdict returns the caller-visible status of the transition and an
// optional corrective hint. A nil summary means nothing was dispatched.
func (s *DispatchSummary) Verdict() (types.ResponseStatus, string) {
	if s == nil {
		return types.ResponseStatusSuccess, ""
	}
	if !s.HasSuccessfulNotifications {
		return types.ResponseStatusMultiStatus, HintCheckDepartmentConfiguration
	}
	if s.Failed > 0 {
		return types.ResponseStatusMultiStatus, ""
	}
	return types.ResponseStatusSuccess, ""
}
