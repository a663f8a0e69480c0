package types

import "fmt"

// FollowUpAction is the auditor's assessment of remediation progress
type FollowUpAction string

const (
	FollowUpActionFullyCompleted     FollowUpAction = "ACTION_FULLY_COMPLETED"
	FollowUpActionPartiallyCompleted FollowUpAction = "ACTION_PARTIALLY_COMPLETED"
	FollowUpActionNoActionTaken      FollowUpAction = "NO_ACTION_TAKEN"
)

// AllFollowUpActions returns all valid follow-up actions
func AllFollowUpActions() []FollowUpAction {
	return []FollowUpAction{
		FollowUpActionFullyCompleted,
		FollowUpActionPartiallyCompleted,
		FollowUpActionNoActionTaken,
	}
}

// IsValid checks if the follow-up action is valid
func (a FollowUpAction) IsValid() bool {
	switch a {
	case FollowUpActionFullyCompleted,
		FollowUpActionPartiallyCompleted,
		FollowUpActionNoActionTaken:
		return true
	default:
		return false
	}
}

// CAPAStatus returns the case status implied by the follow-up action
func (a FollowUpAction) CAPAStatus() CAPAStatus {
	switch a {
	case FollowUpActionFullyCompleted:
		return CAPAStatusCompleted
	case FollowUpActionPartiallyCompleted:
		return CAPAStatusInProgress
	default:
		return CAPAStatusOpen
	}
}

// StageStatus returns the status of the follow-up stage itself
func (a FollowUpAction) StageStatus() StageStatus {
	if a == FollowUpActionFullyCompleted {
		return StageStatusClosed
	}
	return StageStatusOpen
}

// String returns the string representation of the follow-up action
func (a FollowUpAction) String() string {
	return string(a)
}

// ParseFollowUpAction parses a string into a FollowUpAction
func ParseFollowUpAction(s string) (FollowUpAction, error) {
	a := FollowUpAction(s)
	if !a.IsValid() {
		return "", fmt.Errorf("invalid follow-up action: %s", s)
	}
	return a, nil
}

// StageStatus is the derived OPEN/CLOSED status recorded on a stage record
type StageStatus string

const (
	StageStatusOpen   StageStatus = "OPEN"
	StageStatusClosed StageStatus = "CLOSED"
)

// String returns the string representation of the stage status
func (s StageStatus) String() string {
	return string(s)
}
