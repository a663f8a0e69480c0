package types

import "fmt"

// CAPAStatus represents the lifecycle status of a CAPA case
type CAPAStatus string

const (
	CAPAStatusOpen       CAPAStatus = "OPEN"
	CAPAStatusInProgress CAPAStatus = "IN_PROGRESS"
	CAPAStatusCompleted  CAPAStatus = "COMPLETED"
	CAPAStatusVerified   CAPAStatus = "VERIFIED"
)

// AllCAPAStatuses returns all valid CAPA statuses
func AllCAPAStatuses() []CAPAStatus {
	return []CAPAStatus{
		CAPAStatusOpen,
		CAPAStatusInProgress,
		CAPAStatusCompleted,
		CAPAStatusVerified,
	}
}

// IsValid checks if the CAPA status is valid
func (s CAPAStatus) IsValid() bool {
	switch s {
	case CAPAStatusOpen,
		CAPAStatusInProgress,
		CAPAStatusCompleted,
		CAPAStatusVerified:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the case has been verified as effective
func (s CAPAStatus) IsTerminal() bool {
	return s == CAPAStatusVerified
}

// Normalize returns the status, treating empty as CAPAStatusOpen.
func (s CAPAStatus) Normalize() CAPAStatus {
	if s == "" {
		return CAPAStatusOpen
	}
	return s
}

// String returns the string representation of the CAPA status
func (s CAPAStatus) String() string {
	return string(s)
}

// ParseCAPAStatus parses a string into a CAPAStatus
func ParseCAPAStatus(s string) (CAPAStatus, error) {
	status := CAPAStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid CAPA status: %s", s)
	}
	return status, nil
}
