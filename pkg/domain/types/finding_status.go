package types

import "fmt"

// FindingStatus represents the status of an audit finding
type FindingStatus string

const (
	FindingStatusOpen        FindingStatus = "OPEN"
	FindingStatusCategorized FindingStatus = "CATEGORIZED"
	FindingStatusArchived    FindingStatus = "ARCHIVED"
)

// IsValid checks if the finding status is valid
func (s FindingStatus) IsValid() bool {
	switch s {
	case FindingStatusOpen,
		FindingStatusCategorized,
		FindingStatusArchived:
		return true
	default:
		return false
	}
}

// Normalize returns the status, treating empty as FindingStatusOpen.
func (s FindingStatus) Normalize() FindingStatus {
	if s == "" {
		return FindingStatusOpen
	}
	return s
}

// String returns the string representation of the finding status
func (s FindingStatus) String() string {
	return string(s)
}

// ParseFindingStatus parses a string into a FindingStatus
func ParseFindingStatus(s string) (FindingStatus, error) {
	status := FindingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid finding status: %s", s)
	}
	return status, nil
}
