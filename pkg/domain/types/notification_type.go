package types

// NotificationType identifies why a notification was sent
type NotificationType string

const (
	NotificationTypeRequirementCommitted NotificationType = "CAPA_REQUIREMENT_COMMITTED"
	NotificationTypeActionProposed       NotificationType = "CAPA_ACTION_PROPOSED"
	NotificationTypeReviewCommitted      NotificationType = "CAPA_REVIEW_COMMITTED"
	NotificationTypeMREscalation         NotificationType = "CAPA_MR_ESCALATION"
)

// IsValid checks if the notification type is valid
func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationTypeRequirementCommitted,
		NotificationTypeActionProposed,
		NotificationTypeReviewCommitted,
		NotificationTypeMREscalation:
		return true
	default:
		return false
	}
}

// String returns the string representation of the notification type
func (t NotificationType) String() string {
	return string(t)
}
