package types

// DispatchStatus is the delivery outcome of one notification to one recipient
type DispatchStatus string

const (
	// DispatchStatusSuccess means the durable record and the realtime push both succeeded
	DispatchStatusSuccess DispatchStatus = "SUCCESS"
	// DispatchStatusPartialSuccess means the durable record exists but the push failed or was unavailable
	DispatchStatusPartialSuccess DispatchStatus = "PARTIAL_SUCCESS"
	// DispatchStatusFailed means no durable record was created
	DispatchStatusFailed DispatchStatus = "FAILED"
)

// IsValid checks if the dispatch status is valid
func (s DispatchStatus) IsValid() bool {
	switch s {
	case DispatchStatusSuccess,
		DispatchStatusPartialSuccess,
		DispatchStatusFailed:
		return true
	default:
		return false
	}
}

// Delivered reports whether the recipient can see the notification
func (s DispatchStatus) Delivered() bool {
	return s == DispatchStatusSuccess || s == DispatchStatusPartialSuccess
}

// String returns the string representation of the dispatch status
func (s DispatchStatus) String() string {
	return string(s)
}

// ResponseStatus is the caller-visible classification of a workflow transition
type ResponseStatus string

const (
	ResponseStatusSuccess     ResponseStatus = "SUCCESS"
	ResponseStatusMultiStatus ResponseStatus = "MULTI_STATUS"
)

// String returns the string representation of the response status
func (s ResponseStatus) String() string {
	return string(s)
}
