package types

import "fmt"

// ReviewResponse is the YES/NO answer of an auditor review
type ReviewResponse string

const (
	ReviewResponseYes ReviewResponse = "YES"
	ReviewResponseNo  ReviewResponse = "NO"
)

// IsValid checks if the review response is valid
func (r ReviewResponse) IsValid() bool {
	return r == ReviewResponseYes || r == ReviewResponseNo
}

// String returns the string representation of the review response
func (r ReviewResponse) String() string {
	return string(r)
}

// ParseReviewResponse parses a string into a ReviewResponse
func ParseReviewResponse(s string) (ReviewResponse, error) {
	r := ReviewResponse(s)
	if !r.IsValid() {
		return "", fmt.Errorf("invalid review response: %s", s)
	}
	return r, nil
}
