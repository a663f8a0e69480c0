package types

import "fmt"

// FindingCategory represents the classification of an audit finding
type FindingCategory string

const (
	FindingCategoryCompliance    FindingCategory = "COMPLIANCE"
	FindingCategoryImprovement   FindingCategory = "IMPROVEMENT"
	FindingCategoryNonConformity FindingCategory = "NON_CONFORMITY"
)

// AllFindingCategories returns all valid finding categories
func AllFindingCategories() []FindingCategory {
	return []FindingCategory{
		FindingCategoryCompliance,
		FindingCategoryImprovement,
		FindingCategoryNonConformity,
	}
}

// IsValid checks if the finding category is valid
func (c FindingCategory) IsValid() bool {
	switch c {
	case FindingCategoryCompliance,
		FindingCategoryImprovement,
		FindingCategoryNonConformity:
		return true
	default:
		return false
	}
}

// RequiresCAPA reports whether a finding of this category must be anchored by a CAPA case
func (c FindingCategory) RequiresCAPA() bool {
	return c == FindingCategoryImprovement || c == FindingCategoryNonConformity
}

// CAPAKind returns the kind of CAPA case a finding of this category anchors.
// The second value is false for categories that do not require a case.
func (c FindingCategory) CAPAKind() (CAPAKind, bool) {
	switch c {
	case FindingCategoryNonConformity:
		return CAPAKindCorrective, true
	case FindingCategoryImprovement:
		return CAPAKindPreventive, true
	default:
		return "", false
	}
}

// String returns the string representation of the finding category
func (c FindingCategory) String() string {
	return string(c)
}

// ParseFindingCategory parses a string into a FindingCategory
func ParseFindingCategory(s string) (FindingCategory, error) {
	c := FindingCategory(s)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid finding category: %s", s)
	}
	return c, nil
}
