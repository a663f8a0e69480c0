package types

import "fmt"

// CAPAKind distinguishes corrective actions from preventive actions
type CAPAKind string

const (
	CAPAKindCorrective CAPAKind = "CORRECTIVE"
	CAPAKindPreventive CAPAKind = "PREVENTIVE"
)

// IsValid checks if the CAPA kind is valid
func (k CAPAKind) IsValid() bool {
	switch k {
	case CAPAKindCorrective, CAPAKindPreventive:
		return true
	default:
		return false
	}
}

// CompanionKind returns the kind of companion record anchoring a case of this kind
func (k CAPAKind) CompanionKind() CompanionKind {
	if k == CAPAKindPreventive {
		return CompanionKindImprovementOpportunity
	}
	return CompanionKindNonConformity
}

// Label returns the human readable name of the case kind
func (k CAPAKind) Label() string {
	if k == CAPAKindPreventive {
		return "Preventive Action"
	}
	return "Corrective Action"
}

// String returns the string representation of the CAPA kind
func (k CAPAKind) String() string {
	return string(k)
}

// ParseCAPAKind parses a string into a CAPAKind
func ParseCAPAKind(s string) (CAPAKind, error) {
	k := CAPAKind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("invalid CAPA kind: %s", s)
	}
	return k, nil
}

// CompanionKind is the kind of record created alongside a categorized finding
type CompanionKind string

const (
	CompanionKindNonConformity          CompanionKind = "NON_CONFORMITY"
	CompanionKindImprovementOpportunity CompanionKind = "IMPROVEMENT_OPPORTUNITY"
)

// String returns the string representation of the companion kind
func (k CompanionKind) String() string {
	return string(k)
}
