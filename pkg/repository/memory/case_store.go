package memory

import (
	"sync"

	"github.com/secmon-lab/auditflow/pkg/domain/model"
)

// caseStore holds findings and cases of every tenant under a single lock
type caseStore struct {
	mu       sync.RWMutex
	findings map[string]map[model.FindingID]*model.Finding
	capas    map[string]map[model.CAPAID]*model.CAPA
}

func newCaseStore() *caseStore {
	return &caseStore{
		findings: make(map[string]map[model.FindingID]*model.Finding),
		capas:    make(map[string]map[model.CAPAID]*model.CAPA),
	}
}

func (s *caseStore) ensureTenant(tenantID string) {
	if _, exists := s.findings[tenantID]; !exists {
		s.findings[tenantID] = make(map[model.FindingID]*model.Finding)
	}
	if _, exists := s.capas[tenantID]; !exists {
		s.capas[tenantID] = make(map[model.CAPAID]*model.CAPA)
	}
}

func copyFinding(f *model.Finding) *model.Finding {
	copied := *f
	if f.Category != nil {
		category := *f.Category
		copied.Category = &category
	}
	return &copied
}

func copyCAPA(c *model.CAPA) *model.CAPA {
	copied := *c
	if c.Requirement != nil {
		v := *c.Requirement
		copied.Requirement = &v
	}
	copied.ProposedAction = copyProposedAction(c.ProposedAction)
	copied.AppropriatenessReview = copyReview(c.AppropriatenessReview)
	copied.FollowUp = copyFollowUp(c.FollowUp)
	copied.Effectiveness = copyEffectiveness(c.Effectiveness)

	if c.History != nil {
		copied.History = make([]model.RemediationCycle, len(c.History))
		for i, h := range c.History {
			copied.History[i] = model.RemediationCycle{
				ProposedAction:        copyProposedAction(h.ProposedAction),
				AppropriatenessReview: copyReview(h.AppropriatenessReview),
				FollowUp:              copyFollowUp(h.FollowUp),
				Effectiveness:         copyEffectiveness(h.Effectiveness),
				ClosedAt:              h.ClosedAt,
			}
		}
	}
	return &copied
}

func copyProposedAction(p *model.ProposedAction) *model.ProposedAction {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyReview(r *model.AppropriatenessReview) *model.AppropriatenessReview {
	if r == nil {
		return nil
	}
	v := *r
	return &v
}

func copyFollowUp(f *model.FollowUp) *model.FollowUp {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func copyEffectiveness(e *model.Effectiveness) *model.Effectiveness {
	if e == nil {
		return nil
	}
	v := *e
	return &v
}
