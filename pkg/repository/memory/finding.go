package memory

import (
	"context"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/auditflow/pkg/domain/interfaces"
	"github.com/secmon-lab/auditflow/pkg/domain/model"
)

type findingRepository struct {
	store *caseStore
}

func (r *findingRepository) Create(ctx context.Context, tenantID string, f *model.Finding) (*model.Finding, error) {
	if f.ID == "" {
		return nil, goerr.New("finding ID is required")
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.ensureTenant(tenantID)
	if _, exists := r.store.findings[tenantID][f.ID]; exists {
		return nil, goerr.Wrap(interfaces.ErrAlreadyExists, "finding already exists", goerr.V("id", f.ID))
	}

	created := copyFinding(f)
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	if created.UpdatedAt.IsZero() {
		created.UpdatedAt = created.CreatedAt
	}

	r.store.findings[tenantID][created.ID] = created
	return copyFinding(created), nil
}

func (r *findingRepository) Get(ctx context.Context, tenantID string, id model.FindingID) (*model.Finding, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	f, exists := r.store.findings[tenantID][id]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "finding not found", goerr.V("id", id))
	}

	return copyFinding(f), nil
}

func (r *findingRepository) List(ctx context.Context, tenantID string) ([]*model.Finding, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	ws := r.store.findings[tenantID]
	findings := make([]*model.Finding, 0, len(ws))
	for _, f := range ws {
		findings = append(findings, copyFinding(f))
	}

	sort.Slice(findings, func(i, j int) bool {
		return findings[i].CreatedAt.Before(findings[j].CreatedAt)
	})

	return findings, nil
}

func (r *findingRepository) Categorize(ctx context.Context, tenantID string, id model.FindingID, fn interfaces.CategorizeFunc) (*model.Finding, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, exists := r.store.findings[tenantID][id]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "finding not found", goerr.V("id", id))
	}

	updated := copyFinding(existing)
	capa, err := fn(updated)
	if err != nil {
		return nil, err
	}

	if capa != nil {
		if _, exists := r.store.capas[tenantID][capa.ID]; exists {
			return nil, goerr.Wrap(interfaces.ErrAlreadyExists, "case already exists",
				goerr.V("capa_id", capa.ID), goerr.V("finding_id", id))
		}
		r.store.capas[tenantID][capa.ID] = copyCAPA(capa)
	}

	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	r.store.findings[tenantID][id] = updated

	return copyFinding(updated), nil
}
