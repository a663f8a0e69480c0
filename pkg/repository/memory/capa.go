package memory

import (
	"context"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/auditflow/pkg/domain/interfaces"
	"github.com/secmon-lab/auditflow/pkg/domain/model"
)

type capaRepository struct {
	store *caseStore
}

func (r *capaRepository) Get(ctx context.Context, tenantID string, id model.CAPAID) (*model.CAPA, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	c, exists := r.store.capas[tenantID][id]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "case not found", goerr.V("id", id))
	}

	return copyCAPA(c), nil
}

func (r *capaRepository) List(ctx context.Context, tenantID string, opts ...interfaces.ListCAPAOption) ([]*model.CAPA, error) {
	cfg := interfaces.BuildListCAPAConfig(opts...)

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	ws := r.store.capas[tenantID]
	capas := make([]*model.CAPA, 0, len(ws))
	for _, c := range ws {
		if s := cfg.Status(); s != nil && c.Status != *s {
			continue
		}
		if k := cfg.Kind(); k != nil && c.Kind != *k {
			continue
		}
		capas = append(capas, copyCAPA(c))
	}

	sort.Slice(capas, func(i, j int) bool {
		return capas[i].CreatedAt.Before(capas[j].CreatedAt)
	})

	return capas, nil
}

func (r *capaRepository) Update(ctx context.Context, tenantID string, id model.CAPAID, fn interfaces.UpdateCAPAFunc) (*model.CAPA, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, exists := r.store.capas[tenantID][id]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "case not found", goerr.V("id", id))
	}

	updated := copyCAPA(existing)
	if err := fn(updated); err != nil {
		return nil, err
	}

	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	r.store.capas[tenantID][id] = updated

	return copyCAPA(updated), nil
}
