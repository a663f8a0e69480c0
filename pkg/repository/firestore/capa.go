package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/auditflow/pkg/domain/interfaces"
	"github.com/secmon-lab/auditflow/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type capaRepository struct {
	client *firestore.Client
	paths  *paths
}

func (r *capaRepository) capasCollection(tenantID string) *firestore.CollectionRef {
	return r.paths.collection(tenantID, CollectionCAPAs)
}

func (r *capaRepository) Get(ctx context.Context, tenantID string, id model.CAPAID) (*model.CAPA, error) {
	doc, err := r.capasCollection(tenantID).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "case not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get case", goerr.V("id", id))
	}

	var c model.CAPA
	if err := doc.DataTo(&c); err != nil {
		return nil, goerr.Wrap(err, "failed to decode case", goerr.V("id", id))
	}
	return &c, nil
}

func (r *capaRepository) List(ctx context.Context, tenantID string, opts ...interfaces.ListCAPAOption) ([]*model.CAPA, error) {
	cfg := interfaces.BuildListCAPAConfig(opts...)

	query := r.capasCollection(tenantID).Query
	if s := cfg.Status(); s != nil {
		query = query.Where("Status", "==", s.String())
	}
	if k := cfg.Kind(); k != nil {
		query = query.Where("Kind", "==", k.String())
	}

	iter := query.OrderBy("CreatedAt", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	capas := make([]*model.CAPA, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate cases")
		}

		var c model.CAPA
		if err := doc.DataTo(&c); err != nil {
			return nil, goerr.Wrap(err, "failed to decode case", goerr.V("doc_id", doc.Ref.ID))
		}
		capas = append(capas, &c)
	}

	return capas, nil
}

func (r *capaRepository) Update(ctx context.Context, tenantID string, id model.CAPAID, fn interfaces.UpdateCAPAFunc) (*model.CAPA, error) {
	docRef := r.capasCollection(tenantID).Doc(string(id))

	var result *model.CAPA
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(interfaces.ErrNotFound, "case not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get case", goerr.V("id", id))
		}

		var c model.CAPA
		if err := doc.DataTo(&c); err != nil {
			return goerr.Wrap(err, "failed to decode case", goerr.V("id", id))
		}
		createdAt := c.CreatedAt

		if err := fn(&c); err != nil {
			return err
		}
		c.ID = id
		c.CreatedAt = createdAt

		if err := tx.Set(docRef, &c); err != nil {
			return goerr.Wrap(err, "failed to update case", goerr.V("id", id))
		}

		result = &c
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
