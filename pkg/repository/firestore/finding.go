package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/auditflow/pkg/domain/interfaces"
	"github.com/secmon-lab/auditflow/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type findingRepository struct {
	client *firestore.Client
	paths  *paths
}

func (r *findingRepository) findingsCollection(tenantID string) *firestore.CollectionRef {
	return r.paths.collection(tenantID, CollectionFindings)
}

func (r *findingRepository) Create(ctx context.Context, tenantID string, f *model.Finding) (*model.Finding, error) {
	if f.ID == "" {
		return nil, goerr.New("finding ID is required")
	}

	created := *f
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	if created.UpdatedAt.IsZero() {
		created.UpdatedAt = created.CreatedAt
	}

	docRef := r.findingsCollection(tenantID).Doc(string(created.ID))
	if _, err := docRef.Create(ctx, &created); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(interfaces.ErrAlreadyExists, "finding already exists", goerr.V("id", f.ID))
		}
		return nil, goerr.Wrap(err, "failed to create finding", goerr.V("id", f.ID))
	}

	return &created, nil
}

func (r *findingRepository) Get(ctx context.Context, tenantID string, id model.FindingID) (*model.Finding, error) {
	doc, err := r.findingsCollection(tenantID).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "finding not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get finding", goerr.V("id", id))
	}

	var f model.Finding
	if err := doc.DataTo(&f); err != nil {
		return nil, goerr.Wrap(err, "failed to decode finding", goerr.V("id", id))
	}
	return &f, nil
}

func (r *findingRepository) List(ctx context.Context, tenantID string) ([]*model.Finding, error) {
	iter := r.findingsCollection(tenantID).OrderBy("CreatedAt", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	findings := make([]*model.Finding, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate findings")
		}

		var f model.Finding
		if err := doc.DataTo(&f); err != nil {
			return nil, goerr.Wrap(err, "failed to decode finding", goerr.V("doc_id", doc.Ref.ID))
		}
		findings = append(findings, &f)
	}

	return findings, nil
}

func (r *findingRepository) Categorize(ctx context.Context, tenantID string, id model.FindingID, fn interfaces.CategorizeFunc) (*model.Finding, error) {
	findingRef := r.findingsCollection(tenantID).Doc(string(id))

	var result *model.Finding
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(findingRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(interfaces.ErrNotFound, "finding not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get finding", goerr.V("id", id))
		}

		var f model.Finding
		if err := doc.DataTo(&f); err != nil {
			return goerr.Wrap(err, "failed to decode finding", goerr.V("id", id))
		}
		createdAt := f.CreatedAt

		capa, err := fn(&f)
		if err != nil {
			return err
		}
		f.ID = id
		f.CreatedAt = createdAt

		// All reads precede writes inside a Firestore transaction
		if capa != nil {
			capaRef := r.paths.collection(tenantID, CollectionCAPAs).Doc(string(capa.ID))
			if _, err := tx.Get(capaRef); err == nil {
				return goerr.Wrap(interfaces.ErrAlreadyExists, "case already exists",
					goerr.V("capa_id", capa.ID), goerr.V("finding_id", id))
			} else if status.Code(err) != codes.NotFound {
				return goerr.Wrap(err, "failed to check case existence", goerr.V("capa_id", capa.ID))
			}

			if err := tx.Create(capaRef, capa); err != nil {
				return goerr.Wrap(err, "failed to create case", goerr.V("capa_id", capa.ID))
			}
		}

		if err := tx.Set(findingRef, &f); err != nil {
			return goerr.Wrap(err, "failed to update finding", goerr.V("id", id))
		}

		result = &f
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
