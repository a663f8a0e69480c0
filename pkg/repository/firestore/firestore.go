package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/auditflow/pkg/domain/interfaces"
)

// Collection names under tenants/{tenantID}
const (
	CollectionFindings      = "findings"
	CollectionCAPAs         = "capas"
	CollectionNotifications = "notifications"
	CollectionUsers         = "users"
	CollectionDepartments   = "departments"
)

type Firestore struct {
	client       *firestore.Client
	paths        *paths
	finding      *findingRepository
	capa         *capaRepository
	notification *notificationRepository
	directory    *directoryRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix isolates all documents under a prefixed root
// collection. Used by tests sharing one database.
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.paths.prefix = prefix
	}
}

// paths resolves tenant scoped collections
type paths struct {
	client *firestore.Client
	prefix string
}

// TenantRoot returns the name of the root collection holding tenant documents
func TenantRoot(prefix string) string {
	if prefix != "" {
		return prefix + "_tenants"
	}
	return "tenants"
}

// tenants/{tenantID}/{name}
func (p *paths) collection(tenantID, name string) *firestore.CollectionRef {
	return p.client.Collection(TenantRoot(p.prefix)).Doc(tenantID).Collection(name)
}

// New creates a Firestore repository. An empty databaseID selects the
// default database.
func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	p := &paths{client: client}
	f := &Firestore{
		client:       client,
		paths:        p,
		finding:      &findingRepository{client: client, paths: p},
		capa:         &capaRepository{client: client, paths: p},
		notification: &notificationRepository{client: client, paths: p},
		directory:    &directoryRepository{client: client, paths: p},
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Finding() interfaces.FindingRepository {
	return f.finding
}

func (f *Firestore) CAPA() interfaces.CAPARepository {
	return f.capa
}

func (f *Firestore) Notification() interfaces.NotificationRepository {
	return f.notification
}

func (f *Firestore) Directory() interfaces.DirectoryRepository {
	return f.directory
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
