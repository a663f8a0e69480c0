package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/auditflow/pkg/domain/interfaces"
	"github.com/secmon-lab/auditflow/pkg/domain/model"
	"github.com/secmon-lab/auditflow/pkg/domain/types"
	"github.com/secmon-lab/auditflow/pkg/repository/firestore"
	"github.com/secmon-lab/auditflow/pkg/repository/memory"
)

type repoFactory func(t *testing.T) interfaces.Repository

func newMemoryRepository(t *testing.T) interfaces.Repository {
	return memory.New()
}

func newFirestoreRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("FIRESTORE_PROJECT_ID not set")
	}
	databaseID := os.Getenv("FIRESTORE_DATABASE_ID")

	repo, err := firestore.New(context.Background(), projectID, databaseID,
		firestore.WithCollectionPrefix("test"))
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

// newTenantID isolates each test in its own tenant so that shared backends
// do not leak state between runs.
func newTenantID() string {
	return "tenant-" + uuid.NewString()
}

func newTestFinding(department string) *model.Finding {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &model.Finding{
		ID:          model.NewFindingID(),
		AuditID:     "audit-2026-q3",
		Department:  department,
		Status:      types.FindingStatusOpen,
		Title:       "Calibration records missing",
		Description: "Two torque wrenches have no calibration record for 2026",
		CreatedByID: "auditor-1",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// categorizeAs returns a CategorizeFunc applying the category and creating
// the matching case when one is required.
func categorizeAs(category types.FindingCategory) interfaces.CategorizeFunc {
	return func(f *model.Finding) (*model.CAPA, error) {
		f.Category = &category
		f.Status = types.FindingStatusCategorized

		kind, ok := category.CAPAKind()
		if !ok {
			return nil, nil
		}
		capa := model.NewCAPA(kind, f, "auditor-1")
		capa.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
		capa.UpdatedAt = capa.CreatedAt
		f.CAPAID = capa.ID
		return capa, nil
	}
}
