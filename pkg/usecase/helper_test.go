package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/auditflow/pkg/domain/interfaces"
	"github.com/secmon-lab/auditflow/pkg/domain/model"
	"github.com/secmon-lab/auditflow/pkg/domain/types"
	"github.com/secmon-lab/auditflow/pkg/repository/memory"
	"github.com/secmon-lab/auditflow/pkg/usecase"
)

const (
	tenantID = "acme"

	auditorID   = model.UserID("auditor-1")
	headID      = model.UserID("head-1")
	otherHeadID = model.UserID("head-2")
	mrID        = model.UserID("mr-1")
	inactiveID  = model.UserID("former-1")
)

var fixedNow = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time {
	return fixedNow
}

// fakePusher records pushes and fails for users listed in failFor
type fakePusher struct {
	mu      sync.Mutex
	pushed  []model.UserID
	failFor map[model.UserID]bool
}

func (p *fakePusher) Push(ctx context.Context, user *model.User, n *model.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failFor[user.ID] {
		return goerr.New("websocket closed", goerr.V("user_id", user.ID))
	}
	p.pushed = append(p.pushed, user.ID)
	return nil
}

func (p *fakePusher) Pushed() []model.UserID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.UserID(nil), p.pushed...)
}

// failingNotificationStore fails durable writes for users listed in failFor
type failingNotificationStore struct {
	interfaces.NotificationRepository
	failFor map[model.UserID]bool
}

func (s *failingNotificationStore) Create(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	if s.failFor[n.TargetUserID] {
		return nil, goerr.New("firestore unavailable")
	}
	return s.NotificationRepository.Create(ctx, n)
}

// repoWithNotificationStore swaps the notification store of a repository
type repoWithNotificationStore struct {
	interfaces.Repository
	store interfaces.NotificationRepository
}

func (r *repoWithNotificationStore) Notification() interfaces.NotificationRepository {
	return r.store
}

type fixture struct {
	repo   *memory.Memory
	pusher *fakePusher
	uc     *usecase.UseCases
}

type fixtureOption func(*fixtureConfig)

type fixtureConfig struct {
	noPusher       bool
	pushFailFor    map[model.UserID]bool
	storeFailFor   map[model.UserID]bool
	noHead         bool
	noDepartment   bool
	scopedMROnly   bool
	noMR           bool
	inactiveHead   bool
	additionalOpts []usecase.Option
}

func withoutPusher() fixtureOption {
	return func(c *fixtureConfig) { c.noPusher = true }
}

func withPushFailure(ids ...model.UserID) fixtureOption {
	return func(c *fixtureConfig) {
		c.pushFailFor = make(map[model.UserID]bool)
		for _, id := range ids {
			c.pushFailFor[id] = true
		}
	}
}

func withStoreFailure(ids ...model.UserID) fixtureOption {
	return func(c *fixtureConfig) {
		c.storeFailFor = make(map[model.UserID]bool)
		for _, id := range ids {
			c.storeFailFor[id] = true
		}
	}
}

func withoutHead() fixtureOption {
	return func(c *fixtureConfig) { c.noHead = true }
}

func withInactiveHead() fixtureOption {
	return func(c *fixtureConfig) { c.inactiveHead = true }
}

func withoutDepartment() fixtureOption {
	return func(c *fixtureConfig) { c.noDepartment = true }
}

func withScopedMROnly() fixtureOption {
	return func(c *fixtureConfig) { c.scopedMROnly = true }
}

func withoutMR() fixtureOption {
	return func(c *fixtureConfig) { c.noMR = true }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	ctx := context.Background()

	cfg := &fixtureConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	repo := memory.New()
	dir := repo.Directory()

	users := []*model.User{
		{ID: auditorID, Name: "Aiko Auditor", Email: "aiko@example.com", Active: true, Roles: []string{"auditor"}},
		{ID: headID, Name: "Hana Head", Email: "hana@example.com", Active: !cfg.inactiveHead, Roles: []string{"auditee"}},
		{ID: otherHeadID, Name: "Kenji Head", Email: "kenji@example.com", Active: true},
		{ID: inactiveID, Name: "Former Staff", Active: false, Roles: []string{usecase.DefaultMRRole}},
	}
	switch {
	case cfg.noMR:
	case cfg.scopedMROnly:
		users = append(users, &model.User{
			ID: mrID, Name: "Mika MR", Active: true,
			DepartmentRoles: []model.DepartmentRole{{Department: "Quality", Role: usecase.DefaultMRRole}},
		})
	default:
		users = append(users, &model.User{ID: mrID, Name: "Mika MR", Active: true, Roles: []string{usecase.DefaultMRRole}})
	}
	for _, u := range users {
		gt.NoError(t, dir.PutUser(ctx, tenantID, u)).Required()
	}

	if !cfg.noDepartment {
		dept := &model.Department{Name: "Production", HeadID: headID}
		if cfg.noHead {
			dept.HeadID = ""
		}
		gt.NoError(t, dir.PutDepartment(ctx, tenantID, dept)).Required()
	}
	gt.NoError(t, dir.PutDepartment(ctx, tenantID, &model.Department{Name: "Logistics", HeadID: otherHeadID})).Required()

	var r interfaces.Repository = repo
	if cfg.storeFailFor != nil {
		r = &repoWithNotificationStore{
			Repository: repo,
			store:      &failingNotificationStore{NotificationRepository: repo.Notification(), failFor: cfg.storeFailFor},
		}
	}

	pusher := &fakePusher{failFor: cfg.pushFailFor}
	ucOpts := []usecase.Option{usecase.WithClock(fixedClock)}
	if !cfg.noPusher {
		ucOpts = append(ucOpts, usecase.WithPusher(pusher, "fake"))
	}
	ucOpts = append(ucOpts, cfg.additionalOpts...)

	return &fixture{
		repo:   repo,
		pusher: pusher,
		uc:     usecase.New(r, ucOpts...),
	}
}

// newCase records and categorizes a Production finding and returns its case
func (f *fixture) newCase(t *testing.T, category types.FindingCategory) *model.CAPA {
	t.Helper()
	ctx := context.Background()

	finding, err := f.uc.Finding.CreateFinding(ctx, tenantID, usecase.FindingInput{
		AuditID:     "audit-2026-q3",
		Department:  "Production",
		Title:       "Calibration records missing",
		Description: "Two torque wrenches have no 2026 calibration record",
	}, auditorID)
	gt.NoError(t, err).Required()

	result, err := f.uc.Finding.CategorizeFinding(ctx, tenantID, finding.ID, category, auditorID)
	gt.NoError(t, err).Required()
	gt.Value(t, result.CAPA).NotNil().Required()
	return result.CAPA
}

func validRequirement() model.RequirementInput {
	return model.RequirementInput{
		Area:        "Maintenance",
		Requirement: "ISO 9001:2015 7.1.5 Monitoring and measuring resources",
		Category:    "Major",
	}
}

func validProposal() model.ProposedActionInput {
	return model.ProposedActionInput{
		RootCause:            "Calibration schedule not maintained after staff change",
		Correction:           "Calibrate both wrenches",
		Action:               "Add calibration to the CMMS preventive maintenance plan",
		TargetCompletionDate: fixedNow.AddDate(0, 1, 0),
		Auditee:              "Hana Head",
	}
}
