package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/auditflow/pkg/domain/model"
	"github.com/secmon-lab/auditflow/pkg/domain/types"
	"github.com/secmon-lab/auditflow/pkg/repository/memory"
	"github.com/secmon-lab/auditflow/pkg/usecase"
)

type panickingPusher struct{}

func (panickingPusher) Push(ctx context.Context, user *model.User, n *model.Notification) error {
	panic("connection table corrupted")
}

func TestDispatcher_MixedOutcomes(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	store := &failingNotificationStore{
		NotificationRepository: repo.Notification(),
		failFor:                map[model.UserID]bool{"u-store": true},
	}
	pusher := &fakePusher{failFor: map[model.UserID]bool{"u-push": true}}

	d := usecase.NewDispatcher(store,
		usecase.WithDispatchPusher(pusher, "fake"),
		usecase.WithDispatchClock(fixedClock),
		usecase.WithConcurrency(2),
	)

	targets := []usecase.Target{
		{User: &model.User{ID: "u-ok", Name: "OK", Active: true}},
		{User: &model.User{ID: "u-push", Name: "Push", Active: true}},
		{User: &model.User{ID: "u-store", Name: "Store", Active: true}},
		{Err: goerr.Wrap(usecase.ErrNoResponsibleParty, "department has no head")},
	}

	summary := d.Dispatch(ctx, tenantID, usecase.Message{
		Type:    types.NotificationTypeRequirementCommitted,
		Title:   "Corrective Action requirement committed",
		Message: "Please submit a proposed action.",
		Link:    "/capas/capa-1",
	}, targets)

	gt.Number(t, summary.Total).Equal(4)
	gt.Number(t, summary.Successful).Equal(1)
	gt.Number(t, summary.PartialSuccess).Equal(1)
	gt.Number(t, summary.Failed).Equal(2)
	gt.Bool(t, summary.HasSuccessfulNotifications).True()

	gt.A(t, summary.Outcomes).Length(4).Required()
	gt.Value(t, summary.Outcomes[0].Recipient).Equal(model.UserID("u-ok"))
	gt.Value(t, summary.Outcomes[0].Status).Equal(types.DispatchStatusSuccess)
	gt.Value(t, summary.Outcomes[1].Status).Equal(types.DispatchStatusPartialSuccess)
	gt.Value(t, summary.Outcomes[1].NotificationID).NotEqual(model.NotificationID(""))
	gt.Value(t, summary.Outcomes[2].Status).Equal(types.DispatchStatusFailed)
	gt.Value(t, summary.Outcomes[3].Status).Equal(types.DispatchStatusFailed)
	gt.Value(t, summary.Outcomes[3].Recipient).Equal(model.UserID(""))

	status, hint := summary.Verdict()
	gt.Value(t, status).Equal(types.ResponseStatusMultiStatus)
	gt.S(t, hint).Equal("")

	stored, err := repo.Notification().ListByUser(ctx, tenantID, "u-push", 10)
	gt.NoError(t, err).Required()
	gt.A(t, stored).Length(1).Required()
	gt.Value(t, stored[0].CreatedAt).Equal(fixedNow)

	missing, err := repo.Notification().ListByUser(ctx, tenantID, "u-store", 10)
	gt.NoError(t, err).Required()
	gt.A(t, missing).Length(0)
}

func TestDispatcher_Empty(t *testing.T) {
	d := usecase.NewDispatcher(memory.New().Notification())

	summary := d.Dispatch(context.Background(), tenantID, usecase.Message{Type: types.NotificationTypeMREscalation}, nil)
	gt.Number(t, summary.Total).Equal(0)
	gt.Bool(t, summary.HasSuccessfulNotifications).False()

	status, hint := summary.Verdict()
	gt.Value(t, status).Equal(types.ResponseStatusMultiStatus)
	gt.S(t, hint).Equal(model.HintCheckDepartmentConfiguration)
}

func TestDispatcher_PusherPanic(t *testing.T) {
	d := usecase.NewDispatcher(memory.New().Notification(),
		usecase.WithDispatchPusher(panickingPusher{}, "broken"),
	)

	summary := d.Dispatch(context.Background(), tenantID, usecase.Message{Type: types.NotificationTypeActionProposed}, []usecase.Target{
		{User: &model.User{ID: "u-1", Active: true}},
	})
	gt.Number(t, summary.PartialSuccess).Equal(1)
	gt.Value(t, summary.Outcomes[0].Recipient).Equal(model.UserID("u-1"))
	gt.S(t, summary.Outcomes[0].Reason).Equal("panic during delivery")
}

func TestDispatcher_ManyTargets(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	pusher := &fakePusher{}
	d := usecase.NewDispatcher(repo.Notification(),
		usecase.WithDispatchPusher(pusher, "fake"),
		usecase.WithConcurrency(3),
	)

	var targets []usecase.Target
	for i := range 20 {
		targets = append(targets, usecase.Target{User: &model.User{ID: model.UserID("u-" + string(rune('a'+i))), Active: true}})
	}

	summary := d.Dispatch(ctx, tenantID, usecase.Message{Type: types.NotificationTypeMREscalation}, targets)
	gt.Number(t, summary.Successful).Equal(20)
	gt.A(t, pusher.Pushed()).Length(20)
	for i, o := range summary.Outcomes {
		gt.Value(t, o.Recipient).Equal(targets[i].User.ID)
	}
}
