package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/auditflow/pkg/domain/interfaces"
	"github.com/secmon-lab/auditflow/pkg/domain/model"
	"github.com/secmon-lab/auditflow/pkg/domain/types"
	"github.com/secmon-lab/auditflow/pkg/service/metrics"
	"github.com/secmon-lab/auditflow/pkg/utils/errutil"
	"github.com/secmon-lab/auditflow/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// ReasonRealtimeUnavailable is the outcome reason when no pusher is configured
const ReasonRealtimeUnavailable = "realtime push unavailable"

// Message is one logical notification addressed to every target of a dispatch
type Message struct {
	Type     types.NotificationType
	Title    string
	Message  string
	Link     string
	Metadata map[string]string
}

// Dispatcher delivers a message to each target through the durable store and
// then the realtime pusher. Failures are reported in the summary and never
// returned as errors.
type Dispatcher struct {
	store       interfaces.NotificationRepository
	pusher      interfaces.Pusher
	pushBackend string
	metrics     *metrics.Metrics
	clock       func() time.Time
	concurrency int
}

type DispatcherOption func(*Dispatcher)

func WithDispatchPusher(pusher interfaces.Pusher, backend string) DispatcherOption {
	return func(d *Dispatcher) {
		d.pusher = pusher
		d.pushBackend = backend
	}
}

func WithDispatchMetrics(m *metrics.Metrics) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

func WithDispatchClock(clock func() time.Time) DispatcherOption {
	return func(d *Dispatcher) {
		d.clock = clock
	}
}

func WithConcurrency(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.concurrency = n
		}
	}
}

func NewDispatcher(store interfaces.NotificationRepository, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		store:       store,
		clock:       func() time.Time { return time.Now().UTC() },
		concurrency: DefaultDispatchConcurrency,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch notifies every target concurrently and aggregates the outcomes in
// target order.
func (d *Dispatcher) Dispatch(ctx context.Context, tenantID string, msg Message, targets []Target) *model.DispatchSummary {
	outcomes := make([]model.DispatchOutcome, len(targets))

	var eg errgroup.Group
	eg.SetLimit(d.concurrency)
	for i, target := range targets {
		eg.Go(func() error {
			outcomes[i] = d.deliver(ctx, tenantID, msg, target)
			d.metrics.IncrementDispatchOutcome(msg.Type.String(), outcomes[i].Status.String())
			return nil
		})
	}
	_ = eg.Wait()

	summary := model.Summarize(outcomes)
	logging.From(ctx).Info("notifications dispatched",
		"type", msg.Type,
		"total", summary.Total,
		"successful", summary.Successful,
		"partial_success", summary.PartialSuccess,
		"failed", summary.Failed,
	)
	return summary
}

func (d *Dispatcher) deliver(ctx context.Context, tenantID string, msg Message, target Target) (outcome model.DispatchOutcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome.Status = types.DispatchStatusFailed
			if outcome.NotificationID != "" {
				outcome.Status = types.DispatchStatusPartialSuccess
			}
			outcome.Reason = "panic during delivery"
			logging.From(ctx).Error("panic in notification delivery", "panic", r, "recipient", outcome.Recipient)
		}
	}()

	if target.User == nil {
		reason := target.Err
		if reason == nil {
			reason = ErrNoResponsibleParty
		}
		return model.DispatchOutcome{
			Status: types.DispatchStatusFailed,
			Reason: reason.Error(),
		}
	}

	outcome = model.DispatchOutcome{
		Recipient:     target.User.ID,
		RecipientName: target.User.Name,
	}

	n := &model.Notification{
		ID:           model.NewNotificationID(),
		TenantID:     tenantID,
		Type:         msg.Type,
		Title:        msg.Title,
		Message:      msg.Message,
		TargetUserID: target.User.ID,
		Link:         msg.Link,
		Metadata:     msg.Metadata,
		CreatedAt:    d.clock(),
	}

	created, err := d.store.Create(ctx, n)
	if err != nil {
		err = goerr.Wrap(ErrDelivery, "failed to store notification",
			goerr.V(RecipientKey, target.User.ID), goerr.V("cause", err.Error()))
		_ = errutil.Handle(ctx, err, "durable notification write failed")
		outcome.Status = types.DispatchStatusFailed
		outcome.Reason = err.Error()
		return outcome
	}
	outcome.NotificationID = created.ID

	if d.pusher == nil {
		outcome.Status = types.DispatchStatusPartialSuccess
		outcome.Reason = ReasonRealtimeUnavailable
		return outcome
	}

	started := time.Now()
	err = d.pusher.Push(ctx, target.User, created)
	d.metrics.ObservePushLatency(d.pushBackend, time.Since(started))
	if err != nil {
		logging.From(ctx).Warn("realtime push failed",
			"recipient", target.User.ID,
			"notification_id", created.ID,
			"error", err.Error(),
		)
		outcome.Status = types.DispatchStatusPartialSuccess
		outcome.Reason = err.Error()
		return outcome
	}

	outcome.Status = types.DispatchStatusSuccess
	return outcome
}
