package usecase

import (
	"time"

	"github.com/secmon-lab/auditflow/pkg/domain/interfaces"
	"github.com/secmon-lab/auditflow/pkg/service/metrics"
)

const (
	// DefaultMRRole is the role name of the management representative
	DefaultMRRole = "management_representative"

	// DefaultAuditorRole is the role required to commit requirements and
	// record reviews, follow-ups and effectiveness
	DefaultAuditorRole = "auditor"

	// DefaultDispatchConcurrency bounds per-transition fan-out
	DefaultDispatchConcurrency = 8
)

type UseCases struct {
	repo        interfaces.Repository
	pusher      interfaces.Pusher
	pushBackend string
	metrics     *metrics.Metrics
	clock       func() time.Time
	mrRole      string
	auditorRole string
	concurrency int

	Finding      *FindingUseCase
	CAPA         *CAPAUseCase
	Notification *NotificationUseCase
}

type Option func(*UseCases)

// WithPusher enables realtime push. backend labels push metrics.
// Without a pusher every delivered notification is PARTIAL_SUCCESS.
func WithPusher(pusher interfaces.Pusher, backend string) Option {
	return func(uc *UseCases) {
		uc.pusher = pusher
		uc.pushBackend = backend
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(uc *UseCases) {
		uc.metrics = m
	}
}

// WithClock overrides the time source
func WithClock(clock func() time.Time) Option {
	return func(uc *UseCases) {
		uc.clock = clock
	}
}

// WithMRRole sets the role name resolved by NotifyManagementRepresentative
func WithMRRole(role string) Option {
	return func(uc *UseCases) {
		if role != "" {
			uc.mrRole = role
		}
	}
}

// WithAuditorRole sets the role an actor needs for the auditor-side
// transitions of a case
func WithAuditorRole(role string) Option {
	return func(uc *UseCases) {
		if role != "" {
			uc.auditorRole = role
		}
	}
}

// WithDispatchConcurrency sets how many recipients are notified in parallel
func WithDispatchConcurrency(n int) Option {
	return func(uc *UseCases) {
		if n > 0 {
			uc.concurrency = n
		}
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:        repo,
		clock:       func() time.Time { return time.Now().UTC() },
		mrRole:      DefaultMRRole,
		auditorRole: DefaultAuditorRole,
		concurrency: DefaultDispatchConcurrency,
	}

	for _, opt := range opts {
		opt(uc)
	}

	resolver := NewRecipientResolver(repo.Directory())
	dispatcher := NewDispatcher(repo.Notification(),
		WithDispatchPusher(uc.pusher, uc.pushBackend),
		WithDispatchMetrics(uc.metrics),
		WithDispatchClock(uc.clock),
		WithConcurrency(uc.concurrency),
	)

	uc.Finding = NewFindingUseCase(repo, resolver, uc.metrics, uc.clock)
	uc.CAPA = NewCAPAUseCase(repo, resolver, dispatcher, uc.mrRole, uc.auditorRole, uc.metrics, uc.clock)
	uc.Notification = NewNotificationUseCase(repo, uc.clock)

	return uc
}
