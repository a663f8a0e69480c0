package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/auditflow/pkg/domain/interfaces"
	"github.com/secmon-lab/auditflow/pkg/service/pubsub"
	"github.com/secmon-lab/auditflow/pkg/service/slack"
	"github.com/secmon-lab/auditflow/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Realtime backends
const (
	RealtimeNone  = "none"
	RealtimeSlack = "slack"
	RealtimeRedis = "redis"
)

// Realtime selects how notifications are pushed after being stored
type Realtime struct {
	backend string
	slack   Slack
	redis   Redis
}

// RealtimeService is the configured push side. Pusher is nil for the none
// backend; Publisher is set only for redis.
type RealtimeService struct {
	Backend   string
	Pusher    interfaces.Pusher
	Publisher *pubsub.Publisher
}

// Close releases the backend connection
func (s *RealtimeService) Close() error {
	if s.Publisher != nil {
		return s.Publisher.Close()
	}
	return nil
}

func (x *Realtime) Flags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "realtime-backend",
			Usage:       "Realtime push backend (none, slack, redis)",
			Category:    "Realtime",
			Value:       RealtimeNone,
			Destination: &x.backend,
			Sources:     cli.EnvVars("AUDITFLOW_REALTIME_BACKEND"),
		},
	}
	flags = append(flags, x.slack.Flags()...)
	flags = append(flags, x.redis.Flags()...)
	return flags
}

func (x Realtime) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", x.backend),
		slog.Any("slack", x.slack),
		slog.Any("redis", x.redis),
	)
}

// Configure builds the pusher. baseURL turns relative notification links
// into absolute ones for Slack messages.
func (x *Realtime) Configure(ctx context.Context, baseURL string) (*RealtimeService, error) {
	switch x.backend {
	case "", RealtimeNone:
		logging.Default().Warn("Realtime push disabled; notifications are stored only")
		return &RealtimeService{Backend: RealtimeNone}, nil

	case RealtimeSlack:
		svc, err := x.slack.Configure()
		if err != nil {
			return nil, err
		}
		logging.Default().Info("Realtime push via Slack direct message")
		return &RealtimeService{
			Backend: RealtimeSlack,
			Pusher:  slack.NewPusher(svc, baseURL),
		}, nil

	case RealtimeRedis:
		p, err := x.redis.Configure(ctx)
		if err != nil {
			return nil, err
		}
		logging.Default().Info("Realtime push via Redis pub/sub", "redis", x.redis)
		return &RealtimeService{
			Backend:   RealtimeRedis,
			Pusher:    p,
			Publisher: p,
		}, nil

	default:
		return nil, goerr.Wrap(ErrInvalidConfig, "invalid realtime backend", goerr.V(BackendKey, x.backend))
	}
}
