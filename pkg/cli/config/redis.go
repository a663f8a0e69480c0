package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/auditflow/pkg/service/pubsub"
	"github.com/urfave/cli/v3"
)

type Redis struct {
	url           string
	channelPrefix string
}

func (x *Redis) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "redis-url",
			Usage:       "Redis URL for realtime notification pub/sub (e.g. redis://localhost:6379/0)",
			Category:    "Redis",
			Destination: &x.url,
			Sources:     cli.EnvVars("AUDITFLOW_REDIS_URL"),
		},
		&cli.StringFlag{
			Name:        "redis-channel-prefix",
			Usage:       "Prefix of per-user notification channels",
			Category:    "Redis",
			Value:       pubsub.DefaultChannelPrefix,
			Destination: &x.channelPrefix,
			Sources:     cli.EnvVars("AUDITFLOW_REDIS_CHANNEL_PREFIX"),
		},
	}
}

func (x Redis) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("configured", x.url != ""),
		slog.String("channel-prefix", x.channelPrefix),
	)
}

// Configure connects the publisher. The caller must close it.
func (x *Redis) Configure(ctx context.Context) (*pubsub.Publisher, error) {
	if x.url == "" {
		return nil, goerr.Wrap(ErrInvalidConfig, "redis-url is required for the redis realtime backend")
	}

	var opts []pubsub.Option
	if x.channelPrefix != "" {
		opts = append(opts, pubsub.WithChannelPrefix(x.channelPrefix))
	}
	p, err := pubsub.New(ctx, x.url, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to connect to redis")
	}
	return p, nil
}
