package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/auditflow/pkg/service/slack"
	"github.com/urfave/cli/v3"
)

type Slack struct {
	botToken string
	cacheTTL time.Duration
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token (for direct message push)",
			Category:    "Slack",
			Destination: &x.botToken,
			Sources:     cli.EnvVars("AUDITFLOW_SLACK_BOT_TOKEN"),
		},
		&cli.DurationFlag{
			Name:        "slack-user-cache-ttl",
			Usage:       "How long Slack user lookups by email are cached",
			Category:    "Slack",
			Value:       10 * time.Minute,
			Destination: &x.cacheTTL,
			Sources:     cli.EnvVars("AUDITFLOW_SLACK_USER_CACHE_TTL"),
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.Duration("user-cache-ttl", x.cacheTTL),
	)
}

// IsConfigured reports whether a bot token was given
func (x *Slack) IsConfigured() bool {
	return x.botToken != ""
}

// Configure creates the Slack service
func (x *Slack) Configure() (slack.Service, error) {
	if x.botToken == "" {
		return nil, goerr.Wrap(ErrInvalidConfig, "slack-bot-token is required for the slack realtime backend")
	}

	var opts []slack.Option
	if x.cacheTTL > 0 {
		opts = append(opts, slack.WithCacheTTL(x.cacheTTL))
	}
	svc, err := slack.New(x.botToken, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize slack service")
	}
	return svc, nil
}
