package config_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/auditflow/pkg/cli/config"
	"github.com/urfave/cli/v3"
)

// parseFlags runs a throwaway command so Destination fields get populated
// the same way the real binary populates them.
func parseFlags(t *testing.T, flags []cli.Flag, args ...string) {
	t.Helper()
	cmd := &cli.Command{
		Name:   "test",
		Flags:  flags,
		Action: func(ctx context.Context, c *cli.Command) error { return nil },
	}
	gt.NoError(t, cmd.Run(context.Background(), append([]string{"test"}, args...))).Required()
}

func TestLogger_Configure(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var cfg config.Logger
		parseFlags(t, cfg.Flags())
		closer, err := cfg.Configure()
		gt.NoError(t, err).Required()
		closer()
	})

	t.Run("json to stderr", func(t *testing.T) {
		var cfg config.Logger
		parseFlags(t, cfg.Flags(), "--log-level", "debug", "--log-format", "json", "--log-output", "stderr")
		closer, err := cfg.Configure()
		gt.NoError(t, err).Required()
		closer()
	})

	t.Run("invalid level", func(t *testing.T) {
		var cfg config.Logger
		parseFlags(t, cfg.Flags(), "--log-level", "verbose")
		_, err := cfg.Configure()
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})
}

func TestAuth_Configure(t *testing.T) {
	t.Run("no-auth mode", func(t *testing.T) {
		var cfg config.Auth
		parseFlags(t, cfg.Flags(), "--no-auth-user", "auditor-1", "--no-auth-tenant", "acme")
		gt.B(t, cfg.IsNoAuthMode()).True()

		authUC, err := cfg.Configure()
		gt.NoError(t, err).Required()
		gt.B(t, authUC.IsNoAuthn()).True()

		token, err := authUC.ValidateToken(context.Background(), "")
		gt.NoError(t, err).Required()
		gt.S(t, token.TenantID).Equal("acme")
	})

	t.Run("no-auth without tenant", func(t *testing.T) {
		var cfg config.Auth
		parseFlags(t, cfg.Flags(), "--no-auth-user", "auditor-1")
		_, err := cfg.Configure()
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("short secret", func(t *testing.T) {
		var cfg config.Auth
		parseFlags(t, cfg.Flags(), "--jwt-secret", "too-short")
		_, err := cfg.Configure()
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("issued token round trips", func(t *testing.T) {
		var cfg config.Auth
		parseFlags(t, cfg.Flags(), "--jwt-secret", strings.Repeat("s", 32))

		jwtUC, err := cfg.JWT()
		gt.NoError(t, err).Required()
		raw, err := jwtUC.IssueToken("head-1", "acme", "Hana Head", time.Hour)
		gt.NoError(t, err).Required()

		authUC, err := cfg.Configure()
		gt.NoError(t, err).Required()
		gt.B(t, authUC.IsNoAuthn()).False()

		token, err := authUC.ValidateToken(context.Background(), raw)
		gt.NoError(t, err).Required()
		gt.S(t, token.Sub.String()).Equal("head-1")
		gt.S(t, token.TenantID).Equal("acme")
	})
}

func TestRealtime_Configure(t *testing.T) {
	ctx := context.Background()

	t.Run("none", func(t *testing.T) {
		var cfg config.Realtime
		parseFlags(t, cfg.Flags())
		svc, err := cfg.Configure(ctx, "")
		gt.NoError(t, err).Required()
		gt.S(t, svc.Backend).Equal(config.RealtimeNone)
		gt.Value(t, svc.Pusher).Nil()
		gt.NoError(t, svc.Close())
	})

	t.Run("slack without token", func(t *testing.T) {
		var cfg config.Realtime
		parseFlags(t, cfg.Flags(), "--realtime-backend", "slack")
		_, err := cfg.Configure(ctx, "")
		gt.Error(t, err)
	})

	t.Run("redis without url", func(t *testing.T) {
		var cfg config.Realtime
		parseFlags(t, cfg.Flags(), "--realtime-backend", "redis")
		_, err := cfg.Configure(ctx, "")
		gt.Error(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		var cfg config.Realtime
		parseFlags(t, cfg.Flags(), "--realtime-backend", "carrier-pigeon")
		_, err := cfg.Configure(ctx, "")
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})
}

func TestRepository_Configure(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		var cfg config.Repository
		parseFlags(t, cfg.Flags(), "--repository-backend", "memory")
		gt.B(t, cfg.IsMemory()).True()

		repo, err := cfg.Configure(context.Background())
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.Close())
	})

	t.Run("firestore without project", func(t *testing.T) {
		var cfg config.Repository
		parseFlags(t, cfg.Flags())
		gt.S(t, cfg.Backend()).Equal("firestore")
		_, err := cfg.Configure(context.Background())
		gt.Error(t, err)
	})
}
