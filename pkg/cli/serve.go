package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/auditflow/pkg/cli/config"
	httpctrl "github.com/secmon-lab/auditflow/pkg/controller/http"
	"github.com/secmon-lab/auditflow/pkg/service/metrics"
	"github.com/secmon-lab/auditflow/pkg/service/worker"
	"github.com/secmon-lab/auditflow/pkg/usecase"
	"github.com/secmon-lab/auditflow/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var baseURL string
	var checkInterval time.Duration
	var appCfg config.AppConfig
	var repoCfg config.Repository
	var realtimeCfg config.Realtime
	var authCfg config.Auth

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("AUDITFLOW_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "Base URL used in notification links (overrides base_url of the config file)",
			Sources:     cli.EnvVars("AUDITFLOW_BASE_URL"),
			Destination: &baseURL,
		},
		&cli.DurationFlag{
			Name:        "consistency-check-interval",
			Usage:       "Interval of the background check for categorized findings without a case (0 disables)",
			Value:       time.Hour,
			Sources:     cli.EnvVars("AUDITFLOW_CONSISTENCY_CHECK_INTERVAL"),
			Destination: &checkInterval,
		},
	}

	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, realtimeCfg.Flags()...)
	flags = append(flags, authCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			app, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load application config")
			}
			if baseURL == "" {
				baseURL = app.BaseURL
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logger.Error("failed to close repository", "error", err.Error())
				}
			}()

			// The directory is owned by the surrounding system; only the
			// memory backend is seeded from the config file.
			if repoCfg.IsMemory() {
				if err := app.Seed(ctx, repo.Directory()); err != nil {
					return goerr.Wrap(err, "failed to seed directory")
				}
				logger.Info("Directory seeded from config", "tenants", app.TenantIDs())
			}

			authUC, err := authCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure authentication")
			}
			if authCfg.IsNoAuthMode() {
				logger.Warn("Running in no-auth mode (development only)", "auth", authCfg)
			}

			realtime, err := realtimeCfg.Configure(ctx, baseURL)
			if err != nil {
				return goerr.Wrap(err, "failed to configure realtime push")
			}
			defer func() {
				if err := realtime.Close(); err != nil {
					logger.Error("failed to close realtime backend", "error", err.Error())
				}
			}()

			registry := prometheus.NewRegistry()
			registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			m := metrics.New(registry)
			ucOpts := []usecase.Option{
				usecase.WithMetrics(m),
				usecase.WithMRRole(app.ManagementRepresentativeRole),
				usecase.WithAuditorRole(app.AuditorRole),
				usecase.WithDispatchConcurrency(app.DispatchConcurrency),
			}
			if realtime.Pusher != nil {
				ucOpts = append(ucOpts, usecase.WithPusher(realtime.Pusher, realtime.Backend))
			}
			uc := usecase.New(repo, ucOpts...)

			var checker *worker.ConsistencyCheckWorker
			if checkInterval > 0 && len(app.Tenants) > 0 {
				checker = worker.NewConsistencyCheckWorker(uc, app.TenantIDs(), m, checkInterval)
				if err := checker.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start consistency check worker")
				}
			}

			httpOpts := []httpctrl.Options{
				httpctrl.WithAuth(authUC),
				httpctrl.WithMetricsHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})),
			}
			if realtime.Publisher != nil {
				httpOpts = append(httpOpts,
					httpctrl.WithNotificationStream(realtime.Publisher),
					httpctrl.WithHealthCheck("redis", realtime.Publisher.Health),
				)
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("Starting HTTP server",
					"addr", addr,
					"app", app,
					"repository", repoCfg,
					"realtime", realtimeCfg,
				)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logger.Info("Received shutdown signal", "signal", sig)

				if checker != nil {
					checker.Stop()
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				// SSE streams end when their request context is cancelled
				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logger.Info("Server shutdown completed")
				return nil
			}
		},
	}
}
