package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/auditflow/pkg/cli/config"
	"github.com/secmon-lab/auditflow/pkg/usecase"
	"github.com/secmon-lab/auditflow/pkg/utils/logging"
	"github.com/secmon-lab/auditflow/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var appCfg config.AppConfig
	var repoCfg config.Repository
	var tenants []string

	var flags []cli.Flag
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, &cli.StringSliceFlag{
		Name:        "tenant",
		Usage:       "Tenant to check (defaults to the tenants of the config file)",
		Sources:     cli.EnvVars("AUDITFLOW_VALIDATE_TENANTS"),
		Destination: &tenants,
	})

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the config file and report categorized findings without a matching case",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			app, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}
			logger.Info("Configuration validation passed", "app", app)

			if len(tenants) == 0 {
				tenants = app.TenantIDs()
			}
			if len(tenants) == 0 {
				logger.Info("No tenant specified, skipping DB consistency check")
				return nil
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			uc := usecase.New(repo)
			result, err := uc.ValidateDB(ctx, tenants)
			if err != nil {
				return goerr.Wrap(err, "DB consistency check failed")
			}

			printValidationReport(os.Stdout, result)
			if result.HasIssues() {
				return fmt.Errorf("DB consistency check found %d issue(s)", len(result.Issues))
			}
			return nil
		},
	}
}

func printValidationReport(w io.Writer, result *usecase.ValidationResult) {
	ok := color.New(color.FgGreen, color.Bold)
	ng := color.New(color.FgRed, color.Bold)
	dim := color.New(color.Faint)

	if !result.HasIssues() {
		_, _ = ok.Fprintf(w, "OK")
		_, _ = fmt.Fprintf(w, " %d finding(s) checked\n", result.Checked)
		return
	}

	_, _ = ng.Fprintf(w, "NG")
	_, _ = fmt.Fprintf(w, " %d issue(s) in %d finding(s)\n", len(result.Issues), result.Checked)
	for _, issue := range result.Issues {
		_, _ = fmt.Fprintf(w, "  %s/%s: %s", issue.TenantID, issue.FindingID, issue.Message)
		if issue.Expected != "" || issue.Actual != "" {
			_, _ = dim.Fprintf(w, " (expected=%s actual=%s)", issue.Expected, issue.Actual)
		}
		_, _ = fmt.Fprintln(w)
	}
}
