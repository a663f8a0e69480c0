package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/auditflow/pkg/cli/config"
	"github.com/secmon-lab/auditflow/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

// cmdToken issues a bearer token for local use and integration tests
func cmdToken() *cli.Command {
	var authCfg config.Auth
	var userID string
	var tenantID string
	var name string
	var ttl time.Duration

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user",
			Usage:       "User ID written to the sub claim",
			Required:    true,
			Destination: &userID,
		},
		&cli.StringFlag{
			Name:        "tenant",
			Usage:       "Tenant ID written to the tenant claim",
			Required:    true,
			Destination: &tenantID,
		},
		&cli.StringFlag{
			Name:        "name",
			Usage:       "Display name",
			Destination: &name,
		},
		&cli.DurationFlag{
			Name:        "ttl",
			Usage:       "Token lifetime",
			Value:       time.Hour,
			Destination: &ttl,
		},
	}
	flags = append(flags, authCfg.Flags()...)

	return &cli.Command{
		Name:  "token",
		Usage: "Issue a signed bearer token",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			authUC, err := authCfg.JWT()
			if err != nil {
				return err
			}

			raw, err := authUC.IssueToken(model.UserID(userID), tenantID, name, ttl)
			if err != nil {
				return goerr.Wrap(err, "failed to issue token")
			}
			_, err = fmt.Fprintln(c.Root().Writer, raw)
			return err
		},
	}
}
