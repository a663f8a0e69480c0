package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/auditflow/pkg/repository/firestore"
	"github.com/secmon-lab/auditflow/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	var projectID string
	var databaseID string
	var dryRun bool

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Migrate Firestore indexes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "firestore-project-id",
				Usage:       "Firestore Project ID (required)",
				Required:    true,
				Sources:     cli.EnvVars("AUDITFLOW_FIRESTORE_PROJECT_ID"),
				Destination: &projectID,
			},
			&cli.StringFlag{
				Name:        "firestore-database-id",
				Usage:       "Firestore Database ID",
				Sources:     cli.EnvVars("AUDITFLOW_FIRESTORE_DATABASE_ID"),
				Destination: &databaseID,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "Preview changes without applying",
				Destination: &dryRun,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			logger.Info("Migrate configuration",
				"projectID", projectID,
				"databaseID", databaseID,
				"dryRun", dryRun)

			indexConfig := getIndexConfig()

			client, err := fireconf.New(ctx, projectID, databaseID, indexConfig,
				fireconf.WithLogger(logger))
			if err != nil {
				return goerr.Wrap(err, "failed to create fireconf client")
			}
			defer func() {
				if err := client.Close(); err != nil {
					logger.Error("failed to close fireconf client", "error", err.Error())
				}
			}()

			if !dryRun {
				logger.Info("Applying migrations")
				if err := client.Migrate(ctx); err != nil {
					return goerr.Wrap(err, "failed to apply migrations")
				}
				logger.Info("Migrations applied successfully")
				return nil
			}

			names := make([]string, 0, len(indexConfig.Collections))
			for _, col := range indexConfig.Collections {
				names = append(names, col.Name)
			}
			current, err := client.Import(ctx, names...)
			if err != nil {
				return goerr.Wrap(err, "failed to import current indexes")
			}
			diff, err := client.DiffConfigs(current)
			if err != nil {
				return goerr.Wrap(err, "failed to diff index configuration")
			}
			if logMigrationDiff(logger, diff) == 0 {
				logger.Info("No changes required")
			}
			return nil
		},
	}
}

// logMigrationDiff logs one line per pending index change and returns how
// many were logged.
func logMigrationDiff(logger *slog.Logger, diff *fireconf.DiffResult) int {
	var n int
	for _, col := range diff.Collections {
		for _, idx := range col.IndexesToAdd {
			logger.Info("Index to create", "collection", col.Name, "fields", indexFieldPaths(idx))
			n++
		}
		for _, idx := range col.IndexesToDelete {
			logger.Info("Index to delete", "collection", col.Name, "fields", indexFieldPaths(idx))
			n++
		}
		if col.TTLAction != "" {
			logger.Info("TTL change", "collection", col.Name, "action", string(col.TTLAction))
			n++
		}
	}
	return n
}

func indexFieldPaths(idx fireconf.Index) []string {
	paths := make([]string, 0, len(idx.Fields))
	for _, f := range idx.Fields {
		paths = append(paths, f.Path)
	}
	return paths
}

// getIndexConfig returns the composite indexes required by the Firestore
// repository queries. Collections are tenant subcollections; index scope
// is per collection ID.
func getIndexConfig() *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: firestore.CollectionCAPAs,
				Indexes: []fireconf.Index{
					// ListCAPAs(status)
					{
						Fields: []fireconf.IndexField{
							{Path: "Status", Order: fireconf.OrderAscending},
							{Path: "CreatedAt", Order: fireconf.OrderAscending},
						},
					},
					// ListCAPAs(kind)
					{
						Fields: []fireconf.IndexField{
							{Path: "Kind", Order: fireconf.OrderAscending},
							{Path: "CreatedAt", Order: fireconf.OrderAscending},
						},
					},
					// ListCAPAs(status, kind)
					{
						Fields: []fireconf.IndexField{
							{Path: "Status", Order: fireconf.OrderAscending},
							{Path: "Kind", Order: fireconf.OrderAscending},
							{Path: "CreatedAt", Order: fireconf.OrderAscending},
						},
					},
				},
			},
			{
				Name: firestore.CollectionNotifications,
				Indexes: []fireconf.Index{
					// ListByUser: newest first
					{
						Fields: []fireconf.IndexField{
							{Path: "TargetUserID", Order: fireconf.OrderAscending},
							{Path: "CreatedAt", Order: fireconf.OrderDescending},
						},
					},
				},
			},
		},
	}
}
