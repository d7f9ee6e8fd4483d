package migrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/racelog-report/log"
	"github.com/mpapenbr/racelog-report/pkg/cmd/cmdutil"
	"github.com/mpapenbr/racelog-report/pkg/config"
	"github.com/mpapenbr/racelog-report/pkg/db/migrate"
)

func NewMigrateCmd() *cobra.Command {
	var disableSSL bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "performs database migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return startMigration(ctx, disableSSL)
		},
	}

	cmd.Flags().StringVarP(&config.MigrationSourceURL,
		"migration-source-url",
		"m",
		"",
		"url to migration files (default: embedded migrations)")
	cmd.Flags().BoolVar(&disableSSL, "disable-ssl", false,
		"append sslmode=disable to the database url")

	return cmd
}

func startMigration(ctx context.Context, disableSSL bool) error {
	if err := cmdutil.WaitForRequiredServices(ctx); err != nil {
		log.Error("database not ready", log.ErrorField(err))
		return err
	}

	dbURL := config.DB
	if disableSSL {
		dbURL = prepareURLForDB(dbURL)
	}
	source := config.MigrationSourceURL
	if source == "" {
		source = "embedded"
	}
	log.Info("Using migrations", log.String("source", source))

	if err := migrate.MigrateDbFromSource(dbURL, config.MigrationSourceURL); err != nil {
		return err
	}
	version, dirty, err := migrate.Version(dbURL)
	if err != nil {
		return err
	}
	log.Info("Database migrated", log.Int("version", int(version)), log.Bool("dirty", dirty))
	return nil
}

func prepareURLForDB(url string) string {
	options := "sslmode=disable"
	if strings.Contains(url, options) {
		return url
	}
	if strings.Contains(url, "?") {
		return fmt.Sprintf("%s&%s", url, options)
	}
	return fmt.Sprintf("%s?%s", url, options)
}
