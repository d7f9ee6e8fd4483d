package importer

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/racelog-report/log"
	"github.com/mpapenbr/racelog-report/pkg/cmd/cmdutil"
	bobRepos "github.com/mpapenbr/racelog-report/pkg/repository/bob"
	"github.com/mpapenbr/racelog-report/pkg/service/importer"
)

func NewImportCmd() *cobra.Command {
	var onlyIfChanged bool
	cmd := &cobra.Command{
		Use:   "import",
		Short: "imports the race files into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runImport(ctx, onlyIfChanged)
		},
	}
	cmd.Flags().BoolVar(&onlyIfChanged, "if-changed", false,
		"skip the import if the files did not change since the last import")
	return cmd
}

func runImport(ctx context.Context, onlyIfChanged bool) error {
	pool, err := cmdutil.InitDatabase(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	imp := importer.New(
		bobRepos.NewRepositoriesFromPool(pool),
		bobRepos.NewTransactionManagerFromPool(pool),
		cmdutil.ConfiguredSources(),
	)
	if onlyIfChanged {
		imported, err := imp.ImportIfChanged(ctx)
		if err == nil && !imported {
			log.Info("Input files unchanged, nothing imported")
		}
		return err
	}
	_, err = imp.Import(ctx)
	return err
}
