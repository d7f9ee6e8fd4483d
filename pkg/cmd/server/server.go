package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/racelog-report/log"
	"github.com/mpapenbr/racelog-report/pkg/cmd/cmdutil"
	"github.com/mpapenbr/racelog-report/pkg/config"
	"github.com/mpapenbr/racelog-report/pkg/endpoints/rest"
	bobRepos "github.com/mpapenbr/racelog-report/pkg/repository/bob"
	"github.com/mpapenbr/racelog-report/pkg/service/importer"
	"github.com/mpapenbr/racelog-report/pkg/telemetry"
)

const shutdownTimeout = 10 * time.Second

func NewServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "starts the REST server",
		Long: `Starts the REST server for the report. The database is migrated and
filled from the configured race files if it contains no report yet.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return startServer()
		},
	}
	cmd.Flags().StringVarP(&config.ServerAddr,
		"addr",
		"a",
		"localhost:8080",
		"REST server listen address")
	cmd.Flags().BoolVar(&config.WatchInput,
		"watch",
		false,
		"re-import the race files when they change")
	cmd.Flags().BoolVar(&config.EnableTelemetry,
		"enable-telemetry",
		false,
		"enables telemetry")
	cmd.Flags().StringVar(&config.TelemetryEndpoint,
		"telemetry-endpoint",
		"localhost:4317",
		"Endpoint that receives open telemetry data (use 'stdout' for local debugging)")
	return cmd
}

//nolint:funlen // by design
func startServer() error {
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Debug("Config:",
		log.String("db", config.DB),
		log.String("addr", config.ServerAddr),
		log.Strings("sources", []string{
			config.AbbreviationsFile, config.StartLogFile, config.EndLogFile,
		}),
	)

	if config.EnableTelemetry {
		log.Info("Enabling telemetry")
		tel, err := telemetry.Setup(ctx,
			telemetry.WithEndpoint(config.TelemetryEndpoint),
			telemetry.WithRuntimeMetrics(true))
		if err != nil {
			log.Warn("Could not setup telemetry", log.ErrorField(err))
		} else {
			defer func() {
				if err := tel.Shutdown(context.Background()); err != nil {
					log.Warn("telemetry shutdown", log.ErrorField(err))
				}
			}()
		}
	}

	pool, err := cmdutil.InitDatabase(ctx)
	if err != nil {
		log.Error("database could not be initialized", log.ErrorField(err))
		return err
	}
	defer pool.Close()

	repos := bobRepos.NewRepositoriesFromPool(pool)
	imp := importer.New(repos,
		bobRepos.NewTransactionManagerFromPool(pool),
		cmdutil.ConfiguredSources())
	if imported, err := imp.ImportIfEmpty(ctx); err != nil {
		log.Error("initial import failed", log.ErrorField(err))
		return err
	} else if imported {
		log.Info("Initial import done")
	}
	if config.WatchInput {
		go func() {
			if err := imp.Watch(ctx); err != nil {
				log.Error("watcher stopped", log.ErrorField(err))
			}
		}()
	}

	server := &http.Server{
		Addr: config.ServerAddr,
		Handler: rest.NewHandler(
			rest.WithReportLoader(repos.Report()),
			rest.WithDriverLoader(repos.Driver()),
		),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting REST server", log.String("addr", config.ServerAddr))
		if err := server.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()
	setupGoRoutinesDump()

	select {
	case err := <-errChan:
		if err != nil {
			log.Error("server could not be started", log.ErrorField(err))
		}
		return err
	case <-ctx.Done():
		log.Debug("Got signal, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("server shutdown", log.ErrorField(err))
	}
	log.Info("Server terminated")
	return nil
}

func setupGoRoutinesDump() {
	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGQUIT)
		buf := make([]byte, 1<<20)
		for {
			<-sigs
			stacklen := runtime.Stack(buf, true)
			fmt.Printf("=== received SIGQUIT ===\n*** goroutine dump...\n%s\n*** end\n",
				buf[:stacklen])
		}
	}()
}
