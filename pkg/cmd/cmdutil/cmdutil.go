// Package cmdutil contains setup steps shared by the commands.
package cmdutil

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgx-contrib/pgxtrace"

	"github.com/mpapenbr/racelog-report/log"
	"github.com/mpapenbr/racelog-report/pkg/config"
	"github.com/mpapenbr/racelog-report/pkg/db/migrate"
	"github.com/mpapenbr/racelog-report/pkg/db/postgres"
	"github.com/mpapenbr/racelog-report/pkg/service/importer"
	"github.com/mpapenbr/racelog-report/pkg/utils"
)

func ParseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

// NewLogger creates a logger according to the log-format and log-filter settings
func NewLogger(w io.Writer, level log.Level) (*log.Logger, error) {
	opts := []log.Option{log.WithCaller(true), log.AddCallerSkip(1)}
	if config.LogFilter != "" {
		filter, err := log.WithFilter(config.LogFilter)
		if err != nil {
			return nil, err
		}
		opts = append(opts, filter)
	}
	switch config.LogFormat {
	case "json":
		return log.New(w, level, opts...), nil
	default:
		return log.DevLogger(w, level, opts...), nil
	}
}

// SetupLogging installs the default logger
func SetupLogging() error {
	logger, err := NewLogger(os.Stderr, ParseLogLevel(config.LogLevel, log.InfoLevel))
	if err != nil {
		return err
	}
	log.ResetDefault(logger)
	return nil
}

func WaitForRequiredServices(ctx context.Context) error {
	timeout, err := time.ParseDuration(config.WaitForServices)
	if err != nil {
		log.Warn("Invalid duration value. Setting default 60s", log.ErrorField(err))
		timeout = 60 * time.Second
	}
	postgresAddr := utils.ExtractFromDBURL(config.DB)
	if postgresAddr == "" {
		return nil
	}
	log.Debug("Waiting for database", log.String("addr", postgresAddr))
	return utils.WaitForTCP(ctx, postgresAddr, timeout)
}

// InitDatabase waits for the database, applies the migrations and opens the pool.
// SQL statements are logged on debug level by the named logger "rlr.sql".
// With telemetry enabled each statement also gets a span.
func InitDatabase(ctx context.Context) (*pgxpool.Pool, error) {
	if err := WaitForRequiredServices(ctx); err != nil {
		return nil, err
	}
	if err := migrate.MigrateDbFromSource(config.DB, config.MigrationSourceURL); err != nil {
		return nil, err
	}
	sqlLogger, err := NewLogger(os.Stderr,
		ParseLogLevel(config.SQLLogLevel, log.InfoLevel))
	if err != nil {
		return nil, err
	}
	pgTracer := pgxtrace.CompositeQueryTracer{
		postgres.NewMyTracer(sqlLogger.Named("rlr.sql"), log.DebugLevel),
	}
	if config.EnableTelemetry {
		pgTracer = append(pgTracer, postgres.NewOtlpTracer())
	}
	return postgres.NewPool(ctx, config.DB, postgres.WithTracer(pgTracer))
}

func ConfiguredSources() importer.Sources {
	return importer.Sources{
		Abbreviations: config.AbbreviationsFile,
		StartLog:      config.StartLogFile,
		EndLog:        config.EndLogFile,
	}
}
