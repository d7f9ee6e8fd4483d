package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/racelog-report/log"
	"github.com/mpapenbr/racelog-report/pkg/config"
	"github.com/mpapenbr/racelog-report/pkg/export"
	"github.com/mpapenbr/racelog-report/pkg/racelog"
	"github.com/mpapenbr/racelog-report/pkg/utils"
)

type options struct {
	format string
	out    string
	order  string
	driver string
	create func(name string) (io.WriteCloser, error)
}

func createFile(name string) (io.WriteCloser, error) {
	return os.Create(name)
}

func NewReportCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "prints the ranked lap report of the race",
		Long: `Reads the abbreviation file together with the start and end log
and prints the drivers ranked by lap time. A delimiter line separates
the qualified drivers from the rest.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text",
		"output format (text, json, yaml, xlsx)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "",
		"write the report to this file instead of stdout (required for xlsx)")
	cmd.Flags().StringVar(&opts.order, "order", "asc",
		"sort order of the lap times (asc, desc)")
	cmd.Flags().StringVar(&opts.driver, "driver", "",
		"show only the driver with this code or name")
	return cmd
}

func runReport(ctx context.Context, stdout io.Writer, opts *options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	f, err := export.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	if f == export.FormatXLSX && opts.out == "" {
		return errors.New("xlsx output requires --out")
	}
	params := racelog.Params{
		AbbreviationPath: config.AbbreviationsFile,
		StartLogPath:     config.StartLogFile,
		EndLogPath:       config.EndLogFile,
		Order:            opts.order,
		Driver:           opts.driver,
	}
	var report *racelog.Report
	err = utils.RetryTransient(ctx, func() error {
		var buildErr error
		report, buildErr = racelog.BuildReport(params)
		return buildErr
	})
	if err != nil {
		return err
	}
	for _, w := range report.Warnings {
		log.Warn("code excluded from report",
			log.String("code", w.Code),
			log.String("reason", string(w.Reason)))
	}
	if opts.driver != "" && len(report.Records) == 0 {
		log.Warn("driver not found", log.String("driver", opts.driver))
	}

	if opts.out == "" {
		return writeReport(stdout, f, report)
	}
	create := opts.create
	if create == nil {
		create = createFile
	}
	file, err := create(opts.out)
	if err != nil {
		return err
	}
	writeErr := writeReport(file, f, report)
	if closeErr := file.Close(); closeErr != nil {
		return errors.Join(writeErr, fmt.Errorf("close %s: %w", opts.out, closeErr))
	}
	return writeErr
}

func writeReport(w io.Writer, f export.Format, report *racelog.Report) error {
	if err := export.Write(w, f, report); err != nil {
		return fmt.Errorf("write %s report: %w", f, err)
	}
	return nil
}
