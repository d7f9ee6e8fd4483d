// Package importer loads the race input files into the database.
package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/samber/lo"

	"github.com/mpapenbr/racelog-report/log"
	"github.com/mpapenbr/racelog-report/pkg/db/mytypes"
	"github.com/mpapenbr/racelog-report/pkg/model"
	"github.com/mpapenbr/racelog-report/pkg/racelog"
	"github.com/mpapenbr/racelog-report/pkg/repository/api"
	"github.com/mpapenbr/racelog-report/pkg/utils"
)

type (
	Option func(*Importer)

	// Sources names the three input files of a race.
	Sources struct {
		Abbreviations string
		StartLog      string
		EndLog        string
	}

	Importer struct {
		repos     api.Repositories
		txMgr     api.TransactionManager
		sources   Sources
		log       *log.Logger
		retryOpts []utils.RetryOption
		debounce  time.Duration
		now       func() time.Time
		readFile  func(name string) ([]byte, error)
		mu        sync.Mutex
	}

	// snapshot is the input of one import. Report, drivers and checksum are
	// all derived from the same bytes.
	snapshot struct {
		abbr     *racelog.Abbreviations
		report   *racelog.Report
		checksum string
	}
)

func (s Sources) paths() []string {
	return []string{s.Abbreviations, s.StartLog, s.EndLog}
}

func WithLogger(l *log.Logger) Option {
	return func(i *Importer) {
		i.log = l
	}
}

func WithRetryOptions(opts ...utils.RetryOption) Option {
	return func(i *Importer) {
		i.retryOpts = opts
	}
}

// WithDebounce sets the quiet period Watch waits for after the last change
func WithDebounce(d time.Duration) Option {
	return func(i *Importer) {
		i.debounce = d
	}
}

func WithClock(now func() time.Time) Option {
	return func(i *Importer) {
		i.now = now
	}
}

//nolint:whitespace // editor/linter issue
func New(
	repos api.Repositories,
	txMgr api.TransactionManager,
	sources Sources,
	opts ...Option,
) *Importer {
	ret := &Importer{
		repos:    repos,
		txMgr:    txMgr,
		sources:  sources,
		log:      log.Default().Named("importer"),
		debounce: 500 * time.Millisecond,
		now:      time.Now,
		readFile: os.ReadFile,
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Import builds the report from the input files and replaces the stored
// report and driver list in one transaction.
func (i *Importer) Import(ctx context.Context) (*model.ImportRun, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.doImport(ctx)
}

// ImportIfEmpty imports only if no report rows are stored yet.
func (i *Importer) ImportIfEmpty(ctx context.Context) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	num, err := i.repos.Report().Count(ctx)
	if err != nil {
		return false, err
	}
	if num > 0 {
		i.log.Debug("report data present, skipping import", log.Int("rows", num))
		return false, nil
	}
	if _, err := i.doImport(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// ImportIfChanged imports only if the input files differ from the latest import.
func (i *Importer) ImportIfChanged(ctx context.Context) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	checksum, err := utils.HashFiles(i.sources.paths()...)
	if err != nil {
		return false, err
	}
	latest, err := i.repos.ImportRun().LoadLatest(ctx)
	switch {
	case errors.Is(err, api.ErrNotFound):
	case err != nil:
		return false, err
	case latest.Checksum == checksum:
		i.log.Debug("input unchanged", log.String("checksum", checksum))
		return false, nil
	}
	if _, err := i.doImport(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// readSnapshot reads each input file exactly once.
func (i *Importer) readSnapshot() (*snapshot, error) {
	contents := make([][]byte, 0, 3)
	for _, p := range i.sources.paths() {
		data, err := i.readFile(p)
		if err != nil {
			return nil, err
		}
		contents = append(contents, data)
	}
	abbr, err := racelog.ReadAbbreviations(
		bytes.NewReader(contents[0]), i.sources.Abbreviations)
	if err != nil {
		return nil, err
	}
	starts, err := racelog.ReadLog(bytes.NewReader(contents[1]), i.sources.StartLog)
	if err != nil {
		return nil, err
	}
	ends, err := racelog.ReadLog(bytes.NewReader(contents[2]), i.sources.EndLog)
	if err != nil {
		return nil, err
	}
	return &snapshot{
		abbr:     abbr,
		report:   racelog.Assemble(abbr, starts, ends, racelog.OrderAsc, ""),
		checksum: utils.HashContents(contents...),
	}, nil
}

//nolint:funlen // by design
func (i *Importer) doImport(ctx context.Context) (*model.ImportRun, error) {
	params := racelog.Params{
		AbbreviationPath: i.sources.Abbreviations,
		StartLogPath:     i.sources.StartLog,
		EndLogPath:       i.sources.EndLog,
		Order:            string(racelog.OrderAsc),
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	var snap *snapshot
	err := utils.RetryTransient(ctx, func() error {
		var err error
		snap, err = i.readSnapshot()
		return err
	}, append([]utils.RetryOption{utils.WithRetryLogger(i.log)}, i.retryOpts...)...)
	if err != nil {
		return nil, fmt.Errorf("build report: %w", err)
	}
	report, abbr := snap.report, snap.abbr
	for _, w := range report.Warnings {
		i.log.Warn("code excluded from report",
			log.String("code", w.Code),
			log.String("reason", string(w.Reason)))
	}

	run := &model.ImportRun{
		ID:            uuid.Must(uuid.NewV4()),
		ImportedAt:    i.now().UTC(),
		Abbreviations: i.sources.Abbreviations,
		StartLog:      i.sources.StartLog,
		EndLog:        i.sources.EndLog,
		Checksum:      snap.checksum,
		Records:       int32(len(report.Records)),
		Warnings: lo.Map(report.Warnings, func(w racelog.Warning, _ int) mytypes.Warning {
			return mytypes.Warning{Code: w.Code, Reason: string(w.Reason)}
		}),
	}
	err = i.txMgr.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := i.repos.Report().DeleteAll(ctx); err != nil {
			return err
		}
		if _, err := i.repos.Driver().DeleteAll(ctx); err != nil {
			return err
		}
		if err := i.repos.ImportRun().Create(ctx, run); err != nil {
			return err
		}
		if err := i.repos.Driver().Create(ctx, run.ID, abbr.Entries()); err != nil {
			return err
		}
		return i.repos.Report().Create(ctx, run.ID, report.Records)
	})
	if err != nil {
		return nil, fmt.Errorf("store report: %w", err)
	}
	i.log.Info("report imported",
		log.String("run", run.ID.String()),
		log.Int("records", len(report.Records)),
		log.Int("drivers", abbr.Len()),
		log.Int("warnings", len(report.Warnings)))
	return run, nil
}
