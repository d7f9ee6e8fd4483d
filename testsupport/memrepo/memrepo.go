// Package memrepo keeps the repositories in memory for tests.
package memrepo

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/gofrs/uuid/v5"

	"github.com/mpapenbr/racelog-report/pkg/db/mytypes"
	"github.com/mpapenbr/racelog-report/pkg/model"
	"github.com/mpapenbr/racelog-report/pkg/racelog"
	"github.com/mpapenbr/racelog-report/pkg/repository/api"
)

type (
	Store struct {
		mu      sync.Mutex
		runs    []model.ImportRun
		reports []model.ReportRow
		drivers []model.DriverRow
		nextID  int32
		// Err is returned by every repository call when set
		Err error
	}
	reportRepo    struct{ s *Store }
	driverRepo    struct{ s *Store }
	importRunRepo struct{ s *Store }
)

var (
	_ api.Repositories       = (*Store)(nil)
	_ api.TransactionManager = (*Store)(nil)
)

func New() *Store {
	return &Store{}
}

func (s *Store) Report() api.ReportRepository       { return reportRepo{s} }
func (s *Store) Driver() api.DriverRepository       { return driverRepo{s} }
func (s *Store) ImportRun() api.ImportRunRepository { return importRunRepo{s} }

// RunInTx restores the previous state if fn fails.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	runs, reports, drivers := slices.Clone(s.runs), slices.Clone(s.reports),
		slices.Clone(s.drivers)
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.runs, s.reports, s.drivers = runs, reports, drivers
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) Runs() []model.ImportRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.runs)
}

func (s *Store) id() int32 {
	s.nextID++
	return s.nextID
}

//nolint:whitespace // editor/linter issue
func (r reportRepo) Create(
	ctx context.Context,
	runID uuid.UUID,
	records []racelog.LapRecord,
) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	for i := range records {
		rec := &records[i]
		r.s.reports = append(r.s.reports, model.ReportRow{
			ID:         r.s.id(),
			RunID:      runID,
			Position:   int32(rec.Rank),
			Code:       rec.Code,
			DriverName: rec.DriverName,
			Team:       rec.Team,
			Duration:   mytypes.LapTime(rec.Duration),
		})
	}
	return nil
}

func (r reportRepo) LoadAll(ctx context.Context, order racelog.Order) (
	[]model.ReportRow, error,
) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	ret := slices.Clone(r.s.reports)
	sort.SliceStable(ret, func(a, b int) bool {
		if ret[a].Duration != ret[b].Duration {
			if order == racelog.OrderDesc {
				return ret[a].Duration > ret[b].Duration
			}
			return ret[a].Duration < ret[b].Duration
		}
		return ret[a].Position < ret[b].Position
	})
	return ret, nil
}

func (r reportRepo) Count(ctx context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.reports), r.s.Err
}

func (r reportRepo) DeleteAll(ctx context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return 0, r.s.Err
	}
	num := len(r.s.reports)
	r.s.reports = nil
	return num, nil
}

//nolint:whitespace // editor/linter issue
func (r driverRepo) Create(
	ctx context.Context,
	runID uuid.UUID,
	entries []racelog.AbbreviationEntry,
) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	for _, e := range entries {
		if slices.ContainsFunc(r.s.drivers, func(d model.DriverRow) bool {
			return d.Code == e.Code
		}) {
			return fmt.Errorf("duplicate driver code %s", e.Code)
		}
		r.s.drivers = append(r.s.drivers, model.DriverRow{
			ID:         r.s.id(),
			RunID:      runID,
			Code:       e.Code,
			DriverName: e.DriverName,
			Team:       e.Team,
		})
	}
	return nil
}

func (r driverRepo) LoadAll(ctx context.Context, order racelog.Order) (
	[]model.DriverRow, error,
) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	ret := slices.Clone(r.s.drivers)
	sort.SliceStable(ret, func(a, b int) bool {
		if ret[a].DriverName != ret[b].DriverName {
			if order == racelog.OrderDesc {
				return ret[a].DriverName > ret[b].DriverName
			}
			return ret[a].DriverName < ret[b].DriverName
		}
		return ret[a].Code < ret[b].Code
	})
	return ret, nil
}

func (r driverRepo) LoadByCode(ctx context.Context, code string) (
	*model.DriverRow, error,
) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for i := range r.s.drivers {
		if r.s.drivers[i].Code == code {
			ret := r.s.drivers[i]
			return &ret, nil
		}
	}
	return nil, api.ErrNotFound
}

func (r driverRepo) DeleteAll(ctx context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return 0, r.s.Err
	}
	num := len(r.s.drivers)
	r.s.drivers = nil
	return num, nil
}

func (r importRunRepo) Create(ctx context.Context, run *model.ImportRun) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if slices.ContainsFunc(r.s.runs, func(x model.ImportRun) bool { return x.ID == run.ID }) {
		return errors.New("duplicate import run id")
	}
	r.s.runs = append(r.s.runs, *run)
	return nil
}

func (r importRunRepo) LoadLatest(ctx context.Context) (*model.ImportRun, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	if len(r.s.runs) == 0 {
		return nil, api.ErrNotFound
	}
	latest := r.s.runs[0]
	for _, run := range r.s.runs[1:] {
		if !run.ImportedAt.Before(latest.ImportedAt) {
			latest = run
		}
	}
	return &latest, nil
}
