package api

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"

	"github.com/mpapenbr/racelog-report/pkg/model"
	"github.com/mpapenbr/racelog-report/pkg/racelog"
)

var ErrNotFound = errors.New("not found")

type Repositories interface {
	Report() ReportRepository
	Driver() DriverRepository
	ImportRun() ImportRunRepository
}

type ReportRepository interface {
	// Create stores the ranked records of one import run.
	Create(ctx context.Context, runID uuid.UUID, records []racelog.LapRecord) error
	// LoadAll returns the rows ordered by duration, ties by position.
	LoadAll(ctx context.Context, order racelog.Order) ([]model.ReportRow, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) (int, error)
}

type DriverRepository interface {
	Create(
		ctx context.Context,
		runID uuid.UUID,
		entries []racelog.AbbreviationEntry,
	) error
	// LoadAll returns the drivers ordered by driver name.
	LoadAll(ctx context.Context, order racelog.Order) ([]model.DriverRow, error)
	// LoadByCode returns ErrNotFound for unknown codes.
	LoadByCode(ctx context.Context, code string) (*model.DriverRow, error)
	DeleteAll(ctx context.Context) (int, error)
}

type ImportRunRepository interface {
	Create(ctx context.Context, run *model.ImportRun) error
	// LoadLatest returns ErrNotFound if nothing was imported yet.
	LoadLatest(ctx context.Context) (*model.ImportRun, error)
}

type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
