package bob

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/stephenafamo/bob"

	"github.com/mpapenbr/racelog-report/pkg/repository/api"
	"github.com/mpapenbr/racelog-report/pkg/repository/bob/driver"
	"github.com/mpapenbr/racelog-report/pkg/repository/bob/importrun"
	"github.com/mpapenbr/racelog-report/pkg/repository/bob/report"
)

type bobRepositories struct {
	reportRepository    api.ReportRepository
	driverRepository    api.DriverRepository
	importRunRepository api.ImportRunRepository
}

var _ api.Repositories = (*bobRepositories)(nil)

func NewRepositoriesFromPool(pool *pgxpool.Pool) api.Repositories {
	return NewRepositories(bob.NewDB(stdlib.OpenDBFromPool(pool)))
}

func NewRepositories(db bob.DB) api.Repositories {
	return &bobRepositories{
		reportRepository:    report.NewReportRepository(db),
		driverRepository:    driver.NewDriverRepository(db),
		importRunRepository: importrun.NewImportRunRepository(db),
	}
}

func (r *bobRepositories) Report() api.ReportRepository {
	return r.reportRepository
}

func (r *bobRepositories) Driver() api.DriverRepository {
	return r.driverRepository
}

func (r *bobRepositories) ImportRun() api.ImportRunRepository {
	return r.importRunRepository
}
