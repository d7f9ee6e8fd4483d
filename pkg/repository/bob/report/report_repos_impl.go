//nolint:whitespace // can't make both editor and linter happy
package report

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"

	"github.com/mpapenbr/racelog-report/pkg/db/mytypes"
	"github.com/mpapenbr/racelog-report/pkg/model"
	"github.com/mpapenbr/racelog-report/pkg/racelog"
	"github.com/mpapenbr/racelog-report/pkg/repository/api"
	bobCtx "github.com/mpapenbr/racelog-report/pkg/repository/bob/context"
)

const tableName = "report"

var (
	insertColumns = []string{
		"run_id", "position", "code", "driver_name", "team", "duration_ms",
	}
	selectColumns = []any{
		"id", "run_id", "position", "code", "driver_name", "team", "duration_ms",
	}
)

type (
	repo struct {
		conn bob.Executor
	}
)

var _ api.ReportRepository = (*repo)(nil)

func NewReportRepository(conn bob.Executor) api.ReportRepository {
	return &repo{
		conn: conn,
	}
}

// Create inserts all records with a single statement.
func (r *repo) Create(
	ctx context.Context,
	runID uuid.UUID,
	records []racelog.LapRecord,
) error {
	if len(records) == 0 {
		return nil
	}
	mods := []bob.Mod[*dialect.InsertQuery]{im.Into(tableName, insertColumns...)}
	for i := range records {
		rec := &records[i]
		mods = append(mods, im.Values(psql.Arg(
			runID,
			int32(rec.Rank),
			rec.Code,
			rec.DriverName,
			rec.Team,
			mytypes.LapTime(rec.Duration),
		)))
	}
	_, err := psql.Insert(mods...).Exec(ctx, r.getExecutor(ctx))
	return err
}

func (r *repo) LoadAll(ctx context.Context, order racelog.Order) (
	[]model.ReportRow, error,
) {
	q := psql.Select(
		sm.Columns(selectColumns...),
		sm.From(tableName),
	)
	if order == racelog.OrderDesc {
		q.Apply(
			sm.OrderBy("duration_ms").Desc(),
			sm.OrderBy("position").Asc(),
		)
	} else {
		q.Apply(
			sm.OrderBy("duration_ms").Asc(),
			sm.OrderBy("position").Asc(),
		)
	}
	return bob.All(ctx, r.getExecutor(ctx), q, scan.StructMapper[model.ReportRow]())
}

func (r *repo) Count(ctx context.Context) (int, error) {
	q := psql.Select(
		sm.Columns(psql.Raw("count(*)")),
		sm.From(tableName),
	)
	ret, err := bob.One(ctx, r.getExecutor(ctx), q, scan.SingleColumnMapper[int64])
	return int(ret), err
}

// deletes all entries from the database, returns number of rows deleted.
func (r *repo) DeleteAll(ctx context.Context) (int, error) {
	ret, err := psql.Delete(dm.From(tableName)).Exec(ctx, r.getExecutor(ctx))
	return int(ret), err
}

func (r *repo) getExecutor(ctx context.Context) bob.Executor {
	if executor := bobCtx.FromContext(ctx); executor != nil {
		return executor
	}
	return r.conn
}
