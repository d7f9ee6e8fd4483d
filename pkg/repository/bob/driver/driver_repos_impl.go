//nolint:whitespace // can't make both editor and linter happy
package driver

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"

	"github.com/mpapenbr/racelog-report/pkg/model"
	"github.com/mpapenbr/racelog-report/pkg/racelog"
	"github.com/mpapenbr/racelog-report/pkg/repository/api"
	bobCtx "github.com/mpapenbr/racelog-report/pkg/repository/bob/context"
)

const tableName = "driver"

type (
	repo struct {
		conn bob.Executor
	}
)

var _ api.DriverRepository = (*repo)(nil)

func NewDriverRepository(conn bob.Executor) api.DriverRepository {
	return &repo{
		conn: conn,
	}
}

func (r *repo) Create(
	ctx context.Context,
	runID uuid.UUID,
	entries []racelog.AbbreviationEntry,
) error {
	if len(entries) == 0 {
		return nil
	}
	mods := []bob.Mod[*dialect.InsertQuery]{
		im.Into(tableName, "run_id", "code", "driver_name", "team"),
	}
	for _, e := range entries {
		mods = append(mods, im.Values(psql.Arg(runID, e.Code, e.DriverName, e.Team)))
	}
	_, err := psql.Insert(mods...).Exec(ctx, r.getExecutor(ctx))
	return err
}

func (r *repo) LoadAll(ctx context.Context, order racelog.Order) (
	[]model.DriverRow, error,
) {
	q := r.selectQuery()
	if order == racelog.OrderDesc {
		q.Apply(sm.OrderBy("driver_name").Desc(), sm.OrderBy("code").Asc())
	} else {
		q.Apply(sm.OrderBy("driver_name").Asc(), sm.OrderBy("code").Asc())
	}
	return bob.All(ctx, r.getExecutor(ctx), q, scan.StructMapper[model.DriverRow]())
}

func (r *repo) LoadByCode(ctx context.Context, code string) (
	*model.DriverRow, error,
) {
	q := r.selectQuery()
	q.Apply(sm.Where(psql.Quote("code").EQ(psql.Arg(code))))
	ret, err := bob.One(ctx, r.getExecutor(ctx), q, scan.StructMapper[model.DriverRow]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, api.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ret, nil
}

// deletes all entries from the database, returns number of rows deleted.
func (r *repo) DeleteAll(ctx context.Context) (int, error) {
	ret, err := psql.Delete(dm.From(tableName)).Exec(ctx, r.getExecutor(ctx))
	return int(ret), err
}

func (r *repo) selectQuery() bob.BaseQuery[*dialect.SelectQuery] {
	return psql.Select(
		sm.Columns("id", "run_id", "code", "driver_name", "team"),
		sm.From(tableName),
	)
}

func (r *repo) getExecutor(ctx context.Context) bob.Executor {
	if executor := bobCtx.FromContext(ctx); executor != nil {
		return executor
	}
	return r.conn
}
