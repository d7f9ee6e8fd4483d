//nolint:whitespace // can't make both editor and linter happy
package importrun

import (
	"context"
	"database/sql"
	"errors"

	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"

	"github.com/mpapenbr/racelog-report/pkg/model"
	"github.com/mpapenbr/racelog-report/pkg/repository/api"
	bobCtx "github.com/mpapenbr/racelog-report/pkg/repository/bob/context"
)

const tableName = "import_run"

type (
	repo struct {
		conn bob.Executor
	}
)

var _ api.ImportRunRepository = (*repo)(nil)

func NewImportRunRepository(conn bob.Executor) api.ImportRunRepository {
	return &repo{
		conn: conn,
	}
}

func (r *repo) Create(ctx context.Context, run *model.ImportRun) error {
	_, err := psql.Insert(
		im.Into(tableName,
			"id", "imported_at", "abbreviations", "start_log", "end_log",
			"checksum", "records", "warnings"),
		im.Values(psql.Arg(
			run.ID,
			run.ImportedAt,
			run.Abbreviations,
			run.StartLog,
			run.EndLog,
			run.Checksum,
			run.Records,
			run.Warnings,
		)),
	).Exec(ctx, r.getExecutor(ctx))
	return err
}

func (r *repo) LoadLatest(ctx context.Context) (*model.ImportRun, error) {
	q := psql.Select(
		sm.Columns("id", "imported_at", "abbreviations", "start_log", "end_log",
			"checksum", "records", "warnings"),
		sm.From(tableName),
		sm.OrderBy("imported_at").Desc(),
		sm.Limit(1),
	)
	ret, err := bob.One(ctx, r.getExecutor(ctx), q, scan.StructMapper[model.ImportRun]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, api.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ret, nil
}

func (r *repo) getExecutor(ctx context.Context) bob.Executor {
	if executor := bobCtx.FromContext(ctx); executor != nil {
		return executor
	}
	return r.conn
}
