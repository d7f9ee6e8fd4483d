package importrun_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/stephenafamo/bob"
	"gotest.tools/v3/assert"

	"github.com/mpapenbr/racelog-report/pkg/repository/api"
	"github.com/mpapenbr/racelog-report/pkg/repository/bob/importrun"
	base "github.com/mpapenbr/racelog-report/testsupport/basedata"
	"github.com/mpapenbr/racelog-report/testsupport/testdb"
)

func TestLoadLatest(t *testing.T) {
	pool := testdb.InitTestDB()
	db := bob.NewDB(stdlib.OpenDBFromPool(pool))
	r := importrun.NewImportRunRepository(db)
	ctx := context.Background()

	_, err := r.LoadLatest(ctx)
	assert.Assert(t, errors.Is(err, api.ErrNotFound))

	older := base.SampleImportRun()
	assert.NilError(t, r.Create(ctx, older))
	newer := base.SampleImportRun()
	newer.ImportedAt = older.ImportedAt.Add(time.Minute)
	newer.Checksum = "def"
	assert.NilError(t, r.Create(ctx, newer))

	got, err := r.LoadLatest(ctx)
	assert.NilError(t, err)
	assert.Equal(t, got.ID, newer.ID)
	assert.Equal(t, got.Checksum, "def")
	assert.Equal(t, got.Records, int32(3))
	assert.Assert(t, got.ImportedAt.Equal(newer.ImportedAt))
	assert.DeepEqual(t, got.Warnings, newer.Warnings)
}
