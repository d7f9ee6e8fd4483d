//nolint:dupl,errcheck //ok for this test code
package driver_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/stephenafamo/bob"
	"gotest.tools/v3/assert"

	"github.com/mpapenbr/racelog-report/pkg/racelog"
	"github.com/mpapenbr/racelog-report/pkg/repository/api"
	"github.com/mpapenbr/racelog-report/pkg/repository/bob/driver"
	base "github.com/mpapenbr/racelog-report/testsupport/basedata"
	"github.com/mpapenbr/racelog-report/testsupport/testdb"
)

func TestLoadAll(t *testing.T) {
	pool := testdb.InitTestDB()
	db := bob.NewDB(stdlib.OpenDBFromPool(pool))
	run := base.CreateSampleImportRun(db)
	r := driver.NewDriverRepository(db)
	ctx := context.Background()

	assert.NilError(t, r.Create(ctx, run.ID, base.SampleEntries()))

	tests := []struct {
		name  string
		order racelog.Order
		want  []string
	}{
		{"asc", racelog.OrderAsc, []string{"KRF", "LHM", "SVF"}},
		{"desc", racelog.OrderDesc, []string{"SVF", "LHM", "KRF"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := r.LoadAll(ctx, tt.order)
			assert.NilError(t, err)
			got := make([]string, 0, len(rows))
			for i := range rows {
				got = append(got, rows[i].Code)
			}
			assert.DeepEqual(t, got, tt.want)
		})
	}
}

func TestLoadByCode(t *testing.T) {
	pool := testdb.InitTestDB()
	db := bob.NewDB(stdlib.OpenDBFromPool(pool))
	run := base.CreateSampleImportRun(db)
	r := driver.NewDriverRepository(db)
	ctx := context.Background()
	assert.NilError(t, r.Create(ctx, run.ID, base.SampleEntries()))

	got, err := r.LoadByCode(ctx, "LHM")
	assert.NilError(t, err)
	assert.Equal(t, got.DriverName, "Lewis Hamilton")
	assert.Equal(t, got.Team, "MERCEDES")
	assert.Equal(t, got.RunID, run.ID)

	_, err = r.LoadByCode(ctx, "XXX")
	assert.Assert(t, errors.Is(err, api.ErrNotFound))
}

func TestDuplicateCode(t *testing.T) {
	pool := testdb.InitTestDB()
	db := bob.NewDB(stdlib.OpenDBFromPool(pool))
	run := base.CreateSampleImportRun(db)
	r := driver.NewDriverRepository(db)
	ctx := context.Background()
	assert.NilError(t, r.Create(ctx, run.ID, base.SampleEntries()))

	err := r.Create(ctx, run.ID, base.SampleEntries()[:1])
	assert.Assert(t, err != nil)

	num, err := r.DeleteAll(ctx)
	assert.NilError(t, err)
	assert.Equal(t, num, 3)
}
