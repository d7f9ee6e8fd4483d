package tcpostgres

import (
	"context"
	"testing"

	"gotest.tools/v3/assert"
)

func TestSetupTestDb(t *testing.T) {
	pool := SetupTestDb()
	ClearAllTables(pool)

	var num int
	err := pool.QueryRow(context.Background(),
		"select count(*) from information_schema.tables "+
			"where table_name in ('report','driver','import_run')").Scan(&num)
	assert.NilError(t, err)
	assert.Equal(t, num, 3)
	assert.Equal(t, pool.Config().ConnConfig.Database, dbName)
}
