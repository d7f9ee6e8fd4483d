//nolint:errcheck // testsetup
package tcpostgres

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mpapenbr/racelog-report/log"
	"github.com/mpapenbr/racelog-report/pkg/db/migrate"
	database "github.com/mpapenbr/racelog-report/pkg/db/postgres"
)

const (
	containerName = "racelog-report-test"
	image         = "postgres:16"
	dbUser        = "postgres"
	dbPassword    = "password"
	dbName        = "postgres"
)

// create a pg connection pool for the racelog-report testdatabase
func SetupTestDb() *pgxpool.Pool {
	ctx := context.Background()
	port, err := nat.NewPort("tcp", "5432")
	if err != nil {
		log.Fatal("invalid port", log.ErrorField(err))
	}
	container, err := startContainer(ctx, port)
	if err != nil {
		log.Fatal("could not start postgres container", log.ErrorField(err))
	}
	containerPort, _ := container.MappedPort(ctx, port)
	host, _ := container.Host(ctx)
	dbUrl := fmt.Sprintf("postgresql://%s:%s@%s:%s/%s",
		dbUser, dbPassword, host, containerPort.Port(), dbName)

	return setupWithUrl(dbUrl)
}

// startContainer starts (or reuses) a postgres container with fsync disabled.
// The container is shared between test packages.
func startContainer(ctx context.Context, port nat.Port) (
	testcontainers.Container, error,
) {
	req := testcontainers.ContainerRequest{
		Name:         containerName,
		Image:        image,
		ExposedPorts: []string{string(port)},
		Cmd:          []string{"postgres", "-c", "fsync=off"},
		Env: map[string]string{
			"POSTGRES_USER":     dbUser,
			"POSTGRES_PASSWORD": dbPassword,
			"POSTGRES_DB":       dbName,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(time.Minute),
	}
	return testcontainers.GenericContainer(ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
			Reuse:            true,
		})
}

// uses the database referenced by TESTDB_URL, no container is started
func SetupExternalTestDb() *pgxpool.Pool {
	return setupWithUrl(os.Getenv("TESTDB_URL"))
}

func setupWithUrl(dbUrl string) *pgxpool.Pool {
	if err := migrate.MigrateDb(dbUrl); err != nil {
		log.Fatal("could not migrate test database", log.ErrorField(err))
	}
	return database.InitWithUrl(dbUrl)
}

func ClearReportTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from report")
}

func ClearDriverTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from driver")
}

func ClearImportRunTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from import_run")
}

func ClearAllTables(pool *pgxpool.Pool) {
	ClearReportTable(pool)
	ClearDriverTable(pool)
	ClearImportRunTable(pool)
}
