package migrate

import (
	"embed"
	"errors"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrations embed.FS

// MigrateDb applies the embedded migrations
func MigrateDb(dbURI string) error {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, toMigrateURL(dbURI))
	if err != nil {
		return err
	}
	return up(m)
}

// MigrateDbFromSource applies migrations read from sourceURL (e.g. file://db/migrations).
// An empty sourceURL uses the embedded migrations.
func MigrateDbFromSource(dbURI, sourceURL string) error {
	if sourceURL == "" {
		return MigrateDb(dbURI)
	}
	m, err := migrate.New(sourceURL, toMigrateURL(dbURI))
	if err != nil {
		return err
	}
	return up(m)
}

// Version returns the currently applied schema version
func Version(dbURI string) (version uint, dirty bool, err error) {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return 0, false, err
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, toMigrateURL(dbURI))
	if err != nil {
		return 0, false, err
	}
	defer m.Close()
	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func up(m *migrate.Migrate) error {
	defer m.Close()

	err := m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}

func toMigrateURL(dbURI string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(dbURI, prefix) {
			return strings.Replace(dbURI, prefix, "pgx://", 1)
		}
	}
	return dbURI
}
