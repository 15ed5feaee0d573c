package storage

import (
	"embed"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// Migrate brings the schema of the given backend up to date. dsn is the
// Postgres connection string or the SQLite file path.
func Migrate(driver, dsn string) error {
	src, err := iofs.New(migrationsFS, "migrations/"+driver)
	if err != nil {
		return errors.Wrap(err, "load migrations")
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL(driver, dsn))
	if err != nil {
		return errors.Wrap(err, "open migration target")
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "apply migrations")
	}
	return nil
}

func databaseURL(driver, dsn string) string {
	switch driver {
	case DriverPostgres:
		// migrate's pgx/v5 driver registers the pgx5:// scheme
		for _, scheme := range []string{"postgresql://", "postgres://"} {
			if strings.HasPrefix(dsn, scheme) {
				return "pgx5://" + strings.TrimPrefix(dsn, scheme)
			}
		}
		return dsn
	case DriverSQLite:
		return "sqlite://" + dsn
	}
	return dsn
}
