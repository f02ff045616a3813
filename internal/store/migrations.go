package store

import (
	"github.com/go-pg/migrations/v8"
	"github.com/go-pg/pg/v10"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Migrate applies every migration under migrationsDir (SQL files named
// NNN_description.up.sql/.down.sql) to the database at dbURL. Grounded on
// determined-ai/determined's master/internal/db.PgDB.Migrate: go-pg/migrations
// uses the go-pg/pg connection API rather than pgx, so migration application
// uses a one-off go-pg/pg connection separate from the sqlx/pgx pool the
// Postgres store uses for normal operation.
func Migrate(dbURL, migrationsDir string) error {
	opts, err := pg.ParseURL(dbURL)
	if err != nil {
		return errors.Wrap(err, "parse postgres url for migrations")
	}
	conn := pg.Connect(opts)
	defer func() {
		if cErr := conn.Close(); cErr != nil {
			log.WithError(cErr).Error("failed to close migration connection")
		}
	}()

	collection := migrations.NewCollection()
	collection.DisableSQLAutodiscover(true)
	if err := collection.DiscoverSQLMigrations(migrationsDir); err != nil {
		return errors.Wrapf(err, "discover migrations under %s", migrationsDir)
	}
	if len(collection.Migrations()) == 0 {
		return errors.New("no migrations discovered")
	}

	oldVersion, newVersion, err := collection.Run(conn, "up")
	if err != nil {
		return errors.Wrap(err, "apply migrations")
	}
	if oldVersion == newVersion {
		log.Infof("no migrations to apply; version %d", newVersion)
	} else {
		log.Infof("migrated store schema from %d to %d", oldVersion, newVersion)
	}
	return nil
}
