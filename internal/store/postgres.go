package store

import (
	"database/sql"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib" // registers the "pgx" sql.DB driver
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Postgres is a Store backed by a single table of path/value pairs. Grounded
// on determined-ai/determined's master/internal/db.PgDB: a thin sqlx wrapper
// with a retrying connect helper and errors.Wrapf on every query path.
type Postgres struct {
	sql *sqlx.DB
}

// ConnectPostgres connects to url, retrying with a fixed backoff the way
// PgDB.ConnectPostgres does, since the coordinator may start before the
// database is reachable (e.g. in a freshly scheduled pod).
func ConnectPostgres(url string) (*Postgres, error) {
	const maxTries = 15
	const retryDelay = 4 * time.Second

	var lastErr error
	for tries := 0; tries < maxTries; tries++ {
		db, err := sqlx.Connect("pgx", url)
		if err == nil {
			return &Postgres{sql: db}, nil
		}
		lastErr = err
		log.WithError(err).Warnf("failed to connect to postgres, trying again in %s", retryDelay)
		time.Sleep(retryDelay)
	}
	return nil, errors.Wrapf(lastErr, "could not connect to database after %d tries", maxTries)
}

// Get returns the value at path, or ErrNotFound.
func (p *Postgres) Get(path string) ([]byte, error) {
	var value []byte
	err := p.sql.QueryRowx(`SELECT value FROM store_entries WHERE path = $1`, path).Scan(&value)
	switch {
	case err == sql.ErrNoRows:
		return nil, ErrNotFound
	case err != nil:
		return nil, errors.Wrapf(err, "get %q", path)
	}
	return value, nil
}

// GetChildren returns the immediate child path segments beneath path.
func (p *Postgres) GetChildren(path string) ([]string, error) {
	rows, err := p.sql.Queryx(`SELECT path FROM store_entries WHERE path LIKE $1`, path+"/%")
	if err != nil {
		return nil, errors.Wrapf(err, "get children of %q", path)
	}
	defer rows.Close()

	prefix := path + "/"
	seen := make(map[string]struct{})
	var children []string
	for rows.Next() {
		var full string
		if err := rows.Scan(&full); err != nil {
			return nil, errors.Wrapf(err, "scan child of %q", path)
		}
		rest := strings.TrimPrefix(full, prefix)
		child := rest
		if idx := strings.Index(rest, "/"); idx >= 0 {
			child = rest[:idx]
		}
		if _, ok := seen[child]; !ok {
			seen[child] = struct{}{}
			children = append(children, child)
		}
	}
	return children, rows.Err()
}

// Set writes a single path/value pair, upserting.
func (p *Postgres) Set(path string, value []byte) error {
	return p.SetMany(map[string][]byte{path: value})
}

// SetMany upserts every path/value pair in a single transaction, giving
// callers atomicity across paths (spec §6's setMany contract).
func (p *Postgres) SetMany(values map[string][]byte) error {
	if len(values) == 0 {
		return nil
	}
	tx, err := p.sql.Beginx()
	if err != nil {
		return errors.Wrap(err, "begin setMany transaction")
	}
	defer func() {
		if tx != nil {
			if rErr := tx.Rollback(); rErr != nil && rErr != sql.ErrTxDone {
				log.WithError(rErr).Error("failed to rollback setMany transaction")
			}
		}
	}()

	const upsert = `
		INSERT INTO store_entries (path, value) VALUES ($1, $2)
		ON CONFLICT (path) DO UPDATE SET value = EXCLUDED.value`
	for path, value := range values {
		if _, err := tx.Exec(upsert, path, value); err != nil {
			return errors.Wrapf(err, "set %q", path)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit setMany transaction")
	}
	tx = nil
	return nil
}

// ReadModifyWrite locks every row in paths with SELECT ... FOR UPDATE inside
// a single transaction, runs fn against the values it found, and upserts
// whatever fn returns before committing — giving the recorder's tombstone
// rewrite the same compound-atomicity guarantee Memory's single mutex gives
// it, without holding a process-wide lock across the round trip.
func (p *Postgres) ReadModifyWrite(
	paths []string, fn func(current map[string][]byte) (map[string][]byte, error),
) error {
	tx, err := p.sql.Beginx()
	if err != nil {
		return errors.Wrap(err, "begin readModifyWrite transaction")
	}
	defer func() {
		if tx != nil {
			if rErr := tx.Rollback(); rErr != nil && rErr != sql.ErrTxDone {
				log.WithError(rErr).Error("failed to rollback readModifyWrite transaction")
			}
		}
	}()

	current := make(map[string][]byte, len(paths))
	for _, path := range paths {
		var value []byte
		err := tx.QueryRowx(`SELECT value FROM store_entries WHERE path = $1 FOR UPDATE`, path).Scan(&value)
		switch {
		case err == sql.ErrNoRows:
			continue
		case err != nil:
			return errors.Wrapf(err, "lock %q for readModifyWrite", path)
		}
		current[path] = value
	}

	writes, err := fn(current)
	if err != nil {
		return err
	}

	const upsert = `
		INSERT INTO store_entries (path, value) VALUES ($1, $2)
		ON CONFLICT (path) DO UPDATE SET value = EXCLUDED.value`
	for path, value := range writes {
		if _, err := tx.Exec(upsert, path, value); err != nil {
			return errors.Wrapf(err, "set %q", path)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit readModifyWrite transaction")
	}
	tx = nil
	return nil
}

// DeleteAll removes path and everything beneath it.
func (p *Postgres) DeleteAll(path string) error {
	tx, err := p.sql.Beginx()
	if err != nil {
		return errors.Wrap(err, "begin deleteAll transaction")
	}
	defer func() {
		if tx != nil {
			if rErr := tx.Rollback(); rErr != nil && rErr != sql.ErrTxDone {
				log.WithError(rErr).Error("failed to rollback deleteAll transaction")
			}
		}
	}()

	if _, err := tx.Exec(`DELETE FROM store_entries WHERE path = $1 OR path LIKE $2`, path, path+"/%"); err != nil {
		return errors.Wrapf(err, "delete all under %q", path)
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit deleteAll transaction")
	}
	tx = nil
	return nil
}

// Close closes the underlying connection pool.
func (p *Postgres) Close() error {
	return p.sql.Close()
}
