package sqldb

import (
	"context"
	"database/sql"

	"github.com/bonial-oss/change-monitor/pkg/models"
	"github.com/pkg/errors"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

const (
	// DriverSQLite is the database/sql driver name of modernc.org/sqlite.
	DriverSQLite = "sqlite"

	// DriverLibSQL is the database/sql driver name of the libSQL client.
	DriverLibSQL = "libsql"
)

const schema = `CREATE TABLE IF NOT EXISTS monitor_values (
	name  TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// Store persists records in the monitor_values table of a SQL database.
type Store struct {
	db *sql.DB
}

// Open opens a database connection using driver and dsn and makes sure the
// schema exists.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s database", driver)
	}

	// A run issues strictly sequential statements. A single connection also
	// keeps sqlite::memory: databases alive for the lifetime of the store.
	db.SetMaxOpenConns(1)

	s, err := New(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// New creates a *Store on top of an existing database handle and creates the
// schema if needed. The store takes ownership of db.
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, errors.Wrapf(err, "failed to create schema")
	}

	return &Store{db: db}, nil
}

// Get implements store.Interface.
func (s *Store) Get(ctx context.Context, name string) (*models.Record, error) {
	record := &models.Record{Name: name}

	err := s.db.QueryRowContext(ctx, `SELECT value FROM monitor_values WHERE name = ?`, name).Scan(&record.Value)
	if err == sql.ErrNoRows {
		return nil, models.ErrRecordNotFound
	} else if err != nil {
		return nil, errors.Wrapf(err, "failed to query record %q", name)
	}

	return record, nil
}

// Put implements store.Interface.
func (s *Store) Put(ctx context.Context, record *models.Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO monitor_values (name, value) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET value = excluded.value`,
		record.Name, record.Value,
	)
	if err != nil {
		return errors.Wrapf(err, "failed to upsert record %q", record.Name)
	}

	return nil
}

// Delete implements store.Interface.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM monitor_values WHERE name = ?`, name)
	if err != nil {
		return errors.Wrapf(err, "failed to delete record %q", name)
	}

	return nil
}

// Close implements store.Interface.
func (s *Store) Close() error {
	return s.db.Close()
}
