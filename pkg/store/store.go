package store

import (
	"context"
	"net/url"
	"strings"

	"github.com/bonial-oss/change-monitor/pkg/models"
	"github.com/bonial-oss/change-monitor/pkg/store/dynamo"
	"github.com/bonial-oss/change-monitor/pkg/store/file"
	"github.com/bonial-oss/change-monitor/pkg/store/memory"
	"github.com/bonial-oss/change-monitor/pkg/store/sqldb"
	"github.com/pkg/errors"
)

const (
	// SchemeMemory keeps records in process memory. Records are lost when
	// the process exits, which makes every run a first run. This is intended
	// for testing and dry runs only.
	SchemeMemory = "memory"

	// SchemeFile persists records in a JSON document, e.g.
	// file:///var/lib/change-monitor/state.json.
	SchemeFile = "file"

	// SchemeSQLite persists records in a SQLite database, e.g.
	// sqlite:///var/lib/change-monitor/state.db or sqlite::memory:.
	SchemeSQLite = "sqlite"

	// SchemeLibSQL persists records in a libSQL/Turso database, e.g.
	// libsql://my-db.turso.io?authToken=secret.
	SchemeLibSQL = "libsql"

	// SchemeDynamoDB persists records in a DynamoDB table keyed by the
	// string attribute "name", e.g. dynamodb://my-table?region=eu-west-1.
	SchemeDynamoDB = "dynamodb"
)

// Schemes lists all supported store URL schemes.
var Schemes = []string{SchemeMemory, SchemeFile, SchemeSQLite, SchemeLibSQL, SchemeDynamoDB}

// Interface is the interface for a monitor state store.
type Interface interface {
	// Get retrieves the record of a monitor by its name. Must return
	// models.ErrRecordNotFound if the record does not exist.
	Get(ctx context.Context, name string) (*models.Record, error)

	// Put creates or replaces the record of a monitor.
	Put(ctx context.Context, record *models.Record) error

	// Delete deletes the record of a monitor by its name. It must not be
	// treated as an error if the record does not exist.
	Delete(ctx context.Context, name string) error

	// Close releases the connection to the store.
	Close() error
}

// Supported returns an error if rawURL cannot be parsed or names a scheme
// without store implementation. It does not perform any I/O.
func Supported(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}

	for _, scheme := range Schemes {
		if strings.EqualFold(u.Scheme, scheme) {
			return nil
		}
	}

	return errors.Errorf("unsupported store %q", u.Scheme)
}

// Open opens a connection to the store identified by rawURL. The caller must
// close the returned store.
func Open(ctx context.Context, rawURL string) (Interface, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid store URL")
	}

	var s Interface

	switch strings.ToLower(u.Scheme) {
	case SchemeMemory:
		return memory.New(), nil
	case SchemeFile:
		return file.New(hostPath(u)), nil
	case SchemeSQLite:
		s, err = sqldb.Open(ctx, sqldb.DriverSQLite, sqliteDSN(u))
	case SchemeLibSQL:
		s, err = sqldb.Open(ctx, sqldb.DriverLibSQL, u.String())
	case SchemeDynamoDB:
		query := u.Query()

		s, err = dynamo.Open(ctx, dynamo.Options{
			Table:    u.Host,
			Region:   query.Get("region"),
			Endpoint: query.Get("endpoint"),
		})
	default:
		return nil, errors.Errorf("unsupported store %q", u.Scheme)
	}

	if err != nil {
		return nil, err
	}

	return s, nil
}

// hostPath joins host and path so that both file:///abs/path and
// file://relative/path are accepted.
func hostPath(u *url.URL) string {
	if u.Opaque != "" {
		return u.Opaque
	}

	return u.Host + u.Path
}

func sqliteDSN(u *url.URL) string {
	dsn := hostPath(u)

	if u.RawQuery != "" {
		dsn += "?" + u.RawQuery
	}

	return dsn
}
