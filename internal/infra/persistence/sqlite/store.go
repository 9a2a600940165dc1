// Package sqlite provides the embedded SQLite record store.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	msqlite "modernc.org/sqlite" // pure go sqlite driver
	sqlite3 "modernc.org/sqlite/lib"

	"chocan/internal/infra/persistence/schema"
	"chocan/internal/infra/persistence/sqlstore"
	"chocan/pkg/domain"
)

var _ domain.RecordStore = (*Store)(nil)

const defaultPath = "chocan.db"

// Store persists records to a single SQLite file.
type Store struct {
	*sqlstore.Store
	path string
}

// Dialect describes SQLite to the shared SQL store.
var Dialect = sqlstore.Dialect{
	Name:         schema.DialectSQLite,
	IsConstraint: IsConstraint,
}

// NewStore opens (creating if needed) the database at path and applies the
// schema. An empty path uses chocan.db in the working directory.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%w: create dirs: %w", domain.ErrStorage, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %w", domain.ErrStorage, err)
	}
	// One connection keeps writes serialised and ":memory:" databases alive.
	db.SetMaxOpenConns(1)
	if _, err := schema.Apply(db, schema.DialectSQLite); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	return &Store{Store: sqlstore.New(db, Dialect), path: path}, nil
}

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

// IsConstraint reports whether err is an SQLite constraint failure
// (primary key, unique, check or not null).
func IsConstraint(err error) bool {
	var se *msqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}
