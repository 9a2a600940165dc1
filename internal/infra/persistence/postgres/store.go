// Package postgres provides the PostgreSQL record store. The schema is
// applied on startup through the shared migration set.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"chocan/internal/infra/persistence/schema"
	"chocan/internal/infra/persistence/sqlstore"
	"chocan/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.RecordStore = (*Store)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/chocan?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Dialect describes PostgreSQL to the shared SQL store.
var Dialect = sqlstore.Dialect{
	Name:          schema.DialectPostgres,
	Rebind:        sqlstore.DollarRebind,
	IsConstraint:  IsConstraint,
	NameCollation: ` COLLATE "C"`,
}

// Store is the Postgres-backed record store.
type Store struct {
	*sqlstore.Store
}

// NewStore opens a Postgres-backed store using dsn (falls back to a local
// default), verifies connectivity and applies the schema.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("%w: open postgres: %w", domain.ErrStorage, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping postgres: %w", domain.ErrStorage, err)
	}
	if _, err := schema.Apply(db, schema.DialectPostgres); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	return &Store{Store: sqlstore.New(db, Dialect)}, nil
}

// IsConstraint reports whether err carries an integrity constraint SQLSTATE
// (class 23).
func IsConstraint(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return strings.HasPrefix(pgErr.Code, "23")
}

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
