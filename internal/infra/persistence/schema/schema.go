// Package schema owns the record store DDL and applies it through
// sql-migrate so repeated opens of the same location are no-ops.
package schema

import (
	"bufio"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	migrate "github.com/rubenv/sql-migrate"
)

// Dialect names understood by sql-migrate.
const (
	DialectSQLite   = "sqlite3"
	DialectPostgres = "postgres"
)

// MigrationTable records applied migrations.
const MigrationTable = "chocan_migrations"

//go:embed sqlite.sql
var sqliteDDL string

//go:embed postgres.sql
var postgresDDL string

// Source returns the migration source for dialect.
func Source(dialect string) (*migrate.MemoryMigrationSource, error) {
	var ddl string
	switch dialect {
	case DialectSQLite:
		ddl = sqliteDDL
	case DialectPostgres:
		ddl = postgresDDL
	default:
		return nil, fmt.Errorf("unsupported schema dialect %q", dialect)
	}
	return &migrate.MemoryMigrationSource{
		Migrations: []*migrate.Migration{{
			Id: "0001_records",
			Up: SplitStatements(ddl),
			Down: []string{
				"DROP TABLE IF EXISTS consultations",
				"DROP TABLE IF EXISTS provider_directory",
				"DROP TABLE IF EXISTS providers",
				"DROP TABLE IF EXISTS members",
			},
		}},
	}, nil
}

// Apply runs every pending migration for dialect against db and returns the
// number applied. A second call against the same database applies zero.
func Apply(db *sql.DB, dialect string) (int, error) {
	src, err := Source(dialect)
	if err != nil {
		return 0, err
	}
	set := migrate.MigrationSet{TableName: MigrationTable}
	n, err := set.Exec(db, dialect, src, migrate.Up)
	if err != nil {
		return n, fmt.Errorf("apply %s schema: %w", dialect, err)
	}
	return n, nil
}

// SplitStatements splits a semicolon-terminated DDL script into executable statements.
// It drops blank lines and single-line comments that start with "--".
func SplitStatements(ddl string) []string {
	scanner := bufio.NewScanner(strings.NewReader(ddl))
	var stmts []string
	var current strings.Builder

	flush := func() {
		stmt := strings.TrimSpace(current.String())
		if stmt != "" {
			stmts = append(stmts, stmt)
		}
		current.Reset()
	}

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteByte('\n')
		if strings.HasSuffix(trimmed, ";") {
			flush()
		}
	}
	flush()
	return stmts
}
