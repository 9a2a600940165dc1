package core

import "chocan/internal/infra/persistence/sqlite"

// NewSQLiteStore opens the SQLite record store at path (empty for the default
// chocan.db).
func NewSQLiteStore(path string) (*sqlite.Store, error) {
	return sqlite.NewStore(path)
}
