package core

import (
	"context"

	"chocan/internal/infra/persistence/postgres"
)

// NewPostgresStore opens the Postgres record store from the provided DSN.
func NewPostgresStore(ctx context.Context, dsn string) (*postgres.Store, error) {
	return postgres.NewStore(ctx, dsn)
}
