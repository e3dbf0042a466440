package database

import (
	"database/sql"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

// New wraps an already-configured sql.DB in a bun.DB speaking the
// Postgres dialect. Pool limits and the ping are the caller's job.
func New(sqlDB *sql.DB) *bun.DB {
	return bun.NewDB(sqlDB, pgdialect.New())
}
