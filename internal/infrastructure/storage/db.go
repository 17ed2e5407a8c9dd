package storage

import (
	"database/sql"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/flowmesh/flowmesh/internal/config"
)

// NewDB opens a bun connection pool against the configured PostgreSQL
// instance. The pool is shared across runs; each SQL call borrows one
// connection for the duration of its transaction.
func NewDB(cfg config.Database) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithAddr(cfg.Addr),
		pgdriver.WithInsecure(cfg.Insecure),
		pgdriver.WithDatabase(cfg.Name),
		pgdriver.WithUser(cfg.User),
		pgdriver.WithPassword(cfg.Password),
		pgdriver.WithTimeout(5*time.Second),
		pgdriver.WithDialTimeout(5*time.Second),
		pgdriver.WithReadTimeout(30*time.Second),
		pgdriver.WithWriteTimeout(30*time.Second),
	))

	return bun.NewDB(sqldb, pgdialect.New())
}
