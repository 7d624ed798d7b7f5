// Package db owns the database connection: opening it, waiting for it to
// become reachable, running migrations, and handing out the stores bound
// to it.
package db

import (
	"context"
	"database/sql"

	"github.com/vevey/vevey/internal/server/records"
	"github.com/vevey/vevey/internal/server/sessions"
	"github.com/vevey/vevey/internal/server/users"
)

type StoreManager interface {
	users.TxRunner
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Users() users.Repository
	Sessions() sessions.Store
	Notes() records.NoteStore
	Posts() records.PostStore
	Close() error
}
