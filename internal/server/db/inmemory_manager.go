package db

import (
	"context"
	"database/sql"

	"github.com/vevey/vevey/internal/server/records"
	"github.com/vevey/vevey/internal/server/sessions"
	"github.com/vevey/vevey/internal/server/users"
)

// InMemoryStoreManager backs every store with the in-process
// implementations. Used by tests and local development without Postgres.
type InMemoryStoreManager struct {
	users    users.Repository
	sessions sessions.Store
	notes    records.NoteStore
	posts    records.PostStore
}

func (m InMemoryStoreManager) Conn() *sql.DB {
	return nil
}

func (m InMemoryStoreManager) RunMigrations(ctx context.Context) error {
	return nil
}

func (m InMemoryStoreManager) Users() users.Repository {
	return m.users
}

func (m InMemoryStoreManager) Sessions() sessions.Store {
	return m.sessions
}

func (m InMemoryStoreManager) Notes() records.NoteStore {
	return m.notes
}

func (m InMemoryStoreManager) Posts() records.PostStore {
	return m.posts
}

// InTx passes the shared stores through. The memory implementations lock
// per operation, so there is no transaction to scope.
func (m InMemoryStoreManager) InTx(ctx context.Context, fn func(ctx context.Context, repo users.Repository, store sessions.Store) error) error {
	return fn(ctx, m.users, m.sessions)
}

func (m InMemoryStoreManager) Close() error {
	return nil
}

func NewInMemoryStoreManager() StoreManager {
	return InMemoryStoreManager{
		users:    users.NewMemoryRepository(),
		sessions: sessions.NewMemoryStore(),
		notes:    records.NewMemoryNoteStore(),
		posts:    records.NewMemoryPostStore(),
	}
}
