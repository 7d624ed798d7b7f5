package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"

	"github.com/vevey/vevey/internal/dbx"
	"github.com/vevey/vevey/internal/server/migrations"
	"github.com/vevey/vevey/internal/server/records"
	"github.com/vevey/vevey/internal/server/sessions"
	"github.com/vevey/vevey/internal/server/users"
)

type PostgresStoreManager struct {
	db       *sql.DB
	users    users.Repository
	sessions sessions.Store
	notes    records.NoteStore
	posts    records.PostStore
}

func (m *PostgresStoreManager) Conn() *sql.DB {
	return m.db
}

func (m *PostgresStoreManager) Users() users.Repository {
	return m.users
}

func (m *PostgresStoreManager) Sessions() sessions.Store {
	return m.sessions
}

func (m *PostgresStoreManager) Notes() records.NoteStore {
	return m.notes
}

func (m *PostgresStoreManager) Posts() records.PostStore {
	return m.posts
}

// InTx runs fn with the user repository and the session store rebound to a
// single transaction, committing or rolling back per dbx.WithTx. Account
// flows use this so a credential update and its session purge land together.
func (m *PostgresStoreManager) InTx(ctx context.Context, fn func(ctx context.Context, repo users.Repository, store sessions.Store) error) error {
	return dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, users.NewPostgresRepository(tx), sessions.NewPostgresStore(tx))
	})
}

func (m *PostgresStoreManager) Close() error {
	return m.db.Close()
}

func (m *PostgresStoreManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, m.db, "."); err != nil {
		return err
	}

	return nil
}

// waitForDB pings with exponential backoff; in container setups the
// database often comes up a few seconds after the server.
func waitForDB(ctx context.Context, db *sql.DB) error {
	backoff := retry.WithMaxDuration(30*time.Second, retry.NewExponential(500*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

func NewPostgresStoreManager(ctx context.Context, dsn string) (StoreManager, error) {

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if err := waitForDB(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	m := &PostgresStoreManager{
		db:       db,
		users:    users.NewPostgresRepository(db),
		sessions: sessions.NewPostgresStore(db),
		notes:    records.NewPostgresNoteStore(db),
		posts:    records.NewPostgresPostStore(db),
	}

	if err := m.RunMigrations(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}
