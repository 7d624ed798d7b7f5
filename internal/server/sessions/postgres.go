package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vevey/vevey/internal/common"
	"github.com/vevey/vevey/internal/dbx"
	"github.com/vevey/vevey/internal/server/models"
)

// PostgresStore implements Store over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresStore struct {
	db dbx.DBTX
}

func NewPostgresStore(db dbx.DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, userID, token string, expiresAt time.Time) error {
	query := `
		INSERT INTO sessions (user_id, token, expires_at)
		VALUES ($1, $2, $3)
	`
	if _, err := s.db.ExecContext(ctx, query, userID, token, expiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, userID, token string) (*models.Session, error) {
	query := `
		SELECT user_id, token, expires_at, created_at
		FROM sessions
		WHERE user_id = $1 AND token = $2
	`
	var item models.Session
	err := s.db.QueryRowContext(ctx, query, userID, token).
		Scan(&item.UserID, &item.Token, &item.ExpiresAt, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.E(common.KindNotFound, "the specified session does not exist")
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &item, nil
}

// Redeem deletes in a single statement; the row count from the DELETE is the
// atomic observed-present signal.
func (s *PostgresStore) Redeem(ctx context.Context, userID, token string) (bool, error) {
	query := `
		DELETE FROM sessions
		WHERE user_id = $1 AND token = $2
	`
	res, err := s.db.ExecContext(ctx, query, userID, token)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n > 0, nil
}

func (s *PostgresStore) DeleteAll(ctx context.Context, userID string) error {
	query := `
		DELETE FROM sessions
		WHERE user_id = $1
	`
	if _, err := s.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteExpired(ctx context.Context, userID string, now time.Time) error {
	query := `
		DELETE FROM sessions
		WHERE user_id = $1 AND expires_at <= $2
	`
	if _, err := s.db.ExecContext(ctx, query, userID, now); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]*models.Session, error) {
	query := `
		SELECT user_id, token, expires_at, created_at
		FROM sessions
		WHERE user_id = $1
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Session
	for rows.Next() {
		var item models.Session
		if err := rows.Scan(&item.UserID, &item.Token, &item.ExpiresAt, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
