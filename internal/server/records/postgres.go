package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vevey/vevey/internal/dbx"
	"github.com/vevey/vevey/internal/server/models"
)

// PostgresNoteStore implements NoteStore over a dbx.DBTX. The owner
// predicate lives in the WHERE clause of each write, so the database decides
// ownership and mutation in one atomic statement.
type PostgresNoteStore struct {
	db dbx.DBTX
}

func NewPostgresNoteStore(db dbx.DBTX) *PostgresNoteStore {
	return &PostgresNoteStore{db: db}
}

func (s *PostgresNoteStore) Put(ctx context.Context, note *models.Note) error {
	query := `
		INSERT INTO notes (id, user_id, contents, pos)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := s.db.ExecContext(ctx, query, note.ID, note.UserID, note.Contents, note.Pos); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *PostgresNoteStore) Get(ctx context.Context, id string) (*models.Note, error) {
	query := `
		SELECT id, user_id, contents, pos, created_at, updated_at
		FROM notes
		WHERE id = $1
	`
	note := &models.Note{}
	err := s.db.QueryRowContext(ctx, query, id).
		Scan(&note.ID, &note.UserID, &note.Contents, &note.Pos, &note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return note, nil
}

// UpdateIf merges the sparse patch server-side (COALESCE keeps untouched
// columns) under the owner condition. No matching row, whether absent or
// owned by someone else, reports ErrPreconditionFailed.
func (s *PostgresNoteStore) UpdateIf(ctx context.Context, id string, patch NotePatch, ownerID string) (*models.Note, error) {
	query := `
		UPDATE notes
		SET contents = COALESCE($2, contents),
		    pos = COALESCE($3, pos),
		    updated_at = now()
		WHERE id = $1 AND user_id = $4 AND contents <> ''
		RETURNING id, user_id, contents, pos, created_at, updated_at
	`
	note := &models.Note{}
	err := s.db.QueryRowContext(ctx, query, id, patch.Contents, patch.Pos, ownerID).
		Scan(&note.ID, &note.UserID, &note.Contents, &note.Pos, &note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPreconditionFailed
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return note, nil
}

func (s *PostgresNoteStore) DeleteIf(ctx context.Context, id string, ownerID string) error {
	query := `
		UPDATE notes
		SET contents = '', pos = 0, updated_at = now()
		WHERE id = $1 AND user_id = $2
	`
	res, err := s.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return ErrPreconditionFailed
	}
	return nil
}

func (s *PostgresNoteStore) ListByUser(ctx context.Context, userID string, before int64, limit int) ([]*models.Note, error) {
	query := `
		SELECT id, user_id, contents, pos, created_at, updated_at
		FROM notes
		WHERE user_id = $1 AND pos < $2 AND contents <> ''
		ORDER BY pos DESC
		LIMIT $3
	`
	rows, err := s.db.QueryContext(ctx, query, userID, before, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Note
	for rows.Next() {
		var item models.Note
		if err := rows.Scan(&item.ID, &item.UserID, &item.Contents, &item.Pos, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// PostgresPostStore implements PostStore over a dbx.DBTX.
type PostgresPostStore struct {
	db dbx.DBTX
}

func NewPostgresPostStore(db dbx.DBTX) *PostgresPostStore {
	return &PostgresPostStore{db: db}
}

func (s *PostgresPostStore) Put(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (id, author_id, contents, pos, open_pos)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := s.db.ExecContext(ctx, query, post.ID, post.AuthorID, post.Contents, post.Pos, post.OpenPos); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *PostgresPostStore) Get(ctx context.Context, id string) (*models.Post, error) {
	query := `
		SELECT id, author_id, contents, pos, open_pos, created_at, updated_at
		FROM posts
		WHERE id = $1
	`
	post := &models.Post{}
	err := s.db.QueryRowContext(ctx, query, id).
		Scan(&post.ID, &post.AuthorID, &post.Contents, &post.Pos, &post.OpenPos, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return post, nil
}

func (s *PostgresPostStore) UpdateIf(ctx context.Context, id string, patch PostPatch, ownerID string) (*models.Post, error) {
	query := `
		UPDATE posts
		SET contents = COALESCE($2, contents),
		    pos = COALESCE($3, pos),
		    open_pos = CASE
		        WHEN $4::boolean IS NULL THEN open_pos
		        WHEN $4 THEN COALESCE($3, pos)
		        ELSE NULL
		    END,
		    updated_at = now()
		WHERE id = $1 AND author_id = $5 AND contents <> ''
		RETURNING id, author_id, contents, pos, open_pos, created_at, updated_at
	`
	post := &models.Post{}
	err := s.db.QueryRowContext(ctx, query, id, patch.Contents, patch.Pos, patch.Open, ownerID).
		Scan(&post.ID, &post.AuthorID, &post.Contents, &post.Pos, &post.OpenPos, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPreconditionFailed
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return post, nil
}

func (s *PostgresPostStore) DeleteIf(ctx context.Context, id string, ownerID string) error {
	query := `
		UPDATE posts
		SET contents = '', pos = 0, open_pos = NULL, updated_at = now()
		WHERE id = $1 AND author_id = $2
	`
	res, err := s.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return ErrPreconditionFailed
	}
	return nil
}

func (s *PostgresPostStore) ListByAuthor(ctx context.Context, authorID string, before int64, limit int) ([]*models.Post, error) {
	query := `
		SELECT id, author_id, contents, pos, open_pos, created_at, updated_at
		FROM posts
		WHERE author_id = $1 AND pos < $2 AND contents <> ''
		ORDER BY pos DESC
		LIMIT $3
	`
	return s.queryPosts(ctx, query, authorID, before, limit)
}

func (s *PostgresPostStore) ListOpen(ctx context.Context, before int64, limit int) ([]*models.Post, error) {
	query := `
		SELECT id, author_id, contents, pos, open_pos, created_at, updated_at
		FROM posts
		WHERE open_pos IS NOT NULL AND open_pos < $1 AND contents <> ''
		ORDER BY open_pos DESC
		LIMIT $2
	`
	return s.queryPosts(ctx, query, before, limit)
}

func (s *PostgresPostStore) queryPosts(ctx context.Context, query string, args ...any) ([]*models.Post, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Post
	for rows.Next() {
		var item models.Post
		if err := rows.Scan(&item.ID, &item.AuthorID, &item.Contents, &item.Pos, &item.OpenPos, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
