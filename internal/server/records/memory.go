package records

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vevey/vevey/internal/server/models"
)

// MemoryNoteStore is an in-memory NoteStore with the same conditional-write
// semantics as the SQL store: predicate and mutation are decided under one
// mutex, so concurrent writers to the same record serialize.
type MemoryNoteStore struct {
	mu   sync.Mutex
	rows map[string]*models.Note
}

func NewMemoryNoteStore() *MemoryNoteStore {
	return &MemoryNoteStore{rows: make(map[string]*models.Note)}
}

func (s *MemoryNoteStore) Put(_ context.Context, note *models.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *note
	now := time.Now()
	copied.CreatedAt = now
	copied.UpdatedAt = now
	s.rows[note.ID] = &copied
	return nil
}

func (s *MemoryNoteStore) Get(_ context.Context, id string) (*models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	note, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	copied := *note
	return &copied, nil
}

func (s *MemoryNoteStore) UpdateIf(_ context.Context, id string, patch NotePatch, ownerID string) (*models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	note, ok := s.rows[id]
	if !ok || note.UserID != ownerID || note.Deleted() {
		return nil, ErrPreconditionFailed
	}
	if patch.Contents != nil {
		note.Contents = *patch.Contents
	}
	if patch.Pos != nil {
		note.Pos = *patch.Pos
	}
	note.UpdatedAt = time.Now()
	copied := *note
	return &copied, nil
}

func (s *MemoryNoteStore) DeleteIf(_ context.Context, id string, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	note, ok := s.rows[id]
	if !ok || note.UserID != ownerID {
		return ErrPreconditionFailed
	}
	note.Contents = ""
	note.Pos = 0
	note.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryNoteStore) ListByUser(_ context.Context, userID string, before int64, limit int) ([]*models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*models.Note
	for _, note := range s.rows {
		if note.UserID != userID || note.Deleted() || note.Pos >= before {
			continue
		}
		copied := *note
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Pos > result[j].Pos })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// MemoryPostStore is the in-memory PostStore.
type MemoryPostStore struct {
	mu   sync.Mutex
	rows map[string]*models.Post
}

func NewMemoryPostStore() *MemoryPostStore {
	return &MemoryPostStore{rows: make(map[string]*models.Post)}
}

func (s *MemoryPostStore) Put(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := clonePost(post)
	now := time.Now()
	copied.CreatedAt = now
	copied.UpdatedAt = now
	s.rows[post.ID] = copied
	return nil
}

func (s *MemoryPostStore) Get(_ context.Context, id string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	return clonePost(post), nil
}

func (s *MemoryPostStore) UpdateIf(_ context.Context, id string, patch PostPatch, ownerID string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.rows[id]
	if !ok || post.AuthorID != ownerID || post.Deleted() {
		return nil, ErrPreconditionFailed
	}
	if patch.Contents != nil {
		post.Contents = *patch.Contents
	}
	if patch.Pos != nil {
		post.Pos = *patch.Pos
	}
	if patch.Open != nil {
		if *patch.Open {
			pos := post.Pos
			post.OpenPos = &pos
		} else {
			post.OpenPos = nil
		}
	}
	post.UpdatedAt = time.Now()
	return clonePost(post), nil
}

func (s *MemoryPostStore) DeleteIf(_ context.Context, id string, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.rows[id]
	if !ok || post.AuthorID != ownerID {
		return ErrPreconditionFailed
	}
	post.Contents = ""
	post.Pos = 0
	post.OpenPos = nil
	post.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryPostStore) ListByAuthor(_ context.Context, authorID string, before int64, limit int) ([]*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*models.Post
	for _, post := range s.rows {
		if post.AuthorID != authorID || post.Deleted() || post.Pos >= before {
			continue
		}
		result = append(result, clonePost(post))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Pos > result[j].Pos })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *MemoryPostStore) ListOpen(_ context.Context, before int64, limit int) ([]*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*models.Post
	for _, post := range s.rows {
		if post.OpenPos == nil || post.Deleted() || *post.OpenPos >= before {
			continue
		}
		result = append(result, clonePost(post))
	}
	sort.Slice(result, func(i, j int) bool { return *result[i].OpenPos > *result[j].OpenPos })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func clonePost(p *models.Post) *models.Post {
	copied := *p
	if p.OpenPos != nil {
		pos := *p.OpenPos
		copied.OpenPos = &pos
	}
	return &copied
}
