package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/vevey/vevey/internal/common"
	"github.com/vevey/vevey/internal/server/models"
)

// MemoryStore is an in-memory Store. It backs tests and gives the same
// atomic redeem semantics as the SQL store: every operation runs under one
// mutex, so only one concurrent Redeem can observe a row present.
type MemoryStore struct {
	mu   sync.Mutex
	rows map[string]map[string]*models.Session // userID -> token -> session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]map[string]*models.Session)}
}

func (s *MemoryStore) Create(_ context.Context, userID, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byToken, ok := s.rows[userID]
	if !ok {
		byToken = make(map[string]*models.Session)
		s.rows[userID] = byToken
	}
	byToken[token] = &models.Session{
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	return nil
}

func (s *MemoryStore) Find(_ context.Context, userID, token string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.rows[userID][token]; ok {
		copied := *sess
		return &copied, nil
	}
	return nil, common.E(common.KindNotFound, "the specified session does not exist")
}

func (s *MemoryStore) Redeem(_ context.Context, userID, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byToken, ok := s.rows[userID]
	if !ok {
		return false, nil
	}
	if _, ok := byToken[token]; !ok {
		return false, nil
	}
	delete(byToken, token)
	return true, nil
}

func (s *MemoryStore) DeleteAll(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.rows, userID)
	return nil
}

func (s *MemoryStore) DeleteExpired(_ context.Context, userID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, sess := range s.rows[userID] {
		if !sess.ExpiresAt.After(now) {
			delete(s.rows[userID], token)
		}
	}
	return nil
}

func (s *MemoryStore) ListByUser(_ context.Context, userID string) ([]*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*models.Session
	for _, sess := range s.rows[userID] {
		copied := *sess
		result = append(result, &copied)
	}
	return result, nil
}
