package users

import (
	"context"
	"sync"
	"time"

	"github.com/vevey/vevey/internal/common"
	"github.com/vevey/vevey/internal/server/models"
)

// MemoryRepository is the in-memory Repository used by tests.
type MemoryRepository struct {
	mu   sync.Mutex
	byID map[string]*models.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]*models.User)}
}

func (r *MemoryRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.byID {
		if u.Email == user.Email {
			return nil, common.E(common.KindUserExists, "the specified user already exists")
		}
	}
	copied := *user
	now := time.Now()
	copied.CreatedAt = now
	copied.UpdatedAt = now
	r.byID[user.ID] = &copied
	out := copied
	return &out, nil
}

func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.byID {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, common.E(common.KindNotFound, "the specified user does not exist")
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.E(common.KindNotFound, "the specified user does not exist")
	}
	copied := *u
	return &copied, nil
}

func (r *MemoryRepository) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[user.ID]
	if !ok {
		return common.E(common.KindNotFound, "the specified user does not exist")
	}
	stored.Name = user.Name
	stored.PwdHash = user.PwdHash
	stored.Status = user.Status
	stored.Code = user.Code
	stored.UpdatedAt = time.Now()
	return nil
}
