// Package users is the user-credential collaborator: account rows, password
// verification, and the invite / confirm / reset flows around them. The
// session service consumes exactly one operation from here, VerifyPassword;
// everything else is account lifecycle.
package users

import (
	"context"

	"github.com/vevey/vevey/internal/server/models"
)

// Repository persists account rows.
type Repository interface {
	// Create inserts a new user. A duplicate email fails with UserExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail returns the user or a NotFound taxonomy error.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID returns the user or a NotFound taxonomy error.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// Update rewrites the mutable fields (name, hash, status, code).
	Update(ctx context.Context, user *models.User) error
}
