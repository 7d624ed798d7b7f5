// Package records implements ownership-scoped storage for the user-owned
// record types (notes and posts). Every write is a conditional write: the
// owner-equality predicate is evaluated atomically by the store together
// with the mutation, never as a separate read-then-check step.
package records

import (
	"context"
	"errors"
	"math"

	"github.com/vevey/vevey/internal/server/models"
)

// ErrPreconditionFailed is the store-level signal that a conditional write
// did not apply: the row is absent or the owner predicate did not hold. The
// two cases are deliberately indistinguishable. Repositories translate this
// to NoPermission; it must never surface as an infrastructure error.
var ErrPreconditionFailed = errors.New("conditional write precondition failed")

// MaxPos is the unbounded pagination sentinel: "everything before this".
const MaxPos int64 = math.MaxInt64

// NotePatch is a sparse update. Nil fields are left untouched by the write.
type NotePatch struct {
	Contents *string
	Pos      *int64
}

// PostPatch is a sparse update for posts. Open toggles public listing:
// true places the post in the open index at its current position, false
// withdraws it.
type PostPatch struct {
	Contents *string
	Pos      *int64
	Open     *bool
}

// NoteStore is the conditional-write store for notes.
//
// Get returns (nil, nil) for an absent id; UpdateIf and DeleteIf apply only
// when the row exists and its owner equals ownerID, failing with
// ErrPreconditionFailed otherwise, in one atomic decision.
type NoteStore interface {
	Put(ctx context.Context, note *models.Note) error
	Get(ctx context.Context, id string) (*models.Note, error)
	UpdateIf(ctx context.Context, id string, patch NotePatch, ownerID string) (*models.Note, error)
	DeleteIf(ctx context.Context, id string, ownerID string) error

	// ListByUser queries the (owner, pos) index: pos < before, descending,
	// at most limit rows, tombstones excluded.
	ListByUser(ctx context.Context, userID string, before int64, limit int) ([]*models.Note, error)
}

// PostStore is the conditional-write store for posts.
type PostStore interface {
	Put(ctx context.Context, post *models.Post) error
	Get(ctx context.Context, id string) (*models.Post, error)
	UpdateIf(ctx context.Context, id string, patch PostPatch, ownerID string) (*models.Post, error)
	DeleteIf(ctx context.Context, id string, ownerID string) error

	ListByAuthor(ctx context.Context, authorID string, before int64, limit int) ([]*models.Post, error)

	// ListOpen queries the open-position index; no ownership applies.
	ListOpen(ctx context.Context, before int64, limit int) ([]*models.Post, error)
}
