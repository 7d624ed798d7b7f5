package records

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/vevey/vevey/internal/common"
	"github.com/vevey/vevey/internal/logging"
	"github.com/vevey/vevey/internal/server/models"
)

// Listing limits follow the API contract.
const (
	MinListLimit = 1
	MaxListLimit = 30
)

// Notes is the repository for note records. Reads follow the null-for-read
// policy: a denied or deleted single-record read returns (nil, nil), while
// listings and every mutation raise NoPermission.
type Notes struct {
	store  NoteStore
	logger logging.Logger
}

func NewNotes(store NoteStore, logger logging.Logger) *Notes {
	return &Notes{store: store, logger: logger.With("component", "notes")}
}

// Create inserts a note owned by the principal. The owner always comes from
// the authenticated principal, never from client input.
func (r *Notes) Create(ctx context.Context, p *models.Principal, contents string) (*models.Note, error) {
	if err := RequireAuthenticated(p); err != nil {
		return nil, err
	}
	if contents == "" {
		return nil, common.E(common.KindMissingParameter, "contents is required")
	}

	note := &models.Note{
		ID:       uuid.NewString(),
		UserID:   p.ID,
		Contents: contents,
		Pos:      time.Now().UnixMilli(),
	}
	if err := r.store.Put(ctx, note); err != nil {
		return nil, common.Wrap(common.KindInternal, "note create failed", err)
	}
	return note, nil
}

// Get fetches one note. Absent, tombstoned, and not-owned all yield
// (nil, nil) so non-owners cannot probe for record existence.
func (r *Notes) Get(ctx context.Context, p *models.Principal, id string) (*models.Note, error) {
	note, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, common.Wrap(common.KindInternal, "note read failed", err)
	}
	if note == nil || note.Deleted() || !IsOwner(p, note.UserID) {
		return nil, nil
	}
	return note, nil
}

// Update applies a sparse patch under the ownership precondition. The store
// evaluates the predicate atomically with the write; a failed precondition
// is NoPermission, never an infrastructure error.
func (r *Notes) Update(ctx context.Context, p *models.Principal, id string, patch NotePatch) (*models.Note, error) {
	if err := RequireAuthenticated(p); err != nil {
		return nil, err
	}
	if err := validateNotePatch(patch); err != nil {
		return nil, err
	}

	note, err := r.store.UpdateIf(ctx, id, patch, p.ID)
	if err != nil {
		if errors.Is(err, ErrPreconditionFailed) {
			return nil, common.ErrNoPermission
		}
		return nil, common.Wrap(common.KindInternal, "note update failed", err)
	}
	return note, nil
}

// Delete tombstones a note under the same ownership precondition.
func (r *Notes) Delete(ctx context.Context, p *models.Principal, id string) error {
	if err := RequireAuthenticated(p); err != nil {
		return err
	}

	if err := r.store.DeleteIf(ctx, id, p.ID); err != nil {
		if errors.Is(err, ErrPreconditionFailed) {
			return common.ErrNoPermission
		}
		return common.Wrap(common.KindInternal, "note delete failed", err)
	}
	return nil
}

// ListByUser pages the caller's notes in descending position order. The
// ownership check runs before the query: the key is the argument itself, so
// a mismatch is rejected without touching the store. Tombstones never
// appear, keeping cursors dense.
func (r *Notes) ListByUser(ctx context.Context, p *models.Principal, userID string, before *int64, limit int) ([]*models.Note, error) {
	if err := RequireOwner(p, userID); err != nil {
		return nil, err
	}
	if limit < MinListLimit || limit > MaxListLimit {
		return nil, common.E(common.KindInvalidInput, "limit is out of range")
	}

	pos := MaxPos
	if before != nil {
		pos = *before
	}

	notes, err := r.store.ListByUser(ctx, userID, pos, limit)
	if err != nil {
		return nil, common.Wrap(common.KindInternal, "note listing failed", err)
	}
	return notes, nil
}

func validateNotePatch(patch NotePatch) error {
	if patch.Contents == nil && patch.Pos == nil {
		return common.E(common.KindMissingParameter, "nothing to update")
	}
	if patch.Contents != nil && *patch.Contents == "" {
		return common.E(common.KindInvalidInput, "contents must not be empty")
	}
	if patch.Pos != nil && *patch.Pos < 0 {
		return common.E(common.KindInvalidInput, "pos must not be negative")
	}
	return nil
}
