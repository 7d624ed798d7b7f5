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

// Posts is the repository for post records. Same policies as Notes, with one
// addition: a post marked open is publicly readable and publicly listable
// through the open index.
type Posts struct {
	store  PostStore
	logger logging.Logger
}

func NewPosts(store PostStore, logger logging.Logger) *Posts {
	return &Posts{store: store, logger: logger.With("component", "posts")}
}

// Create inserts a post authored by the principal. open=true lists it
// publicly from the start.
func (r *Posts) Create(ctx context.Context, p *models.Principal, contents string, open bool) (*models.Post, error) {
	if err := RequireAuthenticated(p); err != nil {
		return nil, err
	}
	if contents == "" {
		return nil, common.E(common.KindMissingParameter, "contents is required")
	}

	post := &models.Post{
		ID:       uuid.NewString(),
		AuthorID: p.ID,
		Contents: contents,
		Pos:      time.Now().UnixMilli(),
	}
	if open {
		pos := post.Pos
		post.OpenPos = &pos
	}
	if err := r.store.Put(ctx, post); err != nil {
		return nil, common.Wrap(common.KindInternal, "post create failed", err)
	}
	return post, nil
}

// Get fetches one post. Open posts are readable by anyone, including
// anonymous callers; private posts behave like notes: absent, tombstoned,
// and not-owned are all (nil, nil).
func (r *Posts) Get(ctx context.Context, p *models.Principal, id string) (*models.Post, error) {
	post, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, common.Wrap(common.KindInternal, "post read failed", err)
	}
	if post == nil || post.Deleted() {
		return nil, nil
	}
	if !post.Open() && !IsOwner(p, post.AuthorID) {
		return nil, nil
	}
	return post, nil
}

// Update applies a sparse patch under the ownership precondition.
func (r *Posts) Update(ctx context.Context, p *models.Principal, id string, patch PostPatch) (*models.Post, error) {
	if err := RequireAuthenticated(p); err != nil {
		return nil, err
	}
	if err := validatePostPatch(patch); err != nil {
		return nil, err
	}

	post, err := r.store.UpdateIf(ctx, id, patch, p.ID)
	if err != nil {
		if errors.Is(err, ErrPreconditionFailed) {
			return nil, common.ErrNoPermission
		}
		return nil, common.Wrap(common.KindInternal, "post update failed", err)
	}
	return post, nil
}

// Delete tombstones a post and withdraws it from the open index.
func (r *Posts) Delete(ctx context.Context, p *models.Principal, id string) error {
	if err := RequireAuthenticated(p); err != nil {
		return err
	}

	if err := r.store.DeleteIf(ctx, id, p.ID); err != nil {
		if errors.Is(err, ErrPreconditionFailed) {
			return common.ErrNoPermission
		}
		return common.Wrap(common.KindInternal, "post delete failed", err)
	}
	return nil
}

// ListByAuthor pages an author's posts; only the author may call it.
func (r *Posts) ListByAuthor(ctx context.Context, p *models.Principal, authorID string, before *int64, limit int) ([]*models.Post, error) {
	if err := RequireOwner(p, authorID); err != nil {
		return nil, err
	}
	if limit < MinListLimit || limit > MaxListLimit {
		return nil, common.E(common.KindInvalidInput, "limit is out of range")
	}

	pos := MaxPos
	if before != nil {
		pos = *before
	}

	posts, err := r.store.ListByAuthor(ctx, authorID, pos, limit)
	if err != nil {
		return nil, common.Wrap(common.KindInternal, "post listing failed", err)
	}
	return posts, nil
}

// ListOpen pages the public posts; no principal required.
func (r *Posts) ListOpen(ctx context.Context, before *int64, limit int) ([]*models.Post, error) {
	if limit < MinListLimit || limit > MaxListLimit {
		return nil, common.E(common.KindInvalidInput, "limit is out of range")
	}

	pos := MaxPos
	if before != nil {
		pos = *before
	}

	posts, err := r.store.ListOpen(ctx, pos, limit)
	if err != nil {
		return nil, common.Wrap(common.KindInternal, "post listing failed", err)
	}
	return posts, nil
}

func validatePostPatch(patch PostPatch) error {
	if patch.Contents == nil && patch.Pos == nil && patch.Open == nil {
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
