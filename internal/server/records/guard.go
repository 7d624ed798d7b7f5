package records

import (
	"github.com/vevey/vevey/internal/common"
	"github.com/vevey/vevey/internal/server/models"
)

// RequireAuthenticated rejects anonymous callers.
func RequireAuthenticated(p *models.Principal) error {
	if p == nil || p.ID == "" {
		return common.ErrNoPermission
	}
	return nil
}

// RequireOwner enforces the ownership policy: the acting principal must
// equal the record's owner. Used by every listing before the query runs and
// by single-record reads after the fetch; writes enforce the same predicate
// inside the store instead.
func RequireOwner(p *models.Principal, ownerID string) error {
	if err := RequireAuthenticated(p); err != nil {
		return err
	}
	if p.ID != ownerID {
		return common.ErrNoPermission
	}
	return nil
}

// IsOwner is the non-erroring form, for read paths that return null instead
// of NoPermission.
func IsOwner(p *models.Principal, ownerID string) bool {
	return p != nil && p.ID != "" && p.ID == ownerID
}
