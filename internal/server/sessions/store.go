// Package sessions implements the session service: issuing, verifying,
// exchanging, and revoking access/refresh token pairs, backed by a store of
// outstanding refresh tokens keyed by (user, token value).
package sessions

import (
	"context"
	"time"

	"github.com/vevey/vevey/internal/server/models"
)

// Store persists outstanding refresh tokens. A row exists if and only if the
// refresh token is currently redeemable.
type Store interface {
	// Create records a new redeemable refresh token for userID.
	Create(ctx context.Context, userID, token string, expiresAt time.Time) error

	// Find returns the row for (userID, token), or a NotFound taxonomy
	// error when the token is not outstanding. Point lookup for inspection
	// and tests; the exchange path never reads before Redeem, which would
	// reintroduce the check-then-delete race.
	Find(ctx context.Context, userID, token string) (*models.Session, error)

	// Redeem atomically deletes the row for (userID, token) and reports
	// whether it was present. At most one of any number of concurrent
	// Redeem calls for the same pair observes true; this is the property
	// single-use exchange rests on, so implementations must not split it
	// into a read followed by a delete.
	Redeem(ctx context.Context, userID, token string) (bool, error)

	// DeleteAll removes every session row for userID, invalidating every
	// outstanding refresh token. Account flows run it in the same unit of
	// work as the credential update they follow.
	DeleteAll(ctx context.Context, userID string) error

	// DeleteExpired removes rows for userID whose expiry is at or before now.
	DeleteExpired(ctx context.Context, userID string, now time.Time) error

	// ListByUser returns all session rows for userID, the range query over
	// the (user, token) key. Observation API: tests and tooling enumerate
	// sessions through it, request paths do not.
	ListByUser(ctx context.Context, userID string) ([]*models.Session, error)
}
