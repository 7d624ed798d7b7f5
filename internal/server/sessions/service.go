package sessions

import (
	"context"
	"time"

	"github.com/vevey/vevey/internal/common"
	"github.com/vevey/vevey/internal/logging"
	"github.com/vevey/vevey/internal/server/auth"
	"github.com/vevey/vevey/internal/server/models"
)

// Config carries the two token lifetimes. Both are injected at construction;
// there is no package-level mutable state.
type Config struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Grant is the result of issuing or exchanging: a token pair plus the access
// token lifetime in seconds, which is what clients schedule their refresh by.
type Grant struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// Service orchestrates the token codec and the session store. All identity
// in the system flows through Verify or Exchange; no other component may
// inspect token internals.
type Service struct {
	cfg    Config
	codec  *auth.Codec
	store  Store
	logger logging.Logger
}

func NewService(cfg Config, codec *auth.Codec, store Store, logger logging.Logger) *Service {
	return &Service{cfg: cfg, codec: codec, store: store, logger: logger.With("component", "sessions")}
}

// Issue signs a fresh access/refresh pair for userID and persists the
// session row making the refresh token redeemable. If the persistence write
// fails the caller gets no tokens: a signed-but-unregistered refresh token
// must never escape.
func (s *Service) Issue(ctx context.Context, userID string) (*Grant, error) {
	accessToken, err := s.codec.Sign(userID, s.cfg.AccessTTL)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.codec.Sign(userID, s.cfg.RefreshTTL)
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(s.cfg.RefreshTTL)
	if err := s.store.Create(ctx, userID, refreshToken, expiresAt); err != nil {
		return nil, common.Wrap(common.KindInternal, "session persistence failed", err)
	}

	s.logger.Info(ctx, "session issued", "user", userID)
	return &Grant{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.cfg.AccessTTL.Seconds()),
	}, nil
}

// Verify establishes the principal behind an access token. Purely
// cryptographic plus expiry; no storage lookup.
func (s *Service) Verify(accessToken string) (*models.Principal, error) {
	userID, err := s.codec.Verify(accessToken)
	if err != nil {
		return nil, err
	}
	return &models.Principal{ID: userID}, nil
}

// Exchange rotates a refresh token: the presented token is atomically
// redeemed (single use) before a replacement pair is issued. A token that is
// expired, revoked, already redeemed, or never issued fails with the same
// Unauthorized; callers cannot distinguish the cases.
//
// If issuing fails after the redeem the user is left without a valid refresh
// token and must log in again. Revocation is favored over token leakage.
func (s *Service) Exchange(ctx context.Context, refreshToken string) (*Grant, error) {
	userID, err := s.codec.Verify(refreshToken)
	if err != nil {
		return nil, err
	}

	// Opportunistic sweep; there is no background job. Sweep failure does
	// not block the exchange, expired rows are harmless until the store
	// TTL removes them.
	if err := s.SweepExpired(ctx, userID); err != nil {
		s.logger.Warn(ctx, "expiry sweep failed", "user", userID, "err", err)
	}

	redeemed, err := s.store.Redeem(ctx, userID, refreshToken)
	if err != nil {
		return nil, common.Wrap(common.KindInternal, "session lookup failed", err)
	}
	if !redeemed {
		return nil, common.ErrUnauthorized
	}

	return s.Issue(ctx, userID)
}

// Revoke deletes one session row. Idempotent: revoking an absent token is
// not an error.
func (s *Service) Revoke(ctx context.Context, userID, refreshToken string) error {
	if _, err := s.store.Redeem(ctx, userID, refreshToken); err != nil {
		return common.Wrap(common.KindInternal, "session revoke failed", err)
	}
	return nil
}

// SweepExpired removes session rows for userID whose expiry has passed.
func (s *Service) SweepExpired(ctx context.Context, userID string) error {
	return s.store.DeleteExpired(ctx, userID, time.Now())
}
