// Package auth implements the token codec: signing and verifying the opaque
// bearer tokens that carry a principal id and expiry. Validity of an access
// token is purely cryptographic plus the expiry check; nothing here touches
// storage.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vevey/vevey/internal/common"
)

// Claims is the payload shape shared by access and refresh tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

// Codec signs and verifies HS256 tokens with a single shared secret.
type Codec struct {
	secret []byte
}

func NewCodec(secret []byte) *Codec {
	return &Codec{secret: secret}
}

// Sign issues a token for userID expiring after ttl. Each token carries a
// random jti so two tokens signed within the same second still differ; the
// session store keys on the full token value.
func (c *Codec) Sign(userID string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			ID:        uuid.NewString(),
		},
		UserID: userID,
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", common.Wrap(common.KindInternal, "token signing failed", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the embedded user id.
// Every failure mode (bad signature, malformed payload, expiry in the past,
// unexpected algorithm) collapses into Unauthorized; callers must not be
// able to tell them apart.
func (c *Codec) Verify(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", common.Wrap(common.KindUnauthorized, "invalid token", err)
	}
	if !token.Valid || claims.UserID == "" {
		return "", common.ErrUnauthorized
	}

	return claims.UserID, nil
}
