package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/vevey/vevey/internal/common"
)

func TestSignAndVerify(t *testing.T) {
	t.Parallel()

	c := NewCodec([]byte("super-secret"))

	tok, err := c.Sign("user-123", time.Hour)
	require.NoError(t, err)

	userID, err := c.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, "user-123", userID)
}

func TestVerifyExpired(t *testing.T) {
	t.Parallel()

	c := NewCodec([]byte("secret"))

	tok, err := c.Sign("u1", -1*time.Second)
	require.NoError(t, err)

	_, err = c.Verify(tok)
	require.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestVerifyWrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewCodec([]byte("right")).Sign("u2", time.Hour)
	require.NoError(t, err)

	_, err = NewCodec([]byte("wrong")).Verify(tok)
	require.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestVerifyMalformed(t *testing.T) {
	t.Parallel()

	_, err := NewCodec([]byte("k")).Verify("not.a.jwt")
	require.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestVerifyRejectsUnexpectedAlg(t *testing.T) {
	t.Parallel()

	// alg=none tokens must not pass no matter what the payload says
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u3"})
	tok, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewCodec([]byte("k")).Verify(tok)
	require.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestVerifyMissingUserID(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	tok, err := token.SignedString(secret)
	require.NoError(t, err)

	_, err = NewCodec(secret).Verify(tok)
	require.ErrorIs(t, err, common.ErrUnauthorized)
}
