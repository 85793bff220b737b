package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTokenRoundTrip(t *testing.T) {
	v := NewVerifier("secret")
	token, err := v.Issue(42, "user", time.Hour)
	require.NoError(t, err)

	userID, err := v.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, 42, userID)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, err := NewVerifier("other").Issue(42, "user", time.Hour)
	require.NoError(t, err)

	_, err = NewVerifier("secret").ValidateToken(context.Background(), token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	v := NewVerifier("secret")
	token, err := v.Issue(42, "user", -time.Hour)
	require.NoError(t, err)

	_, err = v.ValidateToken(context.Background(), token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsMissingUser(t *testing.T) {
	v := NewVerifier("secret")
	token, err := v.Issue(0, "user", time.Hour)
	require.NoError(t, err)

	_, err = v.ValidateToken(context.Background(), token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsNonHMAC(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 1}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewVerifier("secret").ValidateToken(context.Background(), token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenEmpty(t *testing.T) {
	_, err := NewVerifier("secret").ValidateToken(context.Background(), "")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestBearerToken(t *testing.T) {
	token, ok := BearerToken("Bearer abc")
	require.True(t, ok)
	assert.Equal(t, "abc", token)

	token, ok = BearerToken("bearer  xyz ")
	require.True(t, ok)
	assert.Equal(t, "xyz", token)

	for _, header := range []string{"", "Bearer", "Bearer ", "Basic abc", "abc"} {
		_, ok := BearerToken(header)
		assert.False(t, ok, header)
	}
}
