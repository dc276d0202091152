package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-jwt-secret")

func TestAccessClaimsFromToken_RoundTrip(t *testing.T) {
	t.Parallel()

	sub := uuid.NewString()
	tok, err := NewAccessToken(sub, "dealer", time.Now().Add(time.Minute), secret)
	require.NoError(t, err)

	claims, err := AccessClaimsFromToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, sub, claims.Subject)
	assert.Equal(t, "dealer", claims.Role)
}

func TestAccessClaimsFromToken_Rejects(t *testing.T) {
	t.Parallel()

	expired, err := NewAccessToken(uuid.NewString(), "admin", time.Now().Add(-time.Minute), secret)
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(expired, secret)
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	valid, err := NewAccessToken(uuid.NewString(), "admin", time.Now().Add(time.Minute), secret)
	require.NoError(t, err)
	_, err = AccessClaimsFromToken(valid, []byte("other-secret"))
	require.Error(t, err)

	_, err = AccessClaimsFromToken("not-a-jwt", secret)
	require.Error(t, err)
}
