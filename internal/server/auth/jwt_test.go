package auth

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")

	tok, err := GenerateToken("client-123", secret, time.Now(), time.Hour)
	require.NoError(t, err)

	got, err := GetClientIDFromToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "client-123", got)
}

func TestGenerateToken_CarriesExpiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tok, err := GenerateToken("c", []byte("k"), now, 90*time.Second)
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, claims)
	require.NoError(t, err)
	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.True(t, exp.Time.Equal(now.Add(90*time.Second)))
}

func TestGetClientIDFromToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok, err := GenerateToken("u1", secret, time.Now(), -1*time.Second)
	require.NoError(t, err)

	_, err = GetClientIDFromToken(tok, secret)
	require.ErrorIs(t, err, common.ErrUnauthorized)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestGetClientIDFromToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("u2", []byte("right-secret"), time.Now(), time.Hour)
	require.NoError(t, err)

	_, err = GetClientIDFromToken(tok, []byte("wrong-secret"))
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestGetClientIDFromToken_MalformedString(t *testing.T) {
	t.Parallel()

	_, err := GetClientIDFromToken("not.a.jwt", []byte("k"))
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}
