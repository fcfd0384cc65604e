package utils_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kostomeister/planetarium-api-service/internal/utils"
)

func TestNewAccessToken_RoundTrip(t *testing.T) {
	access, err := utils.NewAccessToken("secret", 7, "ADMIN", 15)
	require.NoError(t, err)
	assert.NotEmpty(t, access.Token)
	assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), access.Exp, 5*time.Second)

	tok, err := jwt.Parse(access.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	require.True(t, tok.Valid)

	claims, ok := tok.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.EqualValues(t, 7, claims["sub"])
	assert.Equal(t, "ADMIN", claims["role"])
}

func TestNewRefreshToken(t *testing.T) {
	a, err := utils.NewRefreshToken(30)
	require.NoError(t, err)
	b, err := utils.NewRefreshToken(30)
	require.NoError(t, err)

	assert.Len(t, a.Raw, 96) // 48 random bytes hex encoded
	assert.NotEqual(t, a.Raw, b.Raw)
	assert.WithinDuration(t, time.Now().UTC().Add(30*24*time.Hour), a.Exp, 5*time.Second)
}

func TestHashRefreshRaw_Deterministic(t *testing.T) {
	h1 := utils.HashRefreshRaw("some-raw-token")
	h2 := utils.HashRefreshRaw("some-raw-token")
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64) // hex sha256
	assert.NotEqual(t, h1, utils.HashRefreshRaw("other-token"))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := utils.HashPassword("s3cret", 4)
	require.NoError(t, err)
	assert.True(t, utils.VerifyPassword(hash, "s3cret"))
	assert.False(t, utils.VerifyPassword(hash, "wrong"))
}
