package jwt

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) {
	t.Helper()
	require.NoError(t, Setup("test-secret", "test", 15*time.Minute, 24*time.Hour))
}

func parseAccess(s string) (*Claims, error) {
	c := app.NewContext(0)
	c.Request.Header.Set("Authorization", "Bearer "+s)
	return ParseAccessToken(context.Background(), c)
}

func TestGenerateAndParse(t *testing.T) {
	setup(t)
	pair, err := GenerateTokenPair(42)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.RefreshExpiresAt.After(pair.ExpiresAt))

	access, err := parseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(42), access.UserID)
	assert.Equal(t, "access", access.Type)
	assert.NotEmpty(t, access.Jti)
	assert.WithinDuration(t, pair.ExpiresAt, access.ExpiresAt, time.Second)

	refresh, err := ParseRefreshTokenString(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, int64(42), refresh.UserID)
	assert.NotEqual(t, access.Jti, refresh.Jti)
}

func TestTokenTypesAreNotInterchangeable(t *testing.T) {
	setup(t)
	pair, err := GenerateTokenPair(1)
	require.NoError(t, err)

	_, err = parseAccess(pair.RefreshToken)
	assert.Error(t, err)
	_, err = ParseRefreshTokenString(pair.AccessToken)
	assert.Error(t, err)
}

func TestTamperedToken(t *testing.T) {
	setup(t)
	pair, err := GenerateTokenPair(1)
	require.NoError(t, err)
	_, err = parseAccess(pair.AccessToken + "x")
	assert.Error(t, err)

	require.NoError(t, Setup("other-secret", "test", time.Minute, time.Hour))
	_, err = parseAccess(pair.AccessToken)
	assert.Error(t, err)
}

func TestExpiredToken(t *testing.T) {
	require.NoError(t, Setup("test-secret", "test", -time.Minute, time.Hour))
	pair, err := GenerateTokenPair(1)
	require.NoError(t, err)
	_, err = parseAccess(pair.AccessToken)
	assert.Error(t, err)
}

func TestParseAccessTokenFromHeader(t *testing.T) {
	setup(t)
	pair, err := GenerateTokenPair(7)
	require.NoError(t, err)

	h := server.New()
	h.GET("/me", func(ctx context.Context, c *app.RequestContext) {
		claims, err := ParseAccessToken(ctx, c)
		if err != nil {
			c.String(http.StatusUnauthorized, err.Error())
			return
		}
		c.JSON(http.StatusOK, map[string]int64{"uid": claims.UserID})
	})

	w := ut.PerformRequest(h.Engine, "GET", "/me", nil,
		ut.Header{Key: "Authorization", Value: "Bearer " + pair.AccessToken})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(w.Body.Bytes()), `"uid":7`)

	w = ut.PerformRequest(h.Engine, "GET", "/me?token="+pair.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ut.PerformRequest(h.Engine, "GET", "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
