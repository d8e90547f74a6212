package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"mime/multipart"
	"net/http"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	collectiondb "ytgify.com/cmd/collection/dal/db"
	gifdb "ytgify.com/cmd/gif/dal/db"
	gifredis "ytgify.com/cmd/gif/infras/redis"
	hashtagdb "ytgify.com/cmd/hashtag/dal/db"
	hashtagredis "ytgify.com/cmd/hashtag/infras/redis"
	interactiondb "ytgify.com/cmd/interaction/dal/db"
	interactionredis "ytgify.com/cmd/interaction/infras/redis"
	notificationdb "ytgify.com/cmd/notification/dal/db"
	relationdb "ytgify.com/cmd/relation/dal/db"
	userdb "ytgify.com/cmd/user/dal/db"
	userredis "ytgify.com/cmd/user/infras/redis"
	"ytgify.com/pkg/errno"
	"ytgify.com/pkg/jwt"
	"ytgify.com/pkg/oss"
	"ytgify.com/pkg/ratelimit"
	"ytgify.com/pkg/testutil"
)

type envelope struct {
	Code    int64           `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type client struct {
	t     *testing.T
	h     *server.Hertz
	token string
}

func newServer(t *testing.T) *server.Hertz {
	t.Helper()
	conn := testutil.NewDB(t)
	userdb.DB, gifdb.DB, hashtagdb.DB, interactiondb.DB = conn, conn, conn, conn
	relationdb.DB, collectiondb.DB, notificationdb.DB = conn, conn, conn
	_, rdb := testutil.NewRedis(t)
	userredis.Use(rdb)
	gifredis.Use(rdb)
	hashtagredis.Use(rdb)
	interactionredis.Use(rdb)
	oss.Store = oss.NewMemoryStorage()
	require.NoError(t, jwt.Setup("test-secret", "test", 15*time.Minute, time.Hour))
	require.NoError(t, ratelimit.Init())

	h := server.New()
	register(h)
	return h
}

func (c *client) do(method, path string, body interface{}, into interface{}) (int, envelope) {
	c.t.Helper()
	var (
		b       *ut.Body
		headers []ut.Header
	)
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		b = &ut.Body{Body: bytes.NewReader(raw), Len: len(raw)}
		headers = append(headers, ut.Header{Key: "Content-Type", Value: "application/json"})
	}
	return c.send(method, path, b, into, headers...)
}

func (c *client) send(method, path string, b *ut.Body, into interface{}, headers ...ut.Header) (int, envelope) {
	c.t.Helper()
	if c.token != "" {
		headers = append(headers, ut.Header{Key: "Authorization", Value: "Bearer " + c.token})
	}
	w := ut.PerformRequest(c.h.Engine, method, path, b, headers...)
	var env envelope
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &env), string(w.Body.Bytes()))
	if into != nil && len(env.Data) > 0 {
		require.NoError(c.t, json.Unmarshal(env.Data, into))
	}
	return w.Code, env
}

type authData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	} `json:"user"`
}

func signUp(t *testing.T, h *server.Hertz, username string) *client {
	t.Helper()
	c := &client{t: t, h: h}
	var data authData
	code, env := c.do("POST", "/api/auth/register", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
	}, &data)
	require.Equal(t, http.StatusOK, code, env.Message)
	require.NotEmpty(t, data.AccessToken)
	c.token = data.AccessToken
	return c
}

func tinyGif(t *testing.T) []byte {
	t.Helper()
	frame := image.NewPaletted(image.Rect(0, 0, 4, 2), color.Palette{color.Black, color.White})
	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, &gif.GIF{
		Image: []*image.Paletted{frame, frame},
		Delay: []int{10, 10},
	}))
	return buf.Bytes()
}

func (c *client) uploadGif(path string, fields map[string]string) (int, envelope, int64) {
	c.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(c.t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("file", "clip.gif")
	require.NoError(c.t, err)
	_, err = fw.Write(tinyGif(c.t))
	require.NoError(c.t, err)
	require.NoError(c.t, mw.Close())

	var g struct {
		ID int64 `json:"id"`
	}
	code, env := c.send("POST", path, &ut.Body{Body: &buf, Len: buf.Len()}, &g,
		ut.Header{Key: "Content-Type", Value: mw.FormDataContentType()})
	return code, env, g.ID
}

func TestAuthFlow(t *testing.T) {
	h := newServer(t)
	alice := signUp(t, h, "alice")

	var me authData
	code, _ := alice.do("GET", "/api/auth/me", nil, &me.User)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "alice", me.User.Username)
	assert.Equal(t, "alice@example.com", me.User.Email)

	anon := &client{t: t, h: h}
	var login authData
	code, _ = anon.do("POST", "/api/auth/login", map[string]string{"login": "ALICE@example.com", "password": "secret123"}, &login)
	assert.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, login.RefreshToken)

	code, env := anon.do("POST", "/api/auth/login", map[string]string{"login": "alice", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.EqualValues(t, errno.AuthorizationFailedErrCode, env.Code)

	var refreshed struct {
		AccessToken string `json:"access_token"`
	}
	code, _ = anon.do("POST", "/api/auth/refresh", map[string]string{"refresh_token": login.RefreshToken}, &refreshed)
	assert.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, refreshed.AccessToken)

	code, _ = alice.do("DELETE", "/api/auth/logout", nil, nil)
	assert.Equal(t, http.StatusOK, code)
	code, env = alice.do("GET", "/api/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.EqualValues(t, errno.TokenRevokedErrCode, env.Code)

	code, env = anon.do("POST", "/api/auth/register", map[string]string{
		"username": "alice", "email": "other@example.com", "password": "secret123",
	}, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.EqualValues(t, errno.UserAlreadyExistErrCode, env.Code)
}

func TestGifLifecycle(t *testing.T) {
	h := newServer(t)
	alice := signUp(t, h, "alice")
	bob := signUp(t, h, "bob")
	anon := &client{t: t, h: h}

	code, env, id := alice.uploadGif("/api/gifs", map[string]string{
		"title":                   "cat #funny",
		"description":             "a #Cat jumps",
		"youtube_timestamp_start": "1.5",
		"youtube_timestamp_end":   "3",
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	require.NotZero(t, id)
	gifPath := fmt.Sprintf("/api/gifs/%d", id)

	code, env, _ = alice.uploadGif("/api/gifs", map[string]string{"title": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.EqualValues(t, errno.ValidationErrCode, env.Code)

	var like struct {
		Liked     bool  `json:"liked"`
		LikeCount int64 `json:"like_count"`
	}
	code, _ = bob.do("POST", gifPath+"/like", nil, &like)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, like.Liked)
	assert.EqualValues(t, 1, like.LikeCount)

	code, _ = anon.do("POST", gifPath+"/like", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	var got struct {
		ID            int64 `json:"id"`
		LikedByViewer bool  `json:"liked_by_viewer"`
	}
	code, _ = bob.do("GET", gifPath, nil, &got)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, got.LikedByViewer)

	var comment struct {
		ID int64 `json:"id"`
	}
	code, _ = bob.do("POST", gifPath+"/comments", map[string]string{"content": "nice"}, &comment)
	assert.Equal(t, http.StatusOK, code)
	var comments struct {
		Total int64 `json:"total"`
	}
	code, _ = anon.do("GET", gifPath+"/comments", nil, &comments)
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, comments.Total)

	code, env = bob.do("PATCH", gifPath, map[string]string{"title": "mine now"}, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.EqualValues(t, errno.ForbiddenErrCode, env.Code)

	var page struct {
		Total int64 `json:"total"`
	}
	code, _ = anon.do("GET", "/api/hashtags/funny/gifs", nil, &page)
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, page.Total)

	code, _ = anon.do("GET", "/api/users/alice/gifs", nil, &page)
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, page.Total)

	code, _ = alice.do("PATCH", gifPath, map[string]string{"privacy": "private"}, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = anon.do("GET", gifPath, nil, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = alice.do("DELETE", gifPath, nil, nil)
	assert.Equal(t, http.StatusOK, code)
	code, env = alice.do("GET", gifPath, nil, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.EqualValues(t, errno.GifNotExistErrCode, env.Code)
}

func TestFollowAndNotificationsRequireAuth(t *testing.T) {
	h := newServer(t)
	alice := signUp(t, h, "alice")
	signUp(t, h, "bob")
	anon := &client{t: t, h: h}

	var res struct {
		Following      bool  `json:"following"`
		FollowersCount int64 `json:"followers_count"`
	}
	code, _ := alice.do("POST", "/api/users/bob/follow", nil, &res)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, res.Following)
	assert.EqualValues(t, 1, res.FollowersCount)

	code, env := alice.do("POST", "/api/users/alice/follow", nil, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.EqualValues(t, errno.ValidationErrCode, env.Code)

	var profile struct {
		IsFollowing bool `json:"is_following"`
	}
	code, _ = alice.do("GET", "/api/users/bob", nil, &profile)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, profile.IsFollowing)

	var followers struct {
		Total int64 `json:"total"`
	}
	code, _ = anon.do("GET", "/api/users/bob/followers", nil, &followers)
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, followers.Total)

	code, _ = alice.do("DELETE", "/api/users/bob/follow", nil, &res)
	assert.Equal(t, http.StatusOK, code)
	assert.False(t, res.Following)

	code, _ = anon.do("GET", "/api/notifications", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	var count struct {
		UnreadCount int64 `json:"unread_count"`
	}
	code, _ = alice.do("GET", "/api/notifications/unread_count", nil, &count)
	assert.Equal(t, http.StatusOK, code)
	assert.Zero(t, count.UnreadCount)

	code, _ = anon.do("GET", "/api/users/nobody", nil, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestFeedsAndSearch(t *testing.T) {
	h := newServer(t)
	alice := signUp(t, h, "alice")
	anon := &client{t: t, h: h}

	code, env, _ := alice.uploadGif("/api/gifs", map[string]string{"title": "dancing dog"})
	require.Equal(t, http.StatusOK, code, env.Message)

	var page struct {
		Total   int64 `json:"total"`
		PerPage int   `json:"per_page"`
	}
	for _, path := range []string{"/api/feed", "/api/feed/recent", "/api/gifs?sort=recent", "/api/search?q=dog"} {
		code, env = anon.do("GET", path, nil, &page)
		assert.Equal(t, http.StatusOK, code, path+": "+env.Message)
		assert.EqualValues(t, 1, page.Total, path)
	}

	code, _ = anon.do("GET", "/api/gifs?sort=weird", nil, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = anon.do("GET", "/api/feed/recent?per_page=1000", nil, &page)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 100, page.PerPage)
}
