package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytgify.com/pkg/errno"
)

type envelope struct {
	Code    int64           `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *ut.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestSendResponse(t *testing.T) {
	h := server.New()
	h.GET("/ok", func(ctx context.Context, c *app.RequestContext) {
		SendResponse(c, nil, map[string]int{"n": 1})
	})
	h.GET("/missing", func(ctx context.Context, c *app.RequestContext) {
		SendResponse(c, errno.GifNotExistErr, nil)
	})
	h.GET("/boom", func(ctx context.Context, c *app.RequestContext) {
		SendResponse(c, errors.New("dial tcp 10.0.0.3:3306: connection refused"), nil)
	})

	w := ut.PerformRequest(h.Engine, "GET", "/ok", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.EqualValues(t, errno.SuccessCode, env.Code)
	assert.JSONEq(t, `{"n":1}`, string(env.Data))

	w = ut.PerformRequest(h.Engine, "GET", "/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.EqualValues(t, errno.GifNotExistErrCode, decode(t, w).Code)

	// 内部错误不把细节带给客户端
	w = ut.PerformRequest(h.Engine, "GET", "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env = decode(t, w)
	assert.EqualValues(t, errno.ServiceErrCode, env.Code)
	assert.NotContains(t, env.Message, "10.0.0.3")
}

func TestParamIDAndPage(t *testing.T) {
	h := server.New()
	h.GET("/gifs/:id", func(ctx context.Context, c *app.RequestContext) {
		id, err := ParamID(c, "id")
		if err != nil {
			SendResponse(c, err, nil)
			return
		}
		p, err := BindPage(ctx, c)
		if err != nil {
			SendResponse(c, err, nil)
			return
		}
		SendResponse(c, nil, map[string]int64{"id": id, "page": int64(p.Page), "per_page": int64(p.PerPage)})
	})

	w := ut.PerformRequest(h.Engine, "GET", "/gifs/12?page=2&per_page=5", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":12,"page":2,"per_page":5}`, string(decode(t, w).Data))

	for _, path := range []string{"/gifs/abc", "/gifs/0", "/gifs/-3", "/gifs/1?page=x"} {
		w = ut.PerformRequest(h.Engine, "GET", path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.EqualValues(t, errno.ParamErrCode, decode(t, w).Code, path)
	}
}

func TestUserIDAnonymous(t *testing.T) {
	h := server.New()
	h.GET("/who", func(ctx context.Context, c *app.RequestContext) {
		SendResponse(c, nil, UserID(c))
	})
	w := ut.PerformRequest(h.Engine, "GET", "/who", nil)
	assert.Equal(t, "0", string(decode(t, w).Data))
}
