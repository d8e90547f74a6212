package websocket

import (
	"github.com/cloudwego/hertz/pkg/app"

	"ytgify.com/cmd/api/router/authfunc"
)

// gif 流允许匿名订阅, token 通过 query 传入
func _wsAuth() []app.HandlerFunc {
	return authfunc.OptionalAuth()
}
