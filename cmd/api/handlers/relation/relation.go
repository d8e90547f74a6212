package relation

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"ytgify.com/cmd/api/handlers"
	"ytgify.com/cmd/relation/service"
)

// Follow 关注, 重复关注不报错
func Follow(ctx context.Context, c *app.RequestContext) {
	res, err := service.NewRelationService(ctx, handlers.Producer).Follow(handlers.UserID(c), c.Param("username"))
	handlers.SendResponse(c, err, res)
}

func Unfollow(ctx context.Context, c *app.RequestContext) {
	res, err := service.NewRelationService(ctx, handlers.Producer).Unfollow(handlers.UserID(c), c.Param("username"))
	handlers.SendResponse(c, err, res)
}
