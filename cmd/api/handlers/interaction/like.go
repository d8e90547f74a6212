package interaction

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"ytgify.com/cmd/api/handlers"
	"ytgify.com/cmd/interaction/service"
)

// ToggleLike 已点赞则取消, 否则点赞
func ToggleLike(ctx context.Context, c *app.RequestContext) {
	gifID, err := handlers.ParamID(c, "id")
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	res, err := service.NewLikeService(ctx, handlers.Producer).Toggle(handlers.UserID(c), gifID)
	handlers.SendResponse(c, err, res)
}
