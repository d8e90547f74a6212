package hashtag

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"ytgify.com/cmd/api/handlers"
	"ytgify.com/cmd/hashtag/service"
)

type TrendingParam struct {
	Limit int `query:"limit"`
}

type SearchParam struct {
	Q string `query:"q"`
}

func Trending(ctx context.Context, c *app.RequestContext) {
	var req TrendingParam
	if err := handlers.Bind(c, &req); err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	res, err := service.NewHashtagService(ctx).Trending(req.Limit)
	handlers.SendResponse(c, err, res)
}

// Search 前缀补全
func Search(ctx context.Context, c *app.RequestContext) {
	var req SearchParam
	if err := handlers.Bind(c, &req); err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	res, err := service.NewHashtagService(ctx).Search(req.Q)
	handlers.SendResponse(c, err, res)
}

func Gifs(ctx context.Context, c *app.RequestContext) {
	p, err := handlers.BindPage(ctx, c)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	res, err := service.NewHashtagService(ctx).GifsByHashtag(handlers.UserID(c), c.Param("name"), p.Page, p.PerPage)
	handlers.SendResponse(c, err, res)
}
